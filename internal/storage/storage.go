package storage

import (
	"context"
	"fmt"
	"os"

	"talentscout-go/internal/config"
	"talentscout-go/internal/logger"
)

// Storage 存储管理器，聚合所有存储相关依赖
type Storage struct {
	// 远端结构化存储
	Supabase *Supabase

	// 本地回退文件
	LocalFile *LocalFile

	// 混合持久化器（远端优先，本地回退）
	Hybrid *HybridSaver
}

// NewStorage 创建存储管理器。
// Supabase机密缺失不是致命错误：客户端照常构造，保存时快速失败落到本地回退。
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	// 确保数据目录存在
	if cfg.App.DataDir != "" {
		if err := os.MkdirAll(cfg.App.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("创建数据目录失败: %w", err)
		}
	}

	storage := &Storage{}

	// 初始化Supabase客户端
	storage.Supabase = NewSupabase(&cfg.Supabase)
	if cfg.Supabase.URL == "" || cfg.Supabase.Key == "" {
		logger.Warn().Msg("Supabase未配置（SUPABASE_URL/SUPABASE_KEY缺失），远端保存将直接回退到本地文件")
	} else {
		logger.Info().Str("table", cfg.Supabase.Table).Msg("Supabase客户端初始化成功")
	}

	// 初始化本地回退文件
	storage.LocalFile = NewLocalFile(cfg.App.CandidatesFile)
	logger.Info().Str("path", cfg.App.CandidatesFile).Msg("本地回退文件存储初始化成功")

	// 混合持久化器
	storage.Hybrid = NewHybridSaver(storage.Supabase, storage.LocalFile)

	return storage, nil
}
