package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"talentscout-go/internal/config"
	"talentscout-go/internal/logger"
	"talentscout-go/internal/types"
)

// Supabase 远端结构化存储客户端，走PostgREST接口对 candidates 表做插入和查询。
// URL或Key缺失时客户端仍可构造，调用在发请求前快速失败，
// 由混合持久化落到本地回退，而不是让进程崩溃。
type Supabase struct {
	url        string
	key        string
	table      string
	httpClient *http.Client
}

// NewSupabase 创建Supabase客户端
func NewSupabase(cfg *config.SupabaseConfig) *Supabase {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if cfg.TimeoutSeconds <= 0 {
		timeout = 10 * time.Second
	}
	table := cfg.Table
	if table == "" {
		table = "candidates"
	}
	return &Supabase{
		url:        strings.TrimRight(cfg.URL, "/"),
		key:        cfg.Key,
		table:      table,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// checkConfigured 校验机密是否就位，缺失时让远端调用快速失败
func (s *Supabase) checkConfigured() error {
	if s.url == "" || s.key == "" {
		return fmt.Errorf("supabase 未配置: SUPABASE_URL 或 SUPABASE_KEY 缺失")
	}
	return nil
}

// restEndpoint 拼接PostgREST表端点
func (s *Supabase) restEndpoint() string {
	return fmt.Sprintf("%s/rest/v1/%s", s.url, s.table)
}

// InsertCandidate 向 candidates 表插入一条记录。
// 返回远端确认的记录ID（带 Prefer: return=representation，远端会回显插入行）。
// 任何传输错误或非2xx状态都视为完整的远端失败，由调用方决定回退。
func (s *Supabase) InsertCandidate(ctx context.Context, record *types.CandidateRecord) (string, error) {
	if err := s.checkConfigured(); err != nil {
		return "", err
	}

	jsonData, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("序列化候选人记录失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.restEndpoint(), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}
	httpReq.Header.Set("apikey", s.key)
	httpReq.Header.Set("Authorization", "Bearer "+s.key)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Prefer", "return=representation")

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应体失败: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return "", fmt.Errorf("supabase 插入失败，状态 %s: %s", httpResp.Status, string(bodyBytes))
	}

	// PostgREST回显插入的行（数组形式）。回显缺失或无法解析时，
	// 插入本身已成功，沿用客户端生成的ID。
	var inserted []types.CandidateRecord
	if err := json.Unmarshal(bodyBytes, &inserted); err == nil && len(inserted) > 0 && inserted[0].ID != "" {
		return inserted[0].ID, nil
	}

	logger.Debug().
		Str("id", record.ID).
		Msg("supabase 插入成功但未回显记录，沿用客户端ID")
	return record.ID, nil
}

// ListCandidates 从 candidates 表读取全部记录
func (s *Supabase) ListCandidates(ctx context.Context) ([]types.CandidateRecord, error) {
	if err := s.checkConfigured(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.restEndpoint()+"?select=*", nil)
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}
	httpReq.Header.Set("apikey", s.key)
	httpReq.Header.Set("Authorization", "Bearer "+s.key)

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("supabase 查询失败，状态 %s: %s", httpResp.Status, string(bodyBytes))
	}

	var records []types.CandidateRecord
	if err := json.Unmarshal(bodyBytes, &records); err != nil {
		return nil, fmt.Errorf("反序列化候选人列表失败: %w", err)
	}
	return records, nil
}
