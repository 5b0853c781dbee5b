package storage

import (
	"context"
	"fmt"

	"talentscout-go/internal/logger"
	"talentscout-go/internal/types"
)

// SaveResult 混合持久化的结果。Outcome是三选一的终态；
// RemoteErr在远端失败回退到本地时携带失败原因（仅用于日志/诊断，不算失败）；
// LocalErr仅在终态为 SaveFailed 时设置。
type SaveResult struct {
	Outcome  types.SaveOutcome
	RemoteID string
	// RemoteErr 远端保存的失败原因，回退发生时非空
	RemoteErr error
	// LocalErr 本地保存的失败原因，终态为 SaveFailed 时非空
	LocalErr error
}

// HybridSaver 混合持久化：先尝试远端（Supabase），任何失败都落到本地回退文件。
// 没有重试、没有循环：远端一次，失败则本地一次。记录绝不会同时写进两个存储，
// 也没有事后把本地记录补推到远端的和解步骤。
type HybridSaver struct {
	remote *Supabase
	local  *LocalFile
}

// NewHybridSaver 创建混合持久化器
func NewHybridSaver(remote *Supabase, local *LocalFile) *HybridSaver {
	return &HybridSaver{remote: remote, local: local}
}

// SaveCandidate 持久化一条候选人记录。
// 远端永远先试，本地只做回退，即使已知远端缓慢或降级也不例外。
// 返回的Outcome是调用方分支的唯一依据，方法本身不向上抛错。
func (h *HybridSaver) SaveCandidate(ctx context.Context, record *types.CandidateRecord) SaveResult {
	// 状态1：尝试远端
	remoteID, remoteErr := h.trySaveRemote(ctx, record)
	if remoteErr == nil {
		logger.Info().
			Str("id", record.ID).
			Str("remote_id", remoteID).
			Msg("候选人记录已保存到远端存储")
		return SaveResult{Outcome: types.SavedRemote, RemoteID: remoteID}
	}

	// 远端失败只记日志，绝不作为硬失败暴露给用户
	logger.Warn().
		Err(remoteErr).
		Str("id", record.ID).
		Msg("远端保存失败，回退到本地文件")

	// 状态2：尝试本地
	if localErr := h.local.AppendCandidate(record); localErr != nil {
		logger.Error().
			Err(localErr).
			AnErr("remote_err", remoteErr).
			Str("id", record.ID).
			Str("path", h.local.Path()).
			Msg("远端与本地保存均失败")
		return SaveResult{Outcome: types.SaveFailed, RemoteErr: remoteErr, LocalErr: localErr}
	}

	logger.Info().
		Str("id", record.ID).
		Str("path", h.local.Path()).
		Msg("候选人记录已保存到本地回退文件")
	return SaveResult{Outcome: types.SavedLocal, RemoteID: record.ID, RemoteErr: remoteErr}
}

// trySaveRemote 远端单次插入。客户端未构造时与机密缺失同样快速失败。
func (h *HybridSaver) trySaveRemote(ctx context.Context, record *types.CandidateRecord) (string, error) {
	if h.remote == nil {
		return "", fmt.Errorf("远端存储未初始化")
	}
	return h.remote.InsertCandidate(ctx, record)
}
