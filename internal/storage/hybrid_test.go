package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentscout-go/internal/config"
	"talentscout-go/internal/types"
)

// newStubSupabase 起一个模拟PostgREST端点并返回指向它的客户端
func newStubSupabase(t *testing.T, handler http.HandlerFunc) *Supabase {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewSupabase(&config.SupabaseConfig{
		URL:            server.URL,
		Key:            "test-service-key",
		Table:          "candidates",
		TimeoutSeconds: 5,
	})
}

// TestSaveCandidateRemoteSuccess 验证远端接受时终态为SavedRemote且本地文件绝不被写入
func TestSaveCandidateRemoteSuccess(t *testing.T) {
	remote := newStubSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		// 1. 校验PostgREST插入请求的形状
		assert.Equal(t, "/rest/v1/candidates", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer test-service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var got types.CandidateRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		// 2. 回显插入的行
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode([]types.CandidateRecord{got})
	})

	localPath := filepath.Join(t.TempDir(), "candidates.json")
	saver := NewHybridSaver(remote, NewLocalFile(localPath))

	result := saver.SaveCandidate(context.Background(), newTestRecord("id-1", "Alice"))

	assert.Equal(t, types.SavedRemote, result.Outcome)
	assert.Equal(t, "id-1", result.RemoteID)
	assert.NoError(t, result.RemoteErr)

	// 远端成功时本地回退文件绝不落盘
	_, err := os.Stat(localPath)
	assert.True(t, os.IsNotExist(err), "远端保存成功后本地文件不应存在")
}

// TestSaveCandidateRemoteRejectFallsBackLocal 验证远端非2xx时回退到本地，记录恰好出现一次
func TestSaveCandidateRemoteRejectFallsBackLocal(t *testing.T) {
	remote := newStubSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"duplicate key"}`, http.StatusConflict)
	})

	localPath := filepath.Join(t.TempDir(), "candidates.json")
	local := NewLocalFile(localPath)

	// 回退文件里已有一条先前的记录
	require.NoError(t, local.AppendCandidate(newTestRecord("prior", "Prior")))

	saver := NewHybridSaver(remote, local)
	result := saver.SaveCandidate(context.Background(), newTestRecord("id-2", "Bob"))

	assert.Equal(t, types.SavedLocal, result.Outcome)
	assert.Error(t, result.RemoteErr, "回退结果应携带远端失败原因供诊断")
	assert.NoError(t, result.LocalErr)

	// 新记录恰好出现一次，先前内容保持完好
	records, err := local.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "prior", records[0].ID)
	assert.Equal(t, "id-2", records[1].ID)
}

// TestSaveCandidateRemoteUnreachableFallsBackLocal 验证传输层失败同样回退
func TestSaveCandidateRemoteUnreachableFallsBackLocal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	remote := NewSupabase(&config.SupabaseConfig{URL: addr, Key: "test-service-key", TimeoutSeconds: 2})
	localPath := filepath.Join(t.TempDir(), "candidates.json")
	saver := NewHybridSaver(remote, NewLocalFile(localPath))

	result := saver.SaveCandidate(context.Background(), newTestRecord("id-3", "Carol"))

	assert.Equal(t, types.SavedLocal, result.Outcome)
}

// TestSaveCandidateMissingSecretsFallsBackLocal 验证机密缺失时不崩溃、直接回退本地
func TestSaveCandidateMissingSecretsFallsBackLocal(t *testing.T) {
	remote := NewSupabase(&config.SupabaseConfig{URL: "", Key: ""})
	localPath := filepath.Join(t.TempDir(), "candidates.json")
	saver := NewHybridSaver(remote, NewLocalFile(localPath))

	result := saver.SaveCandidate(context.Background(), newTestRecord("id-4", "Dave"))

	assert.Equal(t, types.SavedLocal, result.Outcome)
	assert.Contains(t, result.RemoteErr.Error(), "未配置")
}

// TestSaveCandidateNilRemoteFallsBackLocal 验证远端客户端未构造时的回退
func TestSaveCandidateNilRemoteFallsBackLocal(t *testing.T) {
	localPath := filepath.Join(t.TempDir(), "candidates.json")
	saver := NewHybridSaver(nil, NewLocalFile(localPath))

	result := saver.SaveCandidate(context.Background(), newTestRecord("id-5", "Eve"))

	assert.Equal(t, types.SavedLocal, result.Outcome)
}

// TestSaveCandidateBothFail 验证远端与本地均失败时终态为SaveFailed且原文件不被破坏
func TestSaveCandidateBothFail(t *testing.T) {
	remote := newStubSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	})

	// 本地文件内容损坏使本地写入也失败
	localPath := filepath.Join(t.TempDir(), "candidates.json")
	corrupt := []byte("{broken")
	require.NoError(t, os.WriteFile(localPath, corrupt, 0644))

	saver := NewHybridSaver(remote, NewLocalFile(localPath))
	result := saver.SaveCandidate(context.Background(), newTestRecord("id-6", "Frank"))

	assert.Equal(t, types.SaveFailed, result.Outcome)
	assert.Error(t, result.RemoteErr)
	assert.Error(t, result.LocalErr)

	// 原有内容（哪怕是损坏的）原样保留，没有半截文件
	data, err := os.ReadFile(localPath)
	require.NoError(t, err)
	assert.Equal(t, corrupt, data)
}

// TestInsertCandidateUsesClientIDWhenNoEcho 验证远端未回显记录时沿用客户端ID
func TestInsertCandidateUsesClientIDWhenNoEcho(t *testing.T) {
	remote := newStubSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	id, err := remote.InsertCandidate(context.Background(), newTestRecord("client-id", "Alice"))
	require.NoError(t, err)
	assert.Equal(t, "client-id", id)
}

// TestListCandidates 验证查询走 select=* 并解析返回数组
func TestListCandidates(t *testing.T) {
	remote := newStubSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]types.CandidateRecord{*newTestRecord("id-1", "Alice")})
	})

	records, err := remote.ListCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Alice", records[0].Name)
}
