package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentscout-go/internal/types"
)

func newTestRecord(id, name string) *types.CandidateRecord {
	return &types.CandidateRecord{
		ID:                 id,
		Name:               name,
		Email:              "candidate@example.com",
		Position:           "Backend Engineer",
		Experience:         3,
		Skills:             []string{"Go", "SQL"},
		GeneratedQuestions: []string{"Explain indexing"},
		VideoResponses: []types.VideoResponse{
			{Question: "Explain indexing", LoomURL: "https://www.loom.com/share/abc123", SubmittedAt: time.Now().UTC()},
		},
		Status:      "submitted",
		SubmittedAt: time.Now().UTC(),
	}
}

// TestAppendCandidateCreatesFile 验证文件不存在时创建单元素JSON数组
func TestAppendCandidateCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.json")
	local := NewLocalFile(path)

	require.NoError(t, local.AppendCandidate(newTestRecord("id-1", "Alice")))

	// 文件必须是一个合法JSON数组，恰好一个元素
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []types.CandidateRecord
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "id-1", records[0].ID)
	assert.Equal(t, "Alice", records[0].Name)
}

// TestAppendCandidateSequential 验证顺序追加N条得到恰好N个元素且先前内容完好
func TestAppendCandidateSequential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.json")
	local := NewLocalFile(path)

	const n = 5
	for i := 0; i < n; i++ {
		record := newTestRecord(string(rune('a'+i)), "Candidate")
		require.NoError(t, local.AppendCandidate(record))
	}

	records, err := local.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, n, "顺序追加%d条应得到%d个元素", n, n)

	// 先前的记录顺序与内容保持不变
	for i := 0; i < n; i++ {
		assert.Equal(t, string(rune('a'+i)), records[i].ID)
	}
}

// TestAppendCandidateCreatesDataDir 验证数据目录不存在时被创建
func TestAppendCandidateCreatesDataDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "candidates.json")
	local := NewLocalFile(path)

	require.NoError(t, local.AppendCandidate(newTestRecord("id-1", "Alice")))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

// TestAppendCandidateMalformedFile 验证已有内容损坏时追加失败且原文件不被覆盖
func TestAppendCandidateMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.json")
	corrupt := []byte("{not a json array")
	require.NoError(t, os.WriteFile(path, corrupt, 0644))

	local := NewLocalFile(path)
	err := local.AppendCandidate(newTestRecord("id-1", "Alice"))

	require.Error(t, err, "损坏的回退文件必须让保存失败而不是静默覆盖")

	// 原文件内容保持原样，没有半截文件
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, corrupt, data)
}

// TestAppendCandidateRecordMissingFields 验证已有记录缺必填字段按损坏处理
func TestAppendCandidateRecordMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.json")
	// name为空，Validate应报错
	existing := `[{"id":"x","name":"","email":"a@b.com","position":"Dev","status":"submitted"}]`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0644))

	local := NewLocalFile(path)
	err := local.AppendCandidate(newTestRecord("id-1", "Alice"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "损坏")
}

// TestReadAllMissingFile 验证文件不存在等价于空列表
func TestReadAllMissingFile(t *testing.T) {
	local := NewLocalFile(filepath.Join(t.TempDir(), "missing.json"))

	records, err := local.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}

// TestAppendCandidateWriteFailurePreservesOriginal 验证写失败时原文件内容不受影响。
// 把目录权限设为只读使临时文件创建失败。
func TestAppendCandidateWriteFailurePreservesOriginal(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root用户不受目录权限限制，跳过")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "candidates.json")
	local := NewLocalFile(path)
	require.NoError(t, local.AppendCandidate(newTestRecord("id-1", "Alice")))

	original, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, os.Chmod(dir, 0555))
	defer os.Chmod(dir, 0755)

	err = local.AppendCandidate(newTestRecord("id-2", "Bob"))
	require.Error(t, err)

	after, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, original, after, "写失败后原文件必须保持完好")
}
