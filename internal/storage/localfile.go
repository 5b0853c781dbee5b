package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"talentscout-go/internal/types"
)

// LocalFile 本地回退文件存储：一个JSON数组文件，每个元素是一条候选人记录，
// 字段名与Supabase candidates 表完全一致，运维可以互换读取两边的数据。
//
// 追加是整个文件的读-改-写（不是流式append），这继承自上游实现：
// 并发写者之间没有锁保护，可能互相覆盖丢失记录。
// 写入走临时文件+rename，失败时原有内容保持完好，不会留下半截文件。
type LocalFile struct {
	path string
}

// NewLocalFile 创建本地回退文件存储
func NewLocalFile(path string) *LocalFile {
	return &LocalFile{path: path}
}

// Path 返回回退文件路径
func (l *LocalFile) Path() string {
	return l.path
}

// AppendCandidate 把一条记录追加到回退文件。
// 文件不存在时创建单元素数组；已存在时完整读入、追加、整体重写。
// 已有内容损坏（JSON解析失败或记录缺必填字段）视为保存失败，不会覆盖原文件。
func (l *LocalFile) AppendCandidate(record *types.CandidateRecord) error {
	records, err := l.ReadAll()
	if err != nil {
		return err
	}

	records = append(records, *record)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化候选人列表失败: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}

	// 先写临时文件再rename，写失败时原文件内容不受影响
	tmpFile, err := os.CreateTemp(dir, filepath.Base(l.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}

	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("替换回退文件失败: %w", err)
	}
	return nil
}

// ReadAll 读取回退文件中的全部记录。文件不存在返回空列表。
// 解析失败或存在缺必填字段的记录都按文件损坏处理返回错误。
func (l *LocalFile) ReadAll() ([]types.CandidateRecord, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.CandidateRecord{}, nil
		}
		return nil, fmt.Errorf("读取回退文件失败: %w", err)
	}

	var records []types.CandidateRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("回退文件内容损坏，无法解析: %w", err)
	}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("回退文件第 %d 条记录损坏: %w", i+1, err)
		}
	}
	return records, nil
}
