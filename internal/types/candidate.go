package types

import (
	"fmt"
	"strings"
	"time"
)

// CandidateRecord 一次候选人提交的完整记录。
// 字段的JSON名称同时是Supabase candidates 表的列名和本地回退文件的键名，
// 两个存储必须保持可互换读取。
type CandidateRecord struct {
	// ID 记录标识，创建时生成（UUIDv7），每次提交唯一
	ID string `json:"id"`

	// 基本信息
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Position string `json:"position"`
	Location string `json:"location,omitempty"`

	// Experience 工作年限，非负整数
	Experience int `json:"experience"`

	// 技术栈
	Skills           []string `json:"skills"`
	AdditionalSkills string   `json:"additional_skills,omitempty"`

	// GeneratedQuestions 生成的面试题，按顺序排列，记录创建后不可变
	GeneratedQuestions []string `json:"generated_questions"`

	// VideoResponses 候选人提交的视频回答链接，与问题一一对应
	VideoResponses []VideoResponse `json:"video_responses"`

	// Status 提交状态，当前固定为 submitted
	Status string `json:"status"`

	// SubmittedAt 提交时间戳，创建时设置
	SubmittedAt time.Time `json:"submitted_at"`
}

// VideoResponse 单个问题的视频回答
type VideoResponse struct {
	Question    string    `json:"question"`
	LoomURL     string    `json:"loom_url"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Validate 校验记录的必填字段。读取回退文件时也用它识别损坏的内容。
func (r *CandidateRecord) Validate() error {
	var missing []string
	if strings.TrimSpace(r.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(r.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(r.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(r.Position) == "" {
		missing = append(missing, "position")
	}
	if len(missing) > 0 {
		return fmt.Errorf("候选人记录缺少必填字段: %s", strings.Join(missing, ", "))
	}
	if r.Experience < 0 {
		return fmt.Errorf("工作年限不能为负数: %d", r.Experience)
	}
	return nil
}

// SaveOutcome 混合持久化的终态，三者有且只有其一
type SaveOutcome string

const (
	// SavedRemote 记录已写入远端存储（Supabase）
	SavedRemote SaveOutcome = "saved_remote"
	// SavedLocal 远端失败，记录已写入本地回退文件
	SavedLocal SaveOutcome = "saved_local"
	// SaveFailed 远端与本地均失败，唯一向用户暴露的失败终态
	SaveFailed SaveOutcome = "save_failed"
)
