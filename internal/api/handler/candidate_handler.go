package handler

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"

	"talentscout-go/internal/config"
	"talentscout-go/internal/constants"
	"talentscout-go/internal/generator"
	"talentscout-go/internal/logger"
	"talentscout-go/internal/notify"
	"talentscout-go/internal/storage"
	"talentscout-go/internal/types"

	"github.com/gofrs/uuid/v5"
)

// CandidateHandler 候选人流程处理器，负责协调问题生成、校验和混合持久化
type CandidateHandler struct {
	cfg       *config.Config
	storage   *storage.Storage
	generator *generator.QuestionGenerator
	notifier  *notify.Notifier
}

// NewCandidateHandler 创建一个新的候选人处理器
func NewCandidateHandler(
	cfg *config.Config,
	storage *storage.Storage,
	questionGenerator *generator.QuestionGenerator,
	notifier *notify.Notifier,
) *CandidateHandler {
	return &CandidateHandler{
		cfg:       cfg,
		storage:   storage,
		generator: questionGenerator,
		notifier:  notifier,
	}
}

// ValidationError 输入校验失败，携带全部错误项（一次性反馈给用户，与表单行为一致）
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "输入校验失败: " + strings.Join(e.Errors, "; ")
}

// GenerateQuestionsRequest 问题生成请求
type GenerateQuestionsRequest struct {
	Position   string   `json:"position"`
	Skills     []string `json:"skills"`
	Experience int      `json:"experience"`
}

// GenerateQuestionsResponse 问题生成响应。
// Generated为false表示生成端点不可用，questions是固定的后备问题集。
type GenerateQuestionsResponse struct {
	Questions []string `json:"questions"`
	Generated bool     `json:"generated"`
}

// HandleGenerateQuestions 处理问题生成请求。
// 生成端点不可用时降级为后备问题集，绝不阻塞用户流程。
func (h *CandidateHandler) HandleGenerateQuestions(ctx context.Context, req *GenerateQuestionsRequest) (*GenerateQuestionsResponse, error) {
	var verrs []string
	if strings.TrimSpace(req.Position) == "" {
		verrs = append(verrs, "position is required")
	}
	if req.Experience < 0 {
		verrs = append(verrs, "experience must be a non-negative integer")
	}
	if len(verrs) > 0 {
		return nil, &ValidationError{Errors: verrs}
	}

	questions, err := h.generator.Generate(ctx, req.Position, req.Skills, req.Experience)
	if err != nil {
		if errors.Is(err, generator.ErrGenerationUnavailable) {
			logger.Warn().
				Err(err).
				Str("position", req.Position).
				Msg("问题生成不可用，改用后备问题集")
			return &GenerateQuestionsResponse{
				Questions: generator.DefaultQuestions(req.Position),
				Generated: false,
			}, nil
		}
		return nil, err
	}

	return &GenerateQuestionsResponse{Questions: questions, Generated: true}, nil
}

// VideoResponseInput 提交请求中的单个视频回答
type VideoResponseInput struct {
	Question string `json:"question"`
	LoomURL  string `json:"loom_url"`
}

// SubmitCandidateRequest 候选人提交请求
type SubmitCandidateRequest struct {
	Name               string               `json:"name"`
	Email              string               `json:"email"`
	Phone              string               `json:"phone"`
	Position           string               `json:"position"`
	Location           string               `json:"location"`
	Experience         int                  `json:"experience"`
	Skills             []string             `json:"skills"`
	AdditionalSkills   string               `json:"additional_skills"`
	GeneratedQuestions []string             `json:"generated_questions"`
	VideoResponses     []VideoResponseInput `json:"video_responses"`
}

// SubmitCandidateResponse 候选人提交响应
type SubmitCandidateResponse struct {
	ID      string `json:"id"`
	Outcome string `json:"outcome"`
	Message string `json:"message"`
}

// HandleSubmitCandidate 处理候选人提交：校验 -> 组装记录 -> 混合持久化 -> 通知。
// 记录一次性创建、一次性保存，之后不再变更。
func (h *CandidateHandler) HandleSubmitCandidate(ctx context.Context, req *SubmitCandidateRequest) (*SubmitCandidateResponse, error) {
	if err := h.validateSubmission(req); err != nil {
		return nil, err
	}

	// 生成UUIDv7作为记录标识
	uuidV7, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成UUIDv7失败: %w", err)
	}

	now := time.Now()
	record := &types.CandidateRecord{
		ID:                 uuidV7.String(),
		Name:               strings.TrimSpace(req.Name),
		Email:              strings.TrimSpace(req.Email),
		Phone:              strings.TrimSpace(req.Phone),
		Position:           strings.TrimSpace(req.Position),
		Location:           strings.TrimSpace(req.Location),
		Experience:         req.Experience,
		Skills:             req.Skills,
		AdditionalSkills:   strings.TrimSpace(req.AdditionalSkills),
		GeneratedQuestions: req.GeneratedQuestions,
		Status:             constants.CandidateStatusSubmitted,
		SubmittedAt:        now,
	}
	for _, vr := range req.VideoResponses {
		record.VideoResponses = append(record.VideoResponses, types.VideoResponse{
			Question:    vr.Question,
			LoomURL:     strings.TrimSpace(vr.LoomURL),
			SubmittedAt: now,
		})
	}

	result := h.storage.Hybrid.SaveCandidate(ctx, record)

	resp := &SubmitCandidateResponse{
		ID:      record.ID,
		Outcome: string(result.Outcome),
	}
	switch result.Outcome {
	case types.SavedRemote:
		resp.ID = result.RemoteID
		resp.Message = "Data saved to cloud successfully!"
	case types.SavedLocal:
		resp.Message = fmt.Sprintf("Saved locally (cloud error: %v)", result.RemoteErr)
	case types.SaveFailed:
		resp.Message = fmt.Sprintf("Error saving data: %v. Please check disk space and permissions.", result.LocalErr)
		// 保存失败的记录不发确认邮件
		return resp, nil
	}

	// 尽力而为的提交确认邮件，失败只记日志
	if h.notifier != nil && h.notifier.Enabled() {
		if err := h.notifier.SendSubmissionConfirmation(record.Email, record.Name); err != nil {
			logger.Warn().Err(err).Str("email", record.Email).Msg("发送提交确认邮件失败")
		}
	}

	return resp, nil
}

// HandleListCandidates 从远端存储读取候选人列表。
// 远端失败时返回空列表而不是错误，与上游读路径的行为一致。
func (h *CandidateHandler) HandleListCandidates(ctx context.Context) []types.CandidateRecord {
	records, err := h.storage.Supabase.ListCandidates(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("读取远端候选人列表失败，返回空列表")
		return []types.CandidateRecord{}
	}
	return records
}

// validateSubmission 校验提交请求，收集全部错误项一次返回
func (h *CandidateHandler) validateSubmission(req *SubmitCandidateRequest) error {
	var verrs []string
	if strings.TrimSpace(req.Name) == "" {
		verrs = append(verrs, "name is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		verrs = append(verrs, "email is required")
	} else if !isValidEmail(req.Email) {
		verrs = append(verrs, "please enter a valid email")
	}
	if strings.TrimSpace(req.Position) == "" {
		verrs = append(verrs, "position is required")
	}
	if req.Experience < 0 {
		verrs = append(verrs, "experience must be a non-negative integer")
	}
	if len(req.VideoResponses) == 0 {
		verrs = append(verrs, "please provide Loom video links for the questions")
	}
	for i, vr := range req.VideoResponses {
		if !ValidateLoomURL(vr.LoomURL) {
			verrs = append(verrs, fmt.Sprintf("invalid Loom URL for question %d", i+1))
		}
	}
	if len(verrs) > 0 {
		return &ValidationError{Errors: verrs}
	}
	return nil
}

// isValidEmail 校验邮箱地址语法
func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	return err == nil && addr.Address == strings.TrimSpace(email)
}

// loomURLRe 匹配Loom的share/embed链接
var loomURLRe = regexp.MustCompile(`^https://(www\.)?loom\.com/(share|embed)/[a-zA-Z0-9]+`)

// ValidateLoomURL 校验是否为合法的Loom分享链接。
// 只校验格式，不探测链接可达性。
func ValidateLoomURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return false
	}
	return loomURLRe.MatchString(raw)
}
