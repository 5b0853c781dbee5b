package generator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"talentscout-go/internal/logger"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ErrGenerationUnavailable 表示问题生成端点不可达、超时或返回了无法解析的文本。
// 调用方收到该错误后应改用 DefaultQuestions，绝不能阻塞用户流程。
var ErrGenerationUnavailable = errors.New("问题生成服务不可用")

// QuestionGenerator 面试题生成器。
// 构建面试官提示词发给LLM，把自由文本响应解析成问题列表。
// 无内部状态，调用之间除网络请求外没有副作用。
type QuestionGenerator struct {
	llmModel model.ChatModel
}

// NewQuestionGenerator 创建一个新的面试题生成器
func NewQuestionGenerator(llmModel model.ChatModel) *QuestionGenerator {
	return &QuestionGenerator{llmModel: llmModel}
}

// Generate 为指定岗位生成面试题。
// position 必填；skills 可以为空（退化为通用问题）；experienceYears 必须非负。
// 任何端点失败都折叠为 ErrGenerationUnavailable。
func (g *QuestionGenerator) Generate(ctx context.Context, position string, skills []string, experienceYears int) ([]string, error) {
	if strings.TrimSpace(position) == "" {
		return nil, fmt.Errorf("岗位名称不能为空")
	}
	if experienceYears < 0 {
		return nil, fmt.Errorf("工作年限不能为负数: %d", experienceYears)
	}

	prompt, system := g.buildPrompt(position, skills, experienceYears)

	messages := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(prompt),
	}

	resp, err := g.llmModel.Generate(ctx, messages)
	if err != nil {
		logger.Warn().Err(err).Str("position", position).Msg("调用LLM生成面试题失败")
		return nil, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	questions := ParseQuestions(resp.Content)
	if len(questions) == 0 {
		logger.Warn().
			Str("position", position).
			Str("raw", truncate(resp.Content, 200)).
			Msg("LLM响应中未解析出任何问题")
		return nil, fmt.Errorf("%w: 响应文本无法解析出问题", ErrGenerationUnavailable)
	}

	logger.Info().
		Str("position", position).
		Int("count", len(questions)).
		Msg("面试题生成成功")
	return questions, nil
}

// buildPrompt 构建面试官提示词，按工作年限分档
func (g *QuestionGenerator) buildPrompt(position string, skills []string, experienceYears int) (prompt string, system string) {
	// 经验分档：0-2初级，3-6中级，7+高级
	var expCategory, expDescriptor string
	switch {
	case experienceYears <= 2:
		expCategory, expDescriptor = "junior", "entry-level"
	case experienceYears <= 6:
		expCategory, expDescriptor = "mid-level", "intermediate"
	default:
		expCategory, expDescriptor = "senior", "experienced"
	}

	techStack := "no specific technical skills mentioned"
	if len(skills) > 0 {
		techStack = strings.Join(skills, ", ")
	}

	prompt = fmt.Sprintf(`You are a senior technical interviewer conducting a video interview for a %s %s position.

Candidate Profile:
- Experience: %d years
- Technical Skills: %s
- Position: %s

Generate 4-5 realistic technical interview questions that:
1. Sound like actual interview questions a hiring manager would ask
2. Are appropriate for %s level experience
3. Focus on their declared technologies (if any)
4. Include a mix of conceptual, system design, and practical coding challenges.

Return one question per line, numbered, with no additional commentary.`,
		expDescriptor, position, experienceYears, techStack, position, expCategory)

	system = fmt.Sprintf(`You are an experienced technical interviewer who has conducted hundreds of interviews. Your questions should:
- Sound natural and conversational
- Test real-world application, not just theory
- Be appropriate for %s developers
- Focus on practical scenarios they might face in a %s role.
- Do NOT include phrases like 'Do you have any clarifying questions?'`, expCategory, position)

	return prompt, system
}

// questionPrefixRe 匹配行首的列表前缀：序号（"1."、"2)"、"Question 3:"）、
// 项目符号和markdown加粗标记
var questionPrefixRe = regexp.MustCompile(`^\s*(?:\*\*)?\s*(?:[Qq]uestion\s+)?\d+\s*[.):：]\s*|^\s*[-*]\s+`)

// ParseQuestions 把LLM的自由文本响应解析为有序的问题列表。
// 按行拆分，剥掉序号/符号前缀和markdown加粗，跳过空行。
// 不保证确数，0..N条都可能。
func ParseQuestions(text string) []string {
	var questions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if prefix := questionPrefixRe.FindString(line); prefix != "" {
			q := strings.TrimSpace(strings.Trim(line[len(prefix):], "*"))
			if q != "" {
				questions = append(questions, q)
			}
			continue
		}
		// 没有列表前缀的行只在明显是问题时保留，提示/说明行被丢弃
		if looksLikeQuestion(line) {
			questions = append(questions, strings.TrimSpace(strings.Trim(line, "*")))
		}
	}
	return questions
}

// looksLikeQuestion 识别没有序号前缀但明显是问题的行
func looksLikeQuestion(line string) bool {
	return strings.HasSuffix(line, "?") || strings.HasSuffix(line, "？")
}

// DefaultQuestions 生成端点不可用时的固定后备问题集，非空。
// 用户界面永远有问题可展示，持久化流程不会因生成失败而中断。
func DefaultQuestions(position string) []string {
	if strings.TrimSpace(position) == "" {
		position = "this role"
	}
	return []string{
		fmt.Sprintf("Walk us through a project you are most proud of and the role you played as a %s.", position),
		"Describe a difficult technical problem you faced recently and how you solved it.",
		"How do you approach testing and code quality in your day-to-day work?",
		"Tell us about a time you had to learn a new technology quickly. How did you go about it?",
	}
}

// truncate 截断过长的文本用于日志输出
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
