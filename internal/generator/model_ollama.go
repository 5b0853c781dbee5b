package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"talentscout-go/internal/logger"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const (
	// Ollama本地服务的默认地址与模型
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama3.2:3b"

	// generate接口的相对路径
	ollamaGeneratePath = "/api/generate"
)

// OllamaChatModel 实现了 model.ChatModel 接口，用于与本地运行的Ollama服务交互。
// 协议是Ollama的 /api/generate 非流式调用：prompt+system进，自由文本出。
type OllamaChatModel struct {
	baseURL     string
	modelName   string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// OllamaOption OllamaChatModel的配置选项
type OllamaOption func(*OllamaChatModel)

// WithTemperature 设置采样温度
func WithTemperature(temperature float64) OllamaOption {
	return func(m *OllamaChatModel) {
		m.temperature = temperature
	}
}

// WithMaxTokens 设置生成上限(num_predict)
func WithMaxTokens(maxTokens int) OllamaOption {
	return func(m *OllamaChatModel) {
		m.maxTokens = maxTokens
	}
}

// WithTimeout 设置HTTP客户端超时
func WithTimeout(timeout time.Duration) OllamaOption {
	return func(m *OllamaChatModel) {
		m.httpClient.Timeout = timeout
	}
}

// NewOllamaChatModel 创建一个新的 OllamaChatModel 实例
func NewOllamaChatModel(baseURL string, modelName string, options ...OllamaOption) *OllamaChatModel {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultOllamaBaseURL
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultOllamaModel
	}

	m := &OllamaChatModel{
		baseURL:     strings.TrimRight(baseURL, "/"),
		modelName:   modelName,
		temperature: 0.7,
		maxTokens:   300,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range options {
		opt(m)
	}

	logger.Debug().
		Str("base_url", m.baseURL).
		Str("model", m.modelName).
		Msg("使用Ollama LLM客户端")

	return m
}

// --- Ollama /api/generate 请求/响应结构 ---

type ollamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	System  string                 `json:"system,omitempty"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate 实现 model.ChatModel 接口。
// 消息列表中的system消息映射到请求的system字段，其余消息内容拼接为prompt。
func (o *OllamaChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	for _, opt := range options {
		_ = opt // 该模型的核心参数通过构造选项配置，调用级选项暂不处理
	}

	var system string
	var promptParts []string
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		if msg.Role == schema.System {
			system = msg.Content
			continue
		}
		promptParts = append(promptParts, msg.Content)
	}

	reqPayload := ollamaGenerateRequest{
		Model:  o.modelName,
		Prompt: strings.Join(promptParts, "\n\n"),
		System: system,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": o.temperature,
			"num_predict": o.maxTokens,
		},
	}

	jsonData, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+ollamaGeneratePath, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	logger.Debug().
		Str("url", o.baseURL+ollamaGeneratePath).
		Str("model", o.modelName).
		Msg("发送Ollama生成请求")

	httpResp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Ollama 请求失败，状态 %s: %s", httpResp.Status, string(bodyBytes))
	}

	var ollamaResp ollamaGenerateResponse
	if err := json.Unmarshal(bodyBytes, &ollamaResp); err != nil {
		return nil, fmt.Errorf("反序列化 Ollama 响应失败: %w。响应体: %s", err, string(bodyBytes))
	}

	return schema.AssistantMessage(ollamaResp.Response, nil), nil
}

// Stream 实现 model.ChatModel 接口 (placeholder)。
// 问题生成只需要一次性响应，流式调用未实现。
func (o *OllamaChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("OllamaChatModel 的 Stream 方法未实现")
}

// BindTools 实现 model.ChatModel 接口。本服务不使用工具调用。
func (o *OllamaChatModel) BindTools(tools []*schema.ToolInfo) error {
	if len(tools) > 0 {
		logger.Warn().Int("tools", len(tools)).Msg("OllamaChatModel 不支持工具绑定，忽略")
	}
	return nil
}

var _ model.ChatModel = (*OllamaChatModel)(nil)
