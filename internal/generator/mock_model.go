package generator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// MockChatModel 是一个用于测试的 model.ChatModel 模拟实现，
// 返回固定内容或固定错误，并记录收到的消息。
type MockChatModel struct {
	ExpectedResponse string
	ExpectedError    error

	ReceivedMessages []*schema.Message
}

// NewMockChatModel 创建一个返回固定响应的 MockChatModel
func NewMockChatModel(expectedResponse string, expectedError error) *MockChatModel {
	return &MockChatModel{
		ExpectedResponse: expectedResponse,
		ExpectedError:    expectedError,
		ReceivedMessages: make([]*schema.Message, 0),
	}
}

// Generate 模拟 LLM 的 Generate 方法
func (m *MockChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	received := make([]*schema.Message, len(input))
	copy(received, input)
	m.ReceivedMessages = append(m.ReceivedMessages, received...)

	if m.ExpectedError != nil {
		return nil, m.ExpectedError
	}
	return schema.AssistantMessage(m.ExpectedResponse, nil), nil
}

// Stream 模拟 LLM 的 Stream 方法
func (m *MockChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("streaming not implemented in MockChatModel")
}

// BindTools 模拟绑定工具的方法
func (m *MockChatModel) BindTools(tools []*schema.ToolInfo) error {
	return nil
}

var _ model.ChatModel = (*MockChatModel)(nil)
