package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicBackend 托管模型后端
type AnthropicBackend struct {
	client anthropic.Client
	model  string
	apiKey string
}

// NewAnthropicBackend 创建 Anthropic 后端
func NewAnthropicBackend(apiKey, model string) *AnthropicBackend {
	return &AnthropicBackend{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		apiKey: apiKey,
	}
}

// Name 后端标识
func (b *AnthropicBackend) Name() string { return "anthropic" }

// Generate 发送单轮对话并拼接全部文本块
func (b *AnthropicBackend) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("请求 Anthropic 失败: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		sb.WriteString(block.Text)
	}
	return sb.String(), nil
}

// Ping 托管服务无探活端点，只校验凭证与模型名已配置
func (b *AnthropicBackend) Ping(ctx context.Context) error {
	if b.apiKey == "" || b.model == "" {
		return ErrBackendUnavailable
	}
	return nil
}
