package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaBackend 本地 Ollama 后端
type OllamaBackend struct {
	baseURL string
	model   string
	http    *http.Client
}

// NewOllamaBackend 创建 Ollama 后端
func NewOllamaBackend(baseURL, model string) *OllamaBackend {
	return &OllamaBackend{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		// 生成耗时由调用方通过 ctx 控制，这里不再设客户端级超时
		http: &http.Client{},
	}
}

// Name 后端标识
func (b *OllamaBackend) Name() string { return "ollama" }

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// Generate 调用 /api/generate 完成一次非流式生成
func (b *OllamaBackend) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(ollamaGenerateRequest{
		Model:  b.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("编码生成请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		b.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("构建生成请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求 Ollama 失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("Ollama 返回 %d: %s", resp.StatusCode, string(body))
	}

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("解析 Ollama 响应失败: %w", err)
	}
	return out.Response, nil
}

// Ping 通过 /api/tags 探测服务是否在线
func (b *OllamaBackend) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return ErrBackendUnavailable
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ErrBackendUnavailable
	}
	return nil
}
