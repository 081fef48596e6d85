package ai

import (
	"context"
	"errors"
	"html"
	"net"
	"regexp"
	"strconv"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// cleanDescription 把 HTML 描述压成适合放进提示词的纯文本
func cleanDescription(desc string) string {
	if desc == "" {
		return "(no description)"
	}
	text := tagPattern.ReplaceAllString(desc, " ")
	text = html.UnescapeString(text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// 响应必须携带的标记；缺任何一个都按格式错误处理
var requiredMarkers = []string{"Time:", "Priority:", "Difficulty:", "Notes:"}

func validateResponse(raw string) bool {
	for _, marker := range requiredMarkers {
		if !strings.Contains(raw, marker) {
			return false
		}
	}
	return true
}

// parseResponse 从已通过校验的响应中提取结构化字段。
//
// 提取规则：
//   - Time 行解析失败时不设估算，原始行保留在笔记里；
//   - Priority 只认 High/Medium/Low 三个字面值；
//   - Confidence 取整并截断到 [1,5]，其所在行与 ConfidenceReason 行
//     从笔记中剥离，避免展示给用户两遍。
func parseResponse(raw string) *Result {
	result := &Result{}
	var notesLines []string

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "Time:"):
			value := strings.TrimSpace(strings.TrimPrefix(trimmed, "Time:"))
			if est, err := strconv.ParseFloat(firstNumber(value), 64); err == nil {
				result.TimeEstimate = &est
			}
			notesLines = append(notesLines, line)

		case strings.HasPrefix(trimmed, "Priority:"):
			value := strings.TrimSpace(strings.TrimPrefix(trimmed, "Priority:"))
			switch value {
			case "High", "Medium", "Low":
				result.SuggestedPriority = &value
			}
			notesLines = append(notesLines, line)

		case strings.HasPrefix(trimmed, "ConfidenceReason:"):
			value := strings.TrimSpace(strings.TrimPrefix(trimmed, "ConfidenceReason:"))
			if value != "" {
				result.ConfidenceExplanation = &value
			}

		case strings.HasPrefix(trimmed, "Confidence:"):
			value := strings.TrimSpace(strings.TrimPrefix(trimmed, "Confidence:"))
			if n, err := strconv.Atoi(firstNumber(value)); err == nil {
				if n < 1 {
					n = 1
				}
				if n > 5 {
					n = 5
				}
				result.Confidence = &n
			}

		default:
			notesLines = append(notesLines, line)
		}
	}

	result.Notes = strings.TrimSpace(strings.Join(notesLines, "\n"))
	return result
}

var numberPattern = regexp.MustCompile(`-?\d+(\.\d+)?`)

// firstNumber 提取串中第一个数字字面值（如 "2.5 hours" -> "2.5"）
func firstNumber(s string) string {
	return numberPattern.FindString(s)
}

// ── 错误分类 ──

// 失败原因类别，用于日志
const (
	FailureTimeout    = "timeout"
	FailureConnection = "connection"
	FailureUnknown    = "unknown"
)

// ClassifyError 把后端错误归类为超时/连接/未知
func ClassifyError(err error) string {
	if err == nil {
		return FailureUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return FailureConnection
	}
	if errors.Is(err, ErrBackendUnavailable) {
		return FailureConnection
	}
	msg := err.Error()
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") {
		return FailureConnection
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline") {
		return FailureTimeout
	}
	return FailureUnknown
}
