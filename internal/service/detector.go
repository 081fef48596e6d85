package service

import (
	"fmt"
	"time"

	"github.com/ppratick/studySyncAI/internal/canvas"
)

// dueFormats 按优先级排列的截止时间格式。
// 远端正常返回整秒 UTC（尾缀 Z）；带偏移量的 RFC3339 作为兜底。
var dueFormats = []string{
	"2006-01-02T15:04:05Z",
	time.RFC3339,
}

// DueParseError 截止时间串无法按任何已知格式解析
type DueParseError struct {
	Raw string
}

func (e *DueParseError) Error() string {
	return fmt.Sprintf("无法解析截止时间 %q", e.Raw)
}

// parseDueAt 按格式优先级解析截止时间串
func parseDueAt(raw string) (time.Time, error) {
	for _, layout := range dueFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &DueParseError{Raw: raw}
}

// 条目跳过原因，用于日志
const (
	skipNoDue     = "no_due_date"
	skipSubmitted = "already_submitted"
	skipBadDue    = "unparsable_due_date"
	skipPast      = "past_due"
	skipUnchanged = "due_unchanged"
	skipDeleted   = "soft_deleted"
)

// itemDue 归一化条目截止时间：条目自身的 due_at 优先，
// 讨论类条目回落到挂载作业的 due_at，再回落到首个分段截止时间。
func itemDue(it *canvas.Item) string {
	if it.DueAt != "" {
		return it.DueAt
	}
	if it.Assignment == nil {
		return ""
	}
	if it.Assignment.DueAt != "" {
		return it.Assignment.DueAt
	}
	for _, cp := range it.Assignment.Checkpoints {
		if cp.DueAt != "" {
			return cp.DueAt
		}
	}
	return ""
}

// evaluateItem 判定条目是否需要进入同步管线。
// 已提交、无截止时间、时间无法解析或已过期的条目一律跳过。
func evaluateItem(it *canvas.Item, now time.Time) (due string, ok bool, reason string) {
	due = itemDue(it)
	if due == "" {
		return "", false, skipNoDue
	}

	if it.Submission != nil && it.Submission.SubmittedAt != nil && *it.Submission.SubmittedAt != "" {
		return "", false, skipSubmitted
	}

	dueTime, err := parseDueAt(due)
	if err != nil {
		return "", false, skipBadDue
	}
	if !dueTime.After(now) {
		return "", false, skipPast
	}

	return due, true, ""
}
