package dto

// ── 同步事件 ──

// 事件类型
const (
	SyncEventProgress = "progress"
	SyncEventComplete = "complete"
	SyncEventError    = "error"
)

// AddedItem 新增条目 [标题, 展示用截止时间]，序列化为二元 JSON 数组
type AddedItem [2]string

// SyncEvent 同步流式事件
//
// progress 事件携带 Message 与 Progress（0~100 单调不减），
// 处理到具体作业时附带入库后的完整记录，前端据此实时刷新列表；
// complete 事件附带新增汇总；error 事件附带失败原因。
// 每次同步恰好以一个 complete 或 error 事件收尾。
type SyncEvent struct {
	Type          string                 `json:"type"`
	Message       string                 `json:"message,omitempty"`
	Progress      int                    `json:"progress,omitempty"`
	Assignment    *AssignmentResponse    `json:"assignment,omitempty"`
	TotalAdded    int                    `json:"total_added,omitempty"`
	AddedByCourse map[string][]AddedItem `json:"added_by_course,omitempty"`
	Error         string                 `json:"error,omitempty"`
}

// ProgressEvent 构建进度事件
func ProgressEvent(message string, progress int) SyncEvent {
	return SyncEvent{Type: SyncEventProgress, Message: message, Progress: progress}
}

// CompleteEvent 构建收尾事件
func CompleteEvent(message string, totalAdded int, addedByCourse map[string][]AddedItem) SyncEvent {
	return SyncEvent{
		Type:          SyncEventComplete,
		Message:       message,
		Progress:      100,
		TotalAdded:    totalAdded,
		AddedByCourse: addedByCourse,
	}
}

// ErrorEvent 构建错误事件
func ErrorEvent(reason string) SyncEvent {
	return SyncEvent{Type: SyncEventError, Error: reason}
}
