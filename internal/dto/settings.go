package dto

// SettingsResponse 设置响应
// 开关值沿用 "0"/"1" 字符串存储习惯（历史数据兼容）
type SettingsResponse struct {
	CollegeName       string `json:"college_name"`
	AutoSyncReminders string `json:"auto_sync_reminders"`
	AISummaryEnabled  string `json:"ai_summary_enabled"`
}

// UpdateSettingsRequest 更新设置请求
type UpdateSettingsRequest struct {
	CollegeName       string `json:"college_name"`
	AutoSyncReminders string `json:"auto_sync_reminders"`
	AISummaryEnabled  string `json:"ai_summary_enabled"`
}
