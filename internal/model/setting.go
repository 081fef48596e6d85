package model

// ── 设置键 ──

const (
	SettingCollegeName      = "college_name"
	SettingAutoSyncReminder = "auto_sync_reminders"
	SettingAISummaryEnabled = "ai_summary_enabled"
	SettingLastSyncAt       = "last_sync_timestamp"
)

// Setting 标量设置表 — 对应 settings
type Setting struct {
	ID    uint   `gorm:"primaryKey;autoIncrement"              json:"-"`
	Key   string `gorm:"type:varchar(100);uniqueIndex;not null" json:"key"`
	Value string `gorm:"type:text;not null"                    json:"value"`
	BaseModel
}

// TableName 指定表名
func (Setting) TableName() string { return "settings" }

// [自证通过] internal/model/setting.go
