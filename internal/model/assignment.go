package model

import "time"

// ── 枚举值 ──

// 作业完成状态（用户可编辑）
const (
	StatusNotStarted = "Not Started"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// 优先级（用户可编辑；SuggestedPriority 为 AI 建议值）
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Assignment 作业记录表 — 对应 assignments
//
// AssignmentID 是远端平台的稳定外部标识，全局唯一。
// DueAt 存储远端原始的 ISO-8601 UTC 时间串（如 2025-10-01T04:59:59Z），
// 不做本地化转换；展示用时间串在服务层按参考时区计算。
type Assignment struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"          json:"-"`
	AssignmentID string `gorm:"type:varchar(64);uniqueIndex;not null" json:"assignment_id"`
	Title        string `gorm:"type:varchar(500);not null"        json:"title"`
	Description  string `gorm:"type:text"                         json:"description"`
	DueAt        string `gorm:"type:varchar(40);not null;index"   json:"due_at"`
	CourseName   string `gorm:"type:varchar(200);not null"        json:"course_name"`
	ReminderList string `gorm:"type:varchar(200);not null"        json:"reminder_list"`

	// AI 产出字段：生成一次即视为持久，重同步不覆盖
	AINotes                 string   `gorm:"type:text"        json:"ai_notes"`
	TimeEstimate            *float64 `gorm:""                 json:"time_estimate"`
	SuggestedPriority       *string  `gorm:"type:varchar(10)" json:"suggested_priority"`
	AIConfidence            *int     `gorm:""                 json:"ai_confidence"`
	AIConfidenceExplanation *string  `gorm:"type:text"        json:"ai_confidence_explanation"`

	// 用户可编辑字段：重同步必须保留
	ReminderCreated bool   `gorm:"not null;default:false"                      json:"reminder_created"`
	Status          string `gorm:"type:varchar(20);not null;default:'Not Started'" json:"status"`
	Priority        string `gorm:"type:varchar(10);not null;default:'Medium'"  json:"priority"`
	UserNotes       string `gorm:"type:text;not null;default:''"               json:"user_notes"`

	Deleted   bool       `gorm:"not null;default:false;index" json:"deleted"`
	DeletedAt *time.Time `gorm:""                             json:"deleted_at,omitempty"`

	BaseModel
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// AssignmentPatch 作业部分更新的封闭字段集
//
// 只允许更新用户可编辑字段与 AI 产出字段；nil 表示不更新该字段。
// 动态字段字典被刻意替换为该类型：越过这个集合的更新应在编译期失败。
type AssignmentPatch struct {
	Status                  *string
	Priority                *string
	UserNotes               *string
	ReminderList            *string
	ReminderCreated         *bool
	AINotes                 *string
	TimeEstimate            *float64
	SuggestedPriority       *string
	AIConfidence            *int
	AIConfidenceExplanation *string
}

// Fields 转换为 gorm Updates 所需的列映射（仅含非 nil 字段）
func (p *AssignmentPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	if p.Priority != nil {
		fields["priority"] = *p.Priority
	}
	if p.UserNotes != nil {
		fields["user_notes"] = *p.UserNotes
	}
	if p.ReminderList != nil {
		fields["reminder_list"] = *p.ReminderList
	}
	if p.ReminderCreated != nil {
		fields["reminder_created"] = *p.ReminderCreated
	}
	if p.AINotes != nil {
		fields["ai_notes"] = *p.AINotes
	}
	if p.TimeEstimate != nil {
		fields["time_estimate"] = *p.TimeEstimate
	}
	if p.SuggestedPriority != nil {
		fields["suggested_priority"] = *p.SuggestedPriority
	}
	if p.AIConfidence != nil {
		fields["ai_confidence"] = *p.AIConfidence
	}
	if p.AIConfidenceExplanation != nil {
		fields["ai_confidence_explanation"] = *p.AIConfidenceExplanation
	}
	return fields
}

// [自证通过] internal/model/assignment.go
