package dto

import (
	"time"

	"github.com/ppratick/studySyncAI/internal/model"
)

// AssignmentResponse 作业记录响应
type AssignmentResponse struct {
	AssignmentID            string     `json:"assignment_id"`
	Title                   string     `json:"title"`
	Description             string     `json:"description"`
	DueAt                   string     `json:"due_at"`
	CourseName              string     `json:"course_name"`
	ReminderList            string     `json:"reminder_list"`
	AINotes                 string     `json:"ai_notes"`
	ReminderCreated         bool       `json:"reminder_created"`
	Status                  string     `json:"status"`
	Priority                string     `json:"priority"`
	UserNotes               string     `json:"user_notes"`
	Deleted                 bool       `json:"deleted"`
	TimeEstimate            *float64   `json:"time_estimate"`
	SuggestedPriority       *string    `json:"suggested_priority"`
	AIConfidence            *int       `json:"ai_confidence"`
	AIConfidenceExplanation *string    `json:"ai_confidence_explanation"`
	DeletedAt               *time.Time `json:"deleted_at,omitempty"`
}

// NewAssignmentResponse 由模型构建响应
func NewAssignmentResponse(a *model.Assignment) *AssignmentResponse {
	return &AssignmentResponse{
		AssignmentID:            a.AssignmentID,
		Title:                   a.Title,
		Description:             a.Description,
		DueAt:                   a.DueAt,
		CourseName:              a.CourseName,
		ReminderList:            a.ReminderList,
		AINotes:                 a.AINotes,
		ReminderCreated:         a.ReminderCreated,
		Status:                  a.Status,
		Priority:                a.Priority,
		UserNotes:               a.UserNotes,
		Deleted:                 a.Deleted,
		TimeEstimate:            a.TimeEstimate,
		SuggestedPriority:       a.SuggestedPriority,
		AIConfidence:            a.AIConfidence,
		AIConfidenceExplanation: a.AIConfidenceExplanation,
		DeletedAt:               a.DeletedAt,
	}
}

// UpdateAssignmentRequest 作业字段部分更新请求（封闭字段集，nil 表示不更新）
type UpdateAssignmentRequest struct {
	Status                  *string  `json:"status"`
	Priority                *string  `json:"priority"`
	UserNotes               *string  `json:"user_notes"`
	ReminderList            *string  `json:"reminder_list"`
	ReminderCreated         *bool    `json:"reminder_created"`
	AINotes                 *string  `json:"ai_notes"`
	TimeEstimate            *float64 `json:"time_estimate"`
	SuggestedPriority       *string  `json:"suggested_priority"`
	AIConfidence            *int     `json:"ai_confidence"`
	AIConfidenceExplanation *string  `json:"ai_confidence_explanation"`
}

// Patch 转换为模型层补丁
func (r *UpdateAssignmentRequest) Patch() *model.AssignmentPatch {
	return &model.AssignmentPatch{
		Status:                  r.Status,
		Priority:                r.Priority,
		UserNotes:               r.UserNotes,
		ReminderList:            r.ReminderList,
		ReminderCreated:         r.ReminderCreated,
		AINotes:                 r.AINotes,
		TimeEstimate:            r.TimeEstimate,
		SuggestedPriority:       r.SuggestedPriority,
		AIConfidence:            r.AIConfidence,
		AIConfidenceExplanation: r.AIConfidenceExplanation,
	}
}

// BulkUpdateAssignmentsRequest 批量部分更新请求
// 批量入口只放开状态/优先级/提醒相关字段，与单条更新的字段集刻意不同
type BulkUpdateAssignmentsRequest struct {
	AssignmentIDs []string `json:"assignment_ids" binding:"required,min=1"`
	Fields        struct {
		Status          *string `json:"status"`
		Priority        *string `json:"priority"`
		ReminderCreated *bool   `json:"reminder_created"`
		ReminderList    *string `json:"reminder_list"`
	} `json:"fields"`
}

// CreateAssignmentRequest 手动创建作业请求
type CreateAssignmentRequest struct {
	AssignmentID string `json:"assignment_id" binding:"required"`
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	DueAt        string `json:"due_at" binding:"required"`
	CourseName   string `json:"course_name" binding:"required"`
	ReminderList string `json:"reminder_list" binding:"required"`
	UserNotes    string `json:"user_notes"`
	UseAI        bool   `json:"use_ai"`
}

// AssignmentIDRequest 仅携带作业标识的请求体
type AssignmentIDRequest struct {
	AssignmentID string `json:"assignment_id" binding:"required"`
}

// DeletedAssignmentResponse 墓碑记录响应
type DeletedAssignmentResponse struct {
	AssignmentID string    `json:"assignment_id"`
	Title        string    `json:"title"`
	CourseName   string    `json:"course_name"`
	DeletedAt    time.Time `json:"deleted_at"`
}
