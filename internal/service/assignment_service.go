package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppratick/studySyncAI/config"
	"github.com/ppratick/studySyncAI/internal/dto"
	"github.com/ppratick/studySyncAI/internal/model"
	"github.com/ppratick/studySyncAI/internal/reminders"
	"github.com/ppratick/studySyncAI/internal/repository"
)

// ── 服务层哨兵错误 ──

var (
	// ErrInvalidStatus 状态取值非法
	ErrInvalidStatus = errors.New("状态取值非法")
	// ErrInvalidPriority 优先级取值非法
	ErrInvalidPriority = errors.New("优先级取值非法")
	// ErrInvalidDueAt 截止时间格式非法
	ErrInvalidDueAt = errors.New("截止时间格式非法")
	// ErrAIUnavailable AI 后端当前不可用
	ErrAIUnavailable = errors.New("AI 后端当前不可用")
	// ErrAINotesExist 作业已有 AI 笔记，不允许重复生成
	ErrAINotesExist = errors.New("AI 笔记已存在")
)

// AssignmentService 作业管理服务接口
type AssignmentService interface {
	List(ctx context.Context) ([]dto.AssignmentResponse, error)
	ListDeleted(ctx context.Context) ([]dto.AssignmentResponse, error)
	Create(ctx context.Context, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error)
	Update(ctx context.Context, assignmentID string, req *dto.UpdateAssignmentRequest) error
	BulkUpdate(ctx context.Context, req *dto.BulkUpdateAssignmentsRequest) (int64, error)
	Delete(ctx context.Context, assignmentID string) error
	Restore(ctx context.Context, assignmentID string) error
	PermanentDelete(ctx context.Context, assignmentID string) error
	AddReminder(ctx context.Context, assignmentID string) error
	RemoveReminder(ctx context.Context, assignmentID string) error
	GenerateAINotes(ctx context.Context, assignmentID string) (*dto.AssignmentResponse, error)
}

type assignmentService struct {
	cfg      *config.Config
	repo     *repository.Repository
	enhancer Enhancer
	sink     reminders.Sink
	logger   *zap.Logger
}

// NewAssignmentService 创建作业管理服务
func NewAssignmentService(
	cfg *config.Config,
	repo *repository.Repository,
	enhancer Enhancer,
	sink reminders.Sink,
	logger *zap.Logger,
) AssignmentService {
	return &assignmentService{cfg: cfg, repo: repo, enhancer: enhancer, sink: sink, logger: logger}
}

func (s *assignmentService) List(ctx context.Context) ([]dto.AssignmentResponse, error) {
	list, err := s.repo.Assignment.List(ctx, false)
	if err != nil {
		return nil, err
	}
	return toResponses(list), nil
}

func (s *assignmentService) ListDeleted(ctx context.Context) ([]dto.AssignmentResponse, error) {
	list, err := s.repo.Assignment.ListDeleted(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(list), nil
}

func toResponses(list []model.Assignment) []dto.AssignmentResponse {
	out := make([]dto.AssignmentResponse, 0, len(list))
	for i := range list {
		out = append(out, *dto.NewAssignmentResponse(&list[i]))
	}
	return out
}

func (s *assignmentService) Create(ctx context.Context, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error) {
	if _, err := parseDueAt(req.DueAt); err != nil {
		return nil, ErrInvalidDueAt
	}

	incoming := &model.Assignment{
		AssignmentID: req.AssignmentID,
		Title:        req.Title,
		Description:  req.Description,
		DueAt:        req.DueAt,
		CourseName:   req.CourseName,
		ReminderList: req.ReminderList,
		UserNotes:    req.UserNotes,
	}
	if _, err := s.repo.Assignment.Upsert(ctx, incoming); err != nil {
		return nil, err
	}

	if req.UseAI {
		if _, err := s.GenerateAINotes(ctx, req.AssignmentID); err != nil {
			// 手动创建不因 AI 失败而失败
			s.logger.Warn("创建时 AI 生成失败",
				zap.String("assignment_id", req.AssignmentID), zap.Error(err))
		}
	}

	got, err := s.repo.Assignment.GetByID(ctx, req.AssignmentID)
	if err != nil {
		return nil, err
	}
	return dto.NewAssignmentResponse(got), nil
}

func (s *assignmentService) Update(ctx context.Context, assignmentID string, req *dto.UpdateAssignmentRequest) error {
	if req.Status != nil {
		switch *req.Status {
		case model.StatusNotStarted, model.StatusInProgress, model.StatusCompleted:
		default:
			return ErrInvalidStatus
		}
	}
	if req.Priority != nil {
		switch *req.Priority {
		case model.PriorityHigh, model.PriorityMedium, model.PriorityLow:
		default:
			return ErrInvalidPriority
		}
	}
	return s.repo.Assignment.UpdateFields(ctx, assignmentID, req.Patch())
}

func (s *assignmentService) BulkUpdate(ctx context.Context, req *dto.BulkUpdateAssignmentsRequest) (int64, error) {
	if req.Fields.Status != nil {
		switch *req.Fields.Status {
		case model.StatusNotStarted, model.StatusInProgress, model.StatusCompleted:
		default:
			return 0, ErrInvalidStatus
		}
	}
	if req.Fields.Priority != nil {
		switch *req.Fields.Priority {
		case model.PriorityHigh, model.PriorityMedium, model.PriorityLow:
		default:
			return 0, ErrInvalidPriority
		}
	}
	patch := &model.AssignmentPatch{
		Status:          req.Fields.Status,
		Priority:        req.Fields.Priority,
		ReminderCreated: req.Fields.ReminderCreated,
		ReminderList:    req.Fields.ReminderList,
	}
	return s.repo.Assignment.BulkUpdateFields(ctx, req.AssignmentIDs, patch)
}

func (s *assignmentService) Delete(ctx context.Context, assignmentID string) error {
	return s.repo.Assignment.SoftDelete(ctx, assignmentID)
}

func (s *assignmentService) Restore(ctx context.Context, assignmentID string) error {
	return s.repo.Assignment.Restore(ctx, assignmentID)
}

func (s *assignmentService) PermanentDelete(ctx context.Context, assignmentID string) error {
	return s.repo.Assignment.PermanentDelete(ctx, assignmentID)
}

func (s *assignmentService) AddReminder(ctx context.Context, assignmentID string) error {
	a, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(s.cfg.Sync.Timezone)
	if err != nil {
		return err
	}
	appleDue, err := appleDueString(a.DueAt, loc)
	if err != nil {
		return ErrInvalidDueAt
	}

	if err := s.sink.Upsert(ctx, a.Title, appleDue, a.ReminderList, a.AINotes); err != nil {
		return err
	}
	return s.repo.Assignment.MarkReminderCreated(ctx, assignmentID)
}

func (s *assignmentService) RemoveReminder(ctx context.Context, assignmentID string) error {
	a, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		return err
	}

	if err := s.sink.Remove(ctx, a.Title, a.ReminderList); err != nil {
		return err
	}
	cleared := false
	return s.repo.Assignment.UpdateFields(ctx, assignmentID,
		&model.AssignmentPatch{ReminderCreated: &cleared})
}

// GenerateAINotes 为单条作业按需生成 AI 字段并落库。
// 已有笔记的作业直接拒绝，避免覆盖既有产出。
func (s *assignmentService) GenerateAINotes(ctx context.Context, assignmentID string) (*dto.AssignmentResponse, error) {
	a, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.AINotes) != "" {
		return nil, ErrAINotesExist
	}

	if !s.enhancer.Available(ctx) {
		return nil, ErrAIUnavailable
	}

	college, err := s.repo.Setting.Get(ctx, model.SettingCollegeName)
	if err != nil {
		return nil, err
	}

	result, err := s.enhancer.EnhanceAssignment(ctx, a.Title, a.CourseName, a.Description, a.DueAt, college)
	if err != nil {
		return nil, err
	}

	patch := &model.AssignmentPatch{
		AINotes:                 &result.Notes,
		TimeEstimate:            result.TimeEstimate,
		SuggestedPriority:       result.SuggestedPriority,
		AIConfidence:            result.Confidence,
		AIConfidenceExplanation: result.ConfidenceExplanation,
	}
	if err := s.repo.Assignment.UpdateFields(ctx, assignmentID, patch); err != nil {
		return nil, err
	}

	got, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return dto.NewAssignmentResponse(got), nil
}
