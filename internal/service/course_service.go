package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ppratick/studySyncAI/internal/dto"
	"github.com/ppratick/studySyncAI/internal/repository"
)

// CourseService 课程与映射管理服务接口
type CourseService interface {
	// ListCourses 远端收藏课程与本地映射的合并视图
	ListCourses(ctx context.Context) ([]dto.CourseResponse, error)
	ListMappings(ctx context.Context) ([]dto.CourseResponse, error)
	SaveMapping(ctx context.Context, courseName, reminderList string) error
	Disable(ctx context.Context, courseName string) error
	Enable(ctx context.Context, courseName string) error
	DeleteMapping(ctx context.Context, courseName string) error
}

type courseService struct {
	repo   *repository.Repository
	source CourseSource
	logger *zap.Logger
}

// NewCourseService 创建课程管理服务
func NewCourseService(repo *repository.Repository, source CourseSource, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, source: source, logger: logger}
}

func (s *courseService) ListCourses(ctx context.Context) ([]dto.CourseResponse, error) {
	mappings, err := s.repo.Course.List(ctx)
	if err != nil {
		return nil, err
	}

	type mapping struct {
		reminderList string
		enabled      bool
	}
	local := make(map[string]mapping, len(mappings))
	for _, m := range mappings {
		local[m.CourseName] = mapping{reminderList: m.ReminderList, enabled: m.Enabled}
	}

	var out []dto.CourseResponse
	seen := make(map[string]bool)

	if s.source.Configured() {
		courses, err := s.source.ListFavoriteCourses(ctx)
		if err != nil {
			// 远端不可达时退化为只展示本地映射
			s.logger.Warn("收藏课程拉取失败，仅返回本地映射", zap.Error(err))
		} else {
			for _, c := range courses {
				resp := dto.CourseResponse{ID: c.ID, Name: c.Name, Enabled: true}
				if m, ok := local[c.Name]; ok {
					resp.ReminderList = m.reminderList
					resp.Enabled = m.enabled
				}
				out = append(out, resp)
				seen[c.Name] = true
			}
		}
	}

	// 远端已不可见但本地仍有映射的课程
	for _, m := range mappings {
		if !seen[m.CourseName] {
			out = append(out, dto.CourseResponse{
				Name:         m.CourseName,
				ReminderList: m.ReminderList,
				Enabled:      m.Enabled,
			})
		}
	}
	return out, nil
}

func (s *courseService) ListMappings(ctx context.Context) ([]dto.CourseResponse, error) {
	mappings, err := s.repo.Course.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CourseResponse, 0, len(mappings))
	for _, m := range mappings {
		out = append(out, dto.CourseResponse{
			Name:         m.CourseName,
			ReminderList: m.ReminderList,
			Enabled:      m.Enabled,
		})
	}
	return out, nil
}

func (s *courseService) SaveMapping(ctx context.Context, courseName, reminderList string) error {
	return s.repo.Course.SaveMapping(ctx, courseName, reminderList)
}

func (s *courseService) Disable(ctx context.Context, courseName string) error {
	return s.repo.Course.SetEnabled(ctx, courseName, false)
}

func (s *courseService) Enable(ctx context.Context, courseName string) error {
	return s.repo.Course.SetEnabled(ctx, courseName, true)
}

func (s *courseService) DeleteMapping(ctx context.Context, courseName string) error {
	return s.repo.Course.Delete(ctx, courseName)
}
