package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppratick/studySyncAI/internal/dto"
	"github.com/ppratick/studySyncAI/internal/model"
	"github.com/ppratick/studySyncAI/internal/repository"
)

// ErrNoAssignments 没有可供分析的作业
var ErrNoAssignments = errors.New("没有可供分析的作业")

// 缓存有效期
const insightsCacheTTL = 24 * time.Hour

// InsightsService 学期洞察服务接口
type InsightsService interface {
	// Get 返回洞察；命中有效缓存时直接返回，force 强制重新生成
	Get(ctx context.Context, force bool) (*dto.InsightsResponse, error)
	// Check 洞察当前是否可生成
	Check(ctx context.Context) *dto.InsightsAvailabilityResponse
}

type insightsService struct {
	repo     *repository.Repository
	enhancer Enhancer
	logger   *zap.Logger
}

// NewInsightsService 创建洞察服务
func NewInsightsService(repo *repository.Repository, enhancer Enhancer, logger *zap.Logger) InsightsService {
	return &insightsService{repo: repo, enhancer: enhancer, logger: logger}
}

func (s *insightsService) Get(ctx context.Context, force bool) (*dto.InsightsResponse, error) {
	if !force {
		if cached := s.validCache(ctx); cached != nil {
			return cached, nil
		}
	}

	if !s.enhancer.Available(ctx) {
		return nil, ErrAIUnavailable
	}

	assignments, err := s.repo.Assignment.List(ctx, false)
	if err != nil {
		return nil, err
	}
	summary, endDate := buildAssignmentsSummary(assignments)
	if summary == "" {
		return nil, ErrNoAssignments
	}

	jsonStr, err := s.enhancer.GenerateInsights(ctx, summary)
	if err != nil {
		return nil, err
	}

	var insights map[string]interface{}
	if err := json.Unmarshal([]byte(jsonStr), &insights); err != nil {
		return nil, fmt.Errorf("洞察 JSON 无法解析: %w", err)
	}

	lastSync, _ := s.repo.Setting.Get(ctx, model.SettingLastSyncAt)
	now := time.Now().UTC()
	record := &model.AIInsight{
		InsightsJSON: jsonStr,
		GeneratedAt:  now,
		LastSyncAt:   lastSync,
		EndDate:      endDate,
	}
	if err := s.repo.Insight.Save(ctx, record); err != nil {
		s.logger.Error("洞察缓存写入失败", zap.Error(err))
	}

	return &dto.InsightsResponse{
		Insights:    insights,
		GeneratedAt: now,
		EndDate:     endDate,
		Cached:      false,
	}, nil
}

// validCache 返回仍然有效的缓存；过期或生成后又同步过则判失效
func (s *insightsService) validCache(ctx context.Context) *dto.InsightsResponse {
	cached, err := s.repo.Insight.GetLatest(ctx)
	if err != nil {
		return nil
	}
	if time.Since(cached.GeneratedAt) >= insightsCacheTTL {
		return nil
	}

	lastSync, err := s.repo.Setting.Get(ctx, model.SettingLastSyncAt)
	if err != nil {
		return nil
	}
	if lastSync != "" {
		syncTime, err := time.Parse(time.RFC3339, lastSync)
		if err == nil && syncTime.After(cached.GeneratedAt) {
			return nil
		}
	}

	var insights map[string]interface{}
	if err := json.Unmarshal([]byte(cached.InsightsJSON), &insights); err != nil {
		return nil
	}
	return &dto.InsightsResponse{
		Insights:    insights,
		GeneratedAt: cached.GeneratedAt,
		EndDate:     cached.EndDate,
		Cached:      true,
	}
}

func (s *insightsService) Check(ctx context.Context) *dto.InsightsAvailabilityResponse {
	assignments, err := s.repo.Assignment.List(ctx, false)
	if err != nil || len(assignments) == 0 {
		return &dto.InsightsAvailabilityResponse{
			Available: false, Reason: "no assignments to analyze",
		}
	}
	if !s.enhancer.Available(ctx) {
		return &dto.InsightsAvailabilityResponse{
			Available: false, Reason: "AI backend unavailable",
		}
	}
	return &dto.InsightsAvailabilityResponse{Available: true}
}

// buildAssignmentsSummary 把未完成作业压成提示词清单，
// 同时返回最晚截止日期（作为学期尾声的参考）。
func buildAssignmentsSummary(assignments []model.Assignment) (string, string) {
	var lines []string
	var latest time.Time

	for i := range assignments {
		a := &assignments[i]
		if a.Status == model.StatusCompleted {
			continue
		}
		due, err := parseDueAt(a.DueAt)
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s (%s), due %s, status %s",
			a.Title, a.CourseName, due.Format("2006-01-02"), a.Status))
		if due.After(latest) {
			latest = due
		}
	}
	if len(lines) == 0 {
		return "", ""
	}
	return strings.Join(lines, "\n"), latest.Format(displayDueLayout)
}
