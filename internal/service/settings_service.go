package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ppratick/studySyncAI/internal/dto"
	"github.com/ppratick/studySyncAI/internal/model"
	"github.com/ppratick/studySyncAI/internal/repository"
)

// ErrInvalidToggle 开关设置只接受 "0" 或 "1"
var ErrInvalidToggle = errors.New("开关设置只接受 0 或 1")

// SettingsService 设置管理服务接口
type SettingsService interface {
	Get(ctx context.Context) (*dto.SettingsResponse, error)
	Update(ctx context.Context, req *dto.UpdateSettingsRequest) error
}

type settingsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSettingsService 创建设置管理服务
func NewSettingsService(repo *repository.Repository, logger *zap.Logger) SettingsService {
	return &settingsService{repo: repo, logger: logger}
}

func (s *settingsService) Get(ctx context.Context) (*dto.SettingsResponse, error) {
	college, err := s.repo.Setting.Get(ctx, model.SettingCollegeName)
	if err != nil {
		return nil, err
	}
	autoSync, err := s.repo.Setting.Get(ctx, model.SettingAutoSyncReminder)
	if err != nil {
		return nil, err
	}
	aiEnabled, err := s.repo.Setting.Get(ctx, model.SettingAISummaryEnabled)
	if err != nil {
		return nil, err
	}

	// 开关未设置时默认开启
	if autoSync == "" {
		autoSync = "1"
	}
	if aiEnabled == "" {
		aiEnabled = "1"
	}
	return &dto.SettingsResponse{
		CollegeName:       college,
		AutoSyncReminders: autoSync,
		AISummaryEnabled:  aiEnabled,
	}, nil
}

// Update 只写入请求中非空的键
func (s *settingsService) Update(ctx context.Context, req *dto.UpdateSettingsRequest) error {
	for _, toggle := range []string{req.AutoSyncReminders, req.AISummaryEnabled} {
		if toggle != "" && toggle != "0" && toggle != "1" {
			return ErrInvalidToggle
		}
	}

	if req.CollegeName != "" {
		if err := s.repo.Setting.Set(ctx, model.SettingCollegeName, req.CollegeName); err != nil {
			return err
		}
	}
	if req.AutoSyncReminders != "" {
		if err := s.repo.Setting.Set(ctx, model.SettingAutoSyncReminder, req.AutoSyncReminders); err != nil {
			return err
		}
	}
	if req.AISummaryEnabled != "" {
		if err := s.repo.Setting.Set(ctx, model.SettingAISummaryEnabled, req.AISummaryEnabled); err != nil {
			return err
		}
	}
	return nil
}
