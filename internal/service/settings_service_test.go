package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/ppratick/studySyncAI/internal/dto"
	"github.com/ppratick/studySyncAI/internal/model"
)

func TestSettingsGet_Defaults(t *testing.T) {
	repo, _, _, _, _ := newMockRepository()
	svc := NewSettingsService(repo, zap.NewNop())

	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if got.CollegeName != "" {
		t.Errorf("学校名默认应为空，得到 %q", got.CollegeName)
	}
	if got.AutoSyncReminders != "1" || got.AISummaryEnabled != "1" {
		t.Errorf("开关默认应为开启: %+v", got)
	}
}

func TestSettingsUpdate_PartialWrite(t *testing.T) {
	repo, _, _, settings, _ := newMockRepository()
	ctx := context.Background()
	settings.Set(ctx, model.SettingCollegeName, "Pitt")
	svc := NewSettingsService(repo, zap.NewNop())

	// 只更新一个开关，学校名不应被清空
	err := svc.Update(ctx, &dto.UpdateSettingsRequest{AutoSyncReminders: "0"})
	if err != nil {
		t.Fatalf("Update 失败: %v", err)
	}

	got, _ := svc.Get(ctx)
	if got.CollegeName != "Pitt" {
		t.Errorf("学校名应保留，得到 %q", got.CollegeName)
	}
	if got.AutoSyncReminders != "0" {
		t.Errorf("开关应更新为 0，得到 %q", got.AutoSyncReminders)
	}
}

func TestSettingsUpdate_InvalidToggle(t *testing.T) {
	repo, _, _, _, _ := newMockRepository()
	svc := NewSettingsService(repo, zap.NewNop())

	err := svc.Update(context.Background(), &dto.UpdateSettingsRequest{AISummaryEnabled: "yes"})
	if !errors.Is(err, ErrInvalidToggle) {
		t.Fatalf("期望 ErrInvalidToggle，得到: %v", err)
	}
}
