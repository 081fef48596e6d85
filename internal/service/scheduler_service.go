package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ppratick/studySyncAI/internal/dto"
)

// Scheduler 后台自动同步调度器
type Scheduler struct {
	cron   *cron.Cron
	sync   SyncService
	logger *zap.Logger
}

// NewScheduler 创建调度器
func NewScheduler(syncSvc SyncService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		sync:   syncSvc,
		logger: logger,
	}
}

// ScheduleInterval 按固定间隔触发后台同步
func (s *Scheduler) ScheduleInterval(interval time.Duration) error {
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	spec := "@every " + time.Duration(seconds*int(time.Second)).String()
	_, err := s.cron.AddFunc(spec, s.runOnce)
	return err
}

// runOnce 后台触发一轮同步，事件只落日志不推流
func (s *Scheduler) runOnce() {
	s.logger.Info("后台自动同步开始")
	s.sync.Run(context.Background(), func(ev dto.SyncEvent) {
		switch ev.Type {
		case dto.SyncEventComplete:
			s.logger.Info("后台自动同步完成",
				zap.String("message", ev.Message),
				zap.Int("total_added", ev.TotalAdded))
		case dto.SyncEventError:
			s.logger.Error("后台自动同步失败", zap.String("error", ev.Error))
		}
	})
}

// Start 启动调度
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待在途任务结束
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
