package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ppratick/studySyncAI/config"
	"github.com/ppratick/studySyncAI/internal/ai"
	"github.com/ppratick/studySyncAI/internal/api/handler"
	"github.com/ppratick/studySyncAI/internal/api/router"
	"github.com/ppratick/studySyncAI/internal/canvas"
	"github.com/ppratick/studySyncAI/internal/reminders"
	"github.com/ppratick/studySyncAI/internal/repository"
	"github.com/ppratick/studySyncAI/internal/service"
	"github.com/ppratick/studySyncAI/pkg/database"
	applogger "github.com/ppratick/studySyncAI/pkg/logger"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	// 3. 打开数据库（含自动迁移与损坏重建）
	db, err := database.NewDB(&cfg.DB, logger)
	if err != nil {
		logger.Fatal("数据库初始化失败", zap.Error(err))
	}

	// 4. 外部依赖: 课程平台 / AI 后端 / 提醒出口
	source := canvas.NewClient(cfg.Canvas, logger)
	if !source.Configured() {
		logger.Warn("Canvas 凭证未配置，同步入口将返回配置错误")
	}

	var backend ai.Backend
	switch cfg.AI.Provider {
	case "anthropic":
		backend = ai.NewAnthropicBackend(cfg.AI.AnthropicAPIKey, cfg.AI.Model)
	default:
		backend = ai.NewOllamaBackend(cfg.AI.OllamaURL, cfg.AI.Model)
	}
	enhancer := ai.NewEnhancer(backend, cfg.AI.Timeout, logger)

	sink := reminders.NewAppleScriptSink(logger)

	// 5. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, source, enhancer, sink, logger)
	h := handler.NewHandler(svc)

	// 6. 后台自动同步（可选）
	var scheduler *service.Scheduler
	if cfg.Sync.AutoSyncInterval > 0 {
		scheduler = service.NewScheduler(svc.Sync, logger)
		if err := scheduler.ScheduleInterval(cfg.Sync.AutoSyncInterval); err != nil {
			logger.Fatal("注册自动同步失败", zap.Error(err))
		}
		scheduler.Start()
		logger.Info("后台自动同步已启用",
			zap.Duration("interval", cfg.Sync.AutoSyncInterval))
	}

	// 7. 启动 HTTP 服务器（优雅关闭）
	engine := router.New(cfg, h, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
		// 同步 SSE 是长连接，WriteTimeout 必须放宽
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 8. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info("服务器已关闭")
}
