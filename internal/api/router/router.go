package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppratick/studySyncAI/config"
	"github.com/ppratick/studySyncAI/internal/api/handler"
	"github.com/ppratick/studySyncAI/internal/api/middleware"
	"github.com/ppratick/studySyncAI/pkg/response"
)

// New 组装路由
func New(cfg *config.Config, h *handler.Handler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// ── 作业 ──
		api.GET("/assignments", h.Assignment.List)
		api.POST("/assignments", h.Assignment.Create)
		api.POST("/assignments/bulk-update", h.Assignment.BulkUpdate)
		api.PATCH("/assignments/:id", h.Assignment.Update)
		api.DELETE("/assignments/:id", h.Assignment.Delete)
		api.POST("/assignments/:id/restore", h.Assignment.Restore)
		api.DELETE("/assignments/:id/permanent", h.Assignment.PermanentDelete)
		api.POST("/assignments/:id/reminder", h.Assignment.AddReminder)
		api.DELETE("/assignments/:id/reminder", h.Assignment.RemoveReminder)
		api.POST("/assignments/:id/ai-notes", h.Assignment.GenerateAINotes)
		api.GET("/deleted-assignments", h.Assignment.ListDeleted)

		// ── 课程与映射 ──
		api.GET("/courses", h.Course.List)
		api.GET("/course-mapping", h.Course.ListMappings)
		api.POST("/course-mapping", h.Course.SaveMapping)
		api.POST("/course-mapping/disable", h.Course.Disable)
		api.POST("/course-mapping/enable", h.Course.Enable)
		api.DELETE("/course-mapping", h.Course.DeleteMapping)

		// ── 设置 ──
		api.GET("/settings", h.Settings.Get)
		api.POST("/settings", h.Settings.Update)

		// ── 同步（SSE）──
		api.GET("/sync", h.Sync.Stream)

		// ── 洞察 ──
		api.GET("/ai-insights", h.Insights.Get)
		api.GET("/ai-insights/check", h.Insights.Check)
	}

	return r
}
