package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ppratick/studySyncAI/internal/service"
	"github.com/ppratick/studySyncAI/pkg/response"
)

// InsightsHandler 学期洞察 HTTP 处理器
type InsightsHandler struct {
	insightsSvc service.InsightsService
}

// NewInsightsHandler 创建 InsightsHandler
func NewInsightsHandler(insightsSvc service.InsightsService) *InsightsHandler {
	return &InsightsHandler{insightsSvc: insightsSvc}
}

// Get 获取洞察，?force=true 强制重新生成
// GET /api/ai-insights
func (h *InsightsHandler) Get(c *gin.Context) {
	force := c.Query("force") == "true"

	insights, err := h.insightsSvc.Get(c.Request.Context(), force)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAIUnavailable):
			response.ServiceUnavailable(c, 24001, "AI 后端当前不可用")
		case errors.Is(err, service.ErrNoAssignments):
			response.NotFound(c, 24002, "没有可供分析的作业")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, insights)
}

// Check 洞察可用性检查
// GET /api/ai-insights/check
func (h *InsightsHandler) Check(c *gin.Context) {
	response.OK(c, h.insightsSvc.Check(c.Request.Context()))
}
