package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ppratick/studySyncAI/internal/dto"
	"github.com/ppratick/studySyncAI/internal/service"
	"github.com/ppratick/studySyncAI/pkg/response"
)

// SettingsHandler 设置模块 HTTP 处理器
type SettingsHandler struct {
	settingsSvc service.SettingsService
}

// NewSettingsHandler 创建 SettingsHandler
func NewSettingsHandler(settingsSvc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsSvc: settingsSvc}
}

// Get 获取设置
// GET /api/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsSvc.Get(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, settings)
}

// Update 更新设置（只写入非空键）
// POST /api/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.settingsSvc.Update(c.Request.Context(), &req); err != nil {
		if errors.Is(err, service.ErrInvalidToggle) {
			response.BadRequest(c, 22001, "开关设置只接受 0 或 1")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}
