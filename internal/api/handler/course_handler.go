package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ppratick/studySyncAI/internal/dto"
	"github.com/ppratick/studySyncAI/internal/repository"
	"github.com/ppratick/studySyncAI/internal/service"
	"github.com/ppratick/studySyncAI/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// List 远端收藏课程与本地映射的合并视图
// GET /api/courses
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courseSvc.ListCourses(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, courses)
}

// ListMappings 本地映射列表
// GET /api/course-mapping
func (h *CourseHandler) ListMappings(c *gin.Context) {
	mappings, err := h.courseSvc.ListMappings(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, mappings)
}

// SaveMapping 保存课程到提醒列表的映射
// POST /api/course-mapping
func (h *CourseHandler) SaveMapping(c *gin.Context) {
	var req dto.SaveCourseMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.courseSvc.SaveMapping(c.Request.Context(), req.CourseName, req.ReminderList); err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// Disable 停用课程参与同步
// POST /api/course-mapping/disable
func (h *CourseHandler) Disable(c *gin.Context) {
	var req dto.CourseNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.courseSvc.Disable(c.Request.Context(), req.CourseName); err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// Enable 恢复课程参与同步
// POST /api/course-mapping/enable
func (h *CourseHandler) Enable(c *gin.Context) {
	var req dto.CourseNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.courseSvc.Enable(c.Request.Context(), req.CourseName); err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// DeleteMapping 删除课程映射
// DELETE /api/course-mapping
func (h *CourseHandler) DeleteMapping(c *gin.Context) {
	var req dto.CourseNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.courseSvc.DeleteMapping(c.Request.Context(), req.CourseName); err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// handleError 统一处理课程模块业务错误
func (h *CourseHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrCourseMappingNotFound):
		response.NotFound(c, 21001, "课程映射不存在")
	default:
		response.InternalError(c)
	}
}
