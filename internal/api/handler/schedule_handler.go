package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kojitaniguchi/schedule-arranger/config"
	"github.com/kojitaniguchi/schedule-arranger/internal/dto"
	"github.com/kojitaniguchi/schedule-arranger/internal/service"
	"github.com/kojitaniguchi/schedule-arranger/pkg/redis"
	"github.com/kojitaniguchi/schedule-arranger/pkg/response"
)

// ScheduleHandler 预定模块 HTTP 处理器
type ScheduleHandler struct {
	cfg         *config.Config
	scheduleSvc service.ScheduleService
	rdb         *redis.Client
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(cfg *config.Config, scheduleSvc service.ScheduleService, rdb *redis.Client) *ScheduleHandler {
	return &ScheduleHandler{cfg: cfg, scheduleSvc: scheduleSvc, rdb: rdb}
}

// Index 列出当前用户创建的预定
// GET /
func (h *ScheduleHandler) Index(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	schedules, err := h.scheduleSvc.ListMySchedules(c.Request.Context(), viewer.UserID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": schedules})
}

// New 创建表单渲染数据（签发 CSRF 令牌）
// GET /schedules/new
func (h *ScheduleHandler) New(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	response.OK(c, dto.NewScheduleFormResponse{CSRFToken: h.issueCSRFToken(c, viewer.UserID)})
}

// Create 创建预定 + 候补日程
// POST /schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	var req dto.CreateScheduleRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}

	scheduleID, err := h.scheduleSvc.Create(c.Request.Context(), viewer.UserID, &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/schedules/"+scheduleID)
}

// Show 预定聚合视图
// GET /schedules/:scheduleId
func (h *ScheduleHandler) Show(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	view, err := h.scheduleSvc.GetScheduleView(c.Request.Context(), c.Param("scheduleId"), viewer)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, view)
}

// EditForm 编辑表单渲染数据（仅创建者，签发 CSRF 令牌）
// GET /schedules/:scheduleId/edit
func (h *ScheduleHandler) EditForm(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	schedule, candidates, err := h.scheduleSvc.IsOwner(c.Request.Context(), c.Param("scheduleId"), viewer.UserID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, dto.EditScheduleFormResponse{
		Schedule:   schedule,
		Candidates: candidates,
		CSRFToken:  h.issueCSRFToken(c, viewer.UserID),
	})
}

// UpdateOrDelete 编辑或删除预定（按查询参数分派）
// POST /schedules/:scheduleId?edit=1   → 更新
// POST /schedules/:scheduleId?delete=1 → 级联删除
// 其他查询参数组合 → 400
func (h *ScheduleHandler) UpdateOrDelete(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}
	scheduleID := c.Param("scheduleId")

	switch {
	case c.Query("edit") == "1":
		var req dto.EditScheduleRequest
		if err := c.ShouldBind(&req); err != nil {
			response.BadRequest(c, 20001, "参数校验失败")
			return
		}
		if _, err := h.scheduleSvc.Edit(c.Request.Context(), scheduleID, viewer.UserID, &req); err != nil {
			h.handleScheduleError(c, err)
			return
		}
		c.Redirect(http.StatusFound, "/schedules/"+scheduleID)

	case c.Query("delete") == "1":
		if err := h.scheduleSvc.Delete(c.Request.Context(), scheduleID, viewer.UserID); err != nil {
			h.handleScheduleError(c, err)
			return
		}
		c.Redirect(http.StatusFound, "/")

	default:
		response.BadRequest(c, 20002, "无效的查询参数组合")
	}
}

// issueCSRFToken 签发一次性 CSRF 令牌；Redis 不可用时返回空串（降级模式）
func (h *ScheduleHandler) issueCSRFToken(c *gin.Context, userID int64) string {
	if h.rdb == nil {
		return ""
	}
	token, err := h.rdb.IssueCSRFToken(c.Request.Context(), userID, h.cfg.Auth.CSRFTokenTTL)
	if err != nil {
		return ""
	}
	return token
}

// handleScheduleError 预定模块错误 → HTTP 状态映射
// 所有权不足与不存在统一返回 404，避免向非创建者泄露预定是否存在
func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound), errors.Is(err, service.ErrNotOwner):
		response.NotFound(c, 20004, "预定不存在")
	case errors.Is(err, service.ErrEmptyScheduleName), errors.Is(err, service.ErrNoCandidates):
		response.BadRequest(c, 20001, err.Error())
	default:
		response.InternalError(c)
	}
}
