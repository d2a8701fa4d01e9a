package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kojitaniguchi/schedule-arranger/internal/dto"
	"github.com/kojitaniguchi/schedule-arranger/internal/service"
	"github.com/kojitaniguchi/schedule-arranger/pkg/response"
)

// AvailabilityHandler 出欠模块 HTTP 处理器
type AvailabilityHandler struct {
	availabilitySvc service.AvailabilityService
}

// NewAvailabilityHandler 创建 AvailabilityHandler
func NewAvailabilityHandler(availabilitySvc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilitySvc: availabilitySvc}
}

// Update 更新一个出欠单元格
// POST /schedules/:scheduleId/users/:userId/candidates/:candidateId
// 响应体与历史客户端约定保持一致：{"status":"OK","availability":<code>}
func (h *AvailabilityHandler) Update(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}

	pathUserID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.BadRequest(c, 20001, "用户 ID 必须为数字")
		return
	}
	// 身份以会话为准，路径中的 userId 必须与之一致
	if pathUserID != viewer.UserID {
		response.NotFound(c, 20004, "预定不存在")
		return
	}

	candidateID, err := strconv.ParseInt(c.Param("candidateId"), 10, 64)
	if err != nil {
		response.BadRequest(c, 20001, "候补 ID 必须为数字")
		return
	}

	var req dto.UpdateAvailabilityRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}

	result, err := h.availabilitySvc.Upsert(
		c.Request.Context(), c.Param("scheduleId"), viewer.UserID, candidateID, req.Availability)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCandidateNotFound):
			response.NotFound(c, 20004, "候补日程不存在")
		case errors.Is(err, service.ErrInvalidAvailability):
			response.BadRequest(c, 20001, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "OK", "availability": result})
}
