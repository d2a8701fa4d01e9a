package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kojitaniguchi/schedule-arranger/internal/dto"
	"github.com/kojitaniguchi/schedule-arranger/internal/service"
	"github.com/kojitaniguchi/schedule-arranger/pkg/response"
)

// CommentHandler 留言模块 HTTP 处理器
type CommentHandler struct {
	commentSvc service.CommentService
}

// NewCommentHandler 创建 CommentHandler
func NewCommentHandler(commentSvc service.CommentService) *CommentHandler {
	return &CommentHandler{commentSvc: commentSvc}
}

// Update 更新留言（后写覆盖）
// POST /schedules/:scheduleId/users/:userId/comments
// 响应体与历史客户端约定保持一致：{"status":"OK","comment":"<text>"}
func (h *CommentHandler) Update(c *gin.Context) {
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

	var req dto.UpdateCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}

	text, err := h.commentSvc.Upsert(c.Request.Context(), c.Param("scheduleId"), viewer.UserID, req.Comment)
	if err != nil {
		response.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "OK", "comment": text})
}
