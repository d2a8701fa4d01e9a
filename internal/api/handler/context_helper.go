package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kojitaniguchi/schedule-arranger/internal/dto"
	"github.com/kojitaniguchi/schedule-arranger/pkg/response"
)

// MustGetViewer 从 Gin 上下文中安全提取已认证身份。
// 如果会话中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetViewer(c *gin.Context) (dto.Viewer, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return dto.Viewer{}, false
	}
	userID, ok := v.(int64)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return dto.Viewer{}, false
	}
	username := c.GetString("username")
	return dto.Viewer{UserID: userID, Username: username}, true
}
