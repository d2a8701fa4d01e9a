package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/kojitaniguchi/schedule-arranger/pkg/response"
)

// 会话键名（auth_handler 写入，这里读取）
const (
	SessionUserIDKey   = "user_id"
	SessionUsernameKey = "username"
)

// RequireAuth 会话认证中间件
// 从 Cookie 会话中恢复 OAuth 登录身份，注入 gin.Context 供下游显式读取
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		userID, ok := session.Get(SessionUserIDKey).(int64)
		if !ok {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}
		username, _ := session.Get(SessionUsernameKey).(string)

		c.Set("user_id", userID)
		c.Set("username", username)

		c.Next()
	}
}
