package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kojitaniguchi/schedule-arranger/pkg/redis"
	"github.com/kojitaniguchi/schedule-arranger/pkg/response"
)

// CSRF 一次性令牌校验中间件（仅作用于状态变更请求）
// 令牌由表单渲染接口签发、Redis 保存，校验成功即消费不可复用。
// rdb 为 nil 时降级放行（启动时已告警），与其他 Redis 依赖的降级策略一致。
func CSRF(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		if rdb == nil {
			c.Next()
			return
		}

		userID := c.GetInt64("user_id")

		token := c.GetHeader("X-CSRF-Token")
		if token == "" {
			token = c.PostForm("_csrf")
		}

		ok, err := rdb.ConsumeCSRFToken(c.Request.Context(), token, userID)
		if err != nil {
			// Redis 出错时降级放行
			c.Next()
			return
		}
		if !ok {
			response.BadRequest(c, 10003, "CSRF 令牌无效或已过期")
			c.Abort()
			return
		}

		c.Next()
	}
}
