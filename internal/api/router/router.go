package router

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kojitaniguchi/schedule-arranger/config"
	"github.com/kojitaniguchi/schedule-arranger/internal/api/handler"
	"github.com/kojitaniguchi/schedule-arranger/internal/api/middleware"
	"github.com/kojitaniguchi/schedule-arranger/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// Cookie 会话（OAuth 登录身份）
	store := cookie.NewStore([]byte(cfg.Auth.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Auth.Cookie.MaxAge,
		Secure:   cfg.Auth.Cookie.Secure,
		HttpOnly: true,
	})
	r.Use(sessions.Sessions("schedule_arranger_session", store))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── 认证（无需登录）──
	r.GET("/login", h.Auth.Login)
	r.GET("/logout", h.Auth.Logout)
	r.GET("/auth/github", h.Auth.GitHubLogin)
	r.GET("/auth/github/callback", h.Auth.GitHubCallback)

	// ── 需要登录的路由 ──
	authorized := r.Group("")
	authorized.Use(middleware.RequireAuth())
	{
		authorized.GET("/", h.Schedule.Index)
		authorized.GET("/me", h.Auth.Me)

		schedules := authorized.Group("/schedules")
		{
			schedules.GET("/new", h.Schedule.New)
			schedules.POST("", middleware.CSRF(rdb), h.Schedule.Create)
			schedules.GET("/:scheduleId", h.Schedule.Show)
			schedules.GET("/:scheduleId/edit", h.Schedule.EditForm)
			schedules.POST("/:scheduleId", middleware.CSRF(rdb), h.Schedule.UpdateOrDelete)

			// 出欠/留言为高频写入端点，加速率限制
			schedules.POST("/:scheduleId/users/:userId/candidates/:candidateId",
				middleware.RateLimit(rdb, 60, time.Minute), h.Availability.Update)
			schedules.POST("/:scheduleId/users/:userId/comments",
				middleware.RateLimit(rdb, 30, time.Minute), h.Comment.Update)

			schedules.GET("/:scheduleId/export", h.Export.ExportGrid)
			schedules.GET("/:scheduleId/ical", h.Export.ExportICal)
		}
	}

	return r
}
