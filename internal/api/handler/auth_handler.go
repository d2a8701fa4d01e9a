package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	gorillasessions "github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/kojitaniguchi/schedule-arranger/config"
	"github.com/kojitaniguchi/schedule-arranger/internal/api/middleware"
	"github.com/kojitaniguchi/schedule-arranger/internal/dto"
	"github.com/kojitaniguchi/schedule-arranger/internal/service"
	"github.com/kojitaniguchi/schedule-arranger/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
// OAuth 握手由 goth/gothic 代理，回调成功后将身份写入 Cookie 会话
type AuthHandler struct {
	authSvc service.AuthService
	logger  *zap.Logger
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(cfg *config.Config, authSvc service.AuthService, logger *zap.Logger) *AuthHandler {
	setupOAuth(cfg, logger)
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

// setupOAuth 注册 GitHub OAuth Provider 并配置 gothic 的会话存储
// gothic 使用独立于 gin-contrib/sessions 的 gorilla 存储，需单独设置
func setupOAuth(cfg *config.Config, logger *zap.Logger) {
	store := gorillasessions.NewCookieStore([]byte(cfg.Auth.SessionSecret))
	store.Options = &gorillasessions.Options{
		Path:     "/",
		MaxAge:   cfg.Auth.Cookie.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Auth.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = store

	if cfg.Auth.GitHubClientID == "" {
		logger.Warn("未配置 GitHub OAuth 凭据，登录功能不可用")
		return
	}

	goth.UseProviders(
		github.New(
			cfg.Auth.GitHubClientID,
			cfg.Auth.GitHubClientSecret,
			cfg.Auth.CallbackURL,
			"user:email",
		),
	)
	logger.Info("OAuth Provider 已注册", zap.String("provider", "github"))
}

// Login 登录入口信息
// GET /login
func (h *AuthHandler) Login(c *gin.Context) {
	response.OK(c, gin.H{"login_url": "/auth/github"})
}

// GitHubLogin 发起 GitHub OAuth 跳转
// GET /auth/github
func (h *AuthHandler) GitHubLogin(c *gin.Context) {
	// gothic 依赖 provider 查询参数
	q := c.Request.URL.Query()
	q.Add("provider", "github")
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// GitHubCallback 完成 OAuth 回调：身份落库 + 写入会话
// GET /auth/github/callback
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Add("provider", "github")
	c.Request.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		h.logger.Warn("OAuth 回调失败", zap.Error(err))
		c.Redirect(http.StatusFound, "/login")
		return
	}

	userID, err := strconv.ParseInt(gothUser.UserID, 10, 64)
	if err != nil {
		h.logger.Error("GitHub 用户 ID 非数字", zap.String("user_id", gothUser.UserID))
		c.Redirect(http.StatusFound, "/login")
		return
	}
	username := gothUser.NickName
	if username == "" {
		username = gothUser.Name
	}

	viewer, err := h.authSvc.UpsertOAuthUser(c.Request.Context(), userID, username)
	if err != nil {
		response.InternalError(c)
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserIDKey, viewer.UserID)
	session.Set(middleware.SessionUsernameKey, viewer.Username)
	if err := session.Save(); err != nil {
		h.logger.Error("保存会话失败", zap.Error(err))
		response.InternalError(c)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Me 当前登录用户信息
// GET /me
func (h *AuthHandler) Me(c *gin.Context) {
	viewer, ok := MustGetViewer(c)
	if !ok {
		return
	}
	response.OK(c, dto.CurrentUserResponse{UserID: viewer.UserID, Username: viewer.Username})
}

// Logout 退出登录：清空会话并跳转首页
// GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		h.logger.Error("清空会话失败", zap.Error(err))
	}
	c.Redirect(http.StatusFound, "/")
}
