package dto

// ── 认证模块 DTO ──

// Viewer 已认证用户身份
// 由会话中间件解析后显式传入 Service 层，业务逻辑不读取任何隐式全局状态
type Viewer struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// CurrentUserResponse 当前登录用户响应
type CurrentUserResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}
