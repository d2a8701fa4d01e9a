package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kojitaniguchi/schedule-arranger/internal/dto"
	"github.com/kojitaniguchi/schedule-arranger/internal/model"
	"github.com/kojitaniguchi/schedule-arranger/internal/repository"
)

// AuthService 认证业务接口
// OAuth 握手本身由 goth 处理，这里只负责身份落库
type AuthService interface {
	// UpsertOAuthUser 登录回调时按 GitHub 数字 ID upsert 用户（用户名随登录刷新）
	UpsertOAuthUser(ctx context.Context, userID int64, username string) (*dto.Viewer, error)
}

type authService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(repo *repository.Repository, logger *zap.Logger) AuthService {
	return &authService{repo: repo, logger: logger}
}

func (s *authService) UpsertOAuthUser(ctx context.Context, userID int64, username string) (*dto.Viewer, error) {
	user := &model.User{UserID: userID, Username: username}
	if err := s.repo.User.Upsert(ctx, user); err != nil {
		s.logger.Error("登录用户落库失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("用户已登录", zap.Int64("user_id", userID), zap.String("username", username))
	return &dto.Viewer{UserID: userID, Username: username}, nil
}
