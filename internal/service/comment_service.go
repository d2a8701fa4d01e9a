package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kojitaniguchi/schedule-arranger/internal/model"
	"github.com/kojitaniguchi/schedule-arranger/internal/repository"
)

// CommentService 留言更新业务接口
type CommentService interface {
	// Upsert 更新一个 (预定, 用户) 的留言，后写覆盖，返回写入后的文本
	Upsert(ctx context.Context, scheduleID string, userID int64, text string) (string, error)
}

type commentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCommentService 创建 CommentService 实例
func NewCommentService(repo *repository.Repository, logger *zap.Logger) CommentService {
	return &commentService{repo: repo, logger: logger}
}

func (s *commentService) Upsert(ctx context.Context, scheduleID string, userID int64, text string) (string, error) {
	row := &model.Comment{
		ScheduleID: scheduleID,
		UserID:     userID,
		Comment:    text,
	}
	if err := s.repo.Comment.Upsert(ctx, row); err != nil {
		s.logger.Error("更新留言失败",
			zap.String("schedule_id", scheduleID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return "", err
	}
	return text, nil
}
