package service

import (
	"go.uber.org/zap"

	"github.com/kojitaniguchi/schedule-arranger/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	Schedule     ScheduleService
	Availability AvailabilityService
	Comment      CommentService
	Export       ExportService
}

// NewService 创建 Service 聚合
func NewService(repo *repository.Repository, logger *zap.Logger) *Service {
	scheduleSvc := NewScheduleService(repo, logger)
	return &Service{
		Auth:         NewAuthService(repo, logger),
		Schedule:     scheduleSvc,
		Availability: NewAvailabilityService(repo, logger),
		Comment:      NewCommentService(repo, logger),
		Export:       NewExportService(scheduleSvc, logger),
	}
}
