package handler

import (
	"go.uber.org/zap"

	"github.com/kojitaniguchi/schedule-arranger/config"
	"github.com/kojitaniguchi/schedule-arranger/internal/service"
	"github.com/kojitaniguchi/schedule-arranger/pkg/redis"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Schedule     *ScheduleHandler
	Availability *AvailabilityHandler
	Comment      *CommentHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service, rdb *redis.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(cfg, svc.Auth, logger),
		Schedule:     NewScheduleHandler(cfg, svc.Schedule, rdb),
		Availability: NewAvailabilityHandler(svc.Availability),
		Comment:      NewCommentHandler(svc.Comment),
		Export:       NewExportHandler(svc.Export),
	}
}
