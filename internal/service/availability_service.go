package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kojitaniguchi/schedule-arranger/internal/model"
	"github.com/kojitaniguchi/schedule-arranger/internal/repository"
)

// ── 出欠模块业务错误 ──

var (
	ErrCandidateNotFound   = errors.New("候补日程不存在")
	ErrInvalidAvailability = errors.New("出欠编码必须为 0/1/2")
)

// AvailabilityService 出欠更新业务接口
type AvailabilityService interface {
	// Upsert 更新一个 (用户, 候补) 单元格的出欠编码，返回写入后的编码
	Upsert(ctx context.Context, scheduleID string, userID, candidateID int64, availability int) (int, error)
}

type availabilityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAvailabilityService 创建 AvailabilityService 实例
func NewAvailabilityService(repo *repository.Repository, logger *zap.Logger) AvailabilityService {
	return &availabilityService{repo: repo, logger: logger}
}

func (s *availabilityService) Upsert(ctx context.Context, scheduleID string, userID, candidateID int64, availability int) (int, error) {
	switch availability {
	case model.AvailabilityAbsent, model.AvailabilityUndecided, model.AvailabilityPresent:
	default:
		return 0, ErrInvalidAvailability
	}

	// 候补必须存在且属于该预定，防止跨预定写入
	candidate, err := s.repo.Candidate.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCandidateNotFound
		}
		s.logger.Error("查询候补日程失败", zap.Int64("candidate_id", candidateID), zap.Error(err))
		return 0, err
	}
	if candidate.ScheduleID != scheduleID {
		return 0, ErrCandidateNotFound
	}

	row := &model.Availability{
		CandidateID:  candidateID,
		UserID:       userID,
		ScheduleID:   scheduleID,
		Availability: availability,
	}
	if err := s.repo.Availability.Upsert(ctx, row); err != nil {
		s.logger.Error("更新出欠失败",
			zap.String("schedule_id", scheduleID),
			zap.Int64("user_id", userID),
			zap.Int64("candidate_id", candidateID),
			zap.Error(err),
		)
		return 0, err
	}
	return availability, nil
}
