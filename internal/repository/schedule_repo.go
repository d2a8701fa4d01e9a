package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kojitaniguchi/schedule-arranger/internal/model"
)

// ScheduleRepository 预定数据访问接口
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) error
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	ListByCreator(ctx context.Context, userID int64) ([]model.Schedule, error)
	Update(ctx context.Context, schedule *model.Schedule) error
	Delete(ctx context.Context, id string) error
}

// CandidateRepository 候补日程数据访问接口
type CandidateRepository interface {
	BatchCreate(ctx context.Context, candidates []model.Candidate) error
	GetByID(ctx context.Context, id int64) (*model.Candidate, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]model.Candidate, error)
	DeleteBySchedule(ctx context.Context, scheduleID string) error
}

// AvailabilityRepository 出欠数据访问接口
type AvailabilityRepository interface {
	// Upsert 按 (candidate_id, user_id) 插入或更新出欠编码
	Upsert(ctx context.Context, availability *model.Availability) error
	ListBySchedule(ctx context.Context, scheduleID string) ([]model.Availability, error)
	DeleteBySchedule(ctx context.Context, scheduleID string) error
}

// CommentRepository 留言数据访问接口
type CommentRepository interface {
	// Upsert 按 (schedule_id, user_id) 插入或更新，后写覆盖
	Upsert(ctx context.Context, comment *model.Comment) error
	ListBySchedule(ctx context.Context, scheduleID string) ([]model.Comment, error)
	DeleteBySchedule(ctx context.Context, scheduleID string) error
}

// ── Schedule Repository 实现 ──

type scheduleRepo struct {
	db *gorm.DB
}

func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) ListByCreator(ctx context.Context, userID int64) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Where("created_by = ?", userID).
		Order("updated_at DESC").
		Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepo) Update(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).
		Model(schedule).
		Where("schedule_id = ?", schedule.ScheduleID).
		Updates(map[string]interface{}{
			"schedule_name": schedule.ScheduleName,
			"memo":          schedule.Memo,
			"created_by":    schedule.CreatedBy,
			"updated_at":    schedule.UpdatedAt,
		}).Error
}

func (r *scheduleRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("schedule_id = ?", id).
		Delete(&model.Schedule{}).Error
}

// ── Candidate Repository 实现 ──

type candidateRepo struct {
	db *gorm.DB
}

func NewCandidateRepo(db *gorm.DB) CandidateRepository {
	return &candidateRepo{db: db}
}

func (r *candidateRepo) BatchCreate(ctx context.Context, candidates []model.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&candidates).Error
}

func (r *candidateRepo) GetByID(ctx context.Context, id int64) (*model.Candidate, error) {
	var candidate model.Candidate
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", id).
		First(&candidate).Error
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]model.Candidate, error) {
	var candidates []model.Candidate
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("candidate_id ASC").
		Find(&candidates).Error
	return candidates, err
}

func (r *candidateRepo) DeleteBySchedule(ctx context.Context, scheduleID string) error {
	return r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Delete(&model.Candidate{}).Error
}

// ── Availability Repository 实现 ──

type availabilityRepo struct {
	db *gorm.DB
}

func NewAvailabilityRepo(db *gorm.DB) AvailabilityRepository {
	return &availabilityRepo{db: db}
}

func (r *availabilityRepo) Upsert(ctx context.Context, availability *model.Availability) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "candidate_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"availability"}),
		}).
		Create(availability).Error
}

func (r *availabilityRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]model.Availability, error) {
	var availabilities []model.Availability
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("schedule_id = ?", scheduleID).
		Order("candidate_id ASC").
		Find(&availabilities).Error
	return availabilities, err
}

func (r *availabilityRepo) DeleteBySchedule(ctx context.Context, scheduleID string) error {
	return r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Delete(&model.Availability{}).Error
}

// ── Comment Repository 实现 ──

type commentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) CommentRepository {
	return &commentRepo{db: db}
}

func (r *commentRepo) Upsert(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "schedule_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"comment"}),
		}).
		Create(comment).Error
}

func (r *commentRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepo) DeleteBySchedule(ctx context.Context, scheduleID string) error {
	return r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Delete(&model.Comment{}).Error
}
