package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Schedule     ScheduleRepository
	Candidate    CandidateRepository
	Availability AvailabilityRepository
	Comment      CommentRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Schedule:     NewScheduleRepo(db),
		Candidate:    NewCandidateRepo(db),
		Availability: NewAvailabilityRepo(db),
		Comment:      NewCommentRepo(db),
	}
}
