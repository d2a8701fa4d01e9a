package service

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/kojitaniguchi/schedule-arranger/internal/model"
	"github.com/kojitaniguchi/schedule-arranger/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[int64]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User)}
}

func (m *mockUserRepo) Upsert(_ context.Context, user *model.User) error {
	m.users[user.UserID] = &model.User{UserID: user.UserID, Username: user.Username}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	schedules map[string]*model.Schedule
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[string]*model.Schedule)}
}

func (m *mockScheduleRepo) Create(_ context.Context, schedule *model.Schedule) error {
	cp := *schedule
	m.schedules[schedule.ScheduleID] = &cp
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	if s, ok := m.schedules[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) ListByCreator(_ context.Context, userID int64) ([]model.Schedule, error) {
	var result []model.Schedule
	for _, s := range m.schedules {
		if s.CreatedBy == userID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockScheduleRepo) Update(_ context.Context, schedule *model.Schedule) error {
	cp := *schedule
	m.schedules[schedule.ScheduleID] = &cp
	return nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id string) error {
	delete(m.schedules, id)
	return nil
}

// ── Mock CandidateRepository ──

type mockCandidateRepo struct {
	candidates map[int64]*model.Candidate
	nextID     int64
}

func newMockCandidateRepo() *mockCandidateRepo {
	return &mockCandidateRepo{candidates: make(map[int64]*model.Candidate), nextID: 1}
}

func (m *mockCandidateRepo) BatchCreate(_ context.Context, candidates []model.Candidate) error {
	for i := range candidates {
		if candidates[i].CandidateID == 0 {
			candidates[i].CandidateID = m.nextID
			m.nextID++
		}
		cp := candidates[i]
		m.candidates[cp.CandidateID] = &cp
	}
	return nil
}

func (m *mockCandidateRepo) GetByID(_ context.Context, id int64) (*model.Candidate, error) {
	if c, ok := m.candidates[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCandidateRepo) ListBySchedule(_ context.Context, scheduleID string) ([]model.Candidate, error) {
	var result []model.Candidate
	for _, c := range m.candidates {
		if c.ScheduleID == scheduleID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CandidateID < result[j].CandidateID })
	return result, nil
}

func (m *mockCandidateRepo) DeleteBySchedule(_ context.Context, scheduleID string) error {
	for id, c := range m.candidates {
		if c.ScheduleID == scheduleID {
			delete(m.candidates, id)
		}
	}
	return nil
}

// ── Mock AvailabilityRepository ──

type availabilityKey struct {
	candidateID int64
	userID      int64
}

type mockAvailabilityRepo struct {
	rows  map[availabilityKey]*model.Availability
	users *mockUserRepo // ListBySchedule 时模拟 Preload("User")
}

func newMockAvailabilityRepo(users *mockUserRepo) *mockAvailabilityRepo {
	return &mockAvailabilityRepo{rows: make(map[availabilityKey]*model.Availability), users: users}
}

func (m *mockAvailabilityRepo) Upsert(_ context.Context, availability *model.Availability) error {
	key := availabilityKey{candidateID: availability.CandidateID, userID: availability.UserID}
	if existing, ok := m.rows[key]; ok {
		existing.Availability = availability.Availability
		return nil
	}
	cp := *availability
	m.rows[key] = &cp
	return nil
}

func (m *mockAvailabilityRepo) ListBySchedule(_ context.Context, scheduleID string) ([]model.Availability, error) {
	var result []model.Availability
	for _, a := range m.rows {
		if a.ScheduleID != scheduleID {
			continue
		}
		cp := *a
		if u, ok := m.users.users[a.UserID]; ok {
			cp.User = u
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CandidateID < result[j].CandidateID })
	return result, nil
}

func (m *mockAvailabilityRepo) DeleteBySchedule(_ context.Context, scheduleID string) error {
	for key, a := range m.rows {
		if a.ScheduleID == scheduleID {
			delete(m.rows, key)
		}
	}
	return nil
}

// ── Mock CommentRepository ──

type commentKey struct {
	scheduleID string
	userID     int64
}

type mockCommentRepo struct {
	rows map[commentKey]*model.Comment
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{rows: make(map[commentKey]*model.Comment)}
}

func (m *mockCommentRepo) Upsert(_ context.Context, comment *model.Comment) error {
	key := commentKey{scheduleID: comment.ScheduleID, userID: comment.UserID}
	if existing, ok := m.rows[key]; ok {
		existing.Comment = comment.Comment
		return nil
	}
	cp := *comment
	m.rows[key] = &cp
	return nil
}

func (m *mockCommentRepo) ListBySchedule(_ context.Context, scheduleID string) ([]model.Comment, error) {
	var result []model.Comment
	for _, c := range m.rows {
		if c.ScheduleID == scheduleID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCommentRepo) DeleteBySchedule(_ context.Context, scheduleID string) error {
	for key, c := range m.rows {
		if c.ScheduleID == scheduleID {
			delete(m.rows, key)
		}
	}
	return nil
}

// ── 测试用 Repository 聚合 ──

// testRepos 聚合所有 mock repo 便于 seed 数据
type testRepos struct {
	user         *mockUserRepo
	schedule     *mockScheduleRepo
	candidate    *mockCandidateRepo
	availability *mockAvailabilityRepo
	comment      *mockCommentRepo
}

func newTestRepos() *testRepos {
	users := newMockUserRepo()
	return &testRepos{
		user:         users,
		schedule:     newMockScheduleRepo(),
		candidate:    newMockCandidateRepo(),
		availability: newMockAvailabilityRepo(users),
		comment:      newMockCommentRepo(),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		User:         r.user,
		Schedule:     r.schedule,
		Candidate:    r.candidate,
		Availability: r.availability,
		Comment:      r.comment,
	}
}
