package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/kojitaniguchi/schedule-arranger/internal/dto"
	"github.com/kojitaniguchi/schedule-arranger/internal/model"
	"github.com/kojitaniguchi/schedule-arranger/internal/repository"
)

// ── 预定模块业务错误 ──

var (
	ErrScheduleNotFound  = errors.New("预定不存在")
	ErrNotOwner          = errors.New("仅创建者可编辑或删除预定")
	ErrEmptyScheduleName = errors.New("预定名不能为空")
	ErrNoCandidates      = errors.New("候补日程不能为空")
)

// scheduleNameMaxLen 预定名最大长度，超出部分写入时截断而非拒绝
const scheduleNameMaxLen = 255

// ScheduleService 预定生命周期 + 出欠聚合视图业务接口
type ScheduleService interface {
	// Create 创建预定及候补日程，返回新预定 ID
	Create(ctx context.Context, ownerID int64, req *dto.CreateScheduleRequest) (string, error)
	// Edit 更新预定基本信息，candidates 非空时追加候补日程（仅创建者）
	Edit(ctx context.Context, scheduleID string, callerID int64, req *dto.EditScheduleRequest) (string, error)
	// Delete 级联删除预定及全部从属记录（仅创建者）
	Delete(ctx context.Context, scheduleID string, callerID int64) error
	// GetScheduleView 构建 预定 × 候补 × 用户 × 出欠 × 留言 的聚合视图
	GetScheduleView(ctx context.Context, scheduleID string, viewer dto.Viewer) (*dto.ScheduleViewResponse, error)
	// ListMySchedules 列出调用者创建的预定
	ListMySchedules(ctx context.Context, userID int64) ([]dto.ScheduleResponse, error)
	// IsOwner 判断调用者是否为预定创建者（编辑表单渲染用）
	IsOwner(ctx context.Context, scheduleID string, callerID int64) (*dto.ScheduleResponse, []dto.CandidateResponse, error)
}

type scheduleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Create — 预定 + 候补日程批量创建
// ════════════════════════════════════════════════════════════

func (s *scheduleService) Create(ctx context.Context, ownerID int64, req *dto.CreateScheduleRequest) (string, error) {
	name := truncateScheduleName(req.ScheduleName)
	if name == "" {
		return "", ErrEmptyScheduleName
	}

	candidateNames := parseCandidateNames(req.Candidates)
	if len(candidateNames) == 0 {
		return "", ErrNoCandidates
	}

	schedule := &model.Schedule{
		ScheduleID:   uuid.New().String(),
		ScheduleName: name,
		Memo:         req.Memo,
		CreatedBy:    ownerID,
		UpdatedAt:    time.Now(),
	}
	if err := s.repo.Schedule.Create(ctx, schedule); err != nil {
		s.logger.Error("创建预定失败", zap.Error(err))
		return "", err
	}

	candidates := make([]model.Candidate, 0, len(candidateNames))
	for _, n := range candidateNames {
		candidates = append(candidates, model.Candidate{
			CandidateName: n,
			ScheduleID:    schedule.ScheduleID,
		})
	}
	if err := s.repo.Candidate.BatchCreate(ctx, candidates); err != nil {
		s.logger.Error("批量创建候补日程失败",
			zap.String("schedule_id", schedule.ScheduleID), zap.Error(err))
		return "", err
	}

	s.logger.Info("预定已创建",
		zap.String("schedule_id", schedule.ScheduleID),
		zap.Int64("created_by", ownerID),
		zap.Int("candidates", len(candidates)),
	)
	return schedule.ScheduleID, nil
}

// ════════════════════════════════════════════════════════════
// Edit — 基本信息更新 + 候补日程追加
// ════════════════════════════════════════════════════════════

func (s *scheduleService) Edit(ctx context.Context, scheduleID string, callerID int64, req *dto.EditScheduleRequest) (string, error) {
	schedule, err := s.getOwnedSchedule(ctx, scheduleID, callerID)
	if err != nil {
		return "", err
	}

	name := truncateScheduleName(req.ScheduleName)
	if name == "" {
		return "", ErrEmptyScheduleName
	}

	schedule.ScheduleName = name
	schedule.Memo = req.Memo
	schedule.UpdatedAt = time.Now()
	// created_by 原样重申，编辑不转移所有权
	if err := s.repo.Schedule.Update(ctx, schedule); err != nil {
		s.logger.Error("更新预定失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return "", err
	}

	// 候补日程只追加，已有候补及其出欠历史永不因编辑而删除或重排
	if names := parseCandidateNames(req.Candidates); len(names) > 0 {
		candidates := make([]model.Candidate, 0, len(names))
		for _, n := range names {
			candidates = append(candidates, model.Candidate{
				CandidateName: n,
				ScheduleID:    scheduleID,
			})
		}
		if err := s.repo.Candidate.BatchCreate(ctx, candidates); err != nil {
			s.logger.Error("追加候补日程失败", zap.String("schedule_id", scheduleID), zap.Error(err))
			return "", err
		}
	}

	return scheduleID, nil
}

// ════════════════════════════════════════════════════════════
// Delete — 级联删除
// ════════════════════════════════════════════════════════════
//
// 阶段划分（从属记录先于父记录）：
//   阶段A: 删除留言            ─┐ 并行
//   阶段B: 删除出欠 → 删除候补  ─┘
//   汇合后最后删除预定本行
//
// 留言与出欠互不依赖可并行；候补被出欠引用，必须等出欠删完；
// 预定行必须在三类从属记录全部删除后再删。
// 中途失败不回滚，可能残留部分删除的聚合，由调用方重试。

func (s *scheduleService) Delete(ctx context.Context, scheduleID string, callerID int64) error {
	if _, err := s.getOwnedSchedule(ctx, scheduleID, callerID); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.repo.Comment.DeleteBySchedule(gctx, scheduleID)
	})
	g.Go(func() error {
		if err := s.repo.Availability.DeleteBySchedule(gctx, scheduleID); err != nil {
			return err
		}
		return s.repo.Candidate.DeleteBySchedule(gctx, scheduleID)
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("删除从属记录失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return err
	}

	if err := s.repo.Schedule.Delete(ctx, scheduleID); err != nil {
		s.logger.Error("删除预定失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return err
	}

	s.logger.Info("预定已删除",
		zap.String("schedule_id", scheduleID),
		zap.Int64("deleted_by", callerID),
	)
	return nil
}

// ════════════════════════════════════════════════════════════
// GetScheduleView — 出欠聚合视图构建
// ════════════════════════════════════════════════════════════

func (s *scheduleService) GetScheduleView(ctx context.Context, scheduleID string, viewer dto.Viewer) (*dto.ScheduleViewResponse, error) {
	// 1. 预定本体
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询预定失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}

	// 2. 候补日程（candidate_id 升序 = 创建顺序，展示顺序稳定）
	candidates, err := s.repo.Candidate.ListBySchedule(ctx, scheduleID)
	if err != nil {
		s.logger.Error("查询候补日程失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}

	// 3. 出欠（连带所属用户）
	availabilities, err := s.repo.Availability.ListBySchedule(ctx, scheduleID)
	if err != nil {
		s.logger.Error("查询出欠失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}

	// 4. 用户集合 = {请求者} ∪ {出欠行中出现的用户}，按 userID 去重
	//    请求者即使尚未投过票也必须出现，且 IsSelf 恰好标记一次
	users := []dto.UserResponse{{ID: viewer.UserID, Username: viewer.Username, IsSelf: true}}
	seen := map[int64]bool{viewer.UserID: true}
	for _, a := range availabilities {
		if seen[a.UserID] {
			continue
		}
		seen[a.UserID] = true
		username := ""
		if a.User != nil {
			username = a.User.Username
		}
		users = append(users, dto.UserResponse{ID: a.UserID, Username: username})
	}

	// 5. 用户 × 候补 全笛卡尔积补全：缺行默认 0（欠席/未回答）
	availabilityMap := make(map[int64]map[int64]int, len(users))
	stored := make(map[int64]map[int64]int, len(users))
	for _, a := range availabilities {
		if stored[a.UserID] == nil {
			stored[a.UserID] = make(map[int64]int)
		}
		stored[a.UserID][a.CandidateID] = a.Availability
	}
	for _, u := range users {
		row := make(map[int64]int, len(candidates))
		for _, c := range candidates {
			code := model.AvailabilityAbsent
			if v, ok := stored[u.ID][c.CandidateID]; ok {
				code = v
			}
			row[c.CandidateID] = code
		}
		availabilityMap[u.ID] = row
	}

	// 6. 留言映射（每用户至多一条，后写覆盖）
	comments, err := s.repo.Comment.ListBySchedule(ctx, scheduleID)
	if err != nil {
		s.logger.Error("查询留言失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}
	commentMap := make(map[int64]string, len(comments))
	for _, c := range comments {
		commentMap[c.UserID] = c.Comment
	}

	// 7. 组装
	candidateList := make([]dto.CandidateResponse, 0, len(candidates))
	for _, c := range candidates {
		candidateList = append(candidateList, dto.CandidateResponse{ID: c.CandidateID, Name: c.CandidateName})
	}

	return &dto.ScheduleViewResponse{
		Schedule:        toScheduleResponse(schedule),
		Candidates:      candidateList,
		Users:           users,
		AvailabilityMap: availabilityMap,
		CommentMap:      commentMap,
	}, nil
}

// ListMySchedules 列出调用者创建的预定（首页用）
func (s *scheduleService) ListMySchedules(ctx context.Context, userID int64) ([]dto.ScheduleResponse, error) {
	schedules, err := s.repo.Schedule.ListByCreator(ctx, userID)
	if err != nil {
		s.logger.Error("查询预定列表失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		result = append(result, *toScheduleResponse(&schedules[i]))
	}
	return result, nil
}

// IsOwner 校验所有权并返回编辑表单所需数据
func (s *scheduleService) IsOwner(ctx context.Context, scheduleID string, callerID int64) (*dto.ScheduleResponse, []dto.CandidateResponse, error) {
	schedule, err := s.getOwnedSchedule(ctx, scheduleID, callerID)
	if err != nil {
		return nil, nil, err
	}
	candidates, err := s.repo.Candidate.ListBySchedule(ctx, scheduleID)
	if err != nil {
		s.logger.Error("查询候补日程失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, nil, err
	}
	candidateList := make([]dto.CandidateResponse, 0, len(candidates))
	for _, c := range candidates {
		candidateList = append(candidateList, dto.CandidateResponse{ID: c.CandidateID, Name: c.CandidateName})
	}
	return toScheduleResponse(schedule), candidateList, nil
}

// ── 内部辅助 ──

// getOwnedSchedule 查询预定并校验调用者为创建者
func (s *scheduleService) getOwnedSchedule(ctx context.Context, scheduleID string, callerID int64) (*model.Schedule, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询预定失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}
	if schedule.CreatedBy != callerID {
		return nil, ErrNotOwner
	}
	return schedule, nil
}

// truncateScheduleName 预定名截断到 255 字符（按字符计，写入永不拒绝超长）
func truncateScheduleName(name string) string {
	runes := []rune(name)
	if len(runes) > scheduleNameMaxLen {
		return string(runes[:scheduleNameMaxLen])
	}
	return name
}

// parseCandidateNames 换行分隔 → 去首尾空白 → 丢弃空行
func parseCandidateNames(raw string) []string {
	var names []string
	for _, line := range strings.Split(raw, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func toScheduleResponse(schedule *model.Schedule) *dto.ScheduleResponse {
	return &dto.ScheduleResponse{
		ID:           schedule.ScheduleID,
		ScheduleName: schedule.ScheduleName,
		Memo:         schedule.Memo,
		CreatedBy:    schedule.CreatedBy,
		UpdatedAt:    schedule.UpdatedAt.Format(time.RFC3339),
	}
}
