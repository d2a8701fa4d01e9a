package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kojitaniguchi/schedule-arranger/internal/dto"
	"github.com/kojitaniguchi/schedule-arranger/internal/model"
)

func newTestScheduleService(repos *testRepos) ScheduleService {
	return NewScheduleService(repos.toRepository(), zap.NewNop())
}

// seedSchedule 直接向 mock repo 写入一条预定及候补，返回候补 ID 列表
func seedSchedule(t *testing.T, repos *testRepos, scheduleID string, ownerID int64, candidateNames ...string) []int64 {
	t.Helper()
	ctx := context.Background()

	if err := repos.schedule.Create(ctx, &model.Schedule{
		ScheduleID:   scheduleID,
		ScheduleName: "测试预定",
		CreatedBy:    ownerID,
	}); err != nil {
		t.Fatalf("seed 预定失败: %v", err)
	}

	candidates := make([]model.Candidate, 0, len(candidateNames))
	for _, name := range candidateNames {
		candidates = append(candidates, model.Candidate{CandidateName: name, ScheduleID: scheduleID})
	}
	if err := repos.candidate.BatchCreate(ctx, candidates); err != nil {
		t.Fatalf("seed 候补失败: %v", err)
	}

	ids := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.CandidateID)
	}
	return ids
}

// ── Create ──

func TestScheduleCreate_RoundTrip(t *testing.T) {
	repos := newTestRepos()
	svc := newTestScheduleService(repos)
	ctx := context.Background()

	id, err := svc.Create(ctx, 100, &dto.CreateScheduleRequest{
		ScheduleName: "忘年会",
		Memo:         "备注",
		Candidates:   "A\nB",
	})
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if id == "" {
		t.Fatal("期望返回非空预定 ID")
	}

	view, err := svc.GetScheduleView(ctx, id, dto.Viewer{UserID: 100, Username: "alice"})
	if err != nil {
		t.Fatalf("GetScheduleView 失败: %v", err)
	}
	if view.Schedule.ScheduleName != "忘年会" || view.Schedule.Memo != "备注" {
		t.Errorf("预定基本信息不一致: %+v", view.Schedule)
	}
	if view.Schedule.CreatedBy != 100 {
		t.Errorf("期望 created_by=100, 实际 %d", view.Schedule.CreatedBy)
	}

	// 候补按创建顺序返回
	if len(view.Candidates) != 2 {
		t.Fatalf("期望 2 个候补, 实际 %d", len(view.Candidates))
	}
	if view.Candidates[0].Name != "A" || view.Candidates[1].Name != "B" {
		t.Errorf("候补顺序不符: %+v", view.Candidates)
	}
}

func TestScheduleCreate_ParsesCandidateLines(t *testing.T) {
	repos := newTestRepos()
	svc := newTestScheduleService(repos)
	ctx := context.Background()

	// 空行与首尾空白在解析时被丢弃/修剪
	id, err := svc.Create(ctx, 1, &dto.CreateScheduleRequest{
		ScheduleName: "test",
		Candidates:   "  10/1 晚上  \n\n10/2 晚上\r\n   \n",
	})
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}

	candidates, err := repos.candidate.ListBySchedule(ctx, id)
	if err != nil {
		t.Fatalf("查询候补失败: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("期望 2 个候补, 实际 %d", len(candidates))
	}
	if candidates[0].CandidateName != "10/1 晚上" || candidates[1].CandidateName != "10/2 晚上" {
		t.Errorf("候补名未正确修剪: %+v", candidates)
	}
}

func TestScheduleCreate_NameTruncatedTo255Chars(t *testing.T) {
	repos := newTestRepos()
	svc := newTestScheduleService(repos)
	ctx := context.Background()

	long := strings.Repeat("あ", 300)
	id, err := svc.Create(ctx, 1, &dto.CreateScheduleRequest{
		ScheduleName: long,
		Candidates:   "A",
	})
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}

	stored, err := repos.schedule.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("查询预定失败: %v", err)
	}
	runes := []rune(stored.ScheduleName)
	if len(runes) != 255 {
		t.Fatalf("期望截断为 255 字符, 实际 %d", len(runes))
	}
	if string(runes) != strings.Repeat("あ", 255) {
		t.Error("截断应保留前 255 字符")
	}
}

func TestScheduleCreate_EmptyName(t *testing.T) {
	svc := newTestScheduleService(newTestRepos())

	_, err := svc.Create(context.Background(), 1, &dto.CreateScheduleRequest{
		ScheduleName: "",
		Candidates:   "A",
	})
	if !errors.Is(err, ErrEmptyScheduleName) {
		t.Fatalf("期望 ErrEmptyScheduleName, 实际 %v", err)
	}
}

func TestScheduleCreate_NoCandidates(t *testing.T) {
	svc := newTestScheduleService(newTestRepos())

	// 全部为空行时视为没有候补
	_, err := svc.Create(context.Background(), 1, &dto.CreateScheduleRequest{
		ScheduleName: "test",
		Candidates:   "  \n\n  ",
	})
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("期望 ErrNoCandidates, 实际 %v", err)
	}
}

// ── Edit ──

func TestScheduleEdit_UpdatesBasicsAndAppendsCandidates(t *testing.T) {
	repos := newTestRepos()
	svc := newTestScheduleService(repos)
	ctx := context.Background()

	seedSchedule(t, repos, "s1", 100, "A", "B")

	_, err := svc.Edit(ctx, "s1", 100, &dto.EditScheduleRequest{
		ScheduleName: "改名后",
		Memo:         "新备注",
		Candidates:   "C",
	})
	if err != nil {
		t.Fatalf("Edit 失败: %v", err)
	}

	stored, _ := repos.schedule.GetByID(ctx, "s1")
	if stored.ScheduleName != "改名后" || stored.Memo != "新备注" {
		t.Errorf("基本信息未更新: %+v", stored)
	}
	if stored.CreatedBy != 100 {
		t.Errorf("编辑不应转移所有权, created_by=%d", stored.CreatedBy)
	}

	// 旧候补保留，新候补追加在末尾
	candidates, _ := repos.candidate.ListBySchedule(ctx, "s1")
	if len(candidates) != 3 {
		t.Fatalf("期望 3 个候补, 实际 %d", len(candidates))
	}
	if candidates[0].CandidateName != "A" || candidates[1].CandidateName != "B" || candidates[2].CandidateName != "C" {
		t.Errorf("候补追加顺序不符: %+v", candidates)
	}
}

func TestScheduleEdit_EmptyCandidatesKeepsExisting(t *testing.T) {
	repos := newTestRepos()
	svc := newTestScheduleService(repos)
	ctx := context.Background()

	seedSchedule(t, repos, "s1", 100, "A")

	if _, err := svc.Edit(ctx, "s1", 100, &dto.EditScheduleRequest{
		ScheduleName: "改名",
		Candidates:   "",
	}); err != nil {
		t.Fatalf("Edit 失败: %v", err)
	}

	candidates, _ := repos.candidate.ListBySchedule(ctx, "s1")
	if len(candidates) != 1 {
		t.Fatalf("无新候补时不应增删, 实际 %d 个", len(candidates))
	}
}

func TestScheduleEdit_NotOwner(t *testing.T) {
	repos := newTestRepos()
	svc := newTestScheduleService(repos)

	seedSchedule(t, repos, "s1", 100, "A")

	_, err := svc.Edit(context.Background(), "s1", 200, &dto.EditScheduleRequest{ScheduleName: "x"})
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("期望 ErrNotOwner, 实际 %v", err)
	}
}

func TestScheduleEdit_NotFound(t *testing.T) {
	svc := newTestScheduleService(newTestRepos())

	_, err := svc.Edit(context.Background(), "missing", 1, &dto.EditScheduleRequest{ScheduleName: "x"})
	if !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("期望 ErrScheduleNotFound, 实际 %v", err)
	}
}

// ── Delete ──

func TestScheduleDelete_Cascade(t *testing.T) {
	repos := newTestRepos()
	svc := newTestScheduleService(repos)
	ctx := context.Background()

	ids := seedSchedule(t, repos, "s1", 100, "A", "B")
	_ = repos.user.Upsert(ctx, &model.User{UserID: 200, Username: "bob"})
	_ = repos.availability.Upsert(ctx, &model.Availability{
		CandidateID: ids[0], UserID: 200, ScheduleID: "s1", Availability: 2,
	})
	_ = repos.comment.Upsert(ctx, &model.Comment{ScheduleID: "s1", UserID: 200, Comment: "参加します"})

	if err := svc.Delete(ctx, "s1", 100); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}

	// 预定本体与全部从属记录均不复存在
	if _, err := repos.schedule.GetByID(ctx, "s1"); err == nil {
		t.Error("预定本体应被删除")
	}
	if candidates, _ := repos.candidate.ListBySchedule(ctx, "s1"); len(candidates) != 0 {
		t.Errorf("候补应被级联删除, 残留 %d 条", len(candidates))
	}
	if rows, _ := repos.availability.ListBySchedule(ctx, "s1"); len(rows) != 0 {
		t.Errorf("出欠应被级联删除, 残留 %d 条", len(rows))
	}
	if rows, _ := repos.comment.ListBySchedule(ctx, "s1"); len(rows) != 0 {
		t.Errorf("留言应被级联删除, 残留 %d 条", len(rows))
	}
}

func TestScheduleDelete_DoesNotTouchOtherSchedules(t *testing.T) {
	repos := newTestRepos()
	svc := newTestScheduleService(repos)
	ctx := context.Background()

	seedSchedule(t, repos, "s1", 100, "A")
	otherIDs := seedSchedule(t, repos, "s2", 100, "X")
	_ = repos.availability.Upsert(ctx, &model.Availability{
		CandidateID: otherIDs[0], UserID: 100, ScheduleID: "s2", Availability: 1,
	})

	if err := svc.Delete(ctx, "s1", 100); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}

	if _, err := repos.schedule.GetByID(ctx, "s2"); err != nil {
		t.Error("无关预定不应受级联影响")
	}
	if rows, _ := repos.availability.ListBySchedule(ctx, "s2"); len(rows) != 1 {
		t.Errorf("无关预定的出欠不应被删除, 实际 %d 条", len(rows))
	}
}

func TestScheduleDelete_NotOwner(t *testing.T) {
	repos := newTestRepos()
	svc := newTestScheduleService(repos)

	seedSchedule(t, repos, "s1", 100, "A")

	if err := svc.Delete(context.Background(), "s1", 200); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("期望 ErrNotOwner, 实际 %v", err)
	}
	// 校验失败时什么都不删
	if _, err := repos.schedule.GetByID(context.Background(), "s1"); err != nil {
		t.Error("非创建者删除失败后预定应原样保留")
	}
}

func TestScheduleDelete_NotFound(t *testing.T) {
	svc := newTestScheduleService(newTestRepos())

	if err := svc.Delete(context.Background(), "missing", 1); !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("期望 ErrScheduleNotFound, 实际 %v", err)
	}
}

// ── GetScheduleView ──

func TestGetScheduleView_NotFound(t *testing.T) {
	svc := newTestScheduleService(newTestRepos())

	_, err := svc.GetScheduleView(context.Background(), "missing", dto.Viewer{UserID: 1})
	if !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("期望 ErrScheduleNotFound, 实际 %v", err)
	}
}

func TestGetScheduleView_ViewerAlwaysPresent(t *testing.T) {
	repos := newTestRepos()
	svc := newTestScheduleService(repos)

	ids := seedSchedule(t, repos, "s1", 100, "A", "B")

	// 请求者尚未投票也必须出现在用户集合中，且整张网格默认 0
	view, err := svc.GetScheduleView(context.Background(), "s1", dto.Viewer{UserID: 999, Username: "carol"})
	if err != nil {
		t.Fatalf("GetScheduleView 失败: %v", err)
	}
	if len(view.Users) != 1 {
		t.Fatalf("期望用户集合仅含请求者, 实际 %d 人", len(view.Users))
	}
	if !view.Users[0].IsSelf || view.Users[0].ID != 999 || view.Users[0].Username != "carol" {
		t.Errorf("请求者条目不符: %+v", view.Users[0])
	}
	for _, cid := range ids {
		if code := view.AvailabilityMap[999][cid]; code != model.AvailabilityAbsent {
			t.Errorf("未投票单元格应默认 0, 候补 %d 实际 %d", cid, code)
		}
	}
}

func TestGetScheduleView_IsSelfMarkedExactlyOnce(t *testing.T) {
	repos := newTestRepos()
	svc := newTestScheduleService(repos)
	ctx := context.Background()

	ids := seedSchedule(t, repos, "s1", 100, "A")
	_ = repos.user.Upsert(ctx, &model.User{UserID: 100, Username: "alice"})
	_ = repos.user.Upsert(ctx, &model.User{UserID: 200, Username: "bob"})
	// 请求者自己也投过票：用户集合不得出现两次
	_ = repos.availability.Upsert(ctx, &model.Availability{CandidateID: ids[0], UserID: 100, ScheduleID: "s1", Availability: 2})
	_ = repos.availability.Upsert(ctx, &model.Availability{CandidateID: ids[0], UserID: 200, ScheduleID: "s1", Availability: 1})

	view, err := svc.GetScheduleView(ctx, "s1", dto.Viewer{UserID: 100, Username: "alice"})
	if err != nil {
		t.Fatalf("GetScheduleView 失败: %v", err)
	}

	if len(view.Users) != 2 {
		t.Fatalf("期望去重后 2 人, 实际 %d 人", len(view.Users))
	}
	selfCount := 0
	for _, u := range view.Users {
		if u.IsSelf {
			selfCount++
			if u.ID != 100 {
				t.Errorf("IsSelf 标错用户: %+v", u)
			}
		}
	}
	if selfCount != 1 {
		t.Errorf("IsSelf 应恰好标记一次, 实际 %d 次", selfCount)
	}
}

func TestGetScheduleView_GridIsFullCrossProduct(t *testing.T) {
	repos := newTestRepos()
	svc := newTestScheduleService(repos)
	ctx := context.Background()

	ids := seedSchedule(t, repos, "s1", 100, "A", "B", "C")
	_ = repos.user.Upsert(ctx, &model.User{UserID: 200, Username: "bob"})
	// bob 只对候补 A 投了出席
	_ = repos.availability.Upsert(ctx, &model.Availability{CandidateID: ids[0], UserID: 200, ScheduleID: "s1", Availability: model.AvailabilityPresent})

	view, err := svc.GetScheduleView(ctx, "s1", dto.Viewer{UserID: 100, Username: "alice"})
	if err != nil {
		t.Fatalf("GetScheduleView 失败: %v", err)
	}

	// 每个用户 × 每个候补都有单元格
	for _, u := range view.Users {
		row, ok := view.AvailabilityMap[u.ID]
		if !ok {
			t.Fatalf("用户 %d 缺少出欠行", u.ID)
		}
		if len(row) != len(ids) {
			t.Errorf("用户 %d 的出欠行应覆盖全部候补, 实际 %d/%d", u.ID, len(row), len(ids))
		}
	}

	// 已存储的值透出，未存储的补 0
	if view.AvailabilityMap[200][ids[0]] != model.AvailabilityPresent {
		t.Errorf("已投出席的单元格应为 2, 实际 %d", view.AvailabilityMap[200][ids[0]])
	}
	if view.AvailabilityMap[200][ids[1]] != model.AvailabilityAbsent {
		t.Errorf("未投票单元格应补 0, 实际 %d", view.AvailabilityMap[200][ids[1]])
	}
	if view.AvailabilityMap[100][ids[0]] != model.AvailabilityAbsent {
		t.Errorf("请求者未投票单元格应补 0, 实际 %d", view.AvailabilityMap[100][ids[0]])
	}
}

func TestGetScheduleView_Idempotent(t *testing.T) {
	repos := newTestRepos()
	svc := newTestScheduleService(repos)
	ctx := context.Background()

	ids := seedSchedule(t, repos, "s1", 100, "A", "B")
	_ = repos.user.Upsert(ctx, &model.User{UserID: 200, Username: "bob"})
	_ = repos.availability.Upsert(ctx, &model.Availability{CandidateID: ids[1], UserID: 200, ScheduleID: "s1", Availability: 1})
	_ = repos.comment.Upsert(ctx, &model.Comment{ScheduleID: "s1", UserID: 200, Comment: "hi"})

	viewer := dto.Viewer{UserID: 100, Username: "alice"}
	first, err := svc.GetScheduleView(ctx, "s1", viewer)
	if err != nil {
		t.Fatalf("第一次 GetScheduleView 失败: %v", err)
	}
	second, err := svc.GetScheduleView(ctx, "s1", viewer)
	if err != nil {
		t.Fatalf("第二次 GetScheduleView 失败: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("只读聚合视图应幂等, 两次结果不一致")
	}
}

func TestGetScheduleView_CommentMap(t *testing.T) {
	repos := newTestRepos()
	svc := newTestScheduleService(repos)
	ctx := context.Background()

	seedSchedule(t, repos, "s1", 100, "A")
	_ = repos.comment.Upsert(ctx, &model.Comment{ScheduleID: "s1", UserID: 100, Comment: "第一条"})
	_ = repos.comment.Upsert(ctx, &model.Comment{ScheduleID: "s1", UserID: 100, Comment: "后写覆盖"})

	view, err := svc.GetScheduleView(ctx, "s1", dto.Viewer{UserID: 100, Username: "alice"})
	if err != nil {
		t.Fatalf("GetScheduleView 失败: %v", err)
	}
	if len(view.CommentMap) != 1 {
		t.Fatalf("每用户至多一条留言, 实际 %d 条", len(view.CommentMap))
	}
	if view.CommentMap[100] != "后写覆盖" {
		t.Errorf("留言应后写覆盖, 实际 %q", view.CommentMap[100])
	}
}

// ── ListMySchedules / IsOwner ──

func TestListMySchedules_FiltersByCreator(t *testing.T) {
	repos := newTestRepos()
	svc := newTestScheduleService(repos)

	seedSchedule(t, repos, "s1", 100, "A")
	seedSchedule(t, repos, "s2", 100, "A")
	seedSchedule(t, repos, "s3", 200, "A")

	list, err := svc.ListMySchedules(context.Background(), 100)
	if err != nil {
		t.Fatalf("ListMySchedules 失败: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("期望 2 条, 实际 %d", len(list))
	}
	for _, s := range list {
		if s.CreatedBy != 100 {
			t.Errorf("列表混入他人预定: %+v", s)
		}
	}
}

func TestIsOwner(t *testing.T) {
	repos := newTestRepos()
	svc := newTestScheduleService(repos)
	ctx := context.Background()

	seedSchedule(t, repos, "s1", 100, "A", "B")

	schedule, candidates, err := svc.IsOwner(ctx, "s1", 100)
	if err != nil {
		t.Fatalf("IsOwner 失败: %v", err)
	}
	if schedule.ID != "s1" || len(candidates) != 2 {
		t.Errorf("返回数据不符: schedule=%+v candidates=%d", schedule, len(candidates))
	}

	if _, _, err := svc.IsOwner(ctx, "s1", 200); !errors.Is(err, ErrNotOwner) {
		t.Errorf("期望 ErrNotOwner, 实际 %v", err)
	}
	if _, _, err := svc.IsOwner(ctx, "missing", 100); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("期望 ErrScheduleNotFound, 实际 %v", err)
	}
}
