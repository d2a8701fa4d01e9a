package service

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func newTestCommentService(repos *testRepos) CommentService {
	return NewCommentService(repos.toRepository(), zap.NewNop())
}

func TestCommentUpsert_LastWriteWins(t *testing.T) {
	repos := newTestRepos()
	svc := newTestCommentService(repos)
	ctx := context.Background()

	seedSchedule(t, repos, "s1", 100, "A")

	got, err := svc.Upsert(ctx, "s1", 200, "第一条留言")
	if err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}
	if got != "第一条留言" {
		t.Errorf("期望返回写入后的留言, 实际 %q", got)
	}

	if _, err := svc.Upsert(ctx, "s1", 200, "第二条留言"); err != nil {
		t.Fatalf("二次 Upsert 失败: %v", err)
	}

	rows, _ := repos.comment.ListBySchedule(ctx, "s1")
	if len(rows) != 1 {
		t.Fatalf("每 (预定, 用户) 至多一条留言, 实际 %d 条", len(rows))
	}
	if rows[0].Comment != "第二条留言" {
		t.Errorf("期望后写覆盖, 实际 %q", rows[0].Comment)
	}
}

func TestCommentUpsert_PerUserRows(t *testing.T) {
	repos := newTestRepos()
	svc := newTestCommentService(repos)
	ctx := context.Background()

	seedSchedule(t, repos, "s1", 100, "A")

	_, _ = svc.Upsert(ctx, "s1", 100, "alice 的留言")
	_, _ = svc.Upsert(ctx, "s1", 200, "bob 的留言")

	rows, _ := repos.comment.ListBySchedule(ctx, "s1")
	if len(rows) != 2 {
		t.Fatalf("不同用户的留言互不覆盖, 期望 2 条, 实际 %d", len(rows))
	}
}
