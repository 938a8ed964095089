package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/model"
	pkgerrors "research-agenda/backend/pkg/errors"
)

// ── 测试辅助 ──

func ptr[T any](v T) *T { return &v }

func setupTestManuscriptService() (ManuscriptService, TagService, *memDB) {
	repo, db := newMockRepository()
	logger := zap.NewNop()
	return NewManuscriptService(repo, logger), NewTagService(repo, logger), db
}

func mustCreateTag(t *testing.T, svc TagService, userID int64, name string) int64 {
	t.Helper()
	tag, err := svc.Create(context.Background(), userID, &dto.SaveTagRequest{Name: name})
	if err != nil {
		t.Fatalf("创建标签失败: %v", err)
	}
	return tag.ID
}

// ── Create / GetByID ──

func TestManuscriptService_CreateThenGet(t *testing.T) {
	svc, _, _ := setupTestManuscriptService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, &dto.SaveManuscriptRequest{
		Title:   "Paper A",
		Journal: ptr("TOCS"),
	})
	if err != nil {
		t.Fatalf("期望创建成功，实际: %v", err)
	}
	if created.Status != model.ManuscriptDraft {
		t.Errorf("未指定状态应默认为 draft，实际: %s", created.Status)
	}

	got, err := svc.GetByID(ctx, created.ID, 1)
	if err != nil {
		t.Fatalf("期望查询成功，实际: %v", err)
	}
	if got.Title != "Paper A" || got.Journal == nil || *got.Journal != "TOCS" {
		t.Errorf("字段不一致: %+v", got)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("未传 tag_ids 时应返回空标签列表，实际: %v", got.Tags)
	}
	if got.SubmissionDate != nil || got.Notes != nil {
		t.Error("未提供的可选字段应为 null")
	}
}

func TestManuscriptService_CreateWithTags(t *testing.T) {
	svc, tagSvc, _ := setupTestManuscriptService()
	ctx := context.Background()
	tagID := mustCreateTag(t, tagSvc, 1, "graph")

	created, err := svc.Create(ctx, 1, &dto.SaveManuscriptRequest{
		Title:  "Paper B",
		TagIDs: &[]int64{tagID, tagID},
	})
	if err != nil {
		t.Fatalf("期望创建成功，实际: %v", err)
	}
	if len(created.Tags) != 1 || created.Tags[0].Name != "graph" {
		t.Errorf("期望解析出一个 graph 标签，实际: %+v", created.Tags)
	}
}

func TestManuscriptService_GetByID_NotFound(t *testing.T) {
	svc, _, _ := setupTestManuscriptService()

	_, err := svc.GetByID(context.Background(), 999, 1)
	if !errors.Is(err, ErrManuscriptNotFound) {
		t.Errorf("期望 ErrManuscriptNotFound，实际: %v", err)
	}
}

// ── Update ──

func TestManuscriptService_Update_FullReplace(t *testing.T) {
	svc, _, _ := setupTestManuscriptService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, &dto.SaveManuscriptRequest{
		Title:  "Paper A",
		Status: model.ManuscriptDraft,
		Notes:  ptr("first draft"),
	})

	submitted := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	err := svc.Update(ctx, created.ID, 1, &dto.SaveManuscriptRequest{
		Title:          "Paper A",
		Status:         model.ManuscriptSubmitted,
		SubmissionDate: &submitted,
	})
	if err != nil {
		t.Fatalf("期望更新成功，实际: %v", err)
	}

	got, _ := svc.GetByID(ctx, created.ID, 1)
	if got.Status != model.ManuscriptSubmitted {
		t.Errorf("期望状态 submitted，实际: %s", got.Status)
	}
	if got.SubmissionDate == nil || *got.SubmissionDate != "2026-03-01T00:00:00Z" {
		t.Errorf("投稿日期不一致: %v", got.SubmissionDate)
	}
	if got.Notes != nil {
		t.Errorf("整体替换后未提供的备注应为 null，实际: %v", *got.Notes)
	}
}

func TestManuscriptService_Update_TagIDs(t *testing.T) {
	svc, tagSvc, _ := setupTestManuscriptService()
	ctx := context.Background()
	tagID := mustCreateTag(t, tagSvc, 1, "ml")

	created, _ := svc.Create(ctx, 1, &dto.SaveManuscriptRequest{Title: "Paper", TagIDs: &[]int64{tagID}})

	// tag_ids 缺省：保留原有标签
	if err := svc.Update(ctx, created.ID, 1, &dto.SaveManuscriptRequest{Title: "Paper v2"}); err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	got, _ := svc.GetByID(ctx, created.ID, 1)
	if len(got.Tags) != 1 {
		t.Fatalf("未传 tag_ids 时应保留标签，实际: %d", len(got.Tags))
	}

	// tag_ids=[]：清空
	if err := svc.Update(ctx, created.ID, 1, &dto.SaveManuscriptRequest{Title: "Paper v3", TagIDs: &[]int64{}}); err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	got, _ = svc.GetByID(ctx, created.ID, 1)
	if len(got.Tags) != 0 {
		t.Errorf("tag_ids=[] 后标签应为空，实际: %d", len(got.Tags))
	}
}

func TestManuscriptService_CrossUserIsNoop(t *testing.T) {
	svc, _, _ := setupTestManuscriptService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, 1, &dto.SaveManuscriptRequest{Title: "Mine"})

	if err := svc.Update(ctx, created.ID, 2, &dto.SaveManuscriptRequest{Title: "Hijacked"}); err != nil {
		t.Errorf("他人更新应静默返回，实际: %v", err)
	}
	if err := svc.Delete(ctx, created.ID, 2); err != nil {
		t.Errorf("他人删除应静默返回，实际: %v", err)
	}

	got, err := svc.GetByID(ctx, created.ID, 1)
	if err != nil {
		t.Fatalf("稿件不应被删除: %v", err)
	}
	if got.Title != "Mine" {
		t.Errorf("稿件不应被修改，实际标题: %s", got.Title)
	}
	if _, err := svc.GetByID(ctx, created.ID, 2); !errors.Is(err, ErrManuscriptNotFound) {
		t.Errorf("他人不应可见，实际: %v", err)
	}
}

func TestManuscriptService_ForeignTagRejected(t *testing.T) {
	svc, tagSvc, db := setupTestManuscriptService()
	ctx := context.Background()
	foreign := mustCreateTag(t, tagSvc, 2, "theirs")

	_, err := svc.Create(ctx, 1, &dto.SaveManuscriptRequest{Title: "Paper", TagIDs: &[]int64{foreign}})
	if !errors.Is(err, ErrTagNotOwned) {
		t.Fatalf("期望 ErrTagNotOwned，实际: %v", err)
	}
	if len(db.manuscripts) != 0 {
		t.Error("标签校验失败时不应写入稿件")
	}
}

// ── Delete ──

func TestManuscriptService_Delete(t *testing.T) {
	svc, tagSvc, db := setupTestManuscriptService()
	ctx := context.Background()
	tagID := mustCreateTag(t, tagSvc, 1, "x")

	created, _ := svc.Create(ctx, 1, &dto.SaveManuscriptRequest{Title: "Gone", TagIDs: &[]int64{tagID}})
	if err := svc.Delete(ctx, created.ID, 1); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID, 1); !errors.Is(err, ErrManuscriptNotFound) {
		t.Errorf("删除后应查询不到，实际: %v", err)
	}
	if _, ok := db.links[model.ActivityManuscript][created.ID]; ok {
		t.Error("删除后关联行应被清除")
	}
	if err := svc.Delete(ctx, created.ID, 1); err != nil {
		t.Errorf("重复删除应静默返回，实际: %v", err)
	}
}

func TestManuscriptService_StoreUnavailable(t *testing.T) {
	svc, _, db := setupTestManuscriptService()
	db.writeErr = pkgerrors.ErrStoreUnavailable

	_, err := svc.Create(context.Background(), 1, &dto.SaveManuscriptRequest{Title: "Paper"})
	if !errors.Is(err, pkgerrors.ErrStoreUnavailable) {
		t.Errorf("期望 ErrStoreUnavailable，实际: %v", err)
	}
}

func TestManuscriptService_ListSearch(t *testing.T) {
	svc, _, _ := setupTestManuscriptService()
	ctx := context.Background()
	_, _ = svc.Create(ctx, 1, &dto.SaveManuscriptRequest{Title: "Graph Neural Nets"})
	_, _ = svc.Create(ctx, 1, &dto.SaveManuscriptRequest{Title: "Compilers"})
	_, _ = svc.Create(ctx, 2, &dto.SaveManuscriptRequest{Title: "graph theory"})

	list, err := svc.List(ctx, 1, "GRAPH")
	if err != nil {
		t.Fatalf("列出失败: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Graph Neural Nets" {
		t.Errorf("搜索结果不符: %+v", list)
	}

	all, _ := svc.List(ctx, 1, "")
	if len(all) != 2 || all[0].Title != "Compilers" {
		t.Errorf("期望按创建时间倒序返回 2 条，实际: %+v", all)
	}
}
