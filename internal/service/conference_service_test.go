package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/model"
)

func TestConferenceService_CreateDefaults(t *testing.T) {
	repo, _ := newMockRepository()
	svc := NewConferenceService(repo, zap.NewNop())
	ctx := context.Background()

	start := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	created, err := svc.Create(ctx, 1, &dto.SaveConferenceRequest{
		Name:      "SOSP",
		StartDate: start,
		Website:   ptr("https://sosp.org"),
	})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if created.AttendanceStatus != model.AttendanceInterested {
		t.Errorf("默认参会状态应为 interested，实际: %s", created.AttendanceStatus)
	}

	got, err := svc.GetByID(ctx, created.ID, 1)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if got.StartDate != "2026-07-10T00:00:00Z" || got.Website == nil {
		t.Errorf("字段不一致: %+v", got)
	}
	if got.Tags == nil {
		t.Error("标签列表应为空数组而非 nil")
	}
}

func TestConferenceService_InvalidDateRange(t *testing.T) {
	repo, db := newMockRepository()
	svc := NewConferenceService(repo, zap.NewNop())

	start := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	_, err := svc.Create(context.Background(), 1, &dto.SaveConferenceRequest{
		Name:      "Backwards",
		StartDate: start,
		EndDate:   &end,
	})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("期望 ErrInvalidDateRange，实际: %v", err)
	}
	if len(db.conferences) != 0 {
		t.Error("校验失败时不应写入")
	}
}

func TestConferenceService_UpdateClearsTags(t *testing.T) {
	repo, _ := newMockRepository()
	svc := NewConferenceService(repo, zap.NewNop())
	tagSvc := NewTagService(repo, zap.NewNop())
	ctx := context.Background()

	tagID := mustCreateTag(t, tagSvc, 1, "deadline")
	start := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	created, _ := svc.Create(ctx, 1, &dto.SaveConferenceRequest{Name: "ICML", StartDate: start, TagIDs: &[]int64{tagID}})

	err := svc.Update(ctx, created.ID, 1, &dto.SaveConferenceRequest{Name: "ICML", StartDate: start, TagIDs: &[]int64{}})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	got, _ := svc.GetByID(ctx, created.ID, 1)
	if len(got.Tags) != 0 {
		t.Errorf("标签应被清空，实际: %d", len(got.Tags))
	}
}

func TestConferenceService_CrossUserIsNoop(t *testing.T) {
	repo, _ := newMockRepository()
	svc := NewConferenceService(repo, zap.NewNop())
	ctx := context.Background()

	start := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	created, _ := svc.Create(ctx, 1, &dto.SaveConferenceRequest{Name: "NSDI", StartDate: start})

	if err := svc.Update(ctx, created.ID, 2, &dto.SaveConferenceRequest{Name: "Other", StartDate: start}); err != nil {
		t.Errorf("他人更新应静默返回，实际: %v", err)
	}
	if err := svc.Delete(ctx, created.ID, 2); err != nil {
		t.Errorf("他人删除应静默返回，实际: %v", err)
	}
	got, err := svc.GetByID(ctx, created.ID, 1)
	if err != nil || got.Name != "NSDI" {
		t.Errorf("会议不应被他人修改: %+v, %v", got, err)
	}
}
