package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/model"
)

func setupTestTagService() (TagService, *memDB) {
	repo, db := newMockRepository()
	return NewTagService(repo, zap.NewNop()), db
}

func TestTagService_CreateDefaultColor(t *testing.T) {
	svc, _ := setupTestTagService()

	tag, err := svc.Create(context.Background(), 1, &dto.SaveTagRequest{Name: "nlp"})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if tag.Color != model.DefaultTagColor {
		t.Errorf("期望默认颜色 %s，实际: %s", model.DefaultTagColor, tag.Color)
	}
}

func TestTagService_Isolation(t *testing.T) {
	svc, _ := setupTestTagService()
	ctx := context.Background()

	mine, _ := svc.Create(ctx, 1, &dto.SaveTagRequest{Name: "mine", Color: "#ff0000"})
	_, _ = svc.Create(ctx, 2, &dto.SaveTagRequest{Name: "theirs"})

	list, _ := svc.List(ctx, 1, "")
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Errorf("用户只应看到自己的标签，实际: %+v", list)
	}

	// 他人的更新与删除均为静默空操作
	if err := svc.Update(ctx, mine.ID, 2, &dto.SaveTagRequest{Name: "stolen"}); err != nil {
		t.Errorf("他人更新应静默返回，实际: %v", err)
	}
	if err := svc.Delete(ctx, mine.ID, 2); err != nil {
		t.Errorf("他人删除应静默返回，实际: %v", err)
	}
	list, _ = svc.List(ctx, 1, "")
	if len(list) != 1 || list[0].Name != "mine" {
		t.Errorf("标签不应被他人修改，实际: %+v", list)
	}
}

func TestTagService_GuessedTagNotAttachable(t *testing.T) {
	repo, _ := newMockRepository()
	tagSvc := NewTagService(repo, zap.NewNop())
	meetingSvc := NewMeetingService(repo, zap.NewNop())
	ctx := context.Background()

	theirs, _ := tagSvc.Create(ctx, 2, &dto.SaveTagRequest{Name: "theirs"})

	_, err := meetingSvc.Create(ctx, 1, &dto.SaveMeetingRequest{
		Title:  "Sync",
		TagIDs: &[]int64{theirs.ID},
	})
	if !errors.Is(err, ErrTagNotOwned) {
		t.Errorf("期望 ErrTagNotOwned，实际: %v", err)
	}
}

func TestTagService_DeleteRemovesAssociations(t *testing.T) {
	repo, db := newMockRepository()
	tagSvc := NewTagService(repo, zap.NewNop())
	confSvc := NewConferenceService(repo, zap.NewNop())
	ctx := context.Background()

	tag, _ := tagSvc.Create(ctx, 1, &dto.SaveTagRequest{Name: "systems"})
	conf, err := confSvc.Create(ctx, 1, &dto.SaveConferenceRequest{
		Name:      "OSDI",
		StartDate: db.clock,
		TagIDs:    &[]int64{tag.ID},
	})
	if err != nil {
		t.Fatalf("创建会议失败: %v", err)
	}

	if err := tagSvc.Delete(ctx, tag.ID, 1); err != nil {
		t.Fatalf("删除标签失败: %v", err)
	}
	got, _ := confSvc.GetByID(ctx, conf.ID, 1)
	if len(got.Tags) != 0 {
		t.Errorf("标签删除后会议不应再关联该标签，实际: %+v", got.Tags)
	}
}
