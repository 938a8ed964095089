package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/model"
	"research-agenda/backend/internal/repository"
	pkgerrors "research-agenda/backend/pkg/errors"
)

// ── 标签模块业务错误 ──

var (
	// ErrTagNotOwned 关联了不存在或他人的标签
	ErrTagNotOwned = pkgerrors.ErrTagNotOwned
)

// TagService 标签业务接口
type TagService interface {
	List(ctx context.Context, userID int64, search string) ([]dto.TagResponse, error)
	Create(ctx context.Context, userID int64, req *dto.SaveTagRequest) (*dto.TagResponse, error)
	Update(ctx context.Context, id, userID int64, req *dto.SaveTagRequest) error
	Delete(ctx context.Context, id, userID int64) error
}

type tagService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTagService 创建 TagService 实例
func NewTagService(repo *repository.Repository, logger *zap.Logger) TagService {
	return &tagService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *tagService) List(ctx context.Context, userID int64, search string) ([]dto.TagResponse, error) {
	tags, err := s.repo.Tag.List(ctx, userID, search)
	if err != nil {
		s.logger.Error("列出标签失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toTagResponses(tags), nil
}

// ────────────────────── Create ──────────────────────

func (s *tagService) Create(ctx context.Context, userID int64, req *dto.SaveTagRequest) (*dto.TagResponse, error) {
	tag := &model.Tag{
		UserID: userID,
		Name:   req.Name,
		Color:  colorOrDefault(req.Color),
	}
	if err := s.repo.Tag.Create(ctx, tag); err != nil {
		s.logWriteError("创建标签失败", err, zap.Int64("user_id", userID))
		return nil, err
	}

	resp := toTagResponse(tag)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *tagService) Update(ctx context.Context, id, userID int64, req *dto.SaveTagRequest) error {
	tag := &model.Tag{
		ID:     id,
		UserID: userID,
		Name:   req.Name,
		Color:  colorOrDefault(req.Color),
	}
	if err := s.repo.Tag.Update(ctx, tag); err != nil {
		s.logWriteError("更新标签失败", err, zap.Int64("id", id))
		return err
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *tagService) Delete(ctx context.Context, id, userID int64) error {
	if err := s.repo.Tag.Delete(ctx, id, userID); err != nil {
		s.logWriteError("删除标签失败", err, zap.Int64("id", id))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *tagService) logWriteError(msg string, err error, fields ...zap.Field) {
	logWriteError(s.logger, msg, err, fields...)
}

func colorOrDefault(color string) string {
	if color == "" {
		return model.DefaultTagColor
	}
	return color
}

// logWriteError 存储不可用与业务错误降为 Warn，其余按 Error 记录
func logWriteError(logger *zap.Logger, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if errors.Is(err, pkgerrors.ErrStoreUnavailable) || errors.Is(err, pkgerrors.ErrTagNotOwned) {
		logger.Warn(msg, fields...)
		return
	}
	logger.Error(msg, fields...)
}
