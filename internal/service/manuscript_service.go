package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/model"
	"research-agenda/backend/internal/repository"
)

// ── 稿件模块业务错误 ──

var (
	ErrManuscriptNotFound = errors.New("稿件不存在")
)

// ManuscriptService 稿件业务接口
type ManuscriptService interface {
	List(ctx context.Context, userID int64, search string) ([]dto.ManuscriptResponse, error)
	GetByID(ctx context.Context, id, userID int64) (*dto.ManuscriptResponse, error)
	Create(ctx context.Context, userID int64, req *dto.SaveManuscriptRequest) (*dto.ManuscriptResponse, error)
	Update(ctx context.Context, id, userID int64, req *dto.SaveManuscriptRequest) error
	Delete(ctx context.Context, id, userID int64) error
}

type manuscriptService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewManuscriptService 创建 ManuscriptService 实例
func NewManuscriptService(repo *repository.Repository, logger *zap.Logger) ManuscriptService {
	return &manuscriptService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *manuscriptService) List(ctx context.Context, userID int64, search string) ([]dto.ManuscriptResponse, error) {
	manuscripts, err := s.repo.Manuscript.List(ctx, userID, search)
	if err != nil {
		s.logger.Error("列出稿件失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ManuscriptResponse, 0, len(manuscripts))
	for i := range manuscripts {
		result = append(result, toManuscriptResponse(&manuscripts[i]))
	}
	return result, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *manuscriptService) GetByID(ctx context.Context, id, userID int64) (*dto.ManuscriptResponse, error) {
	m, err := s.repo.Manuscript.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrManuscriptNotFound
		}
		s.logger.Error("查询稿件失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	resp := toManuscriptResponse(m)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *manuscriptService) Create(ctx context.Context, userID int64, req *dto.SaveManuscriptRequest) (*dto.ManuscriptResponse, error) {
	m := s.fromRequest(req)
	m.UserID = userID

	var tagIDs []int64
	if req.TagIDs != nil {
		tagIDs = *req.TagIDs
	}
	if err := s.repo.Manuscript.Create(ctx, m, tagIDs); err != nil {
		logWriteError(s.logger, "创建稿件失败", err, zap.Int64("user_id", userID))
		return nil, err
	}

	return s.created(ctx, m, len(tagIDs) > 0), nil
}

// ────────────────────── Update ──────────────────────

func (s *manuscriptService) Update(ctx context.Context, id, userID int64, req *dto.SaveManuscriptRequest) error {
	m := s.fromRequest(req)
	m.ID = id
	m.UserID = userID

	if err := s.repo.Manuscript.Update(ctx, m, req.TagIDs); err != nil {
		logWriteError(s.logger, "更新稿件失败", err, zap.Int64("id", id))
		return err
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *manuscriptService) Delete(ctx context.Context, id, userID int64) error {
	if err := s.repo.Manuscript.Delete(ctx, id, userID); err != nil {
		logWriteError(s.logger, "删除稿件失败", err, zap.Int64("id", id))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *manuscriptService) fromRequest(req *dto.SaveManuscriptRequest) *model.Manuscript {
	status := req.Status
	if status == "" {
		status = model.ManuscriptDraft
	}
	return &model.Manuscript{
		Title:          req.Title,
		Status:         status,
		Journal:        req.Journal,
		SubmissionDate: req.SubmissionDate,
		TargetDate:     req.TargetDate,
		Notes:          req.Notes,
	}
}

// created 构造创建结果；带标签时回读以解析标签详情，回读失败不影响创建结果
func (s *manuscriptService) created(ctx context.Context, m *model.Manuscript, withTags bool) *dto.ManuscriptResponse {
	if withTags {
		if full, err := s.repo.Manuscript.GetByID(ctx, m.ID, m.UserID); err == nil {
			m = full
		} else {
			s.logger.Warn("回读稿件失败", zap.Int64("id", m.ID), zap.Error(err))
		}
	}
	resp := toManuscriptResponse(m)
	return &resp
}
