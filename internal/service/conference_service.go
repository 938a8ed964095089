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

// ── 学术会议模块业务错误 ──

var (
	ErrConferenceNotFound = errors.New("会议不存在")
	ErrInvalidDateRange   = errors.New("结束日期不能早于开始日期")
)

// ConferenceService 学术会议业务接口
type ConferenceService interface {
	List(ctx context.Context, userID int64, search string) ([]dto.ConferenceResponse, error)
	GetByID(ctx context.Context, id, userID int64) (*dto.ConferenceResponse, error)
	Create(ctx context.Context, userID int64, req *dto.SaveConferenceRequest) (*dto.ConferenceResponse, error)
	Update(ctx context.Context, id, userID int64, req *dto.SaveConferenceRequest) error
	Delete(ctx context.Context, id, userID int64) error
}

type conferenceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewConferenceService 创建 ConferenceService 实例
func NewConferenceService(repo *repository.Repository, logger *zap.Logger) ConferenceService {
	return &conferenceService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *conferenceService) List(ctx context.Context, userID int64, search string) ([]dto.ConferenceResponse, error) {
	conferences, err := s.repo.Conference.List(ctx, userID, search)
	if err != nil {
		s.logger.Error("列出会议失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ConferenceResponse, 0, len(conferences))
	for i := range conferences {
		result = append(result, toConferenceResponse(&conferences[i]))
	}
	return result, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *conferenceService) GetByID(ctx context.Context, id, userID int64) (*dto.ConferenceResponse, error) {
	c, err := s.repo.Conference.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConferenceNotFound
		}
		s.logger.Error("查询会议失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	resp := toConferenceResponse(c)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *conferenceService) Create(ctx context.Context, userID int64, req *dto.SaveConferenceRequest) (*dto.ConferenceResponse, error) {
	c, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	c.UserID = userID

	var tagIDs []int64
	if req.TagIDs != nil {
		tagIDs = *req.TagIDs
	}
	if err := s.repo.Conference.Create(ctx, c, tagIDs); err != nil {
		logWriteError(s.logger, "创建会议失败", err, zap.Int64("user_id", userID))
		return nil, err
	}

	if len(tagIDs) > 0 {
		if full, err := s.repo.Conference.GetByID(ctx, c.ID, userID); err == nil {
			c = full
		} else {
			s.logger.Warn("回读会议失败", zap.Int64("id", c.ID), zap.Error(err))
		}
	}
	resp := toConferenceResponse(c)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *conferenceService) Update(ctx context.Context, id, userID int64, req *dto.SaveConferenceRequest) error {
	c, err := s.fromRequest(req)
	if err != nil {
		return err
	}
	c.ID = id
	c.UserID = userID

	if err := s.repo.Conference.Update(ctx, c, req.TagIDs); err != nil {
		logWriteError(s.logger, "更新会议失败", err, zap.Int64("id", id))
		return err
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *conferenceService) Delete(ctx context.Context, id, userID int64) error {
	if err := s.repo.Conference.Delete(ctx, id, userID); err != nil {
		logWriteError(s.logger, "删除会议失败", err, zap.Int64("id", id))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *conferenceService) fromRequest(req *dto.SaveConferenceRequest) (*model.Conference, error) {
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, ErrInvalidDateRange
	}
	status := req.AttendanceStatus
	if status == "" {
		status = model.AttendanceInterested
	}
	return &model.Conference{
		Name:               req.Name,
		Location:           req.Location,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		SubmissionDeadline: req.SubmissionDeadline,
		AttendanceStatus:   status,
		Website:            req.Website,
		Notes:              req.Notes,
	}, nil
}
