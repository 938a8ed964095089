package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"research-agenda/backend/internal/dto"
	"research-agenda/backend/internal/model"
	"research-agenda/backend/internal/repository"
)

// ── 组会模块业务错误 ──

var (
	ErrMeetingNotFound = errors.New("组会不存在")
)

// MeetingService 组会业务接口
type MeetingService interface {
	List(ctx context.Context, userID int64, search string) ([]dto.MeetingResponse, error)
	GetByID(ctx context.Context, id, userID int64) (*dto.MeetingResponse, error)
	Create(ctx context.Context, userID int64, req *dto.SaveMeetingRequest) (*dto.MeetingResponse, error)
	Update(ctx context.Context, id, userID int64, req *dto.SaveMeetingRequest) error
	Delete(ctx context.Context, id, userID int64) error
}

type meetingService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMeetingService 创建 MeetingService 实例
func NewMeetingService(repo *repository.Repository, logger *zap.Logger) MeetingService {
	return &meetingService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *meetingService) List(ctx context.Context, userID int64, search string) ([]dto.MeetingResponse, error) {
	meetings, err := s.repo.Meeting.List(ctx, userID, search)
	if err != nil {
		s.logger.Error("列出组会失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.MeetingResponse, 0, len(meetings))
	for i := range meetings {
		result = append(result, toMeetingResponse(&meetings[i]))
	}
	return result, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *meetingService) GetByID(ctx context.Context, id, userID int64) (*dto.MeetingResponse, error) {
	m, err := s.repo.Meeting.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMeetingNotFound
		}
		s.logger.Error("查询组会失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	resp := toMeetingResponse(m)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *meetingService) Create(ctx context.Context, userID int64, req *dto.SaveMeetingRequest) (*dto.MeetingResponse, error) {
	m := fromMeetingRequest(req)
	m.UserID = userID

	var tagIDs []int64
	if req.TagIDs != nil {
		tagIDs = *req.TagIDs
	}
	if err := s.repo.Meeting.Create(ctx, m, tagIDs); err != nil {
		logWriteError(s.logger, "创建组会失败", err, zap.Int64("user_id", userID))
		return nil, err
	}

	if len(tagIDs) > 0 {
		if full, err := s.repo.Meeting.GetByID(ctx, m.ID, userID); err == nil {
			m = full
		} else {
			s.logger.Warn("回读组会失败", zap.Int64("id", m.ID), zap.Error(err))
		}
	}
	resp := toMeetingResponse(m)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *meetingService) Update(ctx context.Context, id, userID int64, req *dto.SaveMeetingRequest) error {
	m := fromMeetingRequest(req)
	m.ID = id
	m.UserID = userID

	if err := s.repo.Meeting.Update(ctx, m, req.TagIDs); err != nil {
		logWriteError(s.logger, "更新组会失败", err, zap.Int64("id", id))
		return err
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *meetingService) Delete(ctx context.Context, id, userID int64) error {
	if err := s.repo.Meeting.Delete(ctx, id, userID); err != nil {
		logWriteError(s.logger, "删除组会失败", err, zap.Int64("id", id))
		return err
	}
	return nil
}

func fromMeetingRequest(req *dto.SaveMeetingRequest) *model.Meeting {
	participants := make(datatypes.JSONSlice[string], 0, len(req.Participants))
	participants = append(participants, req.Participants...)
	return &model.Meeting{
		Title:        req.Title,
		Date:         req.Date,
		Duration:     req.Duration,
		Participants: participants,
		Location:     req.Location,
		Agenda:       req.Agenda,
		Notes:        req.Notes,
	}
}
