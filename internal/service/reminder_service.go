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

// ── 提醒模块业务错误 ──

var (
	ErrReminderNotFound    = errors.New("提醒不存在")
	ErrActivityNotFound    = errors.New("提醒关联的活动不存在")
	ErrInvalidReminderTime = errors.New("提醒时间格式应为 HH:MM")
)

// ReminderService 提醒业务接口
type ReminderService interface {
	List(ctx context.Context, userID int64) ([]dto.ReminderResponse, error)
	Create(ctx context.Context, userID int64, req *dto.CreateReminderRequest) (*dto.ReminderResponse, error)
	Update(ctx context.Context, id, userID int64, req *dto.UpdateReminderRequest) error
	Delete(ctx context.Context, id, userID int64) error
	Logs(ctx context.Context, id, userID int64, limit int) ([]dto.ReminderLogResponse, error)
}

type reminderService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReminderService 创建 ReminderService 实例
func NewReminderService(repo *repository.Repository, logger *zap.Logger) ReminderService {
	return &reminderService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *reminderService) List(ctx context.Context, userID int64) ([]dto.ReminderResponse, error) {
	reminders, err := s.repo.Reminder.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("列出提醒失败", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ReminderResponse, 0, len(reminders))
	for i := range reminders {
		result = append(result, toReminderResponse(&reminders[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *reminderService) Create(ctx context.Context, userID int64, req *dto.CreateReminderRequest) (*dto.ReminderResponse, error) {
	r := &model.Reminder{
		UserID:          userID,
		ActivityType:    req.ActivityType,
		ActivityID:      req.ActivityID,
		ReminderType:    req.ReminderType,
		DaysBeforeEvent: model.DefaultDaysBeforeEvent,
		ReminderTime:    model.DefaultReminderTime,
		IsEnabled:       true,
	}
	if req.DaysBeforeEvent != nil {
		r.DaysBeforeEvent = *req.DaysBeforeEvent
	}
	if req.ReminderTime != nil {
		if _, _, err := model.ParseReminderTime(*req.ReminderTime); err != nil {
			return nil, ErrInvalidReminderTime
		}
		r.ReminderTime = *req.ReminderTime
	}
	if req.IsEnabled != nil {
		r.IsEnabled = *req.IsEnabled
	}

	// 只能为自己的活动设置提醒
	if _, err := s.repo.Activity.Get(ctx, req.ActivityType, req.ActivityID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		logWriteError(s.logger, "查询提醒关联活动失败", err,
			zap.String("activity_type", req.ActivityType), zap.Int64("activity_id", req.ActivityID))
		return nil, err
	}

	if err := s.repo.Reminder.Create(ctx, r); err != nil {
		logWriteError(s.logger, "创建提醒失败", err, zap.Int64("user_id", userID))
		return nil, err
	}

	resp := toReminderResponse(r)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *reminderService) Update(ctx context.Context, id, userID int64, req *dto.UpdateReminderRequest) error {
	if req.ReminderTime != nil {
		if _, _, err := model.ParseReminderTime(*req.ReminderTime); err != nil {
			return ErrInvalidReminderTime
		}
	}

	settings := repository.ReminderSettings{
		DaysBeforeEvent: req.DaysBeforeEvent,
		ReminderTime:    req.ReminderTime,
		IsEnabled:       req.IsEnabled,
	}
	if err := s.repo.Reminder.UpdateSettings(ctx, id, userID, settings); err != nil {
		logWriteError(s.logger, "更新提醒失败", err, zap.Int64("id", id))
		return err
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *reminderService) Delete(ctx context.Context, id, userID int64) error {
	if err := s.repo.Reminder.Delete(ctx, id, userID); err != nil {
		logWriteError(s.logger, "删除提醒失败", err, zap.Int64("id", id))
		return err
	}
	return nil
}

// ────────────────────── Logs ──────────────────────

func (s *reminderService) Logs(ctx context.Context, id, userID int64, limit int) ([]dto.ReminderLogResponse, error) {
	if _, err := s.repo.Reminder.GetByID(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReminderNotFound
		}
		s.logger.Error("查询提醒失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	logs, err := s.repo.Reminder.ListLogs(ctx, id, userID, limit)
	if err != nil {
		s.logger.Error("查询提醒日志失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ReminderLogResponse, 0, len(logs))
	for i := range logs {
		result = append(result, toReminderLogResponse(&logs[i]))
	}
	return result, nil
}
