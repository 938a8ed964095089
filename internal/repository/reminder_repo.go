package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"research-agenda/backend/internal/model"
	"research-agenda/backend/pkg/database"
)

// ReminderSettings 提醒的局部更新字段，nil 表示不修改
type ReminderSettings struct {
	DaysBeforeEvent *int
	ReminderTime    *string
	IsEnabled       *bool
}

// Empty 是否没有任何待更新字段
func (s ReminderSettings) Empty() bool {
	return s.DaysBeforeEvent == nil && s.ReminderTime == nil && s.IsEnabled == nil
}

// ReminderRepository 提醒及发送日志数据访问接口
type ReminderRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]model.Reminder, error)
	GetByID(ctx context.Context, id, userID int64) (*model.Reminder, error)
	Create(ctx context.Context, reminder *model.Reminder) error
	UpdateSettings(ctx context.Context, id, userID int64, settings ReminderSettings) error
	Delete(ctx context.Context, id, userID int64) error

	// ListEnabled 返回所有用户已启用的提醒，供提醒周期使用
	ListEnabled(ctx context.Context) ([]model.Reminder, error)
	// MarkSent 推进 last_sent_at；只允许向前移动，返回是否实际更新
	MarkSent(ctx context.Context, id int64, at time.Time) (bool, error)

	CreateLog(ctx context.Context, log *model.ReminderLog) error
	ListLogs(ctx context.Context, reminderID, userID int64, limit int) ([]model.ReminderLog, error)
}

type reminderRepo struct {
	store *database.Store
}

// NewReminderRepo 创建 ReminderRepository 实例
func NewReminderRepo(store *database.Store) ReminderRepository {
	return &reminderRepo{store: store}
}

func (r *reminderRepo) ListByUser(ctx context.Context, userID int64) ([]model.Reminder, error) {
	reminders := []model.Reminder{}
	db, ok := reader(ctx, r.store)
	if !ok {
		return reminders, nil
	}
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *reminderRepo) GetByID(ctx context.Context, id, userID int64) (*model.Reminder, error) {
	db, ok := reader(ctx, r.store)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	var reminder model.Reminder
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&reminder).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *reminderRepo) Create(ctx context.Context, reminder *model.Reminder) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Create(reminder).Error
}

func (r *reminderRepo) UpdateSettings(ctx context.Context, id, userID int64, settings ReminderSettings) error {
	if settings.Empty() {
		return nil
	}
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{"updated_at": gorm.Expr("NOW()")}
	if settings.DaysBeforeEvent != nil {
		updates["days_before_event"] = *settings.DaysBeforeEvent
	}
	if settings.ReminderTime != nil {
		updates["reminder_time"] = *settings.ReminderTime
	}
	if settings.IsEnabled != nil {
		updates["is_enabled"] = *settings.IsEnabled
	}
	return db.Model(&model.Reminder{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates).Error
}

func (r *reminderRepo) Delete(ctx context.Context, id, userID int64) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Reminder{}).Error
}

func (r *reminderRepo) ListEnabled(ctx context.Context) ([]model.Reminder, error) {
	reminders := []model.Reminder{}
	db, ok := reader(ctx, r.store)
	if !ok {
		return reminders, nil
	}
	if err := db.Where("is_enabled = ?", true).
		Order("id ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *reminderRepo) MarkSent(ctx context.Context, id int64, at time.Time) (bool, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return false, err
	}
	result := db.Model(&model.Reminder{}).
		Where("id = ? AND (last_sent_at IS NULL OR last_sent_at < ?)", id, at).
		Updates(map[string]interface{}{
			"last_sent_at": at,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *reminderRepo) CreateLog(ctx context.Context, log *model.ReminderLog) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Create(log).Error
}

func (r *reminderRepo) ListLogs(ctx context.Context, reminderID, userID int64, limit int) ([]model.ReminderLog, error) {
	logs := []model.ReminderLog{}
	db, ok := reader(ctx, r.store)
	if !ok {
		return logs, nil
	}
	if limit <= 0 {
		limit = 50
	}
	owned := db.Model(&model.Reminder{}).Select("id").Where("id = ? AND user_id = ?", reminderID, userID)
	if err := db.Where("reminder_id IN (?)", owned).
		Order("sent_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
