package model

import (
	"fmt"
	"time"
)

// 提醒类型
const (
	ReminderSubmissionDeadline = "submission_deadline"
	ReminderConferenceDeadline = "conference_deadline"
	ReminderMeetingTime        = "meeting_time"
	ReminderCustom             = "custom"
)

// 发送日志状态
const (
	LogStatusSent    = "sent"
	LogStatusFailed  = "failed"
	LogStatusBounced = "bounced"
)

// 提醒默认值
const (
	DefaultDaysBeforeEvent = 7
	DefaultReminderTime    = "09:00"
)

// Reminder 提醒表 — 对应 reminders
type Reminder struct {
	ID              int64      `gorm:"primaryKey;autoIncrement"              json:"id"`
	UserID          int64      `gorm:"not null;index"                        json:"user_id"`
	ActivityType    string     `gorm:"type:varchar(20);not null"             json:"activity_type"`
	ActivityID      int64      `gorm:"not null"                              json:"activity_id"`
	ReminderType    string     `gorm:"type:varchar(30);not null"             json:"reminder_type"`
	DaysBeforeEvent int        `gorm:"not null"                              json:"days_before_event"`
	ReminderTime    string     `gorm:"type:varchar(5);not null;default:'09:00'" json:"reminder_time"`
	IsEnabled       bool       `gorm:"not null"                              json:"is_enabled"`
	LastSentAt      *time.Time `                                             json:"last_sent_at"`
	BaseModel
}

// TableName 指定表名
func (Reminder) TableName() string { return "reminders" }

// ReminderLog 提醒发送日志 — 对应 reminder_logs，仅追加
type ReminderLog struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"              json:"id"`
	ReminderID   int64     `gorm:"not null;index"                        json:"reminder_id"`
	Email        string    `gorm:"type:varchar(320);not null"            json:"email"`
	SentAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"    json:"sent_at"`
	Status       string    `gorm:"type:varchar(10);not null;default:'sent'" json:"status"`
	ErrorMessage *string   `gorm:"type:text"                             json:"error_message"`
}

// TableName 指定表名
func (ReminderLog) TableName() string { return "reminder_logs" }

// ParseReminderTime 解析 HH:MM（24 小时制）
func ParseReminderTime(s string) (hour, minute int, err error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, fmt.Errorf("提醒时间格式无效: %q", s)
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("提醒时间格式无效: %q", s)
	}
	return t.Hour(), t.Minute(), nil
}
