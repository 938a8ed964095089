package dto

// ── 提醒模块 DTO ──

// CreateReminderRequest 创建提醒请求
type CreateReminderRequest struct {
	ActivityType    string  `json:"activity_type"     binding:"required,oneof=manuscript conference meeting"`
	ActivityID      int64   `json:"activity_id"       binding:"required,min=1"`
	ReminderType    string  `json:"reminder_type"     binding:"required,oneof=submission_deadline conference_deadline meeting_time custom"`
	DaysBeforeEvent *int    `json:"days_before_event" binding:"omitempty,min=0,max=365"`
	ReminderTime    *string `json:"reminder_time"     binding:"omitempty,hhmm"`
	IsEnabled       *bool   `json:"is_enabled"`
}

// UpdateReminderRequest 局部更新提醒请求
type UpdateReminderRequest struct {
	DaysBeforeEvent *int    `json:"days_before_event" binding:"omitempty,min=0,max=365"`
	ReminderTime    *string `json:"reminder_time"     binding:"omitempty,hhmm"`
	IsEnabled       *bool   `json:"is_enabled"`
}

// ReminderResponse 提醒信息响应
type ReminderResponse struct {
	ID              int64   `json:"id"`
	ActivityType    string  `json:"activity_type"`
	ActivityID      int64   `json:"activity_id"`
	ReminderType    string  `json:"reminder_type"`
	DaysBeforeEvent int     `json:"days_before_event"`
	ReminderTime    string  `json:"reminder_time"`
	IsEnabled       bool    `json:"is_enabled"`
	LastSentAt      *string `json:"last_sent_at"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// ReminderLogResponse 提醒发送日志
type ReminderLogResponse struct {
	ID           int64   `json:"id"`
	ReminderID   int64   `json:"reminder_id"`
	Email        string  `json:"email"`
	SentAt       string  `json:"sent_at"`
	Status       string  `json:"status"`
	ErrorMessage *string `json:"error_message"`
}

// RunRemindersResponse 一次提醒周期的执行结果
type RunRemindersResponse struct {
	Due     int  `json:"due"`
	Sent    int  `json:"sent"`
	Failed  int  `json:"failed"`
	Skipped int  `json:"skipped"`
	Locked  bool `json:"locked"`
}

// ReminderLogListRequest 提醒日志查询参数
type ReminderLogListRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}
