package reminder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"research-agenda/backend/internal/model"
	"research-agenda/backend/internal/repository"
	"research-agenda/backend/pkg/metrics"
)

// errNoRecipient 提醒所属用户未设置邮箱时写入日志的错误信息
const errNoRecipient = "recipient has no email"

// outcomeWriteTimeout 发送结果落库的超时，独立于周期超时
const outcomeWriteTimeout = 5 * time.Second

// Mailer 邮件发送方
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Due 一条待发送的提醒及其上下文
type Due struct {
	Reminder  model.Reminder
	Activity  model.Activity
	EventDate time.Time
	Email     string
}

// Dispatcher 发送到期提醒并记录结果
//
// 顺序固定为：发送 → 写日志 → 推进 last_sent_at。
// 进程在写日志后、推进前退出时，下一轮会重复发送并产生重复的 sent 日志。
type Dispatcher struct {
	reminders repository.ReminderRepository
	mailer    Mailer
	metrics   *metrics.Metrics
	loc       *time.Location
	logger    *zap.Logger
}

// NewDispatcher 创建派发器；m 可为 nil
func NewDispatcher(reminders repository.ReminderRepository, mailer Mailer, m *metrics.Metrics, loc *time.Location, logger *zap.Logger) *Dispatcher {
	if loc == nil {
		loc = time.UTC
	}
	return &Dispatcher{reminders: reminders, mailer: mailer, metrics: m, loc: loc, logger: logger}
}

// Dispatch 发送单个提醒，返回是否发送成功
// 任何错误都记录为 failed 日志而不向上抛出，以免中断整批派发
func (d *Dispatcher) Dispatch(ctx context.Context, item *Due, now time.Time) bool {
	r := &item.Reminder
	fields := []zap.Field{
		zap.Int64("reminder_id", r.ID),
		zap.String("activity_type", r.ActivityType),
		zap.Int64("activity_id", r.ActivityID),
	}

	if item.Email == "" {
		d.fail(ctx, r.ID, "", errNoRecipient, now)
		d.logger.Warn("提醒收件人未设置邮箱", fields...)
		return false
	}

	subject, body := compose(item, d.loc)
	if err := d.mailer.Send(ctx, item.Email, subject, body); err != nil {
		d.fail(ctx, r.ID, item.Email, err.Error(), now)
		d.logger.Warn("提醒邮件发送失败", append(fields, zap.Error(err))...)
		return false
	}

	// 邮件已发出，结果写入不受周期超时影响
	writeCtx, cancel := outcomeContext(ctx)
	defer cancel()

	// 日志必须先于 last_sent_at 落库
	if err := d.reminders.CreateLog(writeCtx, &model.ReminderLog{
		ReminderID: r.ID,
		Email:      item.Email,
		SentAt:     now,
		Status:     model.LogStatusSent,
	}); err != nil {
		d.metrics.ReminderFailed()
		d.logger.Error("写入提醒日志失败", append(fields, zap.Error(err))...)
		return false
	}

	if _, err := d.reminders.MarkSent(writeCtx, r.ID, now); err != nil {
		// 邮件已发出，下一轮可能重复发送
		d.logger.Error("更新 last_sent_at 失败", append(fields, zap.Error(err))...)
	}

	d.metrics.ReminderSent()
	d.logger.Info("提醒已发送", fields...)
	return true
}

func (d *Dispatcher) fail(ctx context.Context, reminderID int64, email, msg string, now time.Time) {
	d.metrics.ReminderFailed()

	writeCtx, cancel := outcomeContext(ctx)
	defer cancel()
	if err := d.reminders.CreateLog(writeCtx, &model.ReminderLog{
		ReminderID:   reminderID,
		Email:        email,
		SentAt:       now,
		Status:       model.LogStatusFailed,
		ErrorMessage: &msg,
	}); err != nil {
		d.logger.Error("写入提醒日志失败", zap.Int64("reminder_id", reminderID), zap.Error(err))
	}
}

// outcomeContext 保留 ctx 的值但脱离其取消与截止时间
func outcomeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), outcomeWriteTimeout)
}

// ── 邮件内容 ──

var activityNames = map[string]string{
	model.ActivityManuscript: "稿件",
	model.ActivityConference: "会议",
	model.ActivityMeeting:    "组会",
}

var reminderTypeNames = map[string]string{
	model.ReminderSubmissionDeadline: "投稿截止",
	model.ReminderConferenceDeadline: "会议截止",
	model.ReminderMeetingTime:        "组会时间",
	model.ReminderCustom:             "日程",
}

func compose(item *Due, loc *time.Location) (subject, body string) {
	kind := reminderTypeNames[item.Reminder.ReminderType]
	if kind == "" {
		kind = "日程"
	}
	subject = fmt.Sprintf("[Research Agenda] %s提醒: %s", kind, item.Activity.Title)

	layout := "2006-01-02"
	if item.Activity.Type == model.ActivityMeeting {
		layout = "2006-01-02 15:04"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s「%s」\n", activityNames[item.Activity.Type], item.Activity.Title)
	fmt.Fprintf(&b, "日期: %s\n", item.EventDate.In(loc).Format(layout))
	if days := item.Reminder.DaysBeforeEvent; days > 0 {
		fmt.Fprintf(&b, "本提醒设置为提前 %d 天发送。\n", days)
	}
	return subject, b.String()
}
