package reminder

import (
	"time"

	"research-agenda/backend/internal/model"
)

// 跳过原因
const (
	SkipStale       = "stale"        // 关联活动已不存在
	SkipInvalidTime = "invalid_time" // reminder_time 无法解析
)

// Decision 单个提醒的判定结果
type Decision struct {
	Due bool
	// Skip 非空表示该提醒无法判定，计入 Skipped
	Skip string
	// TriggerAt 本轮触发时刻；无事件日期时为零值
	TriggerAt time.Time
}

// Evaluator 判定提醒是否到期，不做任何 I/O
type Evaluator struct {
	loc *time.Location
}

// NewEvaluator 创建判定器；loc 决定"同一天"的边界，nil 时使用 UTC
func NewEvaluator(loc *time.Location) *Evaluator {
	if loc == nil {
		loc = time.UTC
	}
	return &Evaluator{loc: loc}
}

// Evaluate 判定 r 在 now 时刻是否应发送
//
// 到期条件：
//  1. 已启用
//  2. 事件日期减去 days_before_event 得到触发日，触发日的 reminder_time 为触发时刻，
//     now 已到达触发时刻；触发日在过去也会补发一次（last_sent_at 早于触发时刻）
//  3. last_sent_at 为空或与 now 不在同一天
//
// 事件日期早于今天的活动不再提醒。activity 为 nil 视为活动已删除。
func (e *Evaluator) Evaluate(r *model.Reminder, activity *model.Activity, now time.Time) Decision {
	if !r.IsEnabled {
		return Decision{}
	}
	if activity == nil {
		return Decision{Skip: SkipStale}
	}
	hour, minute, err := model.ParseReminderTime(r.ReminderTime)
	if err != nil {
		return Decision{Skip: SkipInvalidTime}
	}

	event := EventDate(r, activity)
	if event == nil {
		return Decision{}
	}

	now = now.In(e.loc)
	today := dateOf(now, e.loc)
	eventDay := dateOf(event.In(e.loc), e.loc)
	if eventDay.Before(today) {
		return Decision{}
	}

	triggerDay := eventDay.AddDate(0, 0, -r.DaysBeforeEvent)
	triggerAt := time.Date(triggerDay.Year(), triggerDay.Month(), triggerDay.Day(), hour, minute, 0, 0, e.loc)
	d := Decision{TriggerAt: triggerAt}

	if now.Before(triggerAt) {
		return d
	}
	if r.LastSentAt != nil {
		last := r.LastSentAt.In(e.loc)
		if sameDay(last, now) || !last.Before(triggerAt) {
			return d
		}
	}

	d.Due = true
	return d
}

// EventDate 返回提醒对应的事件日期
//   - 稿件：submission_date，缺省时取 target_date
//   - 会议：submission_deadline；custom 类型且无截止日期时取 start_date
//   - 组会：date
func EventDate(r *model.Reminder, a *model.Activity) *time.Time {
	switch a.Type {
	case model.ActivityManuscript:
		if a.Deadline != nil {
			return a.Deadline
		}
		return a.Fallback
	case model.ActivityConference:
		if a.Deadline != nil {
			return a.Deadline
		}
		if r.ReminderType == model.ReminderCustom {
			return a.Fallback
		}
		return nil
	default:
		return a.Deadline
	}
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
