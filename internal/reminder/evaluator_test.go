package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"research-agenda/backend/internal/model"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tp(s string) *time.Time {
	t := at(s)
	return &t
}

func conferenceActivity(deadline *time.Time) *model.Activity {
	start := at("2026-06-01T00:00:00Z")
	return &model.Activity{Type: model.ActivityConference, ID: 1, UserID: 1, Title: "ICSE", Deadline: deadline, Fallback: &start}
}

func weekBefore() *model.Reminder {
	return &model.Reminder{
		ID:              1,
		UserID:          1,
		ActivityType:    model.ActivityConference,
		ActivityID:      1,
		ReminderType:    model.ReminderConferenceDeadline,
		DaysBeforeEvent: 7,
		ReminderTime:    "09:00",
		IsEnabled:       true,
	}
}

func TestEvaluate(t *testing.T) {
	deadline := tp("2026-03-08T00:00:00Z")

	tests := []struct {
		name     string
		mutate   func(r *model.Reminder)
		activity *model.Activity
		now      string
		due      bool
		skip     string
	}{
		{name: "触发日 09:00 之前不发送", activity: conferenceActivity(deadline), now: "2026-03-01T08:59:00Z"},
		{name: "触发日 09:00 发送", activity: conferenceActivity(deadline), now: "2026-03-01T09:00:00Z", due: true},
		{name: "触发日之前不发送", activity: conferenceActivity(deadline), now: "2026-02-28T12:00:00Z"},
		{name: "未启用", activity: conferenceActivity(deadline), now: "2026-03-01T10:00:00Z",
			mutate: func(r *model.Reminder) { r.IsEnabled = false }},
		{name: "当天已发送", activity: conferenceActivity(deadline), now: "2026-03-01T15:00:00Z",
			mutate: func(r *model.Reminder) { r.LastSentAt = tp("2026-03-01T09:00:05Z") }},
		{name: "错过的触发日补发一次", activity: conferenceActivity(deadline), now: "2026-03-03T10:00:00Z", due: true},
		{name: "错过的触发日已补发", activity: conferenceActivity(deadline), now: "2026-03-04T10:00:00Z",
			mutate: func(r *model.Reminder) { r.LastSentAt = tp("2026-03-03T10:00:00Z") }},
		{name: "上一周期的发送不影响本周期", activity: conferenceActivity(deadline), now: "2026-03-01T09:30:00Z", due: true,
			mutate: func(r *model.Reminder) { r.LastSentAt = tp("2026-01-10T09:00:00Z") }},
		{name: "事件已过去", activity: conferenceActivity(deadline), now: "2026-03-09T10:00:00Z"},
		{name: "事件当天 0 天提醒", activity: conferenceActivity(deadline), now: "2026-03-08T09:00:00Z", due: true,
			mutate: func(r *model.Reminder) { r.DaysBeforeEvent = 0 }},
		{name: "活动已删除", activity: nil, now: "2026-03-01T09:00:00Z", skip: SkipStale},
		{name: "时间格式非法", activity: conferenceActivity(deadline), now: "2026-03-01T09:00:00Z", skip: SkipInvalidTime,
			mutate: func(r *model.Reminder) { r.ReminderTime = "9am" }},
		{name: "会议无截止日期", activity: conferenceActivity(nil), now: "2026-05-25T09:00:00Z"},
		{name: "自定义提醒回退到开始日期", activity: conferenceActivity(nil), now: "2026-05-25T09:00:00Z", due: true,
			mutate: func(r *model.Reminder) { r.ReminderType = model.ReminderCustom }},
	}

	e := NewEvaluator(time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := weekBefore()
			if tt.mutate != nil {
				tt.mutate(r)
			}
			d := e.Evaluate(r, tt.activity, at(tt.now))
			assert.Equal(t, tt.due, d.Due)
			assert.Equal(t, tt.skip, d.Skip)
		})
	}
}

func TestEvaluate_IdempotentWithinDay(t *testing.T) {
	e := NewEvaluator(time.UTC)
	r := weekBefore()
	activity := conferenceActivity(tp("2026-03-08T00:00:00Z"))

	first := at("2026-03-01T09:00:00Z")
	assert.True(t, e.Evaluate(r, activity, first).Due)

	r.LastSentAt = &first
	assert.False(t, e.Evaluate(r, activity, at("2026-03-01T09:05:00Z")).Due)
	assert.False(t, e.Evaluate(r, activity, at("2026-03-01T23:59:00Z")).Due)
}

func TestEvaluate_Timezone(t *testing.T) {
	cst := time.FixedZone("CST", 8*3600)
	e := NewEvaluator(cst)
	r := weekBefore()
	// 截止日期为当地 3 月 8 日
	activity := conferenceActivity(tp("2026-03-07T16:00:00Z"))

	// UTC 02-28 23:30 = 当地 03-01 07:30
	assert.False(t, e.Evaluate(r, activity, at("2026-02-28T23:30:00Z")).Due)
	// UTC 03-01 01:00 = 当地 03-01 09:00
	d := e.Evaluate(r, activity, at("2026-03-01T01:00:00Z"))
	assert.True(t, d.Due)
	assert.True(t, d.TriggerAt.Equal(at("2026-03-01T01:00:00Z")))

	// 当地同一天内已发送（UTC 前一天）
	r.LastSentAt = tp("2026-02-28T17:00:00Z")
	assert.False(t, e.Evaluate(r, activity, at("2026-03-01T03:00:00Z")).Due)
}

func TestEventDate(t *testing.T) {
	target := tp("2026-04-01T00:00:00Z")
	submission := tp("2026-03-15T00:00:00Z")
	r := &model.Reminder{ReminderType: model.ReminderSubmissionDeadline}

	ms := &model.Activity{Type: model.ActivityManuscript, Fallback: target}
	assert.Equal(t, target, EventDate(r, ms), "无投稿日期时回退到目标日期")

	ms.Deadline = submission
	assert.Equal(t, submission, EventDate(r, ms))

	meetingDate := tp("2026-03-02T14:00:00Z")
	mt := &model.Activity{Type: model.ActivityMeeting, Deadline: meetingDate}
	assert.Equal(t, meetingDate, EventDate(r, mt))
}
