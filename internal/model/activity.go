package model

import "time"

// Activity 提醒可指向的活动的统一视图
//
// Deadline 为活动的主日期：稿件 submission_date、会议 submission_deadline、组会 date；
// Fallback 为次日期：稿件 target_date、会议 start_date，组会为空。
type Activity struct {
	Type     string
	ID       int64
	UserID   int64
	Title    string
	Deadline *time.Time
	Fallback *time.Time
}
