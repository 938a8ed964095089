package dto

import "time"

// ── 学术会议模块 DTO ──

// SaveConferenceRequest 创建/更新会议请求
type SaveConferenceRequest struct {
	Name               string     `json:"name"                binding:"required,min=1,max=500"`
	Location           *string    `json:"location"            binding:"omitempty,max=255"`
	StartDate          time.Time  `json:"start_date"          binding:"required"`
	EndDate            *time.Time `json:"end_date"`
	SubmissionDeadline *time.Time `json:"submission_deadline"`
	AttendanceStatus   string     `json:"attendance_status"   binding:"omitempty,oneof=interested submitted accepted attended rejected"`
	Website            *string    `json:"website"             binding:"omitempty,url,max=500"`
	Notes              *string    `json:"notes"`
	TagIDs             *[]int64   `json:"tag_ids"             binding:"omitempty,dive,min=1"`
}

// ConferenceResponse 会议信息响应
type ConferenceResponse struct {
	ID                 int64         `json:"id"`
	Name               string        `json:"name"`
	Location           *string       `json:"location"`
	StartDate          string        `json:"start_date"`
	EndDate            *string       `json:"end_date"`
	SubmissionDeadline *string       `json:"submission_deadline"`
	AttendanceStatus   string        `json:"attendance_status"`
	Website            *string       `json:"website"`
	Notes              *string       `json:"notes"`
	Tags               []TagResponse `json:"tags"`
	CreatedAt          string        `json:"created_at"`
	UpdatedAt          string        `json:"updated_at"`
}
