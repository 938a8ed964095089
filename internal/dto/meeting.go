package dto

import "time"

// ── 组会模块 DTO ──

// SaveMeetingRequest 创建/更新组会请求
type SaveMeetingRequest struct {
	Title        string    `json:"title"        binding:"required,min=1,max=500"`
	Date         time.Time `json:"date"         binding:"required"`
	Duration     *int      `json:"duration"     binding:"omitempty,min=0"`
	Participants []string  `json:"participants" binding:"omitempty,max=200,dive,max=200"`
	Location     *string   `json:"location"     binding:"omitempty,max=255"`
	Agenda       *string   `json:"agenda"`
	Notes        *string   `json:"notes"`
	TagIDs       *[]int64  `json:"tag_ids"      binding:"omitempty,dive,min=1"`
}

// MeetingResponse 组会信息响应
type MeetingResponse struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	Date         string        `json:"date"`
	Duration     *int          `json:"duration"`
	Participants []string      `json:"participants"`
	Location     *string       `json:"location"`
	Agenda       *string       `json:"agenda"`
	Notes        *string       `json:"notes"`
	Tags         []TagResponse `json:"tags"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
}
