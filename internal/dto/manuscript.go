package dto

import "time"

// ── 稿件模块 DTO ──

// SaveManuscriptRequest 创建/更新稿件请求
// 更新为整体替换：未提供的可选字段置空；TagIDs 为 nil 时保留原有标签
type SaveManuscriptRequest struct {
	Title          string     `json:"title"           binding:"required,min=1,max=500"`
	Status         string     `json:"status"          binding:"omitempty,oneof=draft submitted under_review accepted rejected published"`
	Journal        *string    `json:"journal"         binding:"omitempty,max=255"`
	SubmissionDate *time.Time `json:"submission_date"`
	TargetDate     *time.Time `json:"target_date"`
	Notes          *string    `json:"notes"`
	TagIDs         *[]int64   `json:"tag_ids"         binding:"omitempty,dive,min=1"`
}

// ManuscriptResponse 稿件信息响应
type ManuscriptResponse struct {
	ID             int64         `json:"id"`
	Title          string        `json:"title"`
	Status         string        `json:"status"`
	Journal        *string       `json:"journal"`
	SubmissionDate *string       `json:"submission_date"`
	TargetDate     *string       `json:"target_date"`
	Notes          *string       `json:"notes"`
	Tags           []TagResponse `json:"tags"`
	CreatedAt      string        `json:"created_at"`
	UpdatedAt      string        `json:"updated_at"`
}
