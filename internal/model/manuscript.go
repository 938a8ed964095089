package model

import "time"

// 稿件状态
const (
	ManuscriptDraft       = "draft"
	ManuscriptSubmitted   = "submitted"
	ManuscriptUnderReview = "under_review"
	ManuscriptAccepted    = "accepted"
	ManuscriptRejected    = "rejected"
	ManuscriptPublished   = "published"
)

// Manuscript 稿件表 — 对应 manuscripts
type Manuscript struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"                   json:"id"`
	UserID         int64      `gorm:"not null;index"                             json:"user_id"`
	Title          string     `gorm:"type:varchar(500);not null"                 json:"title"`
	Status         string     `gorm:"type:varchar(20);not null;default:'draft'"  json:"status"`
	Journal        *string    `gorm:"type:varchar(255)"                          json:"journal"`
	SubmissionDate *time.Time `                                                  json:"submission_date"`
	TargetDate     *time.Time `                                                  json:"target_date"`
	Notes          *string    `gorm:"type:text"                                  json:"notes"`
	BaseModel

	// 关联（由 Repository 按关联表解析，不参与写入）
	Tags []Tag `gorm:"-" json:"tags"`
}

// TableName 指定表名
func (Manuscript) TableName() string { return "manuscripts" }

// ManuscriptTag 稿件-标签关联表
type ManuscriptTag struct {
	ManuscriptID int64 `gorm:"primaryKey"`
	TagID        int64 `gorm:"primaryKey"`
}

// TableName 指定表名
func (ManuscriptTag) TableName() string { return "manuscript_tags" }
