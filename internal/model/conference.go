package model

import "time"

// 参会状态
const (
	AttendanceInterested = "interested"
	AttendanceSubmitted  = "submitted"
	AttendanceAccepted   = "accepted"
	AttendanceAttended   = "attended"
	AttendanceRejected   = "rejected"
)

// Conference 会议表 — 对应 conferences
type Conference struct {
	ID                 int64      `gorm:"primaryKey;autoIncrement"                      json:"id"`
	UserID             int64      `gorm:"not null;index"                                json:"user_id"`
	Name               string     `gorm:"type:varchar(500);not null"                    json:"name"`
	Location           *string    `gorm:"type:varchar(255)"                             json:"location"`
	StartDate          time.Time  `gorm:"not null"                                      json:"start_date"`
	EndDate            *time.Time `                                                     json:"end_date"`
	SubmissionDeadline *time.Time `                                                     json:"submission_deadline"`
	AttendanceStatus   string     `gorm:"type:varchar(20);not null;default:'interested'" json:"attendance_status"`
	Website            *string    `gorm:"type:varchar(500)"                             json:"website"`
	Notes              *string    `gorm:"type:text"                                     json:"notes"`
	BaseModel

	Tags []Tag `gorm:"-" json:"tags"`
}

// TableName 指定表名
func (Conference) TableName() string { return "conferences" }

// ConferenceTag 会议-标签关联表
type ConferenceTag struct {
	ConferenceID int64 `gorm:"primaryKey"`
	TagID        int64 `gorm:"primaryKey"`
}

// TableName 指定表名
func (ConferenceTag) TableName() string { return "conference_tags" }
