package model

import (
	"time"

	"gorm.io/datatypes"
)

// Meeting 组会/讨论表 — 对应 meetings
type Meeting struct {
	ID           int64                       `gorm:"primaryKey;autoIncrement"          json:"id"`
	UserID       int64                       `gorm:"not null;index"                    json:"user_id"`
	Title        string                      `gorm:"type:varchar(500);not null"        json:"title"`
	Date         time.Time                   `gorm:"not null"                          json:"date"`
	Duration     *int                        `                                         json:"duration"`
	Participants datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"  json:"participants"`
	Location     *string                     `gorm:"type:varchar(255)"                 json:"location"`
	Agenda       *string                     `gorm:"type:text"                         json:"agenda"`
	Notes        *string                     `gorm:"type:text"                         json:"notes"`
	BaseModel

	Tags []Tag `gorm:"-" json:"tags"`
}

// TableName 指定表名
func (Meeting) TableName() string { return "meetings" }

// NormalizeParticipants 保证参与人列表非 nil，空列表以 [] 存储与返回
func (m *Meeting) NormalizeParticipants() {
	if m.Participants == nil {
		m.Participants = datatypes.JSONSlice[string]{}
	}
}

// MeetingTag 组会-标签关联表
type MeetingTag struct {
	MeetingID int64 `gorm:"primaryKey"`
	TagID     int64 `gorm:"primaryKey"`
}

// TableName 指定表名
func (MeetingTag) TableName() string { return "meeting_tags" }
