package model

// DefaultTagColor 标签默认颜色
const DefaultTagColor = "#3b82f6"

// Tag 标签表 — 对应 tags
type Tag struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"                        json:"id"`
	UserID int64  `gorm:"not null;index"                                  json:"user_id"`
	Name   string `gorm:"type:varchar(100);not null"                      json:"name"`
	Color  string `gorm:"type:varchar(20);not null;default:'#3b82f6'"     json:"color"`
	BaseModel
}

// TableName 指定表名
func (Tag) TableName() string { return "tags" }
