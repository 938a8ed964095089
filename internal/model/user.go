package model

import "time"

// 用户角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户表 — 对应 users，身份来自外部 OIDC 提供方
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"                json:"id"`
	OpenID       string    `gorm:"column:open_id;type:varchar(64);uniqueIndex;not null" json:"open_id"`
	Name         *string   `gorm:"type:text"                               json:"name"`
	Email        *string   `gorm:"type:varchar(320)"                       json:"email"`
	LoginMethod  *string   `gorm:"type:varchar(64)"                        json:"login_method"`
	Role         string    `gorm:"type:varchar(10);not null;default:'user'" json:"role"`
	LastSignedIn time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"      json:"last_signed_in"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
