package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleDriver    UserRole = "DRIVER"
	RoleModerator UserRole = "MODERATOR"
	RoleAdmin     UserRole = "ADMIN"
)

// IsValid reports whether the role belongs to the closed role set.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleDriver, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string   `json:"id" gorm:"primaryKey;size:255"`
	Name      string   `json:"name" gorm:"size:100"`
	Email     string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role      UserRole `json:"role" gorm:"not null;default:DRIVER;size:20;index"`
	Points    int      `json:"points" gorm:"not null;default:0"`
	IsBlocked bool     `json:"is_blocked" gorm:"not null;default:false"`

	// Profile info
	AvatarURL *string `json:"avatar_url" gorm:"size:500"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
