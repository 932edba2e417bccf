package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ReportStatus string

const (
	StatusPending  ReportStatus = "PENDING"
	StatusApproved ReportStatus = "APPROVED"
	StatusRejected ReportStatus = "REJECTED"
)

// IsTerminal reports whether a report in this status can no longer change.
func (s ReportStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Report struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	Title       string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string  `json:"description" gorm:"not null;type:text" validate:"required,max=2000"`
	Latitude    float64 `json:"latitude" gorm:"not null" validate:"min=-90,max=90"`
	Longitude   float64 `json:"longitude" gorm:"not null" validate:"min=-180,max=180"`

	// Resolved location, nullable when the geocoder was unreachable or the
	// address matched no known administrative unit.
	Address  *string `json:"address" gorm:"size:500"`
	City     *string `json:"city" gorm:"size:100;index"`
	District *string `json:"district" gorm:"size:100;index"`

	Status          ReportStatus `json:"status" gorm:"not null;default:PENDING;size:20;index"`
	RejectionReason *string      `json:"rejection_reason" gorm:"type:text"`

	// Photo URLs returned by the upload provider, stored opaquely.
	Photos datatypes.JSON `json:"photos" gorm:"type:jsonb"`

	ReportTypeID string  `json:"report_type_id" gorm:"not null;size:36;index"`
	UserID       string  `json:"user_id" gorm:"not null;size:255;index"`
	ModeratorID  *string `json:"moderator_id" gorm:"size:255"`

	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	ReportType ReportType `json:"report_type" gorm:"foreignKey:ReportTypeID"`
	User       User       `json:"user" gorm:"foreignKey:UserID"`
}

func (Report) TableName() string {
	return "reports"
}
