package models

import "time"

// PointRewardVersion is a time-windowed reward configuration. The row with a
// NULL EndDate is the version currently in effect; at most one such row may
// exist at any time.
type PointRewardVersion struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Amount    int        `json:"amount" gorm:"not null" validate:"required,gt=0"`
	StartDate time.Time  `json:"start_date" gorm:"not null;index"`
	EndDate   *time.Time `json:"end_date" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PointRewardVersion) TableName() string {
	return "point_reward_versions"
}

// IsOpen reports whether this version is the one currently in effect.
func (v *PointRewardVersion) IsOpen() bool {
	return v.EndDate == nil
}
