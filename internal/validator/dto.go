package validator

import "time"

// ReportCreateRequest represents the request structure for submitting reports
type ReportCreateRequest struct {
	Title        string   `json:"title" validate:"required,report_title"`
	Description  string   `json:"description" validate:"required,report_description"`
	Latitude     float64  `json:"latitude" validate:"required,latitude"`
	Longitude    float64  `json:"longitude" validate:"required,longitude"`
	ReportTypeID string   `json:"report_type_id" validate:"required"`
	Photos       []string `json:"photos" validate:"omitempty,max=5,dive,url"`
}

// ReportDecideRequest represents a moderation decision on a pending report
type ReportDecideRequest struct {
	Approved        bool    `json:"approved"`
	RejectionReason *string `json:"rejection_reason" validate:"omitempty,max=500"`
}

// ReportListRequest represents moderation listing filters
type ReportListRequest struct {
	Status       *string `form:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
	City         *string `form:"city" validate:"omitempty,max=100"`
	District     *string `form:"district" validate:"omitempty,max=100"`
	ReportTypeID *string `form:"report_type_id"`
	Search       *string `form:"search" validate:"omitempty,max=200"`
	Page         int     `form:"page" validate:"omitempty,min=1"`
	Size         int     `form:"size" validate:"omitempty,min=1,max=100"`
}

// RewardCreateRequest represents a new point reward version. StartDate
// defaults to the server clock when omitted.
type RewardCreateRequest struct {
	Amount    int        `json:"amount" validate:"required,gt=0"`
	StartDate *time.Time `json:"start_date"`
}
