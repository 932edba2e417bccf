package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/saferoads-vn/report-service/internal/validator"
)

// ===== SENTINEL ERRORS =====

var (
	ErrReportNotFound     = errors.New("report not found")
	ErrReportTypeNotFound = errors.New("report type not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserBlocked        = errors.New("user is blocked")
	ErrRewardNotFound     = errors.New("reward version not found")
)

// ===== VALIDATION ERRORS =====

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on field %q: %s", e.Field, e.Message)
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// ValidationErrors aggregates per-field failures from one request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}

	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// fromValidatorErrors converts validator package failures into the service
// error type handlers know how to map.
func fromValidatorErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for i, ve := range errs {
		out[i] = ValidationError{Field: ve.Field, Message: ve.Message, Value: ve.Value}
	}
	return out
}

// ===== PERMISSION ERRORS =====

// PermissionError is returned when a caller may not perform an operation on a
// resource, regardless of whether the resource exists.
type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id,omitempty"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// ===== BUSINESS RULE ERRORS =====

// BusinessRuleError is returned when a request is well formed but violates a
// domain rule, such as deciding a report that already left PENDING.
type BusinessRuleError struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %q violated: %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message}
}
