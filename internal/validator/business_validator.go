package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single field failure produced by validation.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// ToValidationErrors converts go-playground validator errors to our format.
func ToValidationErrors(err error) ValidationErrors {
	var result ValidationErrors

	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			result = append(result, ValidationError{
				Field:   strings.ToLower(fe.Field()),
				Message: messageForTag(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
		return result
	}

	return ValidationErrors{{Field: "request", Message: err.Error()}}
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "report_title":
		return "must be between 1 and 200 characters"
	case "report_description":
		return "must be between 1 and 2000 characters"
	case "latitude":
		return "must be between -90 and 90"
	case "longitude":
		return "must be between -180 and 180"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateReportCreate validates report submission business rules
func (bv *BusinessValidator) ValidateReportCreate(req *ReportCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateReportDecide validates a moderation decision. A rejection must carry
// a non-empty reason; an approval must not carry one.
func (bv *BusinessValidator) ValidateReportDecide(req *ReportDecideRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if !req.Approved {
		if req.RejectionReason == nil || strings.TrimSpace(*req.RejectionReason) == "" {
			errors = append(errors, ValidationError{
				Field:   "rejection_reason",
				Message: "is required when rejecting a report",
				Rule:    "business_logic",
			})
		}
	} else if req.RejectionReason != nil && strings.TrimSpace(*req.RejectionReason) != "" {
		errors = append(errors, ValidationError{
			Field:   "rejection_reason",
			Message: "must be empty when approving a report",
			Value:   *req.RejectionReason,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateRewardCreate validates a new reward version
func (bv *BusinessValidator) ValidateRewardCreate(req *RewardCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Report title validation (1-200 characters)
	bv.validate.RegisterValidation("report_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	// Report description validation (1-2000 characters)
	bv.validate.RegisterValidation("report_description", func(fl validator.FieldLevel) bool {
		desc := strings.TrimSpace(fl.Field().String())
		return len(desc) >= 1 && len(desc) <= 2000
	})
}
