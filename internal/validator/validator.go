package validator

// Validator is the validation entry point handed to services.
type Validator struct {
	business *BusinessValidator
}

// New creates the shared validator instance.
func New() *Validator {
	return &Validator{
		business: NewBusinessValidator(),
	}
}

// GetBusinessValidator returns the business rule validator.
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// Validate runs struct tag validation on any request type.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	return v.business.Validate(s)
}
