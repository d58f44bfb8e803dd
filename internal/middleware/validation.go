package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Enrollment numbers look like INS-2024-0042: an uppercase prefix, the
// admission year and a sequence number.
var enrollmentNumberPattern = regexp.MustCompile(`^[A-Z]{2,5}-\d{4}-\d{1,6}$`)

// RegisterValidators installs custom binding validators on gin's engine
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("enrollnum", func(fl validator.FieldLevel) bool {
		return enrollmentNumberPattern.MatchString(fl.Field().String())
	})
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "enrollnum":
		return e.Field() + " must look like INS-2024-0042"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
