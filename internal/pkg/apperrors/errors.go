package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrConflict     = errors.New("conflict")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthTokenExpired   = errors.New("authentication token expired")
	ErrAuthTokenInvalid   = errors.New("invalid authentication token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")
)

// Catalog errors
var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrCycleDetected   = errors.New("prerequisite cycle detected")
	ErrSubjectInUse    = errors.New("subject is a prerequisite of other subjects and cannot be removed")
	ErrGraphCorrupted  = errors.New("prerequisite graph corrupted")
)

// Student errors
var (
	ErrStudentNotFound         = errors.New("student not found")
	ErrEnrollmentNumberExists  = errors.New("enrollment number already exists")
	ErrInvalidTransition       = errors.New("invalid student status transition")
	ErrInactiveStudent         = errors.New("student is not active")
	ErrAlreadyCompleted        = errors.New("subject already completed")
	ErrPrerequisitesUnmet      = errors.New("prerequisites not satisfied")
)

// Checkout errors
var (
	ErrTokenExpired = errors.New("checkout token expired")
)

// User errors
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with an underlying sentinel error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// NewNotFoundError creates a custom not-found error with a message
func NewNotFoundError(message string) error {
	return &CustomError{Err: ErrNotFound, Message: message}
}

// NewConflictError creates a custom conflict error with a message
func NewConflictError(message string) error {
	return &CustomError{Err: ErrConflict, Message: message}
}

// NewValidationError creates a custom validation error with a message
func NewValidationError(message string) error {
	return &CustomError{Err: ErrValidationFailed, Message: message}
}

// Is reports whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
