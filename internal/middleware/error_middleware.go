package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mvarela/uniregistro/internal/app/models/dto"
	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
	"github.com/mvarela/uniregistro/internal/pkg/logger"
)

// HandleAPIError maps application errors to HTTP responses. Every state the
// client can recover from by re-reading and retrying maps to 409; malformed
// input maps to 400; everything unrecognized is a 500.
func HandleAPIError(c *gin.Context, err error) {
	var custom *apperrors.CustomError
	message := ""
	if errors.As(err, &custom) {
		message = custom.Message
	}

	respond := func(status int, code dto.ErrorCode, fallback string) {
		if message == "" {
			message = fallback
		}
		c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
	}

	switch {
	// 400: the request itself is malformed
	case apperrors.Is(err, apperrors.ErrValidationFailed, apperrors.ErrBadRequest):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed")

	// 401 / 403: authentication and authorization
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrAuthTokenExpired):
		respond(http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Authentication token expired")
	case errors.Is(err, apperrors.ErrAuthTokenInvalid):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid authentication token")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		respond(http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respond(http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied")

	// 404: the addressed resource does not exist
	case apperrors.Is(err, apperrors.ErrSubjectNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Subject not found")
	case apperrors.Is(err, apperrors.ErrStudentNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found")
	case apperrors.Is(err, apperrors.ErrUserNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found")
	case errors.Is(err, apperrors.ErrNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found")

	// 409: the request was well formed but lost against current state
	case errors.Is(err, apperrors.ErrCycleDetected):
		respond(http.StatusConflict, dto.ErrorCodeCycleDetected, "Prerequisite would create a cycle")
	case errors.Is(err, apperrors.ErrSubjectInUse):
		respond(http.StatusConflict, dto.ErrorCodeSubjectInUse, "Subject is required by other subjects")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(http.StatusConflict, dto.ErrorCodeCheckoutExpired, "Checkout token expired, check out again")
	case errors.Is(err, apperrors.ErrConflict):
		respond(http.StatusConflict, dto.ErrorCodeVersionConflict, "Record was modified by another user, check out again")
	case errors.Is(err, apperrors.ErrInvalidTransition):
		respond(http.StatusConflict, dto.ErrorCodeInvalidTransition, "Status transition not allowed")
	case errors.Is(err, apperrors.ErrInactiveStudent):
		respond(http.StatusConflict, dto.ErrorCodeInactiveStudent, "Student is not active")
	case errors.Is(err, apperrors.ErrAlreadyCompleted):
		respond(http.StatusConflict, dto.ErrorCodeAlreadyCompleted, "Subject already completed")
	case errors.Is(err, apperrors.ErrPrerequisitesUnmet):
		respond(http.StatusConflict, dto.ErrorCodePrerequisitesUnmet, "Prerequisites not satisfied")
	case apperrors.Is(err, apperrors.ErrEnrollmentNumberExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Enrollment number already exists")
	case apperrors.Is(err, apperrors.ErrUsernameExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Username already exists")
	case apperrors.Is(err, apperrors.ErrEmailExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrDuplicateKey):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists")

	// 500: an integrity failure the client cannot recover from by retrying
	case errors.Is(err, apperrors.ErrGraphCorrupted):
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Catalog graph corrupted")
		c.JSON(http.StatusInternalServerError,
			dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeGraphCorrupted, "Catalog integrity failure").
				WithSeverity(dto.ErrorSeverityCritical)))

	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled API error")
		c.JSON(http.StatusInternalServerError,
			dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	}
}

// HandleValidationError maps request binding failures to a 400 response
func HandleValidationError(c *gin.Context, err error) {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request body")

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		messages := make([]string, 0, len(fieldErrors))
		for _, fieldErr := range fieldErrors {
			messages = append(messages, formatValidationError(fieldErr))
		}
		detail = detail.WithDetails(messages)
	} else {
		detail = detail.WithDetails(err.Error())
	}

	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}
