package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvarela/uniregistro/internal/app/models/dto"
	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
)

func handleError(t *testing.T, err error) (int, *dto.ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/subjects/order", nil)

	HandleAPIError(c, err)

	var response dto.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	return recorder.Code, &response
}

func TestHandleAPIErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"validation", apperrors.NewValidationError("bad input"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"invalid credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"subject not found", apperrors.ErrSubjectNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"cycle rejected", fmt.Errorf("%w: 1 is reachable from 2", apperrors.ErrCycleDetected), http.StatusConflict, dto.ErrorCodeCycleDetected},
		{"stale checkout", apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeVersionConflict},
		{"expired checkout", apperrors.ErrTokenExpired, http.StatusConflict, dto.ErrorCodeCheckoutExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, response := handleError(t, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			require.NotNil(t, response.Error)
			assert.Equal(t, tt.wantCode, response.Error.Code)
			assert.False(t, response.Success)
		})
	}
}

func TestHandleAPIErrorGraphCorruptionIsServerSide(t *testing.T) {
	// A rejected edge is a client conflict; a corrupted graph discovered
	// during ordering is an integrity failure and must not look retryable.
	status, response := handleError(t, fmt.Errorf("%w: topological order impossible", apperrors.ErrGraphCorrupted))
	assert.Equal(t, http.StatusInternalServerError, status)
	require.NotNil(t, response.Error)
	assert.Equal(t, dto.ErrorCodeGraphCorrupted, response.Error.Code)
	assert.Equal(t, dto.ErrorSeverityCritical, response.Error.Severity)
}
