package dto

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewErrorResponse(t *testing.T) {
	got := NewErrorResponse(ErrorCodeNotFound, "no route").WithTraceID("trace-123")

	assert.Equal(t, &ErrorResponse{
		Error:   ErrorDetail{Code: ErrorCodeNotFound, Message: "no route"},
		TraceID: "trace-123",
	}, got)
}

func TestNewErrorResponseWithDetails(t *testing.T) {
	got := NewErrorResponseWithDetails(ErrorCodeValidation, "query validation failed", map[string]string{
		"count": "must be at least 1",
	})

	assert.Equal(t, ErrorCodeValidation, got.Error.Code)
	assert.Equal(t, "must be at least 1", got.Error.Details["count"])
	assert.Empty(t, got.TraceID)
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeBadGateway, http.StatusBadGateway},
		{ErrorCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromCode(tt.code))
		})
	}
}

func TestNewFireTime(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Krasnoyarsk")
	require.NoError(t, err)

	at := time.Date(2024, 3, 14, 17, 0, 0, 0, time.UTC)
	got := NewFireTime(at.In(loc), loc)

	assert.Equal(t, time.UTC, got.UTC.Location())
	assert.True(t, at.Equal(got.UTC))
	assert.Equal(t, "2024-03-15 00:00:00 +07", got.Local)
}

func TestBindQueryAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantErr     error
		wantCount   int
		wantDetails map[string]string
	}{
		{name: "empty", query: ""},
		{name: "in range", query: "count=12", wantCount: 12},
		{name: "upper bound", query: "count=48", wantCount: 48},
		{
			name:        "below minimum",
			query:       "count=-3",
			wantErr:     ErrValidation,
			wantDetails: map[string]string{"count": "must be at least 1"},
		},
		{
			name:        "above maximum",
			query:       "count=100",
			wantErr:     ErrValidation,
			wantDetails: map[string]string{"count": "must be at most 48"},
		},
		{name: "not a number", query: "count=ten", wantErr: ErrBinding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/schedule?"+tt.query, nil)

			var q ScheduleQuery
			err := BindQueryAndValidate(c, &q)

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.wantCount, q.Count)

				return
			}

			require.ErrorIs(t, err, tt.wantErr)

			if tt.wantDetails != nil {
				assert.Equal(t, tt.wantDetails, ValidationErrors(err))
			}
		})
	}
}

func TestValidationErrors_NonValidatorError(t *testing.T) {
	assert.Empty(t, ValidationErrors(errors.New("boom")))
}
