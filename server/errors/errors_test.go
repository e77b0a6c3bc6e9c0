package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("cause")
	tests := []struct {
		name string
		err  *AppError
		code int
	}{
		{"not found", NewNotFoundError("pattern not found", cause), http.StatusNotFound},
		{"validation", NewValidationError("bad request", cause), http.StatusBadRequest},
		{"too large", NewPayloadTooLargeError("file is too large", nil), http.StatusRequestEntityTooLarge},
		{"rate limited", NewTooManyRequestsError("slow down"), http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.StatusCode())
			assert.Equal(t, tt.err.Message, tt.err.UserMessage())
		})
	}
}

// TestNewInternalError проверяет, что детали скрыты от пользователя, но доступны через Unwrap
func TestNewInternalError(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := NewInternalError("failed to store record", cause)

	assert.Equal(t, http.StatusInternalServerError, err.StatusCode())
	assert.Equal(t, "Internal server error", err.UserMessage())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to store record")
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "ignored"))

	wrapped := WrapError(NewNotFoundError("pattern not found", nil).WithContext("id=7"), "detail")
	assert.Equal(t, http.StatusNotFound, wrapped.StatusCode())
	assert.Equal(t, "detail: pattern not found", wrapped.UserMessage())
	assert.Equal(t, "id=7", wrapped.GetContext())

	plain := WrapError(errors.New("boom"), "mining")
	assert.Equal(t, http.StatusInternalServerError, plain.StatusCode())
}
