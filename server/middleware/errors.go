package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPError интерфейс для ошибок с HTTP статусом и сообщением
// Используется для избежания циклических зависимостей
type HTTPError interface {
	error
	StatusCode() int
	UserMessage() string
	GetContext() string
	Unwrap() error
}

// ErrorResponse структура ответа об ошибке
type ErrorResponse struct {
	Error     bool   `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteGinError записывает JSON ошибку и логирует её
func WriteGinError(c *gin.Context, statusCode int, message string) {
	reqID := GetRequestIDFromGin(c)
	slog.Error("HTTP error",
		"error", message,
		"status_code", statusCode,
		"request_id", reqID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)
	abortWithError(c, statusCode, message, reqID)
}

// HandleGinError обрабатывает ошибку и возвращает JSON ответ.
// Ошибки, реализующие HTTPError, отдают свой статус и сообщение, остальные дают 500.
func HandleGinError(c *gin.Context, err error) {
	reqID := GetRequestIDFromGin(c)

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		slog.Error("HTTP error",
			"error", httpErr.Unwrap(),
			"user_message", httpErr.UserMessage(),
			"context", httpErr.GetContext(),
			"status_code", httpErr.StatusCode(),
			"request_id", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		abortWithError(c, httpErr.StatusCode(), httpErr.UserMessage(), reqID)
		return
	}

	slog.Error("HTTP error",
		"error", err,
		"request_id", reqID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)
	abortWithError(c, http.StatusInternalServerError, "Internal server error", reqID)
}

func abortWithError(c *gin.Context, statusCode int, message, reqID string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:     true,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: reqID,
	})
}
