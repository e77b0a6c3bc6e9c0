package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGinRequestIDMiddleware проверяет генерацию и проброс request ID
func TestGinRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(GinRequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		assert.Equal(t, GetRequestIDFromGin(c), GetRequestID(c.Request.Context()))
		c.String(http.StatusOK, GetRequestIDFromGin(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	router.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))
}

func TestGinCORSMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		wantHeader string
	}{
		{"wildcard", []string{"*"}, "https://a.example.com", "*"},
		{"empty list allows all", nil, "https://a.example.com", "*"},
		{"listed origin", []string{"https://qc.example.com"}, "https://qc.example.com", "https://qc.example.com"},
		{"unlisted origin", []string{"https://qc.example.com"}, "https://evil.example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(GinCORSMiddleware(tt.allowed))
			router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tt.origin)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantHeader, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

// TestGinCORSMiddleware_Preflight проверяет ответ на OPTIONS без вызова обработчика
func TestGinCORSMiddleware_Preflight(t *testing.T) {
	called := false
	router := gin.New()
	router.Use(GinCORSMiddleware(nil))
	router.OPTIONS("/api/training/import", func(c *gin.Context) { called = true })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/training/import", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, called)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

// TestGinRateLimitMiddleware проверяет 429 после исчерпания лимита
func TestGinRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(GinRateLimitMiddleware(2))
	router.POST("/import", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/import", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "60", w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestGinRateLimitMiddleware_Disabled(t *testing.T) {
	router := gin.New()
	router.Use(GinRateLimitMiddleware(0))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

// TestGinRecoveryMiddleware проверяет, что паника превращается в 500
func TestGinRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(GinRequestIDMiddleware(), GinRecoveryMiddleware())
	router.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

// TestGinLoggerMiddleware_ObservesRoute проверяет, что наблюдатель получает шаблон маршрута
func TestGinLoggerMiddleware_ObservesRoute(t *testing.T) {
	var gotMethod, gotRoute string
	var gotStatus int
	observe := func(method, route string, status int) {
		gotMethod, gotRoute, gotStatus = method, route, status
	}

	router := gin.New()
	router.Use(GinLoggerMiddleware(nil, observe))
	router.GET("/api/training/patterns/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/training/patterns/abc", nil))

	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/api/training/patterns/:id", gotRoute)
	assert.Equal(t, http.StatusNotFound, gotStatus)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, "unmatched", gotRoute)
}

func TestGinGzipMiddleware(t *testing.T) {
	body := strings.Repeat("hero image missing ", 200)
	router := gin.New()
	router.Use(GinGzipMiddleware())
	router.GET("/api/training/stats", func(c *gin.Context) { c.String(http.StatusOK, body) })
	router.GET("/metrics", func(c *gin.Context) { c.String(http.StatusOK, body) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/training/stats", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	router.ServeHTTP(w, req)

	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, body, string(plain))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, body, w.Body.String())
}
