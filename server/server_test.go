package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("TRAINING_DATABASE_PATH", ":memory:")
	t.Setenv("TRAINING_TABLES_PATH", "")
	t.Setenv("GIN_MODE", "test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	srv, err := NewServer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return srv
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

// TestServerRoutes проверяет сборку роутера целиком: health, API, метрики, swagger и 404
func TestServerRoutes(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Shutdown(context.Background())

	w := get(srv, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = get(srv, "/api/training/stats")
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 0, stats["total_records"])

	w = get(srv, "/api/training/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Route not found")

	w = get(srv, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "qc_http_requests_total")

	w = get(srv, "/swagger/doc.json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "QC Insights API")
}

// TestServerShutdown проверяет, что после остановки контейнер закрыт, а health отвечает 503
func TestServerShutdown(t *testing.T) {
	srv := newTestServer(t)
	require.True(t, srv.Container().IsInitialized())
	require.Equal(t, http.StatusOK, get(srv, "/health").Code)

	require.NoError(t, srv.Shutdown(context.Background()))

	assert.False(t, srv.Container().IsInitialized())
	assert.ErrorIs(t, srv.Container().GetContext().Err(), context.Canceled)
	assert.Equal(t, http.StatusServiceUnavailable, get(srv, "/health").Code)
	assert.Positive(t, srv.Uptime())
}

func TestNewServerRequiresConfig(t *testing.T) {
	_, err := NewServer(nil, nil)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
