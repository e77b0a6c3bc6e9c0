package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"qcinsights/internal/config"
	"qcinsights/internal/container"
)

// Алиасы для cmd
type Config = config.Config

var LoadConfig = config.LoadConfig

// Server HTTP сервер API обучения на QC-фидбэке
type Server struct {
	config     *Config
	container  *container.Container
	metrics    *TrainingMetrics
	logger     *slog.Logger
	httpServer *http.Server

	httpHandler    http.Handler
	handlerOnce    sync.Once
	handlerInitErr error

	startTime time.Time
}

// NewServer создает сервер, инициализирует контейнер и метрики
func NewServer(cfg *Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = Logger
	}

	metrics := NewTrainingMetrics()
	c, err := container.NewContainer(cfg,
		container.WithLogger(logger),
		container.WithMetrics(metrics),
	)
	if err != nil {
		return nil, err
	}
	if err := c.Initialize(); err != nil {
		return nil, err
	}

	return &Server{
		config:    cfg,
		container: c,
		metrics:   metrics,
		logger:    logger,
		startTime: time.Now(),
	}, nil
}

// Container возвращает контейнер зависимостей
func (s *Server) Container() *container.Container {
	return s.container
}

// Uptime время работы сервера
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// healthCheck проверяет доступность базы обучения
func (s *Server) healthCheck(ctx context.Context) error {
	if s.container.TrainingDB == nil {
		return fmt.Errorf("training database is closed")
	}
	return s.container.TrainingDB.Ping(ctx)
}
