package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	traininghandler "qcinsights/internal/api/handlers/training"
)

// Router управляет маршрутизацией приложения
// Централизует регистрацию всех маршрутов
type Router struct {
	engine          *gin.Engine
	trainingHandler *traininghandler.Handler
	metricsHandler  http.Handler
	healthCheck     HealthCheck
	options         RegisterOptions
}

// RegisterOptions задают опции регистрации маршрутов
type RegisterOptions struct {
	// ImportRateLimitPerMin ограничение импорта в минуту, 0 отключает лимит
	ImportRateLimitPerMin int
	SkipSwagger           bool
	SkipMetrics           bool
}

// NewRouter создает новый роутер
func NewRouter(engine *gin.Engine, trainingHandler *traininghandler.Handler, metricsHandler http.Handler, health HealthCheck, opts RegisterOptions) *Router {
	return &Router{
		engine:          engine,
		trainingHandler: trainingHandler,
		metricsHandler:  metricsHandler,
		healthCheck:     health,
		options:         opts,
	}
}

// RegisterAllRoutes регистрирует все маршруты приложения
func (r *Router) RegisterAllRoutes() {
	RegisterSystemRoutes(r.engine, r.healthCheck)

	if !r.options.SkipMetrics && r.metricsHandler != nil {
		RegisterMetricsRoutes(r.engine, r.metricsHandler)
	}
	if !r.options.SkipSwagger {
		RegisterSwaggerRoutes(r.engine)
	}

	api := r.engine.Group("/api")
	if r.trainingHandler != nil {
		RegisterTrainingRoutes(api, r.trainingHandler, r.options.ImportRateLimitPerMin)
	}
}
