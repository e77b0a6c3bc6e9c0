package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"qcinsights/docs"
)

// HealthCheck проверяет доступность зависимостей, обычно базы данных
type HealthCheck func(ctx context.Context) error

// RegisterSystemRoutes регистрирует системные маршруты
func RegisterSystemRoutes(router *gin.Engine, check HealthCheck) {
	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":  "ok",
			"service": "qcinsights",
			"time":    time.Now().Format(time.RFC3339),
		}
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "unavailable"
				body["error"] = err.Error()
			}
		}
		c.JSON(status, body)
	})
}

// RegisterMetricsRoutes отдает метрики Prometheus
func RegisterMetricsRoutes(router *gin.Engine, metrics http.Handler) {
	router.GET("/metrics", gin.WrapH(metrics))
}

// RegisterSwaggerRoutes регистрирует маршруты Swagger в Gin роутере
func RegisterSwaggerRoutes(router *gin.Engine) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
}
