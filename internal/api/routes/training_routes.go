package routes

import (
	"github.com/gin-gonic/gin"

	traininghandler "qcinsights/internal/api/handlers/training"
	"qcinsights/server/middleware"
)

// RegisterTrainingRoutes регистрирует маршруты пайплайна обучения.
// Импорт ограничен общим лимитером на оба маршрута.
func RegisterTrainingRoutes(api *gin.RouterGroup, h *traininghandler.Handler, importRatePerMin int) {
	trainingAPI := api.Group("/training")
	{
		importLimit := middleware.GinRateLimitMiddleware(importRatePerMin)
		imports := trainingAPI.Group("/import", importLimit)
		{
			imports.POST("", h.HandleImport)
			imports.POST("/rows", h.HandleImportRows)
		}

		trainingAPI.POST("/mine", h.HandleMine)
		trainingAPI.POST("/classify", h.HandleClassify)
		trainingAPI.GET("/stats", h.HandleStats)
		trainingAPI.GET("/patterns", h.HandleListPatterns)
		trainingAPI.GET("/patterns/:id", h.HandleGetPattern)
		trainingAPI.GET("/suggestions", h.HandleSuggestions)
		trainingAPI.DELETE("/data", h.HandleClear)
	}
}
