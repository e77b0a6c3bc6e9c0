package common

import (
	"github.com/gin-gonic/gin"

	"qcinsights/server/middleware"
)

// BaseHandlerInterface интерфейс для базового обработчика
// Используется для разрыва циклических зависимостей
type BaseHandlerInterface interface {
	SendJSONResponse(c *gin.Context, statusCode int, data interface{})
	SendJSONError(c *gin.Context, statusCode int, message string)
	HandleError(c *gin.Context, err error)
}

// BaseHandlerImpl реализация BaseHandlerInterface через middleware
// Может использоваться всеми handlers для единообразия
type BaseHandlerImpl struct{}

// NewBaseHandlerImpl создает новую реализацию BaseHandlerInterface
func NewBaseHandlerImpl() *BaseHandlerImpl {
	return &BaseHandlerImpl{}
}

// SendJSONResponse отправляет JSON ответ
func (h *BaseHandlerImpl) SendJSONResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// SendJSONError отправляет JSON ошибку с заданным статусом
func (h *BaseHandlerImpl) SendJSONError(c *gin.Context, statusCode int, message string) {
	middleware.WriteGinError(c, statusCode, message)
}

// HandleError отправляет ошибку со статусом из HTTPError или 500
func (h *BaseHandlerImpl) HandleError(c *gin.Context, err error) {
	middleware.HandleGinError(c, err)
}
