package container

import (
	"fmt"

	"qcinsights/internal/api/handlers/common"
	traininghandler "qcinsights/internal/api/handlers/training"
	trainingapp "qcinsights/internal/application/training"
	"qcinsights/internal/domain/training"
	"qcinsights/internal/infrastructure/persistence"
)

// initTrainingComponents инициализирует компоненты training domain
func (c *Container) initTrainingComponents() error {
	// 1. Репозитории (infrastructure layer)
	records := persistence.NewTrainingRecordRepository(c.TrainingDB)
	patterns := persistence.NewPatternRepository(c.TrainingDB)
	data := persistence.NewTrainingDataRepository(c.TrainingDB)

	// 2. Domain service
	opts := []training.Option{
		training.WithLogger(c.Logger),
		training.WithTrendingWindow(c.Config.TrendingWindow()),
	}
	if c.Metrics != nil {
		opts = append(opts, training.WithMetrics(c.Metrics))
	}
	service := training.NewService(records, patterns, data, c.Tables, opts...)

	// 3. Application use case
	useCase := trainingapp.NewUseCase(service)

	// 4. HTTP handler
	handler := traininghandler.NewHandler(common.NewBaseHandlerImpl(), useCase, c.Config.MaxUploadBytes())

	c.TrainingService = service
	c.TrainingUseCase = useCase
	c.TrainingHandler = handler
	return nil
}

// GetTrainingHandler возвращает training handler из контейнера
func (c *Container) GetTrainingHandler() (*traininghandler.Handler, error) {
	if c.TrainingHandler == nil {
		return nil, fmt.Errorf("training handler not initialized")
	}

	handler, ok := c.TrainingHandler.(*traininghandler.Handler)
	if !ok {
		return nil, fmt.Errorf("invalid training handler type")
	}

	return handler, nil
}

// GetTrainingUseCase возвращает use case для CLI
func (c *Container) GetTrainingUseCase() (*trainingapp.UseCase, error) {
	if c.TrainingUseCase == nil {
		return nil, fmt.Errorf("training use case not initialized")
	}

	useCase, ok := c.TrainingUseCase.(*trainingapp.UseCase)
	if !ok {
		return nil, fmt.Errorf("invalid training use case type")
	}

	return useCase, nil
}
