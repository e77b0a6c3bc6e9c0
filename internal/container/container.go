package container

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"qcinsights/database"
	"qcinsights/internal/config"
	"qcinsights/internal/domain/training"
	"qcinsights/tables"
)

// Container контейнер зависимостей приложения
// Управляет жизненным циклом базы обучения и компонентов training domain
type Container struct {
	mu sync.RWMutex

	// Конфигурация
	Config  *config.Config
	Logger  *slog.Logger
	Metrics training.Metrics

	// База данных обучения
	TrainingDB *database.TrainingDB

	// Справочники
	Tables *tables.Tables

	// Training domain
	TrainingHandler interface{} // *traininghandler.Handler
	TrainingUseCase interface{} // *trainingapp.UseCase
	TrainingService training.Service

	ctx         context.Context
	cancel      context.CancelFunc
	initialized bool
}

// Option настраивает контейнер
type Option func(*Container)

// WithLogger задает логгер компонентов
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithMetrics задает сборщик метрик импорта и майнинга
func WithMetrics(m training.Metrics) Option {
	return func(c *Container) {
		c.Metrics = m
	}
}

// NewContainer создает новый контейнер зависимостей
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())

	container := &Container{
		Config: cfg,
		Logger: slog.Default(),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(container)
	}

	return container, nil
}

// Initialize инициализирует все зависимости контейнера
func (c *Container) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return fmt.Errorf("container already initialized")
	}

	// Шаг 1: база данных
	if err := c.initDatabases(); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	// Шаг 2: справочники
	if err := c.initTables(); err != nil {
		c.closeDatabases()
		return fmt.Errorf("failed to load tables: %w", err)
	}

	// Шаг 3: training domain
	if err := c.initTrainingComponents(); err != nil {
		c.closeDatabases()
		return fmt.Errorf("failed to initialize training components: %w", err)
	}

	c.initialized = true
	c.Logger.Info("container initialized",
		"database", c.TrainingDB.Path(),
		"stopwords", c.Tables.StopwordCount(),
	)
	return nil
}

// initDatabases открывает базу обучения и применяет миграции
func (c *Container) initDatabases() error {
	dbConfig := database.DBConfig{
		MaxOpenConns:    c.Config.MaxOpenConns,
		MaxIdleConns:    c.Config.MaxIdleConns,
		ConnMaxLifetime: c.Config.ConnMaxLifetime,
		BusyTimeout:     c.Config.BusyTimeout,
	}

	db, err := database.NewTrainingDBWithConfig(c.Config.DatabasePath, dbConfig, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to open training database %s: %w", c.Config.DatabasePath, err)
	}
	c.TrainingDB = db
	return nil
}

// initTables загружает справочники из файла или берет встроенные
func (c *Container) initTables() error {
	if c.Config.TablesPath == "" {
		c.Tables = tables.Default()
		return nil
	}
	t, err := tables.Load(c.Config.TablesPath)
	if err != nil {
		return err
	}
	c.Tables = t
	return nil
}

func (c *Container) closeDatabases() {
	if c.TrainingDB == nil {
		return
	}
	if err := c.TrainingDB.Close(); err != nil {
		c.Logger.Error("error closing training database", "error", err)
	}
	c.TrainingDB = nil
}

// Shutdown корректно завершает работу контейнера
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return nil
	}

	c.cancel()
	c.closeDatabases()
	c.initialized = false

	c.Logger.Info("container shut down")
	return nil
}

// GetContext возвращает контекст контейнера
func (c *Container) GetContext() context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ctx
}

// IsInitialized проверяет, инициализирован ли контейнер
func (c *Container) IsInitialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}
