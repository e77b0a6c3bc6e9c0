package repositories

import (
	"context"
	"time"

	"qcinsights/internal/domain/models"
)

// TrainingRecordRepository интерфейс для работы с записями обучения
type TrainingRecordRepository interface {
	// Основные операции
	Create(ctx context.Context, record *models.TrainingRecord) error
	GetUnprocessed(ctx context.Context) ([]models.TrainingRecord, error)
	UpdateCategory(ctx context.Context, id int64, category string) error
	ListByPattern(ctx context.Context, patternID string, limit int) ([]models.TrainingRecord, error)

	// Статистика
	Count(ctx context.Context) (int64, error)
	CountBySourceFormat(ctx context.Context) (map[models.SourceFormat]int64, error)
	TopCategories(ctx context.Context, limit int) ([]CategoryCount, error)
	CategoryCountsSince(ctx context.Context, since time.Time) ([]CategoryCount, error)
	TrainingNeededByCategory(ctx context.Context) ([]CategoryCount, error)
}

// PatternRepository интерфейс для работы с паттернами
type PatternRepository interface {
	GetByID(ctx context.Context, id string) (*models.Pattern, error)
	GetByName(ctx context.Context, name string) (*models.Pattern, error)
	List(ctx context.Context, filter PatternFilter) ([]models.Pattern, error)
	Count(ctx context.Context) (int64, error)

	// MergeGroup атомарно сливает группу записей в паттерн с именем name:
	// отбирает из recordIDs еще необработанные записи, читает существующий паттерн
	// (nil, если его нет), вызывает merge, сохраняет результат и помечает отобранные
	// записи обработанными. Если отбирать нечего, паттерн не меняется.
	MergeGroup(ctx context.Context, name string, recordIDs []int64, processedAt time.Time, merge MergeFunc) (*MergeResult, error)
}

// TrainingDataRepository массовые операции над обеими таблицами
type TrainingDataRepository interface {
	// ClearAll удаляет все записи и паттерны, возвращает количество удаленных
	ClearAll(ctx context.Context) (*ClearResult, error)
}
