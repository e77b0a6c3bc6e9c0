package repositories

import (
	"errors"

	"qcinsights/internal/domain/models"
)

// ErrNotFound запись или паттерн не найдены
var ErrNotFound = errors.New("not found")

// CategoryCount количество записей категории
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// PatternFilter фильтр списка паттернов. Паттерны упорядочены по убыванию occurrence_count.
type PatternFilter struct {
	ActiveOnly bool
	Limit      int
}

// MergeFunc строит новое состояние паттерна; existing равен nil, если паттерна еще нет.
// claimed содержит только те записи группы, которые оставались необработанными
// в момент слияния.
type MergeFunc func(existing *models.Pattern, claimed []int64) (*models.Pattern, error)

// MergeResult результат слияния группы. Если все записи группы уже обработаны
// другим проходом, Claimed равен 0, а Pattern равен nil.
type MergeResult struct {
	Pattern *models.Pattern
	Created bool
	Claimed int
}

// ClearResult количество удаленных строк
type ClearResult struct {
	RecordsDeleted  int64 `json:"records_deleted"`
	PatternsDeleted int64 `json:"patterns_deleted"`
}
