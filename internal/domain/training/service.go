package training

import (
	"context"
	"time"

	"qcinsights/classification"
	"qcinsights/importer"
	"qcinsights/internal/domain/models"
	"qcinsights/internal/domain/repositories"
)

// Service интерфейс бизнес-логики пайплайна обучения на QC-фидбэке
type Service interface {
	// ImportWorkbook разбирает книгу, сохраняет записи и запускает майнинг паттернов.
	// Сводка возвращается всегда, даже если все листы пропущены.
	ImportWorkbook(ctx context.Context, wb *importer.Workbook, opts ImportOptions) (*ImportSummary, error)

	// MinePatterns сливает необработанные записи в паттерны
	MinePatterns(ctx context.Context) (*MiningResult, error)

	// Classify показывает категорию и ключевые слова для текста без сохранения
	Classify(ctx context.Context, text string) (*ClassificationPreview, error)

	// GetStats агрегированная статистика
	GetStats(ctx context.Context) (*Stats, error)

	// ListPatterns паттерны по убыванию количества вхождений
	ListPatterns(ctx context.Context, filter repositories.PatternFilter) ([]models.Pattern, error)

	// GetPatternDetail паттерн с последними записями
	GetPatternDetail(ctx context.Context, id string) (*PatternDetail, error)

	// GetSuggestions эвристические рекомендации
	GetSuggestions(ctx context.Context) ([]Suggestion, error)

	// ClearAll удаляет все записи и паттерны безвозвратно
	ClearAll(ctx context.Context) (*repositories.ClearResult, error)
}

// ImportOptions параметры импорта
type ImportOptions struct {
	// FormatHint используется для листов, формат которых не удалось определить
	FormatHint models.SourceFormat
}

// ImportSummary итог одного импорта
type ImportSummary struct {
	ImportID        string                      `json:"import_id"`
	TotalProcessed  int                         `json:"total_processed"`
	Successful      int                         `json:"successful"`
	Failed          int                         `json:"failed"`
	Warnings        []string                    `json:"warnings"`
	PatternSummary  PatternSummary              `json:"pattern_summary"`
	Breakdown       map[models.SourceFormat]int `json:"breakdown"`
	SheetsProcessed int                         `json:"sheets_processed"`
	SheetsSkipped   int                         `json:"sheets_skipped"`
	Duration        time.Duration               `json:"duration_ns"`
}

// PatternSummary изменения паттернов по итогам импорта
type PatternSummary struct {
	NewPatterns     int            `json:"new_patterns"`
	UpdatedPatterns int            `json:"updated_patterns"`
	TopPatterns     []PatternBrief `json:"top_patterns"`
}

// PatternBrief краткая информация о паттерне
type PatternBrief struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	OccurrenceCount int    `json:"occurrence_count"`
	PrimaryCategory string `json:"primary_category"`
}

// MiningResult итог одного прохода майнинга
type MiningResult struct {
	RecordsProcessed int      `json:"records_processed"`
	Reclassified     int      `json:"reclassified"`
	NewPatterns      int      `json:"new_patterns"`
	UpdatedPatterns  int      `json:"updated_patterns"`
	Categories       []string `json:"categories"`
}

// ClassificationPreview результат классификации текста
type ClassificationPreview struct {
	Category string                         `json:"category"`
	Keywords []string                       `json:"keywords"`
	Scores   []classification.CategoryScore `json:"scores"`
}

// Stats агрегированная статистика по записям и паттернам
type Stats struct {
	TotalRecords   int64                         `json:"total_records"`
	TotalPatterns  int64                         `json:"total_patterns"`
	BySourceFormat map[models.SourceFormat]int64 `json:"by_source_format"`
	TopCategories  []repositories.CategoryCount  `json:"top_categories"`
	TopPatterns    []PatternStat                 `json:"top_patterns"`
}

// PatternStat паттерн в статистике с примерами дефектов
type PatternStat struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	OccurrenceCount int      `json:"occurrence_count"`
	SampleDefects   []string `json:"sample_defects"`
}

// PatternDetail паттерн с последними связанными записями
type PatternDetail struct {
	Pattern       models.Pattern             `json:"pattern"`
	RecentRecords []models.TrainingRecord    `json:"recent_records"`
	KeywordGroups []classification.StemGroup `json:"keyword_groups"`
}

// Типы рекомендаций
const (
	SuggestionPrevention     = "prevention"
	SuggestionSourceSkew     = "source_skew"
	SuggestionTrainingNeeded = "training_needed"
	SuggestionTrending       = "trending"
)

// Suggestion эвристическая рекомендация
type Suggestion struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
	Count    int64  `json:"count"`
}

// Metrics приемник метрик импорта и майнинга
type Metrics interface {
	ObserveImport(summary *ImportSummary)
	ObserveMining(result *MiningResult, duration time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) ObserveImport(*ImportSummary)                      {}
func (noopMetrics) ObserveMining(*MiningResult, time.Duration, error) {}
