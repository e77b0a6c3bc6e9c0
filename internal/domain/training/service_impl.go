package training

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"qcinsights/classification"
	"qcinsights/importer"
	"qcinsights/insights"
	"qcinsights/internal/domain/models"
	"qcinsights/internal/domain/repositories"
	"qcinsights/tables"
)

const (
	// maxWarnings предупреждения сверх лимита не попадают в сводку, но счетчики продолжают расти
	maxWarnings = 10
	// topPatternsInSummary сколько паттернов показывается в сводке импорта
	topPatternsInSummary = 5
	// defaultTrendingWindow окно проверки трендовых категорий
	defaultTrendingWindow = 14 * 24 * time.Hour
)

// service реализация Service
type service struct {
	records  repositories.TrainingRecordRepository
	patterns repositories.PatternRepository
	data     repositories.TrainingDataRepository

	tables     *tables.Tables
	detector   *importer.FormatDetector
	parsers    *importer.ParserRegistry
	extractor  *classification.KeywordExtractor
	classifier *classification.TextClassifier
	stemmer    *classification.KeywordStemmer
	miner      *PatternMiner

	logger         *slog.Logger
	metrics        Metrics
	now            func() time.Time
	trendingWindow time.Duration
}

// Option настройка сервиса
type Option func(*service)

// WithLogger задает логгер
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics задает приемник метрик
func WithMetrics(m Metrics) Option {
	return func(s *service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTrendingWindow задает окно трендовых категорий
func WithTrendingWindow(d time.Duration) Option {
	return func(s *service) {
		if d > 0 {
			s.trendingWindow = d
		}
	}
}

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService создает сервис пайплайна обучения
func NewService(
	records repositories.TrainingRecordRepository,
	patterns repositories.PatternRepository,
	data repositories.TrainingDataRepository,
	t *tables.Tables,
	opts ...Option,
) Service {
	s := &service{
		records:        records,
		patterns:       patterns,
		data:           data,
		tables:         t,
		detector:       importer.NewFormatDetector(t),
		parsers:        importer.NewParserRegistry(t),
		extractor:      classification.NewKeywordExtractor(t),
		classifier:     classification.NewTextClassifier(t),
		stemmer:        classification.NewKeywordStemmer(),
		logger:         slog.Default(),
		metrics:        noopMetrics{},
		now:            func() time.Time { return time.Now().UTC() },
		trendingWindow: defaultTrendingWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.miner = NewPatternMiner(records, patterns, s.classifier, insights.NewGenerator(), s.logger)
	s.miner.now = s.now
	return s
}

// importRun состояние одного импорта
type importRun struct {
	summary *ImportSummary
}

func (r *importRun) warn(format string, args ...any) {
	if len(r.summary.Warnings) < maxWarnings {
		r.summary.Warnings = append(r.summary.Warnings, fmt.Sprintf(format, args...))
	}
}

// ImportWorkbook проходит листы в порядке документа, строки в порядке листа,
// сохраняет записи по одной и в конце запускает майнинг паттернов.
func (s *service) ImportWorkbook(ctx context.Context, wb *importer.Workbook, opts ImportOptions) (*ImportSummary, error) {
	start := time.Now()
	run := &importRun{summary: &ImportSummary{
		ImportID:  uuid.New().String(),
		Warnings:  []string{},
		Breakdown: make(map[models.SourceFormat]int),
	}}
	summary := run.summary
	logger := s.logger.With("import_id", summary.ImportID)

	if opts.FormatHint != "" && !opts.FormatHint.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, opts.FormatHint)
	}
	if wb == nil || len(wb.Sheets) == 0 {
		run.warn("Workbook contains no sheets")
	} else {
		logger.Info("import started", "workbook", wb.Name, "sheets", len(wb.Sheets))
	}

	feedbackWords := s.tables.FeedbackWords()

sheets:
	for _, sheet := range sheetsOf(wb) {
		headers := sheet.Headers()
		format, ok := s.detector.Detect(sheet.Name, headers)
		if !ok && opts.FormatHint != "" {
			format, ok = opts.FormatHint, true
			logger.Info("sheet format taken from hint", "sheet", sheet.Name, "format", format)
		}
		if !ok {
			summary.SheetsSkipped++
			run.warn("Sheet %q skipped: source format not recognized", sheet.Name)
			logger.Warn("sheet skipped", "sheet", sheet.Name, "headers", len(headers))
			continue
		}

		parser, ok := s.parsers.Parser(format)
		rules, hasRules := s.tables.Format(format)
		if !ok || !hasRules {
			summary.SheetsSkipped++
			run.warn("Sheet %q skipped: no parser for format %s", sheet.Name, format)
			continue
		}
		summary.SheetsProcessed++
		cols := importer.MapColumns(headers, rules.Columns)
		logger.Debug("sheet detected", "sheet", sheet.Name, "format", format, "rows", len(sheet.DataRows()))

		for i, row := range sheet.DataRows() {
			if err := ctx.Err(); err != nil {
				run.warn("Import interrupted at sheet %q row %d: %v", sheet.Name, i+2, err)
				logger.Warn("import interrupted", "sheet", sheet.Name, "row", i+2, "error", err)
				break sheets
			}

			raw := importer.NewRawCells(headers, row)
			rec := parser.ParseRow(row, cols, raw)
			if rec == nil {
				continue
			}
			if strings.TrimSpace(rec.FeedbackText) == "" {
				rec.FeedbackText = importer.RecoverFeedback(raw, feedbackWords)
			}
			if strings.TrimSpace(rec.FeedbackText) == "" {
				continue
			}

			rec.ImportID = summary.ImportID
			rec.Keywords = s.extractor.Extract(rec.FeedbackText)

			summary.TotalProcessed++
			if err := s.records.Create(ctx, rec); err != nil {
				summary.Failed++
				run.warn("Sheet %q row %d: %v", sheet.Name, i+2, err)
				logger.Error("failed to store training record", "sheet", sheet.Name, "row", i+2, "error", err)
				continue
			}
			summary.Successful++
			summary.Breakdown[format]++
		}
	}

	// Майнинг запускается всегда, даже если ни одна строка не сохранена
	mining, err := s.MinePatterns(ctx)
	if err != nil {
		run.warn("Pattern mining failed: %v", err)
	}
	if mining != nil {
		summary.PatternSummary.NewPatterns = mining.NewPatterns
		summary.PatternSummary.UpdatedPatterns = mining.UpdatedPatterns
	}

	top, err := s.patterns.List(ctx, repositories.PatternFilter{Limit: topPatternsInSummary})
	if err != nil {
		run.warn("Failed to load top patterns: %v", err)
	}
	summary.PatternSummary.TopPatterns = make([]PatternBrief, 0, len(top))
	for i := range top {
		summary.PatternSummary.TopPatterns = append(summary.PatternSummary.TopPatterns, PatternBrief{
			ID:              top[i].ID,
			Name:            top[i].PatternName,
			OccurrenceCount: top[i].OccurrenceCount,
			PrimaryCategory: top[i].PrimaryCategory(),
		})
	}

	summary.Duration = time.Since(start)
	s.metrics.ObserveImport(summary)
	logger.Info("import completed",
		"total_processed", summary.TotalProcessed,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"sheets_skipped", summary.SheetsSkipped,
		"duration", summary.Duration,
	)
	return summary, nil
}

func sheetsOf(wb *importer.Workbook) []importer.Sheet {
	if wb == nil {
		return nil
	}
	return wb.Sheets
}

// MinePatterns запускает проход майнинга
func (s *service) MinePatterns(ctx context.Context) (*MiningResult, error) {
	start := time.Now()
	result, err := s.miner.Mine(ctx)
	s.metrics.ObserveMining(result, time.Since(start), err)
	if err != nil {
		return result, fmt.Errorf("pattern mining failed: %w", err)
	}
	return result, nil
}

// Classify классифицирует текст без сохранения
func (s *service) Classify(ctx context.Context, text string) (*ClassificationPreview, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	keywords := s.extractor.Extract(text)
	if keywords == nil {
		keywords = []string{}
	}
	return &ClassificationPreview{
		Category: s.classifier.AutoCategorize(text),
		Keywords: keywords,
		Scores:   s.classifier.Score(text),
	}, nil
}
