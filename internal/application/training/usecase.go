package training

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"qcinsights/importer"
	"qcinsights/internal/domain/models"
	"qcinsights/internal/domain/repositories"
	"qcinsights/internal/domain/training"
)

// UseCase представляет use case пайплайна обучения
// Координирует чтение книги и вызовы domain сервиса
type UseCase struct {
	service training.Service
}

// NewUseCase создает новый use case
func NewUseCase(service training.Service) *UseCase {
	return &UseCase{service: service}
}

// ParseFormat разбирает необязательную подсказку формата
func ParseFormat(value string) (models.SourceFormat, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return "", nil
	}
	f := models.SourceFormat(value)
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", training.ErrInvalidFormat, value)
	}
	return f, nil
}

// ImportFile читает файл книги и импортирует его
func (uc *UseCase) ImportFile(ctx context.Context, r io.Reader, filename, format string) (*training.ImportSummary, error) {
	hint, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	wb, err := importer.OpenWorkbook(r, filename)
	if err != nil {
		if errors.Is(err, importer.ErrUnsupportedFile) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", training.ErrUnreadableWorkbook, err)
	}
	return uc.importWorkbook(ctx, wb, hint)
}

// ImportWorkbook импортирует книгу, уже разобранную клиентом
func (uc *UseCase) ImportWorkbook(ctx context.Context, wb *importer.Workbook, format string) (*training.ImportSummary, error) {
	hint, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return uc.importWorkbook(ctx, wb, hint)
}

func (uc *UseCase) importWorkbook(ctx context.Context, wb *importer.Workbook, hint models.SourceFormat) (*training.ImportSummary, error) {
	if wb == nil || len(wb.Sheets) == 0 {
		return nil, training.ErrEmptyWorkbook
	}
	summary, err := uc.service.ImportWorkbook(ctx, wb, training.ImportOptions{FormatHint: hint})
	if err != nil {
		return nil, fmt.Errorf("failed to import workbook: %w", err)
	}
	return summary, nil
}

// MinePatterns запускает майнинг вручную
func (uc *UseCase) MinePatterns(ctx context.Context) (*training.MiningResult, error) {
	return uc.service.MinePatterns(ctx)
}

// Classify предпросмотр классификации текста
func (uc *UseCase) Classify(ctx context.Context, text string) (*training.ClassificationPreview, error) {
	return uc.service.Classify(ctx, text)
}

// GetStats возвращает статистику
func (uc *UseCase) GetStats(ctx context.Context) (*training.Stats, error) {
	return uc.service.GetStats(ctx)
}

// ListPatterns возвращает паттерны
func (uc *UseCase) ListPatterns(ctx context.Context, activeOnly bool, limit int) ([]models.Pattern, error) {
	return uc.service.ListPatterns(ctx, repositories.PatternFilter{ActiveOnly: activeOnly, Limit: limit})
}

// GetPatternDetail возвращает паттерн с последними записями
func (uc *UseCase) GetPatternDetail(ctx context.Context, id string) (*training.PatternDetail, error) {
	return uc.service.GetPatternDetail(ctx, id)
}

// GetSuggestions возвращает рекомендации
func (uc *UseCase) GetSuggestions(ctx context.Context) ([]training.Suggestion, error) {
	return uc.service.GetSuggestions(ctx)
}

// ClearAll удаляет все данные обучения
func (uc *UseCase) ClearAll(ctx context.Context) (*repositories.ClearResult, error) {
	return uc.service.ClearAll(ctx)
}
