package training

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"qcinsights/classification"
	"qcinsights/internal/domain/models"
	"qcinsights/internal/domain/repositories"
)

const (
	statsTopCategories   = 10
	statsTopPatterns     = 5
	statsSampleDefects   = 3
	detailRecentRecords  = 10
	suggestionPatterns   = 3
	skewShareThreshold   = 0.30
	trendingMinCount     = 3
	trainingNeededTopCat = 3
)

// GetStats собирает агрегированную статистику
func (s *service) GetStats(ctx context.Context) (*Stats, error) {
	total, err := s.records.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	totalPatterns, err := s.patterns.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count patterns: %w", err)
	}
	bySource, err := s.records.CountBySourceFormat(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count records by source: %w", err)
	}
	categories, err := s.records.TopCategories(ctx, statsTopCategories)
	if err != nil {
		return nil, fmt.Errorf("failed to load top categories: %w", err)
	}
	top, err := s.patterns.List(ctx, repositories.PatternFilter{Limit: statsTopPatterns})
	if err != nil {
		return nil, fmt.Errorf("failed to load top patterns: %w", err)
	}

	stats := &Stats{
		TotalRecords:   total,
		TotalPatterns:  totalPatterns,
		BySourceFormat: bySource,
		TopCategories:  categories,
		TopPatterns:    make([]PatternStat, 0, len(top)),
	}
	if stats.TopCategories == nil {
		stats.TopCategories = []repositories.CategoryCount{}
	}
	for i := range top {
		stats.TopPatterns = append(stats.TopPatterns, PatternStat{
			ID:              top[i].ID,
			Name:            top[i].PatternName,
			OccurrenceCount: top[i].OccurrenceCount,
			SampleDefects:   capped(top[i].CommonDefectTypes, statsSampleDefects),
		})
	}
	return stats, nil
}

// ListPatterns паттерны по убыванию количества вхождений
func (s *service) ListPatterns(ctx context.Context, filter repositories.PatternFilter) ([]models.Pattern, error) {
	patterns, err := s.patterns.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list patterns: %w", err)
	}
	if patterns == nil {
		patterns = []models.Pattern{}
	}
	return patterns, nil
}

// GetPatternDetail паттерн, последние записи и группы ключевых слов по основе
func (s *service) GetPatternDetail(ctx context.Context, id string) (*PatternDetail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrPatternNotFound
	}
	pattern, err := s.patterns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPatternNotFound
		}
		return nil, fmt.Errorf("failed to load pattern: %w", err)
	}
	recent, err := s.records.ListByPattern(ctx, id, detailRecentRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern records: %w", err)
	}
	if recent == nil {
		recent = []models.TrainingRecord{}
	}
	groups := s.stemmer.Group(pattern.CommonKeywords)
	if groups == nil {
		groups = []classification.StemGroup{}
	}
	return &PatternDetail{
		Pattern:       *pattern,
		RecentRecords: recent,
		KeywordGroups: groups,
	}, nil
}

// GetSuggestions формирует рекомендации:
// советы по профилактике для крупнейших паттернов, перекос по источникам,
// категории с отметкой о необходимости обучения и растущие категории.
func (s *service) GetSuggestions(ctx context.Context) ([]Suggestion, error) {
	suggestions := []Suggestion{}

	top, err := s.patterns.List(ctx, repositories.PatternFilter{ActiveOnly: true, Limit: suggestionPatterns})
	if err != nil {
		return nil, fmt.Errorf("failed to load patterns: %w", err)
	}
	for i, p := range top {
		if len(p.PreventionTips) == 0 {
			continue
		}
		priority := "medium"
		if i == 0 {
			priority = "high"
		}
		suggestions = append(suggestions, Suggestion{
			Type:     SuggestionPrevention,
			Priority: priority,
			Category: p.PrimaryCategory(),
			Message:  p.PreventionTips[0],
			Count:    int64(p.OccurrenceCount),
		})
	}

	bySource, err := s.records.CountBySourceFormat(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count records by source: %w", err)
	}
	var total int64
	for _, n := range bySource {
		total += n
	}
	if total > 0 {
		for _, f := range models.AllSourceFormats() {
			n := bySource[f]
			if float64(n)/float64(total) <= skewShareThreshold {
				continue
			}
			suggestions = append(suggestions, Suggestion{
				Type:     SuggestionSourceSkew,
				Priority: "low",
				Message: fmt.Sprintf("%s accounts for %d of %d records (%d%%); review its QC process first",
					f, n, total, n*100/total),
				Count: n,
			})
		}
	}

	needed, err := s.records.TrainingNeededByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count training needs: %w", err)
	}
	for i, c := range needed {
		if i >= trainingNeededTopCat {
			break
		}
		suggestions = append(suggestions, Suggestion{
			Type:     SuggestionTrainingNeeded,
			Priority: "high",
			Category: c.Category,
			Message:  fmt.Sprintf("%d %s items were flagged as needing training; schedule a session on this topic", c.Count, c.Category),
			Count:    c.Count,
		})
	}

	since := s.now().Add(-s.trendingWindow)
	recent, err := s.records.CategoryCountsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent categories: %w", err)
	}
	for _, c := range recent {
		if c.Count < trendingMinCount || c.Category == models.UncategorizedCategory {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Type:     SuggestionTrending,
			Priority: "medium",
			Category: c.Category,
			Message:  fmt.Sprintf("%s feedback is trending: %d items since %s", c.Category, c.Count, since.Format("2006-01-02")),
			Count:    c.Count,
		})
	}

	return suggestions, nil
}

// ClearAll удаляет все записи и паттерны
func (s *service) ClearAll(ctx context.Context) (*repositories.ClearResult, error) {
	result, err := s.data.ClearAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to clear training data: %w", err)
	}
	s.logger.Warn("training data cleared",
		"records_deleted", result.RecordsDeleted,
		"patterns_deleted", result.PatternsDeleted,
	)
	return result, nil
}
