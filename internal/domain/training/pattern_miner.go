package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"qcinsights/classification"
	"qcinsights/insights"
	"qcinsights/internal/domain/models"
	"qcinsights/internal/domain/repositories"
)

// Лимиты накапливаемых списков паттерна
const (
	maxInsightSamples = 20
	maxCommonPMCs     = 15
	maxCommonDefects  = 15
	maxCommonCats     = 15
	maxCommonKeywords = 25
)

// PatternMiner сливает необработанные записи в паттерны по категориям.
// Проходы майнинга в одном процессе сериализуются мьютексом, а слияние каждой
// категории выполняется репозиторием в одной транзакции.
type PatternMiner struct {
	mu         sync.Mutex
	records    repositories.TrainingRecordRepository
	patterns   repositories.PatternRepository
	classifier *classification.TextClassifier
	generator  *insights.Generator
	logger     *slog.Logger
	now        func() time.Time
}

// NewPatternMiner создает майнер паттернов
func NewPatternMiner(
	records repositories.TrainingRecordRepository,
	patterns repositories.PatternRepository,
	classifier *classification.TextClassifier,
	generator *insights.Generator,
	logger *slog.Logger,
) *PatternMiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &PatternMiner{
		records:    records,
		patterns:   patterns,
		classifier: classifier,
		generator:  generator,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// recordGroup записи одной категории, собранные за проход
type recordGroup struct {
	category    string
	ids         []int64
	pmcs        []string
	defectTypes []string
	formats     []models.SourceFormat
	keywords    []string
	samples     []string
}

// Mine выполняет один проход. При пустом множестве необработанных записей ничего не меняет.
func (m *PatternMiner) Mine(ctx context.Context) (*MiningResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := &MiningResult{}
	records, err := m.records.GetUnprocessed(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load unprocessed records: %w", err)
	}
	if len(records) == 0 {
		return result, nil
	}

	for i := range records {
		rec := &records[i]
		if !rec.IsUncategorized() {
			continue
		}
		category := m.classifier.AutoCategorize(rec.FeedbackText)
		if category == models.UncategorizedCategory {
			continue
		}
		if err := m.records.UpdateCategory(ctx, rec.ID, category); err != nil {
			return result, fmt.Errorf("failed to store category of record %d: %w", rec.ID, err)
		}
		rec.Category = category
		result.Reclassified++
	}

	var errs []error
	for _, g := range groupRecords(records) {
		group := g
		merged, err := m.patterns.MergeGroup(ctx, group.category, group.ids, m.now(),
			func(existing *models.Pattern, claimed []int64) (*models.Pattern, error) {
				return m.merge(existing, restrictGroup(group, records, claimed)), nil
			})
		if err != nil {
			m.logger.Error("failed to merge pattern", "category", group.category, "records", len(group.ids), "error", err)
			errs = append(errs, err)
			continue
		}
		if merged.Claimed == 0 {
			m.logger.Debug("records already merged by another pass", "category", group.category, "records", len(group.ids))
			continue
		}

		result.RecordsProcessed += merged.Claimed
		result.Categories = append(result.Categories, group.category)
		if merged.Created {
			result.NewPatterns++
		} else {
			result.UpdatedPatterns++
		}
		m.logger.Debug("pattern merged",
			"category", group.category,
			"records", merged.Claimed,
			"occurrence_count", merged.Pattern.OccurrenceCount,
			"created", merged.Created,
		)
	}

	m.logger.Info("pattern mining completed",
		"records_processed", result.RecordsProcessed,
		"reclassified", result.Reclassified,
		"new_patterns", result.NewPatterns,
		"updated_patterns", result.UpdatedPatterns,
	)
	return result, errors.Join(errs...)
}

// merge строит новое состояние паттерна. Инсайты пересчитываются по образцам
// текущей группы и заменяют прежние.
func (m *PatternMiner) merge(existing *models.Pattern, g *recordGroup) *models.Pattern {
	generated := m.generator.Generate(insights.Input{
		Category:  g.category,
		Samples:   g.samples,
		Keywords:  g.keywords,
		ItemCount: len(g.ids),
	})

	if existing == nil {
		return &models.Pattern{
			PatternName:       g.category,
			Description:       insights.Describe(g.category, len(g.ids), g.formats),
			SourceTypes:       g.formats,
			OccurrenceCount:   len(g.ids),
			CommonCategories:  []string{g.category},
			CommonDefectTypes: capped(g.defectTypes, maxCommonDefects),
			CommonPMCs:        capped(g.pmcs, maxCommonPMCs),
			CommonKeywords:    capped(g.keywords, maxCommonKeywords),
			RootCauses:        generated.RootCauses,
			PreventionTips:    generated.PreventionTips,
			ResolutionSteps:   generated.ResolutionSteps,
			IsActive:          true,
		}
	}

	p := *existing
	p.OccurrenceCount += len(g.ids)
	p.SourceTypes = unionFormats(p.SourceTypes, g.formats)
	p.CommonCategories = union(p.CommonCategories, []string{g.category}, maxCommonCats)
	p.CommonDefectTypes = union(p.CommonDefectTypes, g.defectTypes, maxCommonDefects)
	p.CommonPMCs = union(p.CommonPMCs, g.pmcs, maxCommonPMCs)
	p.CommonKeywords = union(p.CommonKeywords, g.keywords, maxCommonKeywords)
	p.RootCauses = generated.RootCauses
	p.PreventionTips = generated.PreventionTips
	p.ResolutionSteps = generated.ResolutionSteps
	return &p
}

// groupRecords группирует записи по категории в порядке первого появления.
// Записи без категории попадают в группу Uncategorized.
func groupRecords(records []models.TrainingRecord) []*recordGroup {
	index := make(map[string]*recordGroup)
	keywordCounts := make(map[string]map[string]int)
	var groups []*recordGroup

	for _, rec := range records {
		category := strings.TrimSpace(rec.Category)
		if category == "" {
			category = models.UncategorizedCategory
		}
		g, ok := index[category]
		if !ok {
			g = &recordGroup{category: category}
			index[category] = g
			keywordCounts[category] = make(map[string]int)
			groups = append(groups, g)
		}

		g.ids = append(g.ids, rec.ID)
		g.pmcs = appendUnique(g.pmcs, rec.PMCName)
		g.defectTypes = appendUnique(g.defectTypes, rec.DefectType)
		if !containsFormat(g.formats, rec.SourceFormat) {
			g.formats = append(g.formats, rec.SourceFormat)
		}
		if len(g.samples) < maxInsightSamples {
			g.samples = append(g.samples, rec.FeedbackText)
		}

		counts := keywordCounts[category]
		for _, kw := range rec.Keywords {
			if counts[kw] == 0 {
				g.keywords = append(g.keywords, kw)
			}
			counts[kw]++
		}
	}

	// Ключевые слова группы упорядочены по частоте, при равенстве по первому появлению
	for _, g := range groups {
		counts := keywordCounts[g.category]
		sort.SliceStable(g.keywords, func(i, j int) bool {
			return counts[g.keywords[i]] > counts[g.keywords[j]]
		})
	}
	return groups
}

// restrictGroup пересобирает группу только из записей claimed.
// Нужна, когда часть записей группы уже слил параллельный проход.
func restrictGroup(g *recordGroup, records []models.TrainingRecord, claimed []int64) *recordGroup {
	if len(claimed) == len(g.ids) {
		return g
	}
	keep := make(map[int64]bool, len(claimed))
	for _, id := range claimed {
		keep[id] = true
	}
	subset := make([]models.TrainingRecord, 0, len(claimed))
	for _, rec := range records {
		if keep[rec.ID] {
			subset = append(subset, rec)
		}
	}
	if groups := groupRecords(subset); len(groups) == 1 {
		return groups[0]
	}
	return &recordGroup{category: g.category, ids: claimed}
}

func appendUnique(list []string, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return list
	}
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

// union объединяет списки без повторов, сохраняя порядок, и обрезает до limit
func union(existing, added []string, limit int) []string {
	out := make([]string, 0, limit)
	for _, list := range [][]string{existing, added} {
		for _, v := range list {
			if len(out) >= limit {
				return out
			}
			out = appendUnique(out, v)
		}
	}
	return out
}

func capped(list []string, limit int) []string {
	return union(nil, list, limit)
}

func unionFormats(existing, added []models.SourceFormat) []models.SourceFormat {
	out := append([]models.SourceFormat(nil), existing...)
	for _, f := range added {
		if !containsFormat(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func containsFormat(list []models.SourceFormat, f models.SourceFormat) bool {
	for _, v := range list {
		if v == f {
			return true
		}
	}
	return false
}
