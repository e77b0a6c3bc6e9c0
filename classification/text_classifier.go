package classification

import (
	"strings"

	"qcinsights/internal/domain/models"
	"qcinsights/tables"
)

// CategoryScore очки категории для конкретного текста
type CategoryScore struct {
	Category string   `json:"category"`
	Score    int      `json:"score"`
	Matched  []string `json:"matched,omitempty"`
}

// TextClassifier детерминированный классификатор по ключевым фразам.
// Фраза из N слов, найденная в тексте как подстрока, дает N очков.
type TextClassifier struct {
	categories []tables.Category
}

// NewTextClassifier создает классификатор по таксономии из справочников
func NewTextClassifier(t *tables.Tables) *TextClassifier {
	return &TextClassifier{categories: t.Categories()}
}

// AutoCategorize возвращает категорию с наибольшим счетом или Uncategorized.
// При равенстве побеждает категория, стоящая раньше в таксономии.
func (c *TextClassifier) AutoCategorize(text string) string {
	best := models.UncategorizedCategory
	bestScore := 0
	for _, s := range c.Score(text) {
		if s.Score > bestScore {
			best = s.Category
			bestScore = s.Score
		}
	}
	return best
}

// Score считает очки по всем категориям в порядке таксономии
func (c *TextClassifier) Score(text string) []CategoryScore {
	lower := strings.ToLower(text)
	scores := make([]CategoryScore, 0, len(c.categories))
	for _, cat := range c.categories {
		s := CategoryScore{Category: cat.Name}
		if lower != "" {
			for _, phrase := range cat.Keywords {
				if strings.Contains(lower, phrase) {
					s.Score += len(strings.Fields(phrase))
					s.Matched = append(s.Matched, phrase)
				}
			}
		}
		scores = append(scores, s)
	}
	return scores
}

// Categories имена категорий таксономии
func (c *TextClassifier) Categories() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}
