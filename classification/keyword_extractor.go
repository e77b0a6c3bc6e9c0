package classification

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"qcinsights/tables"
)

// MaxKeywords максимальное количество ключевых слов на запись
const MaxKeywords = 15

// minKeywordLen токены такой длины и короче отбрасываются
const minKeywordLen = 3

var nonKeywordChars = regexp.MustCompile(`[^\p{L}\p{N}\s-]+`)

// KeywordExtractor выделяет значимые термины из свободного текста
type KeywordExtractor struct {
	tables *tables.Tables
}

// NewKeywordExtractor создает экстрактор поверх справочника стоп-слов
func NewKeywordExtractor(t *tables.Tables) *KeywordExtractor {
	return &KeywordExtractor{tables: t}
}

// Extract возвращает до 15 терминов, самые частые первыми.
// При равной частоте сохраняется порядок первого появления.
func (e *KeywordExtractor) Extract(text string) []string {
	cleaned := nonKeywordChars.ReplaceAllString(strings.ToLower(text), "")

	counts := make(map[string]int)
	var order []string
	for _, token := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(token) <= minKeywordLen || e.tables.IsStopword(token) {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > MaxKeywords {
		order = order[:MaxKeywords]
	}
	return order
}
