package importer

import (
	"strings"

	"qcinsights/internal/domain/models"
	"qcinsights/tables"
)

// FormatDetector определяет формат листа по имени и заголовкам
type FormatDetector struct {
	rules []tables.FormatRules
}

// NewFormatDetector создает детектор с правилами в порядке приоритета
func NewFormatDetector(t *tables.Tables) *FormatDetector {
	return &FormatDetector{rules: t.Formats()}
}

// Detect возвращает формат листа и false, если формат не распознан.
// Сначала проверяется имя листа, затем заголовки; при нескольких совпадениях
// побеждает формат с большим приоритетом.
func (d *FormatDetector) Detect(sheetName string, headers []string) (models.SourceFormat, bool) {
	name := strings.ToLower(strings.TrimSpace(sheetName))
	if name != "" {
		for _, r := range d.rules {
			if containsAny(name, r.SheetMarkers) {
				return r.Format, true
			}
		}
	}

	joined := strings.ToLower(strings.Join(headers, " | "))
	if strings.TrimSpace(joined) == "" {
		return "", false
	}
	for _, r := range d.rules {
		if containsAny(joined, r.HeaderKeywords) {
			return r.Format, true
		}
	}
	return "", false
}

// containsAny проверяет, содержит ли строка хотя бы одно из ключевых слов
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
