package importer

import (
	"strings"
	"unicode/utf8"

	"qcinsights/tables"
)

// ColumnMap индекс колонки для каждого семантического поля
type ColumnMap map[string]int

// Index возвращает индекс колонки поля или -1, если колонка не найдена
func (m ColumnMap) Index(field string) int {
	if idx, ok := m[field]; ok {
		return idx
	}
	return -1
}

// MapColumns раскладывает заголовки по полям формата.
// Отсутствующее поле получает -1 и читается как пустое значение.
func MapColumns(headers []string, columns []tables.ColumnAliases) ColumnMap {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	m := make(ColumnMap, len(columns))
	for _, col := range columns {
		m[col.Field] = findColumn(lowered, col.Aliases)
	}
	return m
}

func findColumn(headers []string, aliases []string) int {
	// Проход 1: алиас входит в заголовок или заголовок входит в алиас
	for _, alias := range aliases {
		for i, h := range headers {
			if h == "" {
				continue
			}
			if strings.Contains(h, alias) || strings.Contains(alias, h) {
				return i
			}
		}
	}

	// Проход 2: значимое слово заголовка входит в алиас
	for _, alias := range aliases {
		for i, h := range headers {
			for _, word := range strings.Fields(h) {
				if utf8.RuneCountInString(word) > 3 && strings.Contains(alias, word) {
					return i
				}
			}
		}
	}

	return -1
}
