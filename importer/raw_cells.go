package importer

import (
	"fmt"
	"unicode/utf8"
)

// RawCells исходная строка как упорядоченное отображение заголовок -> значение
type RawCells struct {
	keys   []string
	values map[string]string
}

// NewRawCells собирает отображение по заголовкам листа.
// Пустые заголовки получают имя column_N, повторы получают суффикс _2, _3 и т.д.
func NewRawCells(headers []string, row []any) RawCells {
	n := len(headers)
	if len(row) > n {
		n = len(row)
	}
	rc := RawCells{values: make(map[string]string, n)}
	for i := 0; i < n; i++ {
		key := ""
		if i < len(headers) {
			key = headers[i]
		}
		if key == "" {
			key = fmt.Sprintf("column_%d", i+1)
		}
		// Суффикс подбирается, пока ключ занят: реальный заголовок может совпасть с ним
		if _, taken := rc.values[key]; taken {
			base := key
			for suffix := 2; ; suffix++ {
				key = fmt.Sprintf("%s_%d", base, suffix)
				if _, taken := rc.values[key]; !taken {
					break
				}
			}
		}
		rc.keys = append(rc.keys, key)
		rc.values[key] = CellString(cellAt(row, i))
	}
	return rc
}

// Keys заголовки в порядке колонок
func (rc RawCells) Keys() []string {
	return rc.keys
}

// Get значение по заголовку
func (rc RawCells) Get(key string) string {
	return rc.values[key]
}

// Map копия отображения для сохранения в RawData
func (rc RawCells) Map() map[string]string {
	out := make(map[string]string, len(rc.values))
	for k, v := range rc.values {
		out[k] = v
	}
	return out
}

// RecoverFeedback ищет текст фидбэка, когда основная колонка пуста.
// Сначала колонка с "фидбэк-словом" в заголовке и значением длиннее 5 символов,
// иначе самое длинное значение длиннее 10 символов.
func RecoverFeedback(raw RawCells, feedbackWords []string) string {
	for _, key := range raw.keys {
		v := raw.values[key]
		if utf8.RuneCountInString(v) > 5 && containsAny(lower(key), feedbackWords) {
			return v
		}
	}

	longest := ""
	longestLen := 10
	for _, key := range raw.keys {
		v := raw.values[key]
		if n := utf8.RuneCountInString(v); n > longestLen {
			longest = v
			longestLen = n
		}
	}
	return longest
}
