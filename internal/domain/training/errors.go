package training

import "errors"

var (
	// ErrPatternNotFound ошибка при отсутствии паттерна
	ErrPatternNotFound = errors.New("pattern not found")

	// ErrUnreadableWorkbook файл книги поврежден или не читается
	ErrUnreadableWorkbook = errors.New("workbook cannot be read")

	// ErrEmptyWorkbook ошибка при книге без листов
	ErrEmptyWorkbook = errors.New("workbook contains no sheets")

	// ErrInvalidFormat ошибка при неизвестном формате источника
	ErrInvalidFormat = errors.New("invalid source format")

	// ErrEmptyText ошибка при пустом тексте для классификации
	ErrEmptyText = errors.New("text is empty")
)
