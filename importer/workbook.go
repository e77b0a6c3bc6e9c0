package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrUnsupportedFile файл не является поддерживаемой таблицей
var ErrUnsupportedFile = errors.New("unsupported workbook file type")

// Workbook загруженная книга: листы в порядке документа
type Workbook struct {
	Name   string  `json:"name,omitempty"`
	Sheets []Sheet `json:"sheets"`
}

// Sheet лист книги. Первая строка Rows является строкой заголовков.
// Значения ячеек: строки, числа, bool, time.Time или rich text (map/срезы).
type Sheet struct {
	Name string  `json:"name"`
	Rows [][]any `json:"rows"`
}

// Headers возвращает нормализованные заголовки листа
func (s Sheet) Headers() []string {
	if len(s.Rows) == 0 {
		return nil
	}
	headers := make([]string, len(s.Rows[0]))
	for i, cell := range s.Rows[0] {
		headers[i] = NormalizeHeader(CellString(cell))
	}
	return headers
}

// DataRows строки данных без заголовка
func (s Sheet) DataRows() [][]any {
	if len(s.Rows) < 2 {
		return nil
	}
	return s.Rows[1:]
}

// OpenWorkbook читает книгу, выбирая формат по расширению имени файла.
// Поддерживаются .xlsx/.xlsm (excelize), .csv и .json.
func OpenWorkbook(r io.Reader, filename string) (*Workbook, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	var (
		wb  *Workbook
		err error
	)
	switch ext {
	case ".xlsx", ".xlsm", ".xltx":
		wb, err = readExcel(r)
	case ".csv":
		wb, err = readCSV(r, strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	case ".json":
		wb, err = ReadJSONWorkbook(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}
	if err != nil {
		return nil, err
	}
	wb.Name = filepath.Base(filename)
	return wb, nil
}

func readExcel(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		// Даты приходят серийными номерами и разбираются ParseDate
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to get rows of sheet %q: %w", name, err)
		}
		sheet := Sheet{Name: name, Rows: make([][]any, len(rows))}
		for i, row := range rows {
			cells := make([]any, len(row))
			for j, v := range row {
				cells[j] = v
			}
			sheet.Rows[i] = cells
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

func readCSV(r io.Reader, sheetName string) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		// Выгрузки из Excel под Windows приходят в cp1252
		src = transform.NewReader(src, charmap.Windows1252.NewDecoder())
	}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV file: %w", err)
	}

	sheet := Sheet{Name: sheetName, Rows: make([][]any, len(records))}
	for i, rec := range records {
		cells := make([]any, len(rec))
		for j, v := range rec {
			cells[j] = v
		}
		sheet.Rows[i] = cells
	}
	return &Workbook{Sheets: []Sheet{sheet}}, nil
}

// ReadJSONWorkbook разбирает книгу, уже разложенную клиентом на листы и строки
func ReadJSONWorkbook(r io.Reader) (*Workbook, error) {
	var wb Workbook
	if err := json.NewDecoder(r).Decode(&wb); err != nil {
		return nil, fmt.Errorf("failed to decode JSON workbook: %w", err)
	}
	return &wb, nil
}
