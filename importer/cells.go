package importer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// excelEpoch нулевой день серийных дат Excel
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const (
	msPerDay = 24 * 60 * 60 * 1000
	// maxExcelSerial 31.12.9999
	maxExcelSerial = 2958465
)

var (
	datePartsSplit   = regexp.MustCompile(`^(\d{1,4})[-/.](\d{1,2})[-/.](\d{1,4})$`)
	isoDateLayouts   = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"}
	truthyCellValues = map[string]bool{"yes": true, "true": true, "1": true, "y": true}
)

// NormalizeHeader приводит заголовок к NFKC и обрезает пробелы.
// Регистр сохраняется: он нужен для ключей RawData.
func NormalizeHeader(h string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(h)), " ")
}

// CellString превращает значение ячейки в строку.
// Rich text ({"richText":[{"text":...}]} или {"text":...}) склеивается, HTML очищается от разметки.
func CellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return cleanText(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format("2006-01-02")
	case *time.Time:
		if val == nil {
			return ""
		}
		return val.Format("2006-01-02")
	case map[string]any:
		return richText(val)
	case []any:
		var sb strings.Builder
		for _, part := range val {
			sb.WriteString(CellString(part))
		}
		return strings.TrimSpace(sb.String())
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func richText(m map[string]any) string {
	if runs, ok := m["richText"].([]any); ok {
		var sb strings.Builder
		for _, run := range runs {
			if r, ok := run.(map[string]any); ok {
				if t, ok := r["text"].(string); ok {
					sb.WriteString(t)
				}
			}
		}
		return cleanText(sb.String())
	}
	if t, ok := m["text"]; ok {
		return CellString(t)
	}
	if r, ok := m["result"]; ok {
		return CellString(r)
	}
	return ""
}

func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	text, markup := scanMarkup(s)
	if !markup {
		return strings.TrimSpace(text)
	}
	if text, ok := markupText(s); ok {
		return text
	}
	return strings.Join(strings.Fields(text), " ")
}

// scanMarkup проходит строку токенизатором: возвращает текст с раскрытыми сущностями
// и признак того, что в строке есть теги
func scanMarkup(s string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(s))
	var sb strings.Builder
	markup := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String(), markup
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken, html.CommentToken, html.DoctypeToken:
			markup = true
			sb.WriteByte(' ')
		}
	}
}

// blockElements после этих элементов вставляется пробел, иначе соседние абзацы склеиваются
const blockElements = "br, p, div, li, tr, td, th, h1, h2, h3, h4, h5, h6"

// markupText извлекает видимый текст rich text ячейки
func markupText(s string) (string, bool) {
	root, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return "", false
	}
	doc := goquery.NewDocumentFromNode(root)
	doc.Find("script, style").Remove()
	doc.Find(blockElements).Each(func(_ int, sel *goquery.Selection) {
		for _, n := range sel.Nodes {
			if n.Parent != nil {
				n.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: " "}, n.NextSibling)
			}
		}
	})
	return strings.Join(strings.Fields(doc.Text()), " "), true
}

// ParseDate разбирает дату из ячейки. Нераспознанное значение дает nil, а не ошибку.
func ParseDate(v any) *time.Time {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return &val
	case *time.Time:
		return val
	case float64:
		return fromExcelSerial(val)
	case int:
		return fromExcelSerial(float64(val))
	case int64:
		return fromExcelSerial(float64(val))
	case map[string]any, []any:
		return ParseDate(CellString(val))
	case string:
		return parseDateString(strings.TrimSpace(val))
	default:
		return nil
	}
}

func parseDateString(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	if m := datePartsSplit.FindStringSubmatch(s); m != nil {
		return fromDateParts(m[1], m[2], m[3])
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return fromExcelSerial(serial)
	}
	return nil
}

// fromDateParts трактует три числа как YYYY-MM-DD, если первое из четырех цифр, иначе как DD-MM-YYYY
func fromDateParts(a, b, c string) *time.Time {
	var year, month, day int
	if len(a) == 4 {
		year, _ = strconv.Atoi(a)
		month, _ = strconv.Atoi(b)
		day, _ = strconv.Atoi(c)
	} else {
		day, _ = strconv.Atoi(a)
		month, _ = strconv.Atoi(b)
		year, _ = strconv.Atoi(c)
		if len(c) <= 2 {
			year += 2000
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1900 {
		return nil
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return nil
	}
	return &t
}

func fromExcelSerial(serial float64) *time.Time {
	if math.IsNaN(serial) || serial < 1 || serial > maxExcelSerial {
		return nil
	}
	t := excelEpoch.Add(time.Duration(math.Round(serial*msPerDay)) * time.Millisecond)
	return &t
}

// ParseBool распознает yes/true/1/y без учета регистра
func ParseBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val == 1
	case int:
		return val == 1
	default:
		return truthyCellValues[strings.ToLower(CellString(v))]
	}
}

// IsBlankRow строка с менее чем двумя непустыми ячейками считается пустой
func IsBlankRow(row []any) bool {
	nonEmpty := 0
	for _, cell := range row {
		if CellString(cell) != "" {
			nonEmpty++
			if nonEmpty >= 2 {
				return false
			}
		}
	}
	return true
}

func cellAt(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}
