package importer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T, sheets map[string][][]any, order []string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// TestOpenWorkbookExcel проверяет чтение xlsx со всеми листами
func TestOpenWorkbookExcel(t *testing.T) {
	data := buildXLSX(t, map[string][][]any{
		"WIS QC Feedback Tracker": {
			{"Date", "PMC Name", "QC Feedback", "US Team Member"},
			{time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "Greystar", "Broken link in footer", "Alice"},
		},
		"Summary": {
			{"Total", "Month"},
			{12, "March"},
		},
	}, []string{"WIS QC Feedback Tracker", "Summary"})

	wb, err := OpenWorkbook(bytes.NewReader(data), "qc.xlsx")
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)
	assert.Equal(t, "qc.xlsx", wb.Name)

	sheet := wb.Sheets[0]
	assert.Equal(t, "WIS QC Feedback Tracker", sheet.Name)
	assert.Equal(t, []string{"Date", "PMC Name", "QC Feedback", "US Team Member"}, sheet.Headers())
	require.Len(t, sheet.DataRows(), 1)

	date := ParseDate(sheet.DataRows()[0][0])
	require.NotNil(t, date)
	assert.Equal(t, "2024-03-05", date.Format("2006-01-02"))
	assert.Equal(t, "Broken link in footer", CellString(sheet.DataRows()[0][2]))

	assert.Equal(t, "Summary", wb.Sheets[1].Name)
}

// TestOpenWorkbookCorrupt поврежденный файл является фатальной ошибкой
func TestOpenWorkbookCorrupt(t *testing.T) {
	_, err := OpenWorkbook(strings.NewReader("definitely not a zip"), "broken.xlsx")
	assert.Error(t, err)
}

// TestOpenWorkbookUnsupported проверяет отказ для неизвестных расширений
func TestOpenWorkbookUnsupported(t *testing.T) {
	_, err := OpenWorkbook(strings.NewReader("%PDF"), "report.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

// TestOpenWorkbookCSV проверяет CSV в UTF-8 с BOM и в cp1252
func TestOpenWorkbookCSV(t *testing.T) {
	utf := "\xef\xbb\xbfDate,QC Feedback\n2024-03-05,\"Hero image, blurry\"\n"
	wb, err := OpenWorkbook(strings.NewReader(utf), "qc_export.csv")
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "qc_export", wb.Sheets[0].Name)
	assert.Equal(t, []string{"Date", "QC Feedback"}, wb.Sheets[0].Headers())
	assert.Equal(t, "Hero image, blurry", wb.Sheets[0].DataRows()[0][1])

	cp1252 := []byte("Notes,Status\nCaf\xe9 photo missing,Open\n")
	wb, err = OpenWorkbook(bytes.NewReader(cp1252), "legacy.csv")
	require.NoError(t, err)
	assert.Equal(t, "Café photo missing", wb.Sheets[0].DataRows()[0][0])
}

// TestReadJSONWorkbook проверяет типизированные ячейки в JSON
func TestReadJSONWorkbook(t *testing.T) {
	payload := `{"sheets":[{"name":"QC","rows":[
		["Date","QC Feedback","Training Needed"],
		[45292,{"richText":[{"text":"Hero "},{"text":"image"}]},true]
	]}]}`

	wb, err := OpenWorkbook(strings.NewReader(payload), "rows.json")
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)

	row := wb.Sheets[0].DataRows()[0]
	date := ParseDate(row[0])
	require.NotNil(t, date)
	assert.Equal(t, "2024-01-01", date.Format("2006-01-02"))
	assert.Equal(t, "Hero image", CellString(row[1]))
	assert.True(t, ParseBool(row[2]))

	_, err = ReadJSONWorkbook(strings.NewReader("{"))
	assert.Error(t, err)
}
