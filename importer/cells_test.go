package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCellString проверяет приведение разных типов ячеек к строке
func TestCellString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"trimmed string", "  Hero image  ", "Hero image"},
		{"integer float", 3.0, "3"},
		{"fraction", 2.5, "2.5"},
		{"bool", true, "true"},
		{"date", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "2024-03-05"},
		{"rich text runs", map[string]any{"richText": []any{
			map[string]any{"text": "Hero "},
			map[string]any{"text": "image"},
		}}, "Hero image"},
		{"text object", map[string]any{"text": "Broken link"}, "Broken link"},
		{"html", "<p>Hero <b>image</b> is blurry</p>", "Hero image is blurry"},
		{"entities", "Floor plans &amp; pricing", "Floor plans & pricing"},
		{"numeric entity", "Pet policy &#8211; update", "Pet policy \u2013 update"},
		{"paragraphs stay apart", "<p>Hero image</p><p>Footer link</p>", "Hero image Footer link"},
		{"line breaks", "Hero image<br>Footer link", "Hero image Footer link"},
		{"script dropped", "<div>Broken link</div><script>track()</script>", "Broken link"},
		{"entity inside markup", "<b>Floor plans &amp; pricing</b>", "Floor plans & pricing"},
		{"less-than is not a tag", "Price < 1500 on listing", "Price < 1500 on listing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CellString(tt.in))
		})
	}
}

// TestParseDate проверяет поддерживаемые представления дат
func TestParseDate(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		in   any
		want *time.Time
	}{
		{"native", day(2024, 3, 5), ptr(day(2024, 3, 5))},
		{"iso", "2024-03-05", ptr(day(2024, 3, 5))},
		{"iso datetime", "2024-03-05T10:00:00Z", ptr(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))},
		{"dd-mm-yyyy", "05-03-2024", ptr(day(2024, 3, 5))},
		{"dd/mm/yy", "5/3/24", ptr(day(2024, 3, 5))},
		{"excel serial", 45292.0, ptr(day(2024, 1, 1))},
		{"excel serial string", "45292", ptr(day(2024, 1, 1))},
		{"half day", 45292.5, ptr(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))},
		{"impossible day", "31-02-2024", nil},
		{"garbage", "next week", nil},
		{"empty", "", nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %v, got %v", tt.want, got)
		})
	}
}

// TestParseBool проверяет распознавание флагов
func TestParseBool(t *testing.T) {
	for _, v := range []any{"yes", "YES", "True", "1", "y", " Y ", true, 1.0} {
		assert.True(t, ParseBool(v), "%v", v)
	}
	for _, v := range []any{"no", "", "0", "n", "maybe", nil, false, 0.0} {
		assert.False(t, ParseBool(v), "%v", v)
	}
}

// TestIsBlankRow проверяет порог в две непустые ячейки
func TestIsBlankRow(t *testing.T) {
	assert.True(t, IsBlankRow(nil))
	assert.True(t, IsBlankRow([]any{"", "  ", nil}))
	assert.True(t, IsBlankRow([]any{"", "only one", ""}))
	assert.False(t, IsBlankRow([]any{"a", "", "b"}))
}

// TestRecoverFeedback проверяет восстановление текста фидбэка из сырых колонок
func TestRecoverFeedback(t *testing.T) {
	words := []string{"feedback", "notes", "description", "comment", "issue", "defect"}
	headers := []string{"Date", "Issue Details", "Remarks"}

	raw := NewRawCells(headers, []any{"2024-03-05", "Broken link in footer", "Footer phone number is outdated"})
	assert.Equal(t, "Broken link in footer", RecoverFeedback(raw, words))

	raw = NewRawCells(headers, []any{"2024-03-05", "n/a", "Footer phone number is outdated"})
	assert.Equal(t, "Footer phone number is outdated", RecoverFeedback(raw, words))

	raw = NewRawCells(headers, []any{"2024-03-05", "n/a", "short"})
	assert.Empty(t, RecoverFeedback(raw, words))
}

// TestNewRawCells проверяет ключи для пустых и повторяющихся заголовков
func TestNewRawCells(t *testing.T) {
	raw := NewRawCells([]string{"Notes", "", "Notes"}, []any{"a", "b", "c", "d"})

	assert.Equal(t, []string{"Notes", "column_2", "Notes_2", "column_4"}, raw.Keys())
	assert.Equal(t, "c", raw.Get("Notes_2"))
	assert.Equal(t, "d", raw.Map()["column_4"])
}

// TestNewRawCellsSuffixCollision суффикс повтора не затирает реальный заголовок с таким же именем
func TestNewRawCellsSuffixCollision(t *testing.T) {
	raw := NewRawCells([]string{"Notes", "Notes", "Notes_2", "column_4", ""}, []any{"a", "b", "c", "d", "e"})

	assert.Equal(t, []string{"Notes", "Notes_2", "Notes_2_2", "column_4", "column_5"}, raw.Keys())
	assert.Len(t, raw.Map(), 5)
	assert.Equal(t, "b", raw.Get("Notes_2"))
	assert.Equal(t, "c", raw.Get("Notes_2_2"))

	raw = NewRawCells([]string{"column_2", ""}, []any{"a", "b"})
	assert.Equal(t, []string{"column_2", "column_2_2"}, raw.Keys())
	assert.Equal(t, "b", raw.Get("column_2_2"))
}

func ptr(t time.Time) *time.Time {
	return &t
}
