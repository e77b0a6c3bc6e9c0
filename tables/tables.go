package tables

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"qcinsights/internal/domain/models"
)

// Семантические поля, на которые ColumnMapper раскладывает колонки листа
const (
	FieldDate               = "date"
	FieldPMCName            = "pmc_name"
	FieldLocationName       = "location_name"
	FieldPageName           = "page_name"
	FieldDefectType         = "defect_type"
	FieldFeedbackText       = "feedback_text"
	FieldCategory           = "category"
	FieldSubCategory        = "sub_category"
	FieldUSTeamMember       = "us_team_member"
	FieldOffshoreTeamMember = "offshore_team_member"
	FieldReviewer           = "reviewer"
	FieldFixedBy            = "fixed_by"
	FieldBuildPhase         = "build_phase"
	FieldReviewStage        = "review_stage"
	FieldStatus             = "status"
	FieldScopeType          = "scope_type"
	FieldScreenshot         = "screenshot"
	FieldTrainingNeeded     = "training_needed"
)

//go:embed default_tables.yaml
var defaultTablesYAML []byte

// Category категория таксономии и ее триггерные фразы
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// ColumnAliases варианты заголовков для одного семантического поля
type ColumnAliases struct {
	Field   string   `yaml:"field"`
	Aliases []string `yaml:"aliases"`
}

// FormatRules правила детекции и разметки колонок одного формата
type FormatRules struct {
	Format         models.SourceFormat `yaml:"format"`
	SheetMarkers   []string            `yaml:"sheet_markers"`
	HeaderKeywords []string            `yaml:"header_keywords"`
	Columns        []ColumnAliases     `yaml:"columns"`
	// Alternates альтернативные написания колонок клиента/локации в сырой строке
	Alternates map[string][]string `yaml:"alternates"`
}

type document struct {
	Stopwords     []string      `yaml:"stopwords"`
	FeedbackWords []string      `yaml:"feedback_words"`
	Categories    []Category    `yaml:"categories"`
	Formats       []FormatRules `yaml:"formats"`
}

// Tables неизменяемый набор справочников: стоп-слова, таксономия и таблицы алиасов.
// Загружается один раз и передается компонентам при создании.
type Tables struct {
	stopwords     map[string]struct{}
	feedbackWords []string
	categories    []Category
	formats       map[models.SourceFormat]FormatRules
}

// Default возвращает справочники, встроенные в бинарник
func Default() *Tables {
	t, err := Parse(defaultTablesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded tables are invalid: %v", err))
	}
	return t
}

// Load загружает справочники из YAML-файла; пустой путь означает встроенные справочники
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load tables from %s: %w", path, err)
	}
	return t, nil
}

// Parse разбирает и валидирует YAML справочников
func Parse(data []byte) (*Tables, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse tables: %w", err)
	}

	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("tables define no categories")
	}

	t := &Tables{
		stopwords: make(map[string]struct{}, len(doc.Stopwords)),
		formats:   make(map[models.SourceFormat]FormatRules, len(doc.Formats)),
	}

	for _, w := range doc.Stopwords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			t.stopwords[w] = struct{}{}
		}
	}
	t.feedbackWords = lowerAll(doc.FeedbackWords)

	seen := make(map[string]bool, len(doc.Categories))
	for _, c := range doc.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("category with empty name")
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate category %q", name)
		}
		seen[name] = true
		t.categories = append(t.categories, Category{Name: name, Keywords: lowerAll(c.Keywords)})
	}

	for _, f := range doc.Formats {
		if !f.Format.IsValid() {
			return nil, fmt.Errorf("unknown source format %q", f.Format)
		}
		f.SheetMarkers = lowerAll(f.SheetMarkers)
		f.HeaderKeywords = lowerAll(f.HeaderKeywords)
		for i := range f.Columns {
			f.Columns[i].Aliases = lowerAll(f.Columns[i].Aliases)
		}
		t.formats[f.Format] = f
	}
	for _, f := range models.AllSourceFormats() {
		if _, ok := t.formats[f]; !ok {
			return nil, fmt.Errorf("tables miss rules for source format %s", f)
		}
	}

	return t, nil
}

// IsStopword проверяет, входит ли токен в список стоп-слов
func (t *Tables) IsStopword(token string) bool {
	_, ok := t.stopwords[token]
	return ok
}

// StopwordCount количество стоп-слов
func (t *Tables) StopwordCount() int {
	return len(t.stopwords)
}

// FeedbackWords слова, по которым заголовок считается колонкой фидбэка
func (t *Tables) FeedbackWords() []string {
	return append([]string(nil), t.feedbackWords...)
}

// Categories возвращает таксономию в исходном порядке
func (t *Tables) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}

// Format возвращает правила для формата
func (t *Tables) Format(f models.SourceFormat) (FormatRules, bool) {
	rules, ok := t.formats[f]
	return rules, ok
}

// Formats возвращает правила в фиксированном порядке приоритета (A, B, C)
func (t *Tables) Formats() []FormatRules {
	out := make([]FormatRules, 0, len(t.formats))
	for _, f := range models.AllSourceFormats() {
		out = append(out, t.formats[f])
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
