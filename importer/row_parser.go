package importer

import (
	"strings"

	"qcinsights/internal/domain/models"
	"qcinsights/tables"
)

// RowParser разбирает строку листа одного формата в запись обучения.
// Возвращает nil для пустой строки (меньше двух непустых ячеек).
type RowParser interface {
	Format() models.SourceFormat
	ParseRow(row []any, cols ColumnMap, raw RawCells) *models.TrainingRecord
}

// ParserRegistry парсеры строк по формату
type ParserRegistry struct {
	parsers map[models.SourceFormat]RowParser
}

// NewParserRegistry регистрирует парсеры всех известных форматов
func NewParserRegistry(t *tables.Tables) *ParserRegistry {
	feedbackWords := t.FeedbackWords()
	reg := &ParserRegistry{parsers: make(map[models.SourceFormat]RowParser)}
	for _, rules := range t.Formats() {
		base := baseParser{format: rules.Format, feedbackWords: feedbackWords, alternates: rules.Alternates}
		switch rules.Format {
		case models.SourceFormatWISQC:
			reg.Register(&wisQCParser{baseParser: base})
		case models.SourceFormatBuildReview:
			reg.Register(&buildReviewParser{baseParser: base})
		case models.SourceFormatClientFeedback:
			reg.Register(&clientFeedbackParser{baseParser: base})
		}
	}
	return reg
}

// Register добавляет или заменяет парсер формата
func (r *ParserRegistry) Register(p RowParser) {
	r.parsers[p.Format()] = p
}

// Parser возвращает парсер для формата
func (r *ParserRegistry) Parser(f models.SourceFormat) (RowParser, bool) {
	p, ok := r.parsers[f]
	return p, ok
}

// baseParser общие для всех форматов поля и fallback-логика
type baseParser struct {
	format        models.SourceFormat
	feedbackWords []string
	alternates    map[string][]string
}

func (p *baseParser) Format() models.SourceFormat {
	return p.format
}

func (p *baseParser) parseCommon(row []any, cols ColumnMap, raw RawCells) *models.TrainingRecord {
	if IsBlankRow(row) {
		return nil
	}

	rec := &models.TrainingRecord{
		SourceFormat:  p.format,
		Date:          ParseDate(cellAt(row, cols.Index(tables.FieldDate))),
		PMCName:       text(row, cols, tables.FieldPMCName),
		LocationName:  text(row, cols, tables.FieldLocationName),
		PageName:      text(row, cols, tables.FieldPageName),
		DefectType:    text(row, cols, tables.FieldDefectType),
		FeedbackText:  text(row, cols, tables.FieldFeedbackText),
		Category:      text(row, cols, tables.FieldCategory),
		SubCategory:   text(row, cols, tables.FieldSubCategory),
		FixedBy:       text(row, cols, tables.FieldFixedBy),
		Status:        text(row, cols, tables.FieldStatus),
		ScreenshotRef: text(row, cols, tables.FieldScreenshot),
		RawData:       raw.Map(),
	}

	if rec.FeedbackText == "" {
		rec.FeedbackText = RecoverFeedback(raw, p.feedbackWords)
	}
	if rec.PMCName == "" {
		rec.PMCName = p.alternate(raw, tables.FieldPMCName)
	}
	if rec.LocationName == "" {
		rec.LocationName = p.alternate(raw, tables.FieldLocationName)
	}
	return rec
}

// alternate ищет значение поля по альтернативным написаниям заголовка в сырой строке
func (p *baseParser) alternate(raw RawCells, field string) string {
	for _, name := range p.alternates[field] {
		for _, key := range raw.Keys() {
			if strings.EqualFold(key, name) {
				if v := raw.Get(key); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

// wisQCParser формат A: трекер QC-фидбэка с командами US/offshore
type wisQCParser struct {
	baseParser
}

func (p *wisQCParser) ParseRow(row []any, cols ColumnMap, raw RawCells) *models.TrainingRecord {
	rec := p.parseCommon(row, cols, raw)
	if rec == nil {
		return nil
	}
	rec.USTeamMember = text(row, cols, tables.FieldUSTeamMember)
	rec.OffshoreTeamMember = text(row, cols, tables.FieldOffshoreTeamMember)
	rec.TrainingNeeded = ParseBool(cellAt(row, cols.Index(tables.FieldTrainingNeeded)))
	return rec
}

// buildReviewParser формат B: ревью этапов сборки сайта
type buildReviewParser struct {
	baseParser
}

func (p *buildReviewParser) ParseRow(row []any, cols ColumnMap, raw RawCells) *models.TrainingRecord {
	rec := p.parseCommon(row, cols, raw)
	if rec == nil {
		return nil
	}
	rec.BuildPhase = text(row, cols, tables.FieldBuildPhase)
	rec.ReviewStage = text(row, cols, tables.FieldReviewStage)
	rec.Reviewer = text(row, cols, tables.FieldReviewer)
	rec.TrainingNeeded = ParseBool(cellAt(row, cols.Index(tables.FieldTrainingNeeded)))
	// Ревьюер сборки без явного типа дефекта фиксирует замечание этапа
	if rec.DefectType == "" && rec.BuildPhase != "" {
		rec.DefectType = rec.BuildPhase + " Review"
	}
	return rec
}

// clientFeedbackParser формат C: журнал правок от клиента
type clientFeedbackParser struct {
	baseParser
}

func (p *clientFeedbackParser) ParseRow(row []any, cols ColumnMap, raw RawCells) *models.TrainingRecord {
	rec := p.parseCommon(row, cols, raw)
	if rec == nil {
		return nil
	}
	rec.ScopeType = text(row, cols, tables.FieldScopeType)
	rec.Reviewer = text(row, cols, tables.FieldReviewer)
	if rec.DefectType == "" {
		rec.DefectType = "Client Request"
	}
	return rec
}

func text(row []any, cols ColumnMap, field string) string {
	return CellString(cellAt(row, cols.Index(field)))
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
