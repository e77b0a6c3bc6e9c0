package models

import (
	"time"
)

// SourceFormat формат исходной выгрузки (одна из трех известных таблиц ревью)
type SourceFormat string

const (
	// SourceFormatWISQC трекер QC-фидбэка команды (формат A)
	SourceFormatWISQC SourceFormat = "WIS_QC"
	// SourceFormatBuildReview ревью этапов сборки сайта (формат B)
	SourceFormatBuildReview SourceFormat = "BUILD_REVIEW"
	// SourceFormatClientFeedback журнал правок от клиента (формат C)
	SourceFormatClientFeedback SourceFormat = "CLIENT_FEEDBACK"
)

// UncategorizedCategory категория записи, которую не удалось классифицировать
const UncategorizedCategory = "Uncategorized"

// AllSourceFormats возвращает форматы в порядке приоритета детекции
func AllSourceFormats() []SourceFormat {
	return []SourceFormat{SourceFormatWISQC, SourceFormatBuildReview, SourceFormatClientFeedback}
}

// IsValid проверяет, что формат входит в фиксированный набор
func (f SourceFormat) IsValid() bool {
	switch f {
	case SourceFormatWISQC, SourceFormatBuildReview, SourceFormatClientFeedback:
		return true
	}
	return false
}

// TrainingRecord нормализованная запись фидбэка, полученная при импорте
type TrainingRecord struct {
	ID           int64        `json:"id"`
	SourceFormat SourceFormat `json:"source_format"`
	ImportID     string       `json:"import_id,omitempty"`
	Date         *time.Time   `json:"date,omitempty"`

	PMCName      string `json:"pmc_name,omitempty"`
	LocationName string `json:"location_name,omitempty"`
	PageName     string `json:"page_name,omitempty"`
	DefectType   string `json:"defect_type,omitempty"`

	// FeedbackText никогда не пустой у сохраненной записи
	FeedbackText string   `json:"feedback_text"`
	Category     string   `json:"category,omitempty"`
	SubCategory  string   `json:"sub_category,omitempty"`
	Keywords     []string `json:"keywords"`

	// RawData исходная строка целиком: заголовок -> значение
	RawData map[string]string `json:"raw_data"`

	// Поля происхождения, зависящие от формата
	USTeamMember       string `json:"us_team_member,omitempty"`
	OffshoreTeamMember string `json:"offshore_team_member,omitempty"`
	Reviewer           string `json:"reviewer,omitempty"`
	FixedBy            string `json:"fixed_by,omitempty"`
	BuildPhase         string `json:"build_phase,omitempty"`
	ReviewStage        string `json:"review_stage,omitempty"`
	Status             string `json:"status,omitempty"`
	ScopeType          string `json:"scope_type,omitempty"`
	ScreenshotRef      string `json:"screenshot_ref,omitempty"`
	TrainingNeeded     bool   `json:"training_needed"`

	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	PatternID   *string    `json:"pattern_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsUncategorized сообщает, нужна ли записи повторная классификация
func (r *TrainingRecord) IsUncategorized() bool {
	return r.Category == "" || r.Category == UncategorizedCategory
}

// Pattern агрегат всех записей одной категории, накапливаемый между импортами
type Pattern struct {
	ID              string         `json:"id"`
	PatternName     string         `json:"pattern_name"`
	Description     string         `json:"description"`
	SourceTypes     []SourceFormat `json:"source_types"`
	OccurrenceCount int            `json:"occurrence_count"`

	CommonCategories  []string `json:"common_categories"`
	CommonDefectTypes []string `json:"common_defect_types"`
	CommonPMCs        []string `json:"common_pmcs"`
	CommonKeywords    []string `json:"common_keywords"`

	// Инсайты пересчитываются при каждом слиянии, а не накапливаются
	RootCauses      []string `json:"root_causes"`
	PreventionTips  []string `json:"prevention_tips"`
	ResolutionSteps []string `json:"resolution_steps"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PrimaryCategory возвращает первую из накопленных категорий
func (p *Pattern) PrimaryCategory() string {
	if len(p.CommonCategories) > 0 {
		return p.CommonCategories[0]
	}
	return p.PatternName
}
