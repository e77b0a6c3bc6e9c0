package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"qcinsights/database"
	"qcinsights/internal/domain/models"
	"qcinsights/internal/domain/repositories"
)

const recordColumns = `id, source_format, import_id, record_date, pmc_name, location_name, page_name, defect_type,
	feedback_text, category, sub_category, keywords, raw_data, us_team_member, offshore_team_member, reviewer,
	fixed_by, build_phase, review_stage, status, scope_type, screenshot_ref, training_needed, processed_at,
	pattern_id, created_at`

// categoryExpr пустая категория учитывается как Uncategorized
const categoryExpr = `CASE WHEN category = '' THEN 'Uncategorized' ELSE category END`

// trainingRecordRepository реализация репозитория записей обучения
// Адаптер между domain интерфейсом и infrastructure (database.TrainingDB)
type trainingRecordRepository struct {
	db *database.TrainingDB
}

// NewTrainingRecordRepository создает новый репозиторий записей обучения
func NewTrainingRecordRepository(db *database.TrainingDB) repositories.TrainingRecordRepository {
	return &trainingRecordRepository{db: db}
}

// Create сохраняет запись и заполняет ID и CreatedAt
func (r *trainingRecordRepository) Create(ctx context.Context, rec *models.TrainingRecord) error {
	keywords, err := encodeJSON(rec.Keywords, "[]")
	if err != nil {
		return err
	}
	raw, err := encodeJSON(rec.RawData, "{}")
	if err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.GetDB().ExecContext(ctx, `
		INSERT INTO training_records (
			source_format, import_id, record_date, pmc_name, location_name, page_name, defect_type,
			feedback_text, category, sub_category, keywords, raw_data, us_team_member, offshore_team_member,
			reviewer, fixed_by, build_phase, review_stage, status, scope_type, screenshot_ref, training_needed,
			processed_at, pattern_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(rec.SourceFormat), rec.ImportID, rec.Date, rec.PMCName, rec.LocationName, rec.PageName, rec.DefectType,
		rec.FeedbackText, rec.Category, rec.SubCategory, keywords, raw, rec.USTeamMember, rec.OffshoreTeamMember,
		rec.Reviewer, rec.FixedBy, rec.BuildPhase, rec.ReviewStage, rec.Status, rec.ScopeType, rec.ScreenshotRef,
		rec.TrainingNeeded, rec.ProcessedAt, rec.PatternID, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert training record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get training record id: %w", err)
	}
	rec.ID = id
	return nil
}

// GetUnprocessed возвращает все записи, еще не слитые в паттерны, в порядке вставки
func (r *trainingRecordRepository) GetUnprocessed(ctx context.Context) ([]models.TrainingRecord, error) {
	return r.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM training_records WHERE processed_at IS NULL ORDER BY id`)
}

// UpdateCategory сохраняет категорию, назначенную классификатором
func (r *trainingRecordRepository) UpdateCategory(ctx context.Context, id int64, category string) error {
	res, err := r.db.GetDB().ExecContext(ctx, `UPDATE training_records SET category = ? WHERE id = ?`, category, id)
	if err != nil {
		return fmt.Errorf("failed to update category of record %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %d: %w", id, repositories.ErrNotFound)
	}
	return nil
}

// ListByPattern последние записи паттерна
func (r *trainingRecordRepository) ListByPattern(ctx context.Context, patternID string, limit int) ([]models.TrainingRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM training_records WHERE pattern_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		patternID, limit)
}

// Count общее количество записей
func (r *trainingRecordRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetDB().QueryRowContext(ctx, `SELECT COUNT(*) FROM training_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count training records: %w", err)
	}
	return n, nil
}

// CountBySourceFormat количество записей по форматам источника
func (r *trainingRecordRepository) CountBySourceFormat(ctx context.Context) (map[models.SourceFormat]int64, error) {
	rows, err := r.db.GetDB().QueryContext(ctx,
		`SELECT source_format, COUNT(*) FROM training_records GROUP BY source_format`)
	if err != nil {
		return nil, fmt.Errorf("failed to count records by source format: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.SourceFormat]int64)
	for rows.Next() {
		var format string
		var n int64
		if err := rows.Scan(&format, &n); err != nil {
			return nil, fmt.Errorf("failed to scan source format count: %w", err)
		}
		counts[models.SourceFormat(format)] = n
	}
	return counts, rows.Err()
}

// TopCategories самые частые категории
func (r *trainingRecordRepository) TopCategories(ctx context.Context, limit int) ([]repositories.CategoryCount, error) {
	return r.queryCategoryCounts(ctx, `
		SELECT `+categoryExpr+` AS cat, COUNT(*) AS cnt FROM training_records
		GROUP BY cat ORDER BY cnt DESC, cat LIMIT ?`, limit)
}

// CategoryCountsSince количество записей по категориям, созданных начиная с since
func (r *trainingRecordRepository) CategoryCountsSince(ctx context.Context, since time.Time) ([]repositories.CategoryCount, error) {
	return r.queryCategoryCounts(ctx, `
		SELECT `+categoryExpr+` AS cat, COUNT(*) AS cnt FROM training_records
		WHERE created_at >= ? GROUP BY cat ORDER BY cnt DESC, cat`, since.UTC())
}

// TrainingNeededByCategory количество записей с флагом обучения по категориям
func (r *trainingRecordRepository) TrainingNeededByCategory(ctx context.Context) ([]repositories.CategoryCount, error) {
	return r.queryCategoryCounts(ctx, `
		SELECT `+categoryExpr+` AS cat, COUNT(*) AS cnt FROM training_records
		WHERE training_needed = 1 GROUP BY cat ORDER BY cnt DESC, cat`)
}

func (r *trainingRecordRepository) queryCategoryCounts(ctx context.Context, query string, args ...any) ([]repositories.CategoryCount, error) {
	rows, err := r.db.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count records by category: %w", err)
	}
	defer rows.Close()

	var out []repositories.CategoryCount
	for rows.Next() {
		var c repositories.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *trainingRecordRepository) queryRecords(ctx context.Context, query string, args ...any) ([]models.TrainingRecord, error) {
	rows, err := r.db.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query training records: %w", err)
	}
	defer rows.Close()

	var out []models.TrainingRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanRecord(s rowScanner) (*models.TrainingRecord, error) {
	var (
		rec                     models.TrainingRecord
		format, keywords, raw   string
		recordDate, processedAt sql.NullTime
		patternID               sql.NullString
	)
	err := s.Scan(
		&rec.ID, &format, &rec.ImportID, &recordDate, &rec.PMCName, &rec.LocationName, &rec.PageName, &rec.DefectType,
		&rec.FeedbackText, &rec.Category, &rec.SubCategory, &keywords, &raw, &rec.USTeamMember, &rec.OffshoreTeamMember,
		&rec.Reviewer, &rec.FixedBy, &rec.BuildPhase, &rec.ReviewStage, &rec.Status, &rec.ScopeType, &rec.ScreenshotRef,
		&rec.TrainingNeeded, &processedAt, &patternID, &rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan training record: %w", err)
	}

	rec.SourceFormat = models.SourceFormat(format)
	if recordDate.Valid {
		rec.Date = &recordDate.Time
	}
	if processedAt.Valid {
		rec.ProcessedAt = &processedAt.Time
	}
	rec.PatternID = nullString(patternID)
	if err := decodeJSON(keywords, &rec.Keywords); err != nil {
		return nil, err
	}
	if err := decodeJSON(raw, &rec.RawData); err != nil {
		return nil, err
	}
	return &rec, nil
}
