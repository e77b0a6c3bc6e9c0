package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"qcinsights/database"
	"qcinsights/internal/domain/models"
	"qcinsights/internal/domain/repositories"
)

const patternColumns = `id, pattern_name, description, source_types, occurrence_count, common_categories,
	common_defect_types, common_pmcs, common_keywords, root_causes, prevention_tips, resolution_steps,
	is_active, created_at, updated_at`

// patternRepository реализация репозитория паттернов
type patternRepository struct {
	db *database.TrainingDB
}

// NewPatternRepository создает новый репозиторий паттернов
func NewPatternRepository(db *database.TrainingDB) repositories.PatternRepository {
	return &patternRepository{db: db}
}

// GetByID возвращает паттерн по ID
func (r *patternRepository) GetByID(ctx context.Context, id string) (*models.Pattern, error) {
	p, err := scanPattern(r.db.GetDB().QueryRowContext(ctx,
		`SELECT `+patternColumns+` FROM training_patterns WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pattern %s: %w", id, repositories.ErrNotFound)
	}
	return p, err
}

// GetByName возвращает паттерн по точному имени категории
func (r *patternRepository) GetByName(ctx context.Context, name string) (*models.Pattern, error) {
	p, err := getPatternByName(ctx, r.db.GetDB(), name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("pattern %q: %w", name, repositories.ErrNotFound)
	}
	return p, nil
}

// List паттерны по убыванию количества вхождений
func (r *patternRepository) List(ctx context.Context, filter repositories.PatternFilter) ([]models.Pattern, error) {
	query := `SELECT ` + patternColumns + ` FROM training_patterns`
	var args []any
	if filter.ActiveOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY occurrence_count DESC, pattern_name`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list patterns: %w", err)
	}
	defer rows.Close()

	var out []models.Pattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Count количество паттернов
func (r *patternRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetDB().QueryRowContext(ctx, `SELECT COUNT(*) FROM training_patterns`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count patterns: %w", err)
	}
	return n, nil
}

// MergeGroup выполняет чтение, слияние, запись паттерна и пометку записей в одной транзакции.
// Транзакция открывается как BEGIN IMMEDIATE, поэтому параллельные слияния выполняются по очереди.
func (r *patternRepository) MergeGroup(
	ctx context.Context,
	name string,
	recordIDs []int64,
	processedAt time.Time,
	merge repositories.MergeFunc,
) (*repositories.MergeResult, error) {
	var result repositories.MergeResult

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		claimed, err := selectUnprocessed(ctx, tx, recordIDs)
		if err != nil {
			return err
		}
		result.Claimed = len(claimed)
		if len(claimed) == 0 && len(recordIDs) > 0 {
			return nil
		}

		existing, err := getPatternByName(ctx, tx, name)
		if err != nil {
			return err
		}

		merged, err := merge(existing, claimed)
		if err != nil {
			return err
		}
		merged.PatternName = name
		merged.UpdatedAt = processedAt

		if existing == nil {
			if merged.ID == "" {
				merged.ID = uuid.New().String()
			}
			merged.CreatedAt = processedAt
			if err := insertPattern(ctx, tx, merged); err != nil {
				return err
			}
			result.Created = true
		} else {
			merged.ID = existing.ID
			merged.CreatedAt = existing.CreatedAt
			if err := updatePattern(ctx, tx, merged); err != nil {
				return err
			}
		}

		if err := markProcessed(ctx, tx, claimed, merged.ID, processedAt); err != nil {
			return err
		}
		result.Pattern = merged
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to merge pattern %q: %w", name, err)
	}
	return &result, nil
}

func getPatternByName(ctx context.Context, q queryer, name string) (*models.Pattern, error) {
	p, err := scanPattern(q.QueryRowContext(ctx,
		`SELECT `+patternColumns+` FROM training_patterns WHERE pattern_name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

type patternColumnValues struct {
	sourceTypes, categories, defectTypes, pmcs, keywords string
	rootCauses, preventionTips, resolutionSteps          string
}

func encodePattern(p *models.Pattern) (*patternColumnValues, error) {
	var (
		v   patternColumnValues
		err error
	)
	fields := []struct {
		dst *string
		src any
	}{
		{&v.sourceTypes, p.SourceTypes},
		{&v.categories, p.CommonCategories},
		{&v.defectTypes, p.CommonDefectTypes},
		{&v.pmcs, p.CommonPMCs},
		{&v.keywords, p.CommonKeywords},
		{&v.rootCauses, p.RootCauses},
		{&v.preventionTips, p.PreventionTips},
		{&v.resolutionSteps, p.ResolutionSteps},
	}
	for _, f := range fields {
		if *f.dst, err = encodeJSON(f.src, "[]"); err != nil {
			return nil, err
		}
	}
	return &v, nil
}

func insertPattern(ctx context.Context, q queryer, p *models.Pattern) error {
	v, err := encodePattern(p)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO training_patterns (`+patternColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.PatternName, p.Description, v.sourceTypes, p.OccurrenceCount, v.categories,
		v.defectTypes, v.pmcs, v.keywords, v.rootCauses, v.preventionTips, v.resolutionSteps,
		p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pattern: %w", err)
	}
	return nil
}

func updatePattern(ctx context.Context, q queryer, p *models.Pattern) error {
	v, err := encodePattern(p)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		UPDATE training_patterns SET
			description = ?, source_types = ?, occurrence_count = ?, common_categories = ?,
			common_defect_types = ?, common_pmcs = ?, common_keywords = ?, root_causes = ?,
			prevention_tips = ?, resolution_steps = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		p.Description, v.sourceTypes, p.OccurrenceCount, v.categories,
		v.defectTypes, v.pmcs, v.keywords, v.rootCauses,
		v.preventionTips, v.resolutionSteps, p.IsActive, p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pattern: %w", err)
	}
	return nil
}

// selectUnprocessed возвращает те из ids, что еще не слиты в паттерн.
// Вызывается внутри транзакции с блокировкой записи, поэтому результат не устаревает до коммита.
func selectUnprocessed(ctx context.Context, q queryer, ids []int64) ([]int64, error) {
	claimed := make([]int64, 0, len(ids))
	for _, chunk := range chunkIDs(ids) {
		args := make([]any, 0, len(chunk))
		for _, id := range chunk {
			args = append(args, id)
		}
		rows, err := q.QueryContext(ctx,
			`SELECT id FROM training_records WHERE processed_at IS NULL AND id IN (`+placeholders(len(chunk))+`) ORDER BY id`,
			args...)
		if err != nil {
			return nil, fmt.Errorf("failed to select unprocessed records: %w", err)
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan record id: %w", err)
			}
			claimed = append(claimed, id)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return claimed, nil
}

func markProcessed(ctx context.Context, q queryer, ids []int64, patternID string, processedAt time.Time) error {
	for _, chunk := range chunkIDs(ids) {
		args := make([]any, 0, len(chunk)+2)
		args = append(args, processedAt, patternID)
		for _, id := range chunk {
			args = append(args, id)
		}
		query := `UPDATE training_records SET processed_at = ?, pattern_id = ?
			WHERE processed_at IS NULL AND id IN (` + placeholders(len(chunk)) + `)`
		res, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to mark records processed: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n != int64(len(chunk)) {
			return fmt.Errorf("marked %d of %d records processed", n, len(chunk))
		}
	}
	return nil
}

// chunkIDs режет ids на части, укладывающиеся в лимит параметров SQLite
func chunkIDs(ids []int64) [][]int64 {
	var chunks [][]int64
	for start := 0; start < len(ids); start += maxInParams {
		end := start + maxInParams
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func scanPattern(s rowScanner) (*models.Pattern, error) {
	var (
		p models.Pattern
		v patternColumnValues
	)
	err := s.Scan(
		&p.ID, &p.PatternName, &p.Description, &v.sourceTypes, &p.OccurrenceCount, &v.categories,
		&v.defectTypes, &v.pmcs, &v.keywords, &v.rootCauses, &v.preventionTips, &v.resolutionSteps,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan pattern: %w", err)
	}

	fields := []struct {
		src string
		dst any
	}{
		{v.sourceTypes, &p.SourceTypes},
		{v.categories, &p.CommonCategories},
		{v.defectTypes, &p.CommonDefectTypes},
		{v.pmcs, &p.CommonPMCs},
		{v.keywords, &p.CommonKeywords},
		{v.rootCauses, &p.RootCauses},
		{v.preventionTips, &p.PreventionTips},
		{v.resolutionSteps, &p.ResolutionSteps},
	}
	for _, f := range fields {
		if err := decodeJSON(f.src, f.dst); err != nil {
			return nil, err
		}
	}
	return &p, nil
}
