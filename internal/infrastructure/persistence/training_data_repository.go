package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"qcinsights/database"
	"qcinsights/internal/domain/repositories"
)

// trainingDataRepository массовые операции над записями и паттернами
type trainingDataRepository struct {
	db *database.TrainingDB
}

// NewTrainingDataRepository создает репозиторий массовых операций
func NewTrainingDataRepository(db *database.TrainingDB) repositories.TrainingDataRepository {
	return &trainingDataRepository{db: db}
}

// ClearAll удаляет все записи и паттерны в одной транзакции
func (r *trainingDataRepository) ClearAll(ctx context.Context) (*repositories.ClearResult, error) {
	var result repositories.ClearResult

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM training_records`)
		if err != nil {
			return fmt.Errorf("failed to delete training records: %w", err)
		}
		if result.RecordsDeleted, err = res.RowsAffected(); err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx, `DELETE FROM training_patterns`)
		if err != nil {
			return fmt.Errorf("failed to delete patterns: %w", err)
		}
		if result.PatternsDeleted, err = res.RowsAffected(); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
