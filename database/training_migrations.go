package database

import (
	"context"
	"database/sql"
)

// trainingMigrations схема хранилища записей обучения и паттернов
var trainingMigrations = []migration{
	{name: "001_create_training_patterns", up: createTrainingPatterns},
	{name: "002_create_training_records", up: createTrainingRecords},
	{name: "003_training_records_indexes", up: createTrainingRecordIndexes},
}

func createTrainingPatterns(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS training_patterns (
			id TEXT PRIMARY KEY,
			pattern_name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			source_types TEXT NOT NULL DEFAULT '[]',
			occurrence_count INTEGER NOT NULL DEFAULT 0,
			common_categories TEXT NOT NULL DEFAULT '[]',
			common_defect_types TEXT NOT NULL DEFAULT '[]',
			common_pmcs TEXT NOT NULL DEFAULT '[]',
			common_keywords TEXT NOT NULL DEFAULT '[]',
			root_causes TEXT NOT NULL DEFAULT '[]',
			prevention_tips TEXT NOT NULL DEFAULT '[]',
			resolution_steps TEXT NOT NULL DEFAULT '[]',
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func createTrainingRecords(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS training_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_format TEXT NOT NULL,
			import_id TEXT NOT NULL DEFAULT '',
			record_date TIMESTAMP NULL,
			pmc_name TEXT NOT NULL DEFAULT '',
			location_name TEXT NOT NULL DEFAULT '',
			page_name TEXT NOT NULL DEFAULT '',
			defect_type TEXT NOT NULL DEFAULT '',
			feedback_text TEXT NOT NULL CHECK (length(trim(feedback_text)) > 0),
			category TEXT NOT NULL DEFAULT '',
			sub_category TEXT NOT NULL DEFAULT '',
			keywords TEXT NOT NULL DEFAULT '[]',
			raw_data TEXT NOT NULL DEFAULT '{}',
			us_team_member TEXT NOT NULL DEFAULT '',
			offshore_team_member TEXT NOT NULL DEFAULT '',
			reviewer TEXT NOT NULL DEFAULT '',
			fixed_by TEXT NOT NULL DEFAULT '',
			build_phase TEXT NOT NULL DEFAULT '',
			review_stage TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			scope_type TEXT NOT NULL DEFAULT '',
			screenshot_ref TEXT NOT NULL DEFAULT '',
			training_needed INTEGER NOT NULL DEFAULT 0,
			processed_at TIMESTAMP NULL,
			pattern_id TEXT NULL REFERENCES training_patterns(id) ON DELETE SET NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func createTrainingRecordIndexes(ctx context.Context, tx *sql.Tx) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_training_records_unprocessed ON training_records(processed_at) WHERE processed_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_training_records_category ON training_records(category)`,
		`CREATE INDEX IF NOT EXISTS idx_training_records_pattern ON training_records(pattern_id)`,
		`CREATE INDEX IF NOT EXISTS idx_training_records_created ON training_records(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
