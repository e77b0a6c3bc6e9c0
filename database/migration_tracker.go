package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const migrationsTableName = "schema_migrations"

// migration именованный шаг схемы, применяется ровно один раз
type migration struct {
	name string
	up   func(ctx context.Context, tx *sql.Tx) error
}

// ensureMigrationTable создает таблицу schema_migrations при необходимости.
func ensureMigrationTable(ctx context.Context, db *sql.DB) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, migrationsTableName)

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}
	return nil
}

// isMigrationApplied проверяет, была ли уже применена миграция.
func isMigrationApplied(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var appliedAt sql.NullTime
	query := fmt.Sprintf(`SELECT applied_at FROM %s WHERE name = ?`, migrationsTableName)
	err := db.QueryRowContext(ctx, query, name).Scan(&appliedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check migration %s: %w", name, err)
	}
	return appliedAt.Valid, nil
}

// ensureMigrationApplied выполняет миграцию только один раз.
// Шаг и отметка о нем пишутся в одной транзакции.
func ensureMigrationApplied(ctx context.Context, db *sql.DB, logger *slog.Logger, m migration) error {
	applied, err := isMigrationApplied(ctx, db, m.name)
	if err != nil {
		return err
	}
	if applied {
		logger.Debug("migration already applied", "migration", m.name)
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", m.name, err)
	}
	defer tx.Rollback()

	if err := m.up(ctx, tx); err != nil {
		return fmt.Errorf("migration %s failed: %w", m.name, err)
	}

	query := fmt.Sprintf(`INSERT OR REPLACE INTO %s(name, applied_at) VALUES(?, ?)`, migrationsTableName)
	if _, err := tx.ExecContext(ctx, query, m.name, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark migration %s as applied: %w", m.name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", m.name, err)
	}

	logger.Info("migration applied", "migration", m.name)
	return nil
}

// runMigrations применяет миграции по порядку
func runMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger, migrations []migration) error {
	if err := ensureMigrationTable(ctx, db); err != nil {
		return err
	}
	for _, m := range migrations {
		if err := ensureMigrationApplied(ctx, db, logger, m); err != nil {
			return err
		}
	}
	return nil
}
