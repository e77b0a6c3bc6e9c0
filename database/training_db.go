package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DBConfig конфигурация пула соединений
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// BusyTimeout сколько SQLite ждет снятия блокировки записи
	BusyTimeout time.Duration
}

// TrainingDB хранилище записей обучения и паттернов (SQLite)
type TrainingDB struct {
	conn   *sql.DB
	path   string
	logger *slog.Logger
}

// NewTrainingDB открывает базу с настройками по умолчанию
func NewTrainingDB(dbPath string) (*TrainingDB, error) {
	return NewTrainingDBWithConfig(dbPath, DBConfig{}, nil)
}

// isInMemory определяет, что путь относится к in-memory SQLite
func isInMemory(dbPath string) bool {
	if strings.HasPrefix(dbPath, ":memory:") {
		return true
	}
	// Формат file:memdb?mode=memory&cache=shared также хранит БД в памяти
	return strings.HasPrefix(dbPath, "file:") && strings.Contains(dbPath, "mode=memory")
}

// buildDSN добавляет параметры драйвера: транзакции берут блокировку записи сразу (BEGIN IMMEDIATE)
func buildDSN(dbPath string, busyTimeout time.Duration) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_txlock=immediate&_busy_timeout=%d&_foreign_keys=on",
		dbPath, sep, busyTimeout.Milliseconds())
}

// NewTrainingDBWithConfig открывает базу, настраивает пул и применяет миграции
func NewTrainingDBWithConfig(dbPath string, config DBConfig, logger *slog.Logger) (*TrainingDB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 5 * time.Second
	}

	conn, err := sql.Open("sqlite3", buildDSN(dbPath, config.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open training database: %w", err)
	}

	if isInMemory(dbPath) {
		// Каждое новое соединение к :memory: получает пустую БД без миграций
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
	} else {
		if config.MaxOpenConns > 0 {
			conn.SetMaxOpenConns(config.MaxOpenConns)
		} else {
			// SQLite плохо справляется с большим количеством одновременных соединений
			conn.SetMaxOpenConns(10)
		}
		if config.MaxIdleConns > 0 {
			conn.SetMaxIdleConns(config.MaxIdleConns)
		} else {
			conn.SetMaxIdleConns(3)
		}
		if config.ConnMaxLifetime > 0 {
			conn.SetConnMaxLifetime(config.ConnMaxLifetime)
		} else {
			conn.SetConnMaxLifetime(5 * time.Minute)
		}
	}

	ctx := context.Background()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping training database: %w", err)
	}

	if !isInMemory(dbPath) {
		// WAL позволяет читателям работать параллельно с писателем
		if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
			logger.Warn("failed to enable WAL mode", "error", err)
		}
	}

	if err := runMigrations(ctx, conn, logger, trainingMigrations); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize training schema: %w", err)
	}

	return &TrainingDB{conn: conn, path: dbPath, logger: logger}, nil
}

// Close закрывает подключение
func (db *TrainingDB) Close() error {
	return db.conn.Close()
}

// Ping проверяет подключение к базе данных
func (db *TrainingDB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// GetDB возвращает указатель на sql.DB для прямого доступа
func (db *TrainingDB) GetDB() *sql.DB {
	return db.conn
}

// Path путь, с которым открыта база
func (db *TrainingDB) Path() string {
	return db.path
}

// WithTx выполняет fn в транзакции. Ошибка fn или паника откатывают транзакцию.
func (db *TrainingDB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
