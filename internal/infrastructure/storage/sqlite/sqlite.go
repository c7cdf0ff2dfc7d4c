package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	"crownsync/internal/infrastructure/migration"
)

// Storage локальная база SQLite клиента
type Storage struct {
	db  *sql.DB
	log *slog.Logger
}

// New применяет миграции и открывает базу. engine nil означает встроенные миграции.
func New(path string, engine migration.MigrationEngine, log *slog.Logger) (*Storage, error) {
	if err := migration.NewMigration(migration.DialectSQLite, migration.SQLiteURL(path), engine).Up(); err != nil {
		return nil, fmt.Errorf("ошибка миграции базы данных: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}
	// один писатель, как и в остальном приложении
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	return &Storage{db: db, log: log.With(slog.String("component", "sqlite_catalog"))}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
