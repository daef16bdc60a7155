// Package storage хранит пользователей бота и историю диагнозов.
package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store держит соединение с SQLite, в котором лежит история диагнозов.
type Store struct {
	db *sql.DB
}

// NewStore открывает базу по пути dbPath и применяет миграции.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// runMigrations создаёт таблицы, если их ещё нет.
func (s *Store) runMigrations() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS diagnoses (
			id TEXT PRIMARY KEY,
			crop TEXT NOT NULL,
			model TEXT NOT NULL DEFAULT '',
			prediction TEXT NOT NULL DEFAULT '',
			confidence REAL,
			accepted INTEGER NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_diagnoses_created_at ON diagnoses(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// Close закрывает соединение с базой.
func (s *Store) Close() error {
	return s.db.Close()
}

// Diagnoses возвращает репозиторий истории диагнозов.
func (s *Store) Diagnoses() *DiagnosisRepository {
	return &DiagnosisRepository{db: s.db}
}
