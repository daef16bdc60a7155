package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

// DiagnosisRepository хранит историю диагнозов в SQLite.
type DiagnosisRepository struct {
	db *sql.DB
}

// Save вставляет запись; пустые ID и время заполняются.
func (r *DiagnosisRepository) Save(ctx context.Context, rec *entity.DiagnosisRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	// UTC сохраняет лексикографический порядок created_at
	rec.CreatedAt = rec.CreatedAt.UTC()

	var confidence sql.NullFloat64
	if rec.Confidence != nil {
		confidence = sql.NullFloat64{Float64: *rec.Confidence, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO diagnoses (id, crop, model, prediction, confidence, accepted, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Crop, rec.Model, rec.Prediction, confidence, rec.Accepted, rec.Reason, rec.CreatedAt,
	)
	return err
}

// Recent возвращает последние limit записей, новые первыми.
func (r *DiagnosisRepository) Recent(ctx context.Context, limit int) ([]entity.DiagnosisRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, crop, model, prediction, confidence, accepted, reason, created_at
		 FROM diagnoses
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []entity.DiagnosisRecord{}
	for rows.Next() {
		var rec entity.DiagnosisRecord
		var confidence sql.NullFloat64
		if err := rows.Scan(&rec.ID, &rec.Crop, &rec.Model, &rec.Prediction, &confidence,
			&rec.Accepted, &rec.Reason, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if confidence.Valid {
			rec.Confidence = entity.Float(confidence.Float64)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Проверка реализации интерфейса
var _ port.DiagnosisHistory = (*DiagnosisRepository)(nil)
