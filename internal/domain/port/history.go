package port

import (
	"context"

	"leaf-doctor/internal/domain/entity"
)

// DiagnosisHistory интерфейс хранилища истории диагнозов
type DiagnosisHistory interface {
	// Save сохраняет запись
	Save(ctx context.Context, rec *entity.DiagnosisRecord) error

	// Recent возвращает последние записи, новые первыми
	Recent(ctx context.Context, limit int) ([]entity.DiagnosisRecord, error)
}
