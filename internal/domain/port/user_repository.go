package port

import (
	"context"

	"leaf-doctor/internal/domain/entity"
)

// UserRepository интерфейс хранилища пользователей бота
type UserRepository interface {
	// Get возвращает пользователя по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет пользователя целиком
	Save(ctx context.Context, user *entity.User) error

	// UpdateCrop меняет выбранную культуру
	UpdateCrop(ctx context.Context, userID int64, crop string) error
}
