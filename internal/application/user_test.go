package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/infrastructure/storage"
)

func TestUserService_BeginCheckAndCancel(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.BeginCheck(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)

	user, err = svc.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
}

func TestUserService_SetState(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.SetState(ctx, 2, 20, entity.StateProcessing)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, user.State)
}

func TestUserService_SetCrop(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.SetCrop(ctx, 3, 30, "potato")
	require.NoError(t, err)
	require.Equal(t, "potato", user.Crop)

	// состояние не сбрасывается при смене культуры
	_, err = svc.BeginCheck(ctx, 3, 30)
	require.NoError(t, err)
	user, err = svc.SetCrop(ctx, 3, 30, "rice")
	require.NoError(t, err)
	require.Equal(t, "rice", user.Crop)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)
}
