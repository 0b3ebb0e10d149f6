package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/infrastructure/storage"
)

func TestUserService_BeginCheckAndCancel(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.BeginCheck(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingMedia, user.State)

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

func TestUserService_SaveLocation(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	_, err := svc.SaveLocation(ctx, 3, 30, 59.9386, 30.3141)
	require.NoError(t, err)

	user, err := svc.Get(ctx, 3, 30)
	require.NoError(t, err)
	require.Equal(t, "59.938600", user.LocationOrEmpty().Latitude)
}

func TestUserService_BeginProcessingRejectsSecondFile(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	ok, err := svc.BeginProcessing(ctx, 4, 40)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.BeginProcessing(ctx, 4, 40)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = svc.Cancel(ctx, 4, 40)
	require.NoError(t, err)

	ok, err = svc.BeginProcessing(ctx, 4, 40)
	require.NoError(t, err)
	require.True(t, ok)
}
