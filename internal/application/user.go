package app

import (
	"context"

	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/domain/port"
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingMedia)
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// BeginProcessing занимает пользователя под обработку файла. false означает,
// что предыдущий файл ещё обрабатывается.
func (s *UserService) BeginProcessing(ctx context.Context, userID, chatID int64) (bool, error) {
	return s.repo.AcquireState(ctx, userID, chatID, entity.StateProcessing)
}

// SaveLocation запоминает последнюю геопозицию пользователя.
func (s *UserService) SaveLocation(ctx context.Context, userID, chatID int64, lat, lon float64) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetLocation(lat, lon)
	if err := s.repo.UpdateLocation(ctx, userID, chatID, *user.Location); err != nil {
		return nil, err
	}

	return user, nil
}
