package port

import (
	"context"

	"pothole-vision/internal/domain/entity"
)

// UserRepository хранит состояние диалога и последнюю геопозицию пользователей бота.
// Реализации возвращают копии: изменения вступают в силу только после Save или Update*.
type UserRepository interface {
	// Get возвращает пользователя, при первом обращении заводит нового в главном меню.
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	Save(ctx context.Context, user *entity.User) error

	// UpdateState не создаёт пользователя, если его ещё нет.
	UpdateState(ctx context.Context, userID int64, state entity.UserState) error

	// AcquireState атомарно переводит пользователя в state и возвращает false,
	// если он уже находится в этом состоянии.
	AcquireState(ctx context.Context, userID, chatID int64, state entity.UserState) (bool, error)

	// UpdateLocation запоминает геопозицию, создавая пользователя при необходимости.
	UpdateLocation(ctx context.Context, userID, chatID int64, loc entity.Location) error
}
