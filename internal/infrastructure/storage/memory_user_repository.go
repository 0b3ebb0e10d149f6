package storage

import (
	"context"
	"sync"

	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/domain/port"
)

// MemoryUserRepository держит пользователей бота в памяти процесса.
// Наружу отдаются копии, поэтому параллельные сообщения одного пользователя не гоняются за полями.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[int64]entity.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]entity.User),
	}
}

func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return copyUser(r.getOrCreate(userID, chatID)), nil
}

func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	r.users[user.ID] = *copyUser(*user)
	r.mu.Unlock()

	return nil
}

func (r *MemoryUserRepository) UpdateState(ctx context.Context, userID int64, state entity.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[userID]; ok {
		user.SetState(state)
		r.users[userID] = user
	}

	return nil
}

func (r *MemoryUserRepository) AcquireState(ctx context.Context, userID, chatID int64, state entity.UserState) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.getOrCreate(userID, chatID)
	if user.State == state {
		return false, nil
	}
	user.SetState(state)
	r.users[userID] = user

	return true, nil
}

func (r *MemoryUserRepository) UpdateLocation(ctx context.Context, userID, chatID int64, loc entity.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.getOrCreate(userID, chatID)
	user.Location = &loc
	r.users[userID] = user

	return nil
}

// getOrCreate вызывается под мьютексом.
func (r *MemoryUserRepository) getOrCreate(userID, chatID int64) entity.User {
	if user, ok := r.users[userID]; ok {
		return user
	}
	user := *entity.NewUser(userID, chatID)
	r.users[userID] = user
	return user
}

func copyUser(u entity.User) *entity.User {
	if u.Location != nil {
		loc := *u.Location
		u.Location = &loc
	}
	return &u
}

var _ port.UserRepository = (*MemoryUserRepository)(nil)
