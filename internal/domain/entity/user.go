package entity

import "strconv"

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingMedia UserState = "awaiting_media" // Ожидание фото или видео дороги
	StateProcessing    UserState = "processing"     // Обработка снимка
)

// User представляет пользователя бота
type User struct {
	ID       int64     // Telegram User ID
	ChatID   int64     // Telegram Chat ID
	State    UserState // Текущее состояние пользователя
	Location *Location // Последняя присланная геопозиция
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// SetLocation запоминает геопозицию в том же строковом виде, что приходит от клиентов API.
func (u *User) SetLocation(latitude, longitude float64) {
	u.Location = &Location{
		Latitude:  strconv.FormatFloat(latitude, 'f', 6, 64),
		Longitude: strconv.FormatFloat(longitude, 'f', 6, 64),
	}
}

// LocationOrEmpty возвращает геопозицию или пустую, если её не присылали.
func (u *User) LocationOrEmpty() Location {
	if u.Location == nil {
		return Location{}
	}
	return *u.Location
}
