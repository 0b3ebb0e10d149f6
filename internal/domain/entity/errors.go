package entity

import "errors"

var (
	// ErrModelUnavailable: модель не загрузилась, детектор больше не работает.
	ErrModelUnavailable = errors.New("detection model is unavailable")
	// ErrDecode: входные байты не удалось декодировать как изображение или видео.
	ErrDecode = errors.New("failed to decode media")
	// ErrUpload: загрузка результата в хранилище не удалась.
	ErrUpload = errors.New("failed to upload result")
)
