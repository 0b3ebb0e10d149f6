package port

import (
	"context"
	"image"

	"pothole-vision/internal/domain/entity"
)

// VideoCodec открывает видео для покадрового чтения и создаёт видео для записи.
type VideoCodec interface {
	Open(ctx context.Context, data []byte) (VideoReader, error)
	Create(ctx context.Context, info entity.VideoInfo) (VideoWriter, error)
}

// VideoReader отдаёт кадры в порядке показа. По окончании Next возвращает io.EOF.
type VideoReader interface {
	Info() entity.VideoInfo
	Next() (image.Image, error)
	Close() error
}

// VideoWriter принимает кадры по одному и в том же порядке.
type VideoWriter interface {
	Write(frame image.Image) error
	// Finish завершает запись и возвращает байты контейнера.
	Finish() ([]byte, error)
	Close() error
}
