package port

import (
	"context"
	"image"

	"pothole-vision/internal/domain/entity"
)

// Detector интерфейс детектора ям
type Detector interface {
	// Predict запускает модель на изображении. Реализация не меняет своё состояние,
	// поэтому один экземпляр используется всеми воркерами одновременно.
	Predict(ctx context.Context, img image.Image) (*entity.Prediction, error)

	// Close освобождает ресурсы модели
	Close() error
}

// Annotator рисует найденные ямы поверх изображения
type Annotator interface {
	Annotate(img image.Image, findings []entity.Finding) (image.Image, error)
}

// ImageCodec декодирует входные байты и кодирует результат
type ImageCodec interface {
	Decode(data []byte) (image.Image, error)
	Encode(img image.Image) ([]byte, error)
}
