package vision

import (
	"context"
	"fmt"
	"image"

	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/domain/port"
)

// unavailableDetector подставляется, когда модель не загрузилась.
type unavailableDetector struct {
	cause error
}

// Unavailable возвращает детектор, который сразу отклоняет каждый вызов с ErrModelUnavailable.
// Повторных попыток загрузки нет.
func Unavailable(cause error) port.Detector {
	return &unavailableDetector{cause: cause}
}

func (d *unavailableDetector) Predict(ctx context.Context, img image.Image) (*entity.Prediction, error) {
	return nil, fmt.Errorf("%w: %v", entity.ErrModelUnavailable, d.cause)
}

func (d *unavailableDetector) Close() error {
	return nil
}
