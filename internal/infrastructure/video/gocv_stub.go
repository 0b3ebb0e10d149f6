//go:build !gocv
// +build !gocv

package video

import (
	"context"

	"go.uber.org/zap"

	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/domain/port"
)

// GoCVAvailable сообщает, собран ли пакет с OpenCV.
const GoCVAvailable = false

// GoCVCodec без тега gocv только сообщает, что OpenCV недоступен.
type GoCVCodec struct {
	logger *zap.SugaredLogger
}

// NewGoCVCodec создаёт кодек-заглушку (без OpenCV).
func NewGoCVCodec(logger *zap.SugaredLogger) *GoCVCodec {
	return &GoCVCodec{logger: logger}
}

// Open возвращает ошибку, если сборка без тега gocv.
func (c *GoCVCodec) Open(ctx context.Context, data []byte) (port.VideoReader, error) {
	_ = ctx
	_ = data
	return nil, errNoGoCV
}

// Create возвращает ошибку, если сборка без тега gocv.
func (c *GoCVCodec) Create(ctx context.Context, info entity.VideoInfo) (port.VideoWriter, error) {
	_ = ctx
	_ = info
	return nil, errNoGoCV
}

var _ port.VideoCodec = (*GoCVCodec)(nil)
