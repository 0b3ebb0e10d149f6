// Package video читает и собирает видеофайлы для покадровой обработки.
package video

import (
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"pothole-vision/internal/domain/port"
)

// Имена бэкендов для VIDEO_BACKEND.
const (
	BackendFFmpeg = "ffmpeg"
	BackendGoCV   = "gocv"
)

var errNoGoCV = errors.New("gocv build tag is not enabled")

// NewCodec выбирает реализацию по имени бэкенда.
func NewCodec(backend string, logger *zap.SugaredLogger) (port.VideoCodec, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFFmpeg:
		return NewFFmpegCodec(logger), nil
	case BackendGoCV:
		if !GoCVAvailable {
			return nil, fmt.Errorf("video backend %q: %w", backend, errNoGoCV)
		}
		return NewGoCVCodec(logger), nil
	default:
		return nil, fmt.Errorf("unknown video backend %q", backend)
	}
}

// writeTemp сохраняет байты во временный файл и возвращает его путь.
func writeTemp(data []byte, pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}

// fitFrame приводит кадр к размеру width×height.
func fitFrame(img image.Image, width, height int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return imaging.Resize(img, width, height, imaging.Linear)
	}
	return imaging.Clone(img)
}

// rgb24 раскладывает кадр в плотный буфер RGB.
func rgb24(img image.Image, width, height int, buf []byte) []byte {
	frame := fitFrame(img, width, height)
	need := width * height * 3
	if cap(buf) < need {
		buf = make([]byte, need)
	}
	buf = buf[:need]

	for y := 0; y < height; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+width*4]
		for x := 0; x < width; x++ {
			copy(buf[(y*width+x)*3:], row[x*4:x*4+3])
		}
	}
	return buf
}

// fromRGB24 строит изображение из буфера RGB.
func fromRGB24(buf []byte, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		img.Pix[i*4] = buf[i*3]
		img.Pix[i*4+1] = buf[i*3+1]
		img.Pix[i*4+2] = buf[i*3+2]
		img.Pix[i*4+3] = 0xff
	}
	return img
}
