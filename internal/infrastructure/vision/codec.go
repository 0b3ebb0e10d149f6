package vision

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // регистрирует декодер WebP для image.Decode

	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/domain/port"
)

// DefaultJPEGQuality задаёт качество JPEG для размеченных изображений.
const DefaultJPEGQuality = 90

// ImageCodec декодирует снимки с учётом EXIF-ориентации и кодирует результат в JPEG.
type ImageCodec struct {
	Quality int
}

// NewImageCodec создаёт кодек с качеством JPEG по умолчанию.
func NewImageCodec() *ImageCodec {
	return &ImageCodec{Quality: DefaultJPEGQuality}
}

// Decode превращает байты JPEG/PNG/GIF/BMP/TIFF/WebP в изображение.
func (c *ImageCodec) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", entity.ErrDecode)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrDecode, err)
	}
	return img, nil
}

// Encode кодирует изображение в JPEG.
func (c *ImageCodec) Encode(img image.Image) ([]byte, error) {
	quality := c.Quality
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ port.ImageCodec = (*ImageCodec)(nil)
