package vision

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"pothole-vision/internal/domain/entity"
)

// PadColor: серый цвет заполнения, на котором обучалась модель.
var PadColor = color.NRGBA{R: 114, G: 114, B: 114, A: 255}

// Letterbox вписывает изображение в квадрат size×size с сохранением пропорций
// и центрирует его на сером фоне.
func Letterbox(img image.Image, size int) (*image.NRGBA, entity.Letterbox) {
	b := img.Bounds()
	lb := entity.NewLetterbox(b.Dx(), b.Dy(), size)
	newW, newH := lb.ResizedSize(b.Dx(), b.Dy())
	newW, newH = max(newW, 1), max(newH, 1)

	resized := imaging.Resize(img, newW, newH, imaging.Linear)
	canvas := imaging.New(size, size, PadColor)
	canvas = imaging.Paste(canvas, resized, image.Pt(lb.PadX, lb.PadY))
	return canvas, lb
}

// Tensor раскладывает изображение в плоский тензор CHW (RGB) со значениями в [0, 1].
func Tensor(img *image.NRGBA) []float32 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := w * h
	out := make([]float32, 3*plane)

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			i := y*w + x
			px := row[x*4 : x*4+3]
			out[i] = float32(px[0]) / 255
			out[plane+i] = float32(px[1]) / 255
			out[2*plane+i] = float32(px[2]) / 255
		}
	}
	return out
}

// Downscale уменьшает изображение так, чтобы длинная сторона не превышала maxSide.
// Меньшие изображения возвращаются как есть.
func Downscale(img image.Image, maxSide int) (image.Image, entity.Letterbox) {
	b := img.Bounds()
	longer := max(b.Dx(), b.Dy())
	if maxSide <= 0 || longer <= maxSide {
		return img, entity.IdentityMapping()
	}

	lb := entity.ScaleMapping(float64(maxSide) / float64(longer))
	w, h := lb.ResizedSize(b.Dx(), b.Dy())
	return resize.Resize(uint(max(w, 1)), uint(max(h, 1)), img, resize.Bilinear), lb
}
