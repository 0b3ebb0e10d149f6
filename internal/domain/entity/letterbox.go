package entity

import "math"

// Letterbox описывает, как исходное изображение было вписано во вход модели:
// масштаб с сохранением пропорций и центрирующие отступы.
type Letterbox struct {
	Scale float64
	PadX  int
	PadY  int
	// Size: сторона квадратного входа модели, 0 если вход не квадратный.
	Size int
}

// IdentityMapping используется детекторами, которые уже отдают координаты исходного изображения.
func IdentityMapping() Letterbox {
	return Letterbox{Scale: 1}
}

// ScaleMapping описывает простое масштабирование без отступов.
func ScaleMapping(scale float64) Letterbox {
	return Letterbox{Scale: scale}
}

// NewLetterbox считает параметры вписывания изображения width×height в квадрат size×size.
// Отступы делятся нацело, чтобы совпадать с фактическим смещением вставки.
func NewLetterbox(width, height, size int) Letterbox {
	if width <= 0 || height <= 0 || size <= 0 {
		return Letterbox{Scale: 1, Size: size}
	}
	scale := math.Min(float64(size)/float64(width), float64(size)/float64(height))
	newW, newH := scaledSize(width, height, scale)
	return Letterbox{
		Scale: scale,
		PadX:  (size - newW) / 2,
		PadY:  (size - newH) / 2,
		Size:  size,
	}
}

// ResizedSize возвращает размер изображения после масштабирования.
func (l Letterbox) ResizedSize(width, height int) (int, int) {
	return scaledSize(width, height, l.Scale)
}

func scaledSize(width, height int, scale float64) (int, int) {
	return int(math.Round(float64(width) * scale)), int(math.Round(float64(height) * scale))
}

// ToModel переводит прямоугольник из координат изображения в координаты модели.
func (l Letterbox) ToModel(b Box) Box {
	px, py := float64(l.PadX), float64(l.PadY)
	return Box{
		X1: b.X1*l.Scale + px,
		Y1: b.Y1*l.Scale + py,
		X2: b.X2*l.Scale + px,
		Y2: b.Y2*l.Scale + py,
	}
}

// ToImage выполняет обратное преобразование: (x-dw)/scale, (y-dh)/scale.
func (l Letterbox) ToImage(b Box) Box {
	scale := l.Scale
	if scale <= 0 {
		scale = 1
	}
	px, py := float64(l.PadX), float64(l.PadY)
	return Box{
		X1: (b.X1 - px) / scale,
		Y1: (b.Y1 - py) / scale,
		X2: (b.X2 - px) / scale,
		Y2: (b.Y2 - py) / scale,
	}
}
