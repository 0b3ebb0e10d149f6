package entity

import "math"

// Detection: найденная яма в пиксельных координатах исходного изображения.
// Создаётся только через NewDetection и после этого не меняется.
type Detection struct {
	x1, y1, x2, y2 int
	confidence     float64
}

// NewDetection округляет координаты вниз до пикселей и прижимает их к границам
// изображения width×height. Уверенность приводится к [0, 1].
func NewDetection(box Box, confidence float64, width, height int) Detection {
	return Detection{
		x1:         clampInt(floor(box.X1), 0, width),
		y1:         clampInt(floor(box.Y1), 0, height),
		x2:         clampInt(floor(box.X2), 0, width),
		y2:         clampInt(floor(box.Y2), 0, height),
		confidence: math.Min(1, math.Max(0, confidence)),
	}
}

// Box возвращает прямоугольник детекции.
func (d Detection) Box() Box {
	return Box{X1: float64(d.x1), Y1: float64(d.y1), X2: float64(d.x2), Y2: float64(d.y2)}
}

// Bounds возвращает целочисленные координаты (x1, y1, x2, y2).
func (d Detection) Bounds() (x1, y1, x2, y2 int) {
	return d.x1, d.y1, d.x2, d.y2
}

// Confidence возвращает уверенность модели.
func (d Detection) Confidence() float64 {
	return d.confidence
}

// Area возвращает площадь в пикселях.
func (d Detection) Area() int {
	w, h := d.x2-d.x1, d.y2-d.y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Center возвращает координаты центра детекции
func (d Detection) Center() (x, y int) {
	return (d.x1 + d.x2) / 2, (d.y1 + d.y2) / 2
}

// CenterY возвращает вертикальную координату центра.
func (d Detection) CenterY() int {
	_, y := d.Center()
	return y
}

func floor(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	if math.IsInf(v, 1) {
		return math.MaxInt32
	}
	if math.IsInf(v, -1) {
		return math.MinInt32
	}
	return int(math.Floor(v))
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
