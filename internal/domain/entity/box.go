package entity

import "math"

// Box задаёт прямоугольник в формате (x1, y1, x2, y2).
type Box struct {
	X1, Y1, X2, Y2 float64
}

// Width возвращает ширину, отрицательная ширина считается нулевой.
func (b Box) Width() float64 {
	return math.Max(0, b.X2-b.X1)
}

// Height возвращает высоту, отрицательная высота считается нулевой.
func (b Box) Height() float64 {
	return math.Max(0, b.Y2-b.Y1)
}

// Area возвращает площадь прямоугольника.
func (b Box) Area() float64 {
	return b.Width() * b.Height()
}

// IoU считает отношение площади пересечения к площади объединения.
// Для пустого объединения возвращается 0.
func (b Box) IoU(o Box) float64 {
	inter := Box{
		X1: math.Max(b.X1, o.X1),
		Y1: math.Max(b.Y1, o.Y1),
		X2: math.Min(b.X2, o.X2),
		Y2: math.Min(b.Y2, o.Y2),
	}.Area()

	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// RawDetection: сырой ответ модели в координатах её входа.
type RawDetection struct {
	Box        Box
	Confidence float64
}
