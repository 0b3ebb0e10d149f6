// Package detect превращает сырые ответы модели в детекции исходного изображения.
package detect

import (
	"sort"

	"pothole-vision/internal/domain/entity"
)

// Thresholds: пороги постобработки.
type Thresholds struct {
	Confidence float64 // рамки с уверенностью не выше порога отбрасываются
	IoU        float64 // рамка отбрасывается, если IoU с принятой больше порога
}

// DefaultThresholds совпадают с настройками обученной модели.
var DefaultThresholds = Thresholds{Confidence: 0.15, IoU: 0.5}

// Suppress выполняет жадное подавление немаксимумов.
// Результат упорядочен по убыванию уверенности, при равенстве по исходному индексу,
// поэтому повторный вызов на собственном результате возвращает тот же набор.
func Suppress(raw []entity.RawDetection, th Thresholds) []entity.RawDetection {
	candidates := make([]entity.RawDetection, 0, len(raw))
	for _, r := range raw {
		if r.Confidence > th.Confidence {
			candidates = append(candidates, r)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	kept := make([]entity.RawDetection, 0, len(candidates))
	for _, c := range candidates {
		if overlapsAny(c.Box, kept, th.IoU) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func overlapsAny(b entity.Box, kept []entity.RawDetection, iou float64) bool {
	for _, k := range kept {
		if b.IoU(k.Box) > iou {
			return true
		}
	}
	return false
}
