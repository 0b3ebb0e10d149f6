// Package risk оценивает опасность найденных ям.
package risk

import (
	"math"

	"pothole-vision/internal/domain/entity"
)

// Веса составляющих риска: размер 40%, уверенность 30%, положение в кадре 30%.
const (
	sizeWeight       = 0.4
	confidenceWeight = 0.3
	positionWeight   = 0.3
)

// Score считает риск ямы в диапазоне [0, 100].
//
// Размер: доля площади кадра в процентах, умноженная на 5 и ограниченная сотней.
// Положение: 100 в вертикальном центре кадра и 0 у верхнего или нижнего края.
func Score(d entity.Detection, width, height int) float64 {
	var sizeScore float64
	if imageArea := float64(width) * float64(height); imageArea > 0 {
		sizeRatio := float64(d.Area()) / imageArea * 100
		sizeScore = math.Min(sizeRatio*5, 100)
	}

	confScore := d.Confidence() * 100

	var positionScore float64
	if height > 0 {
		centerDistance := math.Abs(float64(d.CenterY())/float64(height)-0.5) * 2
		positionScore = (1 - centerDistance) * 100
	}

	total := sizeScore*sizeWeight + confScore*confidenceWeight + positionScore*positionWeight
	return math.Min(100, math.Max(0, total))
}

// Classify переводит риск в уровень опасности. Границы включаются в нижний уровень:
// CRITICAL выше 70, HIGH выше 50, MEDIUM выше 30, остальное LOW.
func Classify(r float64) entity.Severity {
	switch {
	case r > 70:
		return entity.SeverityCritical
	case r > 50:
		return entity.SeverityHigh
	case r > 30:
		return entity.SeverityMedium
	default:
		return entity.SeverityLow
	}
}

// Assess считает риск и затем уровень для каждой детекции, сохраняя порядок.
func Assess(dets []entity.Detection, width, height int) []entity.Finding {
	findings := make([]entity.Finding, 0, len(dets))
	for _, d := range dets {
		r := Score(d, width, height)
		findings = append(findings, entity.Finding{
			Detection: d,
			Risk:      r,
			Severity:  Classify(r),
		})
	}
	return findings
}
