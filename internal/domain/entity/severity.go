package entity

import "image/color"

// Severity — уровень опасности ямы.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Severities перечисляет уровни от самого опасного к наименее опасному.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// SeverityStyle: цвет и подпись уровня для отрисовки.
type SeverityStyle struct {
	Color color.RGBA
	Label string
}

var severityStyles = map[Severity]SeverityStyle{
	SeverityCritical: {Color: color.RGBA{R: 200, A: 255}, Label: "КРИТИЧЕСКИЙ"},
	SeverityHigh:     {Color: color.RGBA{R: 255, A: 255}, Label: "ОПАСНЫЙ"},
	SeverityMedium:   {Color: color.RGBA{R: 255, G: 165, A: 255}, Label: "СРЕДНИЙ"},
	SeverityLow:      {Color: color.RGBA{G: 255, A: 255}, Label: "НИЗКИЙ"},
}

// Style возвращает оформление уровня; неизвестный уровень рисуется как LOW.
func (s Severity) Style() SeverityStyle {
	if st, ok := severityStyles[s]; ok {
		return st
	}
	return severityStyles[SeverityLow]
}

// Rank возвращает порядковый номер уровня: чем больше, тем опаснее.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// SeverityCounts считает количество ям по уровням опасности.
type SeverityCounts struct {
	Critical int `json:"CRITICAL"`
	High     int `json:"HIGH"`
	Medium   int `json:"MEDIUM"`
	Low      int `json:"LOW"`
}

// Add увеличивает счётчик уровня на единицу.
func (c *SeverityCounts) Add(s Severity) {
	switch s {
	case SeverityCritical:
		c.Critical++
	case SeverityHigh:
		c.High++
	case SeverityMedium:
		c.Medium++
	default:
		c.Low++
	}
}

// Merge прибавляет счётчики other.
func (c *SeverityCounts) Merge(other SeverityCounts) {
	c.Critical += other.Critical
	c.High += other.High
	c.Medium += other.Medium
	c.Low += other.Low
}

// Get возвращает счётчик уровня.
func (c SeverityCounts) Get(s Severity) int {
	switch s {
	case SeverityCritical:
		return c.Critical
	case SeverityHigh:
		return c.High
	case SeverityMedium:
		return c.Medium
	default:
		return c.Low
	}
}

// Total возвращает общее количество ям.
func (c SeverityCounts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low
}
