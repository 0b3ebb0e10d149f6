package entity

// Priority: приоритет заявки на ремонт.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// PriorityFor определяет приоритет по счётчикам уровней и максимальному риску.
func PriorityFor(counts SeverityCounts, maxRisk float64) Priority {
	switch {
	case counts.Critical > 0 || maxRisk > 70:
		return PriorityCritical
	case counts.High > 0 || maxRisk > 50:
		return PriorityHigh
	case counts.Medium > 0 || maxRisk > 30:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
