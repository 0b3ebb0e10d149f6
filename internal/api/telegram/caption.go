package telegram

import (
	"fmt"
	"strings"

	"pothole-vision/internal/domain/entity"
)

var priorityLabels = map[entity.Priority]string{
	entity.PriorityCritical: "критический",
	entity.PriorityHigh:     "высокий",
	entity.PriorityMedium:   "средний",
	entity.PriorityLow:      "низкий",
}

var severityIcons = map[entity.Severity]string{
	entity.SeverityCritical: "🟥",
	entity.SeverityHigh:     "🔴",
	entity.SeverityMedium:   "🟠",
	entity.SeverityLow:      "🟢",
}

func imageCaption(r *entity.ImageReport) string {
	if r.TotalPotholes == 0 {
		return withAddress("✅ Ямы не обнаружены.", r.Address)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🕳 Найдено ям: %d\n", r.TotalPotholes)
	writeCounts(&sb, r.Detections)
	fmt.Fprintf(&sb, "⚠️ Средний риск: %.0f%%, максимальный: %.0f%%\n", r.AverageRisk, r.MaxRisk)
	fmt.Fprintf(&sb, "📌 Приоритет ремонта: %s", priorityLabels[r.Priority])
	return withAddress(sb.String(), r.Address)
}

func videoCaption(r *entity.VideoReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎞 Кадров обработано: %d из %d (%.1f с)\n", r.ProcessedFrames, r.TotalFrames, r.DurationSeconds)
	if r.TotalPotholes == 0 {
		sb.WriteString("✅ Ямы не обнаружены.")
		return withAddress(sb.String(), r.Address)
	}

	fmt.Fprintf(&sb, "🕳 Обнаружений ям: %d\n", r.TotalPotholes)
	writeCounts(&sb, r.Detections)
	fmt.Fprintf(&sb, "⚠️ Средний риск: %.0f%%, максимальный: %.0f%%\n", r.AverageRisk, r.MaxRisk)
	fmt.Fprintf(&sb, "📌 Приоритет ремонта: %s", priorityLabels[r.Priority])
	return withAddress(sb.String(), r.Address)
}

func writeCounts(sb *strings.Builder, counts entity.SeverityCounts) {
	for _, s := range entity.Severities {
		if n := counts.Get(s); n > 0 {
			fmt.Fprintf(sb, "%s %s: %d\n", severityIcons[s], s.Style().Label, n)
		}
	}
}

func withAddress(text string, address *string) string {
	if address == nil {
		return text
	}
	return text + "\n📍 " + *address
}
