package telegram

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pothole-vision/internal/domain/entity"
)

func TestImageCaption(t *testing.T) {
	addr := "г Москва, ул Тверская"
	r := &entity.ImageReport{
		Detections:    entity.SeverityCounts{High: 1, Low: 2},
		TotalPotholes: 3,
		AverageRisk:   35.4,
		MaxRisk:       59,
		Priority:      entity.PriorityHigh,
		Address:       &addr,
	}

	got := imageCaption(r)
	require.Contains(t, got, "Найдено ям: 3")
	require.Contains(t, got, "ОПАСНЫЙ: 1")
	require.Contains(t, got, "НИЗКИЙ: 2")
	require.NotContains(t, got, "КРИТИЧЕСКИЙ")
	require.Contains(t, got, "максимальный: 59%")
	require.Contains(t, got, "Приоритет ремонта: высокий")
	require.Contains(t, got, "📍 г Москва, ул Тверская")
}

func TestImageCaption_Empty(t *testing.T) {
	require.Equal(t, "✅ Ямы не обнаружены.", imageCaption(&entity.ImageReport{}))
}

func TestVideoCaption(t *testing.T) {
	r := &entity.VideoReport{
		TotalFrames:     100,
		ProcessedFrames: 100,
		DurationSeconds: 4,
		Detections:      entity.SeverityCounts{Critical: 2},
		TotalPotholes:   2,
		MaxRisk:         80,
		AverageRisk:     75,
		Priority:        entity.PriorityCritical,
	}

	got := videoCaption(r)
	require.Contains(t, got, "Кадров обработано: 100 из 100 (4.0 с)")
	require.Contains(t, got, "КРИТИЧЕСКИЙ: 2")
	require.Contains(t, got, "Приоритет ремонта: критический")
	require.NotContains(t, got, "📍")
}
