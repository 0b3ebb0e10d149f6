package detect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pothole-vision/internal/domain/entity"
)

func TestPostProcess_MapsAndClamps(t *testing.T) {
	lb := entity.NewLetterbox(1280, 720, 640)
	inImage := entity.Box{X1: 100, Y1: 200, X2: 300, Y2: 400}
	pred := &entity.Prediction{
		Detections: []entity.RawDetection{
			{Box: lb.ToModel(inImage), Confidence: 0.9},
			{Box: lb.ToModel(entity.Box{X1: 1200, Y1: 650, X2: 1400, Y2: 800}), Confidence: 0.6},
		},
		Mapping: lb,
	}

	dets := PostProcess(pred, DefaultThresholds, 1280, 720)

	require.Len(t, dets, 2)
	x1, y1, x2, y2 := dets[0].Bounds()
	require.InDelta(t, 100, x1, 1)
	require.InDelta(t, 200, y1, 1)
	require.InDelta(t, 300, x2, 1)
	require.InDelta(t, 400, y2, 1)

	_, _, x2, y2 = dets[1].Bounds()
	require.Equal(t, 1280, x2)
	require.Equal(t, 720, y2)
}

func TestPostProcess_Nil(t *testing.T) {
	require.Nil(t, PostProcess(nil, DefaultThresholds, 10, 10))
}
