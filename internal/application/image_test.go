package app

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pothole-vision/internal/domain/detect"
	"pothole-vision/internal/domain/entity"
	"pothole-vision/internal/infrastructure/vision"
)

func TestImagePipeline_CentredPotholeIsHigh(t *testing.T) {
	p := newTestPipeline(t, &fakeDetector{boxes: centredBox()})

	result, err := p.ProcessImage(context.Background(), jpegBytes(t, 1000, 1000))
	require.NoError(t, err)

	require.Equal(t, entity.SeverityCounts{High: 1}, result.Counts)
	require.Len(t, result.Risks, 1)
	require.InDelta(t, 59.0, result.Risks[0], 1e-9)
	require.InDelta(t, 59.0, result.MaxRisk(), 1e-9)
	require.Equal(t, []byte{0xFF, 0xD8}, result.Annotated[:2])
}

func TestImagePipeline_NoDetections(t *testing.T) {
	p := newTestPipeline(t, &fakeDetector{})

	result, err := p.ProcessImage(context.Background(), jpegBytes(t, 64, 64))
	require.NoError(t, err)
	require.Zero(t, result.Counts.Total())
	require.Empty(t, result.Risks)
	require.Zero(t, result.AverageRisk())
}

func TestImagePipeline_DecodeError(t *testing.T) {
	det := &fakeDetector{}
	p := newTestPipeline(t, det)

	_, err := p.ProcessImage(context.Background(), []byte("not an image"))
	require.ErrorIs(t, err, entity.ErrDecode)
	require.Zero(t, det.calls.Load())
}

func TestImagePipeline_ModelUnavailable(t *testing.T) {
	p := newTestPipeline(t, vision.Unavailable(errors.New("no model file")))

	_, err := p.ProcessImage(context.Background(), jpegBytes(t, 32, 32))
	require.ErrorIs(t, err, entity.ErrModelUnavailable)
}

func TestImagePipeline_ClampsOutOfBoundsBoxes(t *testing.T) {
	det := &fakeDetector{boxes: []entity.RawDetection{
		{Box: entity.Box{X1: -20, Y1: -20, X2: 50, Y2: 50}, Confidence: 0.8},
		{Box: entity.Box{X1: 10, Y1: 10, X2: 20, Y2: 20}, Confidence: 0.1}, // ниже порога
	}}
	p := newTestPipeline(t, det)

	img, err := vision.NewImageCodec().Decode(jpegBytes(t, 100, 100))
	require.NoError(t, err)

	analysis, err := p.ProcessFrame(context.Background(), img)
	require.NoError(t, err)
	require.Len(t, analysis.Findings, 1)

	x1, y1, x2, y2 := analysis.Findings[0].Detection.Bounds()
	require.Equal(t, [4]int{0, 0, 50, 50}, [4]int{x1, y1, x2, y2})
}

func TestImagePipeline_Timeout(t *testing.T) {
	annotator, err := vision.NewAnnotator()
	require.NoError(t, err)
	pool := NewWorkerPool(1, 1, zap.NewNop().Sugar())
	defer pool.Close()

	release := make(chan struct{})
	defer close(release)
	det := &fakeDetector{predict: func(_ image.Image) (*entity.Prediction, error) {
		<-release
		return &entity.Prediction{Mapping: entity.IdentityMapping()}, nil
	}}

	p := NewImagePipeline(det, annotator, vision.NewImageCodec(), pool, detect.DefaultThresholds, 20*time.Millisecond)
	_, err = p.ProcessImage(context.Background(), jpegBytes(t, 16, 16))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
