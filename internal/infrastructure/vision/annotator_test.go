package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"pothole-vision/internal/domain/entity"
)

func finding(x1, y1, x2, y2 float64, conf, r float64, s entity.Severity) entity.Finding {
	return entity.Finding{
		Detection: entity.NewDetection(entity.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}, conf, 200, 200),
		Risk:      r,
		Severity:  s,
	}
}

func TestAnnotator_DrawsBoxInSeverityColour(t *testing.T) {
	a, err := NewAnnotator()
	require.NoError(t, err)

	src := imaging.New(200, 200, color.White)
	out, err := a.Annotate(src, []entity.Finding{finding(50, 80, 150, 180, 0.9, 59, entity.SeverityHigh)})
	require.NoError(t, err)
	require.Equal(t, src.Bounds(), out.Bounds())

	r, g, b, _ := out.At(50, 130).RGBA()
	require.Greater(t, r>>8, uint32(200))
	require.Less(t, g>>8, uint32(60))
	require.Less(t, b>>8, uint32(60))

	// внутри рамки изображение не меняется
	r, g, b, _ = out.At(100, 130).RGBA()
	require.Equal(t, uint32(0xffff), r)
	require.Equal(t, uint32(0xffff), g)
	require.Equal(t, uint32(0xffff), b)

	// исходник не тронут
	r, _, _, _ = src.At(50, 130).RGBA()
	require.Equal(t, uint32(0xffff), r)
}

func TestAnnotator_NoFindings(t *testing.T) {
	a, err := NewAnnotator()
	require.NoError(t, err)

	src := imaging.New(10, 10, color.White)
	out, err := a.Annotate(src, nil)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 10, 10), out.Bounds())
}

func TestAnnotator_LabelAboveTopEdge(t *testing.T) {
	a, err := NewAnnotator()
	require.NoError(t, err)

	src := imaging.New(100, 100, color.White)
	_, err = a.Annotate(src, []entity.Finding{finding(0, 0, 40, 40, 0.5, 20, entity.SeverityLow)})
	require.NoError(t, err)
}

func TestLineWidth(t *testing.T) {
	require.Equal(t, 4.0, LineWidth(50.01))
	require.Equal(t, 2.0, LineWidth(50))
	require.Equal(t, 2.0, LineWidth(0))
}

func TestLabel(t *testing.T) {
	f := finding(0, 0, 10, 10, 0.9, 59.0, entity.SeverityHigh)
	require.Equal(t, "ОПАСНЫЙ 59% (conf: 0.90)", Label(f))

	f = finding(0, 0, 10, 10, 0.456, 75.4, entity.SeverityCritical)
	require.Equal(t, "КРИТИЧЕСКИЙ 75% (conf: 0.46)", Label(f))
}
