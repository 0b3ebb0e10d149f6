package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLetterbox(t *testing.T) {
	lb := NewLetterbox(1920, 1080, 640)

	require.InDelta(t, 1.0/3.0, lb.Scale, 1e-12)
	w, h := lb.ResizedSize(1920, 1080)
	require.Equal(t, 640, w)
	require.Equal(t, 360, h)
	require.Equal(t, 0, lb.PadX)
	require.Equal(t, 140, lb.PadY)
}

func TestLetterbox_OddPadding(t *testing.T) {
	lb := NewLetterbox(333, 1000, 640)
	w, h := lb.ResizedSize(333, 1000)
	require.Equal(t, 640, h)
	require.Equal(t, 213, w)
	require.Equal(t, (640-213)/2, lb.PadX)
	require.Zero(t, lb.PadY)
}

func TestLetterbox_RoundTrip(t *testing.T) {
	sizes := [][2]int{{1920, 1080}, {1080, 1920}, {333, 777}, {640, 640}, {50, 4000}}
	boxes := []Box{
		{X1: 0, Y1: 0, X2: 10, Y2: 10},
		{X1: 12.5, Y1: 40, X2: 300, Y2: 301},
		{X1: 31, Y1: 29, X2: 49, Y2: 49},
	}

	for _, sz := range sizes {
		lb := NewLetterbox(sz[0], sz[1], 640)
		for _, b := range boxes {
			back := lb.ToImage(lb.ToModel(b))
			require.LessOrEqual(t, math.Abs(back.X1-b.X1), 1.0)
			require.LessOrEqual(t, math.Abs(back.Y1-b.Y1), 1.0)
			require.LessOrEqual(t, math.Abs(back.X2-b.X2), 1.0)
			require.LessOrEqual(t, math.Abs(back.Y2-b.Y2), 1.0)
		}
	}
}

func TestLetterbox_ModelCornersMapToImageCorners(t *testing.T) {
	lb := NewLetterbox(1920, 1080, 640)
	w, h := lb.ResizedSize(1920, 1080)
	model := Box{
		X1: float64(lb.PadX),
		Y1: float64(lb.PadY),
		X2: float64(lb.PadX + w),
		Y2: float64(lb.PadY + h),
	}

	img := lb.ToImage(model)
	require.InDelta(t, 0, img.X1, 1)
	require.InDelta(t, 0, img.Y1, 1)
	require.InDelta(t, 1920, img.X2, 1)
	require.InDelta(t, 1080, img.Y2, 1)
}

func TestIdentityMapping(t *testing.T) {
	b := Box{X1: 1, Y1: 2, X2: 3, Y2: 4}
	require.Equal(t, b, IdentityMapping().ToImage(b))
	require.Equal(t, Box{X1: 2, Y1: 4, X2: 6, Y2: 8}, ScaleMapping(0.5).ToImage(b))
}
