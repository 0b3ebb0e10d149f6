package vision

import (
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func TestLetterbox_PadsWithGray(t *testing.T) {
	src := imaging.New(200, 100, color.NRGBA{R: 255, A: 255})

	out, lb := Letterbox(src, 64)
	require.Equal(t, 64, out.Bounds().Dx())
	require.Equal(t, 64, out.Bounds().Dy())
	require.InDelta(t, 0.32, lb.Scale, 1e-9)
	require.Equal(t, 0, lb.PadX)
	require.Equal(t, 16, lb.PadY)

	require.Equal(t, PadColor, out.NRGBAAt(32, 2))
	require.Equal(t, PadColor, out.NRGBAAt(32, 61))
	require.Equal(t, uint8(255), out.NRGBAAt(32, 32).R)
	require.Equal(t, uint8(0), out.NRGBAAt(32, 32).G)
}

func TestTensor_CHWLayout(t *testing.T) {
	img := imaging.New(2, 1, color.Black)
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 51, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 255, B: 102, A: 255})

	got := Tensor(img)
	require.Len(t, got, 6)
	require.InDeltaSlice(t, []float32{1, 0, 0, 1, 0.2, 0.4}, got, 1e-6)
}

func TestDownscale(t *testing.T) {
	small := imaging.New(100, 50, color.White)
	out, lb := Downscale(small, 1280)
	require.Same(t, small, out)
	require.Equal(t, 1.0, lb.Scale)

	big := imaging.New(400, 200, color.White)
	out, lb = Downscale(big, 100)
	require.Equal(t, 100, out.Bounds().Dx())
	require.Equal(t, 50, out.Bounds().Dy())
	require.InDelta(t, 0.25, lb.Scale, 1e-9)
	require.Zero(t, lb.PadX)
	require.Zero(t, lb.PadY)
}
