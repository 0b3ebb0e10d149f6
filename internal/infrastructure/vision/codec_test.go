package vision

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"pothole-vision/internal/domain/entity"
)

func TestImageCodec_DecodeEncode(t *testing.T) {
	c := NewImageCodec()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, imaging.New(30, 20, color.White)))

	img, err := c.Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, 30, img.Bounds().Dx())
	require.Equal(t, 20, img.Bounds().Dy())

	data, err := c.Encode(img)
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xD8}, data[:2])
}

func TestImageCodec_DecodeErrors(t *testing.T) {
	c := NewImageCodec()

	_, err := c.Decode(nil)
	require.ErrorIs(t, err, entity.ErrDecode)

	_, err = c.Decode([]byte("not an image"))
	require.ErrorIs(t, err, entity.ErrDecode)
}

func TestUnavailable(t *testing.T) {
	d := Unavailable(bytes.ErrTooLarge)
	_, err := d.Predict(t.Context(), imaging.New(1, 1, color.White))
	require.ErrorIs(t, err, entity.ErrModelUnavailable)
	require.NoError(t, d.Close())
}
