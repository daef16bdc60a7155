package vision

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"leaf-doctor/internal/domain/entity"
)

func TestDecoder_DecodesToBGR(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			src.Set(x, y, color.RGBA{R: 200, G: 100, B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := NewDecoder().Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, 3, img.Width)
	require.Equal(t, 2, img.Height)
	b, g, r := img.At(2, 1)
	require.Equal(t, []uint8{10, 100, 200}, []uint8{b, g, r})
}

func TestDecoder_RejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("definitely not an image")} {
		_, err := NewDecoder().Decode(data)
		require.True(t, errors.Is(err, entity.ErrInvalidImage), "got %v", err)
	}
}
