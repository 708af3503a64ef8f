package image

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func TestLayer_AnchorsBottomLeft(t *testing.T) {
	bottom := solid(10, 10, red)
	top := solid(2, 2, blue)

	res := Layer(bottom, top, 1, 0)

	assert.Equal(t, blue, color.RGBAModel.Convert(res.At(1, 8)))
	assert.Equal(t, blue, color.RGBAModel.Convert(res.At(2, 9)))
	assert.Equal(t, red, color.RGBAModel.Convert(res.At(0, 9)))
	assert.Equal(t, red, color.RGBAModel.Convert(res.At(1, 7)))
}

func TestLayer_DoesNotModifyBottom(t *testing.T) {
	bottom := solid(4, 4, red)
	_ = Layer(bottom, solid(4, 4, blue), 0, 0)
	assert.Equal(t, red, bottom.RGBAAt(0, 0))
}

func TestClear(t *testing.T) {
	dst := solid(3, 3, red)
	Clear(dst)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			require.Equal(t, color.RGBA{}, dst.RGBAAt(x, y))
		}
	}
}

func TestFill_SameSizeIsExact(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	Fill(dst, solid(8, 8, blue))
	assert.Equal(t, blue, dst.RGBAAt(0, 0))
	assert.Equal(t, blue, dst.RGBAAt(7, 7))
}

func TestFill_TransparentSourceKeepsBackground(t *testing.T) {
	dst := solid(4, 4, red)
	Fill(dst, image.NewRGBA(image.Rect(0, 0, 4, 4)))
	assert.Equal(t, red, dst.RGBAAt(2, 2))
}

func TestFill_ScalesToCover(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 16, 16))
	Fill(dst, solid(4, 4, blue))

	// every pixel must be covered by the source
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := dst.RGBAAt(x, y)
			require.NotZero(t, c.A, "pixel (%d,%d) not covered", x, y)
			require.Greater(t, c.B, c.R)
		}
	}
}

func TestCoverRect(t *testing.T) {
	dst := image.Rect(0, 0, 10, 10)

	assert.Equal(t, image.Rect(5, 0, 15, 10), coverRect(image.Rect(0, 0, 20, 10), dst))
	assert.Equal(t, image.Rect(0, 5, 10, 15), coverRect(image.Rect(0, 0, 10, 20), dst))
	assert.Equal(t, image.Rect(0, 0, 10, 10), coverRect(image.Rect(0, 0, 10, 10), dst))
}
