package sharpness

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func checkerboard(w, h, cell int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func gradient(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / w)})
		}
	}
	return img
}

func TestScoreFlatImage(t *testing.T) {
	flat := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range flat.Pix {
		flat.Pix[i] = 128
	}
	assert.Zero(t, Score(flat, 16))
	assert.Zero(t, Score(image.NewGray(image.Rectangle{}), 16))
}

func TestScoreOrdersSharpAboveSmooth(t *testing.T) {
	sharp := Score(checkerboard(128, 128, 2), DefaultSize)
	smooth := Score(gradient(128, 128), DefaultSize)

	assert.Greater(t, sharp, 0.9)
	assert.Less(t, smooth, 0.5)
	assert.Greater(t, sharp, smooth)
}

func TestScoreDefaultSize(t *testing.T) {
	assert.Equal(t, Score(checkerboard(64, 64, 1), DefaultSize), Score(checkerboard(64, 64, 1), 0))
}
