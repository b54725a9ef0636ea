package mfcam

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevmo314/go-mfcam/pkg/pixfmt"
)

func TestFrameData(t *testing.T) {
	data := []byte{0x10, 0x20, 0x30, 0xff, 0x40, 0x50, 0x60, 0xff}
	f := NewFrame(pixfmt.FormatRGB32, 2, 1, 0, data)

	assert.Equal(t, data, f.Data().Uint8())
	px := f.Data().Uint32()
	require.Len(t, px, 2)
	assert.Equal(t, uint32(0xff302010), px[0])
}

func TestFrameDataUint32RejectsPartialPixels(t *testing.T) {
	assert.Nil(t, FrameData{data: []byte{1, 2, 3}}.Uint32())
	assert.Nil(t, FrameData{}.Uint32())
}

func TestFrameImage(t *testing.T) {
	data := []byte{0x10, 0x20, 0x30, 0x00, 0x40, 0x50, 0x60, 0x00}
	f := NewFrame(pixfmt.FormatRGB32, 2, 1, 0, data)

	img, err := f.Image()
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x30, G: 0x20, B: 0x10, A: 0xff}, img.At(0, 0))
	assert.Equal(t, color.NRGBA{R: 0x60, G: 0x50, B: 0x40, A: 0xff}, img.At(1, 0))
}
