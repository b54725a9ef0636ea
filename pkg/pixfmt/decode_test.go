package pixfmt

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRGB32(t *testing.T) {
	data := []byte{
		0x10, 0x20, 0x30, 0x00, 0x40, 0x50, 0x60, 0x00,
		0x70, 0x80, 0x90, 0x00, 0xa0, 0xb0, 0xc0, 0x00,
	}
	img, err := Decode(FormatRGB32, data, 2, 2)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{0x30, 0x20, 0x10, 0xff}, img.At(0, 0))
	assert.Equal(t, color.NRGBA{0xc0, 0xb0, 0xa0, 0xff}, img.At(1, 1))
	assert.Equal(t, color.NRGBA{}, img.At(2, 2))

	sub := img.(*BGRA).SubImage(image.Rect(1, 0, 2, 1))
	assert.Equal(t, color.NRGBA{0x60, 0x50, 0x40, 0xff}, sub.At(1, 0))
}

func TestDecodeARGB32KeepsAlpha(t *testing.T) {
	img, err := Decode(FormatARGB32, []byte{0x01, 0x02, 0x03, 0x80}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0x03, 0x02, 0x01, 0x80}, img.At(0, 0))
}

func TestDecodeRGB24(t *testing.T) {
	img, err := Decode(FormatRGB24, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x06, 0x05, 0x04, 0xff}, img.At(1, 0))
}

func TestDecodeNV12(t *testing.T) {
	data := []byte{
		// Y
		1, 2, 3, 4,
		5, 6, 7, 8,
		// interleaved UV
		100, 200, 101, 201,
	}
	img, err := Decode(FormatNV12, data, 4, 2)
	require.NoError(t, err)

	ycbcr := img.(*image.YCbCr)
	assert.Equal(t, image.YCbCrSubsampleRatio420, ycbcr.SubsampleRatio)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, ycbcr.Y)
	assert.Equal(t, []byte{100, 101}, ycbcr.Cb)
	assert.Equal(t, []byte{200, 201}, ycbcr.Cr)
}

func TestDecodeI420(t *testing.T) {
	data := []byte{
		1, 2, 3, 4,
		5, 6, 7, 8,
		100, 101,
		200, 201,
	}
	img, err := Decode(FormatI420, data, 4, 2)
	require.NoError(t, err)

	ycbcr := img.(*image.YCbCr)
	assert.Equal(t, []byte{100, 101}, ycbcr.Cb)
	assert.Equal(t, []byte{200, 201}, ycbcr.Cr)
}

func TestDecodeYUY2(t *testing.T) {
	data := []byte{10, 100, 20, 200, 30, 101, 40, 201}
	img, err := Decode(FormatYUY2, data, 2, 2)
	require.NoError(t, err)

	ycbcr := img.(*image.YCbCr)
	assert.Equal(t, image.YCbCrSubsampleRatio422, ycbcr.SubsampleRatio)
	assert.Equal(t, []byte{10, 20, 30, 40}, ycbcr.Y)
	assert.Equal(t, []byte{100, 101}, ycbcr.Cb)
	assert.Equal(t, []byte{200, 201}, ycbcr.Cr)
}

func TestDecodeYUY2OddWidth(t *testing.T) {
	// Rows carry two macropixels; the last one's second luma is padding.
	data := []byte{
		10, 100, 11, 200, 12, 101, 99, 201,
		20, 110, 21, 210, 22, 111, 99, 211,
	}
	img, err := Decode(FormatYUY2, data, 3, 2)
	require.NoError(t, err)

	ycbcr := img.(*image.YCbCr)
	assert.Equal(t, image.Rect(0, 0, 3, 2), ycbcr.Rect)
	for x, want := range []byte{10, 11, 12} {
		assert.Equal(t, want, ycbcr.Y[ycbcr.YOffset(x, 0)], "row 0 col %d", x)
	}
	for x, want := range []byte{20, 21, 22} {
		assert.Equal(t, want, ycbcr.Y[ycbcr.YOffset(x, 1)], "row 1 col %d", x)
	}
	assert.Equal(t, byte(101), ycbcr.Cb[ycbcr.COffset(2, 0)])
	assert.Equal(t, byte(211), ycbcr.Cr[ycbcr.COffset(2, 1)])
	assert.Equal(t, byte(110), ycbcr.Cb[ycbcr.COffset(0, 1)])

	_, err = Decode(FormatYUY2, data[:15], 3, 2)
	assert.ErrorIs(t, err, io.ErrShortBuffer)
}

func TestDecodeMJPG(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, nil))

	img, err := Decode(FormatMJPG, buf.Bytes(), 8, 8)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(FormatRGB32, make([]byte, 15), 2, 2)
	assert.ErrorIs(t, err, io.ErrShortBuffer)

	_, err = Decode(FormatRGB32, nil, 0, 2)
	assert.Error(t, err)

	h264 := FromGUIDFields(0x34363248, 0x0000, 0x0010, [8]byte{0x80, 0x00, 0x00, 0xaa, 0x00, 0x38, 0x9b, 0x71})
	_, err = Decode(h264, []byte{0, 0, 0, 1}, 2, 2)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
