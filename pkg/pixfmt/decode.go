package pixfmt

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
)

var ErrUnsupportedFormat = errors.New("unsupported pixel format")

// Decode wraps a packed frame buffer in an image.Image. Uncompressed RGB
// formats share memory with data, YUV formats are copied into planar
// image.YCbCr buffers.
func Decode(f Format, data []byte, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if n := FrameSize(f, width, height); n > 0 && len(data) < n {
		return nil, fmt.Errorf("%s frame %dx%d needs %d bytes, got %d: %w", f, width, height, n, len(data), io.ErrShortBuffer)
	}
	rect := image.Rect(0, 0, width, height)
	switch f {
	case FormatRGB32, FormatARGB32:
		return &BGRA{Pix: data, Stride: width * 4, Rect: rect, Opaque: f == FormatRGB32}, nil
	case FormatRGB24:
		return &BGR{Pix: data, Stride: width * 3, Rect: rect}, nil
	case FormatNV12:
		return decodeNV12(data, width, height), nil
	case FormatI420:
		return decodeI420(data, width, height), nil
	case FormatYUY2:
		return decodeYUY2(data, width, height), nil
	case FormatMJPG:
		return jpeg.Decode(bytes.NewReader(data))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
}

func decodeYUY2(data []byte, width, height int) image.Image {
	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio422)
	stride := RowBytes(FormatYUY2, width)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x += 2 {
			i := y*stride + x*2

			yi := y*img.YStride + x
			ci := y*img.CStride + x/2

			img.Y[yi] = data[i]
			img.Cb[ci] = data[i+1]
			img.Cr[ci] = data[i+3]
			if x+1 < width {
				img.Y[yi+1] = data[i+2]
			}
		}
	}

	return img
}

func decodeNV12(data []byte, width, height int) image.Image {
	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio420)

	for y := 0; y < height; y++ {
		copy(img.Y[y*img.YStride:y*img.YStride+width], data[y*width:])
	}

	// Deinterleave UV plane
	uv := data[width*height:]
	cw, ch := (width+1)/2, (height+1)/2
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			i := (y*cw + x) * 2
			img.Cb[y*img.CStride+x] = uv[i]
			img.Cr[y*img.CStride+x] = uv[i+1]
		}
	}

	return img
}

func decodeI420(data []byte, width, height int) image.Image {
	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio420)

	ySize := width * height
	cw, ch := (width+1)/2, (height+1)/2
	for y := 0; y < height; y++ {
		copy(img.Y[y*img.YStride:y*img.YStride+width], data[y*width:])
	}
	u := data[ySize : ySize+cw*ch]
	v := data[ySize+cw*ch:]
	for y := 0; y < ch; y++ {
		copy(img.Cb[y*img.CStride:y*img.CStride+cw], u[y*cw:])
		copy(img.Cr[y*img.CStride:y*img.CStride+cw], v[y*cw:])
	}

	return img
}
