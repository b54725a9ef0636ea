package mfcam

import (
	"image"
	"time"
	"unsafe"

	"github.com/kevmo314/go-mfcam/pkg/pixfmt"
)

// Frame is one decoded preview frame. Pixels are tightly packed rows, top row
// first, in the frame's pixel format.
type Frame struct {
	width, height uint32
	format        pixfmt.Format
	timestamp     time.Duration
	data          []byte
}

// NewFrame wraps a packed pixel buffer.
func NewFrame(format pixfmt.Format, width, height uint32, timestamp time.Duration, data []byte) *Frame {
	return &Frame{width: width, height: height, format: format, timestamp: timestamp, data: data}
}

// Size returns the frame's width and height in pixels.
func (f *Frame) Size() (uint32, uint32) {
	return f.width, f.height
}

func (f *Frame) Format() pixfmt.Format {
	return f.format
}

// Timestamp is the presentation time the capture engine stamped on the sample.
func (f *Frame) Timestamp() time.Duration {
	return f.timestamp
}

func (f *Frame) Data() FrameData {
	return FrameData{data: f.data}
}

// Image wraps the frame in an image.Image without copying RGB pixels.
func (f *Frame) Image() (image.Image, error) {
	return pixfmt.Decode(f.format, f.data, int(f.width), int(f.height))
}

// FrameData is a view of a frame's pixel buffer.
type FrameData struct {
	data []byte
}

func (d FrameData) Uint8() []byte {
	return d.data
}

// Uint32 reinterprets the buffer as one uint32 per 32-bit pixel. It returns
// nil when the buffer cannot be viewed that way.
func (d FrameData) Uint32() []uint32 {
	if len(d.data) == 0 || len(d.data)%4 != 0 {
		return nil
	}
	p := unsafe.Pointer(unsafe.SliceData(d.data))
	if uintptr(p)%unsafe.Alignof(uint32(0)) != 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(p), len(d.data)/4)
}
