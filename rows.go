package mfcam

import (
	"fmt"
	"io"
	"unsafe"
)

// copyRows packs height rows of rowBytes each from locked buffer memory whose
// rows start pitch bytes apart. A negative pitch means a bottom-up image with
// scan0 at its top row, so walking by pitch still yields top-down output.
func copyRows(dst []byte, scan0 unsafe.Pointer, pitch, rowBytes, height int) error {
	if abs(pitch) < rowBytes {
		return fmt.Errorf("pitch %d shorter than row of %d bytes", pitch, rowBytes)
	}
	if len(dst) < rowBytes*height {
		return fmt.Errorf("destination holds %d bytes, want %d: %w", len(dst), rowBytes*height, io.ErrShortBuffer)
	}
	for y := 0; y < height; y++ {
		row := unsafe.Slice((*byte)(unsafe.Add(scan0, y*pitch)), rowBytes)
		copy(dst[y*rowBytes:], row)
	}
	return nil
}

// copyStridedRows packs rows from a contiguous top-down buffer whose stride is
// inferred from its length.
func copyStridedRows(dst, src []byte, rowBytes, height int) error {
	if height <= 0 {
		return fmt.Errorf("invalid height %d", height)
	}
	if len(src) < rowBytes*height {
		return fmt.Errorf("sample holds %d bytes, want %d: %w", len(src), rowBytes*height, io.ErrUnexpectedEOF)
	}
	if len(dst) < rowBytes*height {
		return fmt.Errorf("destination holds %d bytes, want %d: %w", len(dst), rowBytes*height, io.ErrShortBuffer)
	}
	stride := len(src) / height
	for y := 0; y < height; y++ {
		copy(dst[y*rowBytes:(y+1)*rowBytes], src[y*stride:])
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
