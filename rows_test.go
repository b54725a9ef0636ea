package mfcam

import (
	"io"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowsBuffer lays out height rows of rowBytes each, pitch bytes apart, with
// row y filled with byte y+1 and padding filled with 0xee.
func rowsBuffer(pitch, rowBytes, height int) []byte {
	buf := make([]byte, pitch*height)
	for i := range buf {
		buf[i] = 0xee
	}
	for y := 0; y < height; y++ {
		for x := 0; x < rowBytes; x++ {
			buf[y*pitch+x] = byte(y + 1)
		}
	}
	return buf
}

func TestCopyRows(t *testing.T) {
	const rowBytes, height = 8, 3
	topDown := []byte{
		1, 1, 1, 1, 1, 1, 1, 1,
		2, 2, 2, 2, 2, 2, 2, 2,
		3, 3, 3, 3, 3, 3, 3, 3,
	}
	bottomUp := []byte{
		3, 3, 3, 3, 3, 3, 3, 3,
		2, 2, 2, 2, 2, 2, 2, 2,
		1, 1, 1, 1, 1, 1, 1, 1,
	}

	tests := []struct {
		name   string
		pitch  int
		flip   bool
		want   []byte
		errMsg string
	}{
		{name: "packed", pitch: 8, want: topDown},
		{name: "padded pitch", pitch: 16, want: topDown},
		{name: "bottom-up", pitch: 8, flip: true, want: bottomUp},
		{name: "bottom-up padded", pitch: 12, flip: true, want: bottomUp},
		{name: "pitch shorter than row", pitch: 4, errMsg: "shorter than row"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := rowsBuffer(tt.pitch, min(rowBytes, tt.pitch), height)
			scan0 := unsafe.Pointer(&buf[0])
			pitch := tt.pitch
			if tt.flip {
				// scan0 at the last row in memory, walking backwards.
				scan0 = unsafe.Pointer(&buf[(height-1)*tt.pitch])
				pitch = -tt.pitch
			}

			dst := make([]byte, rowBytes*height)
			err := copyRows(dst, scan0, pitch, rowBytes, height)
			if tt.errMsg != "" {
				assert.ErrorContains(t, err, tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, dst)
		})
	}
}

func TestCopyRowsShortDestination(t *testing.T) {
	buf := rowsBuffer(8, 8, 2)
	err := copyRows(make([]byte, 8), unsafe.Pointer(&buf[0]), 8, 8, 2)
	assert.ErrorIs(t, err, io.ErrShortBuffer)
}

func TestCopyStridedRows(t *testing.T) {
	src := rowsBuffer(6, 4, 3)
	dst := make([]byte, 12)
	require.NoError(t, copyStridedRows(dst, src, 4, 3))
	assert.Equal(t, []byte{1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3}, dst)

	require.NoError(t, copyStridedRows(dst, rowsBuffer(4, 4, 3), 4, 3))
	assert.Equal(t, []byte{1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3}, dst)

	err := copyStridedRows(dst, make([]byte, 11), 4, 3)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	assert.Error(t, copyStridedRows(dst, src, 4, 0))
}
