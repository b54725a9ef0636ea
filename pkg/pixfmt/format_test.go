package pixfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatString(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatRGB32, "RGB32"},
		{FormatNV12, "NV12"},
		{FormatMJPG, "MJPG"},
		{FromGUIDFields(0x34363248, 0x0000, 0x0010, [8]byte{0x80, 0x00, 0x00, 0xaa, 0x00, 0x38, 0x9b, 0x71}), "H264"},
		{FromGUIDFields(0x00000001, 0x0002, 0x0003, [8]byte{}), "00000001-0002-0003-0000-000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.String())
		})
	}
}

func TestGUIDFields(t *testing.T) {
	data1, data2, data3, data4 := FormatNV12.GUIDFields()
	assert.Equal(t, uint32(0x3231564E), data1)
	assert.Equal(t, uint16(0x0000), data2)
	assert.Equal(t, uint16(0x0010), data3)
	assert.Equal(t, [8]byte{0x80, 0x00, 0x00, 0xaa, 0x00, 0x38, 0x9b, 0x71}, data4)
	assert.Equal(t, FormatNV12, FromGUIDFields(data1, data2, data3, data4))
	assert.Equal(t, [4]byte{'N', 'V', '1', '2'}, FormatNV12.FourCC())
}

func TestFrameSize(t *testing.T) {
	assert.Equal(t, 640*480*4, FrameSize(FormatRGB32, 640, 480))
	assert.Equal(t, 640*480*3, FrameSize(FormatRGB24, 640, 480))
	assert.Equal(t, 640*480*2, FrameSize(FormatYUY2, 640, 480))
	assert.Equal(t, 8*3, FrameSize(FormatYUY2, 3, 3))
	assert.Equal(t, 640*480*3/2, FrameSize(FormatNV12, 640, 480))
	assert.Equal(t, 9+2*4, FrameSize(FormatI420, 3, 3))
	assert.Equal(t, -1, FrameSize(FormatMJPG, 640, 480))

	assert.Equal(t, 2560, RowBytes(FormatRGB32, 640))
	assert.Equal(t, 640, RowBytes(FormatNV12, 640))
	assert.Equal(t, -1, RowBytes(FormatMJPG, 640))
}
