// Package pixfmt maps Media Foundation video subtypes to pixel layouts and
// converts raw frame buffers into image.Image values.
package pixfmt

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// Format is a Media Foundation video subtype GUID in RFC 4122 byte order.
type Format [16]byte

var (
	FormatRGB32  = Format(uuid.MustParse("00000016-0000-0010-8000-00AA00389B71"))
	FormatARGB32 = Format(uuid.MustParse("00000015-0000-0010-8000-00AA00389B71"))
	FormatRGB24  = Format(uuid.MustParse("00000014-0000-0010-8000-00AA00389B71"))
	FormatNV12   = Format(uuid.MustParse("3231564E-0000-0010-8000-00AA00389B71"))
	FormatYUY2   = Format(uuid.MustParse("32595559-0000-0010-8000-00AA00389B71"))
	FormatI420   = Format(uuid.MustParse("30323449-0000-0010-8000-00AA00389B71"))
	FormatMJPG   = Format(uuid.MustParse("47504A4D-0000-0010-8000-00AA00389B71"))
)

var names = map[Format]string{
	FormatRGB32:  "RGB32",
	FormatARGB32: "ARGB32",
	FormatRGB24:  "RGB24",
	FormatNV12:   "NV12",
	FormatYUY2:   "YUY2",
	FormatI420:   "I420",
	FormatMJPG:   "MJPG",
}

// FromGUIDFields builds a Format from the fields of a Windows GUID struct.
func FromGUIDFields(data1 uint32, data2, data3 uint16, data4 [8]byte) Format {
	var f Format
	binary.BigEndian.PutUint32(f[0:4], data1)
	binary.BigEndian.PutUint16(f[4:6], data2)
	binary.BigEndian.PutUint16(f[6:8], data3)
	copy(f[8:], data4[:])
	return f
}

// GUIDFields is the inverse of FromGUIDFields.
func (f Format) GUIDFields() (data1 uint32, data2, data3 uint16, data4 [8]byte) {
	data1 = binary.BigEndian.Uint32(f[0:4])
	data2 = binary.BigEndian.Uint16(f[4:6])
	data3 = binary.BigEndian.Uint16(f[6:8])
	copy(data4[:], f[8:])
	return
}

// FourCC returns the four character code stored in the first GUID field.
// Subtypes defined by a D3DFORMAT value (RGB32, RGB24) return non-printable
// bytes, use String for display.
func (f Format) FourCC() [4]byte {
	return [4]byte{f[3], f[2], f[1], f[0]}
}

func (f Format) String() string {
	if name, ok := names[f]; ok {
		return name
	}
	fcc := f.FourCC()
	for _, c := range fcc {
		if c < 0x20 || c > 0x7e {
			return uuid.UUID(f).String()
		}
	}
	return string(fcc[:])
}

// FrameSize returns the byte length of a tightly packed frame, or -1 for
// compressed or unknown formats.
func FrameSize(f Format, width, height int) int {
	switch f {
	case FormatRGB32, FormatARGB32:
		return width * height * 4
	case FormatRGB24:
		return width * height * 3
	case FormatYUY2:
		return RowBytes(f, width) * height
	case FormatNV12, FormatI420:
		return width*height + 2*((width+1)/2)*((height+1)/2)
	}
	return -1
}

// RowBytes returns the byte length of one packed row for packed formats and
// the luma row length for planar ones. It returns -1 for compressed formats.
func RowBytes(f Format, width int) int {
	switch f {
	case FormatRGB32, FormatARGB32:
		return width * 4
	case FormatRGB24:
		return width * 3
	case FormatYUY2:
		// Whole 4-byte macropixels, so odd widths round up.
		return (width + 1) / 2 * 4
	case FormatNV12, FormatI420:
		return width
	}
	return -1
}
