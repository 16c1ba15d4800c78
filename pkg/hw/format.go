package hw

import "fmt"

// Fourcc is a host pixel format code.
type Fourcc uint32

func fourcc(a, b, c, d byte) Fourcc {
	return Fourcc(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

var (
	FourccGrey   = fourcc('G', 'R', 'E', 'Y')
	FourccYUYV   = fourcc('Y', 'U', 'Y', 'V')
	FourccUYVY   = fourcc('U', 'Y', 'V', 'Y')
	FourccYVYU   = fourcc('Y', 'V', 'Y', 'U')
	FourccVYUY   = fourcc('V', 'Y', 'U', 'Y')
	FourccRGB565 = fourcc('R', 'G', 'B', 'P')
	FourccRGB32  = fourcc('R', 'G', 'B', '4')
	FourccSBGGR8 = fourcc('B', 'A', '8', '1')
)

func (f Fourcc) String() string {
	return string([]byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)})
}

// BusCode is the sensor media bus sample ordering.
type BusCode uint16

const (
	CodeY8 BusCode = iota + 1
	CodeYUYV8
	CodeUYVY8
	CodeYVYU8
	CodeVYUY8
	CodeSBGGR8
)

// Format pairs the host pixel format with the sensor bus code it is
// produced from.
type Format struct {
	Fourcc Fourcc
	Code   BusCode
}

var fourccNames = map[string]Fourcc{
	"GREY":   FourccGrey,
	"YUYV":   FourccYUYV,
	"UYVY":   FourccUYVY,
	"YVYU":   FourccYVYU,
	"VYUY":   FourccVYUY,
	"RGB565": FourccRGB565,
	"RGB32":  FourccRGB32,
	"SBGGR8": FourccSBGGR8,
}

// DefaultCode picks the sensor bus code a host format is normally
// produced from. RGB output runs off a YUV sensor through the preview
// conversion path.
func DefaultCode(f Fourcc) BusCode {
	switch f {
	case FourccGrey:
		return CodeY8
	case FourccUYVY:
		return CodeUYVY8
	case FourccYVYU:
		return CodeYVYU8
	case FourccVYUY:
		return CodeVYUY8
	case FourccSBGGR8:
		return CodeSBGGR8
	}
	return CodeYUYV8
}

// ParseFourcc resolves a config format name into its pixel format code.
func ParseFourcc(name string) (Fourcc, error) {
	if f, ok := fourccNames[name]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("unknown pixel format %q", name)
}
