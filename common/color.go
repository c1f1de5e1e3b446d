package common

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Color is a packed 32-bit ARGB color. The zero value is transparent black;
// use ColorWhite or NewColor for anything else.
type Color uint32

// Commonly used colors.
const (
	ColorWhite       Color = 0xFFFFFFFF
	ColorBlack       Color = 0xFF000000
	ColorTransparent Color = 0x00000000
	ColorRed         Color = 0xFFFF0000
	ColorGreen       Color = 0xFF00FF00
	ColorBlue        Color = 0xFF0000FF
	ColorYellow      Color = 0xFFFFFF00
	ColorMagenta     Color = 0xFFFF00FF
	ColorCyan        Color = 0xFF00FFFF
)

// NewColor packs the given channels into a Color.
//
// Parameters:
//   - r, g, b, a: channel values in the range [0, 255]
//
// Returns:
//   - Color: the packed color
func NewColor(r, g, b, a uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// NewColorRGB packs an opaque color.
func NewColorRGB(r, g, b uint8) Color {
	return NewColor(r, g, b, 0xFF)
}

// Grey returns an opaque grey where every color channel equals value.
func Grey(value uint8) Color {
	return NewColor(value, value, value, 0xFF)
}

// ColorFromNormalized packs a normalized RGBA color. Channels are clamped to [0, 1].
//
// Parameters:
//   - v: the normalized red, green, blue and alpha channels
//
// Returns:
//   - Color: the packed color
func ColorFromNormalized(v [4]float32) Color {
	var c [4]uint8
	for i, f := range v {
		c[i] = uint8(math32.Round(Clamp(f, 0, 1) * 255))
	}
	return NewColor(c[0], c[1], c[2], c[3])
}

func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }
func (c Color) A() uint8 { return uint8(c >> 24) }

// Normalized returns the color as RGBA floats in the range [0, 1], the layout
// consumed by vertex colors and clear values.
func (c Color) Normalized() [4]float32 {
	return [4]float32{
		float32(c.R()) / 255,
		float32(c.G()) / 255,
		float32(c.B()) / 255,
		float32(c.A()) / 255,
	}
}

// RGBA returns the raw channels in RGBA byte order, the layout used by
// R8G8B8A8 textures.
func (c Color) RGBA() [4]byte {
	return [4]byte{c.R(), c.G(), c.B(), c.A()}
}

func (c Color) String() string {
	return fmt.Sprintf("Color(r=%d, g=%d, b=%d, a=%d)", c.R(), c.G(), c.B(), c.A())
}
