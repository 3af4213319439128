package gplot

import (
	"fmt"
	"image/color"

	"github.com/chewxy/math32"
)

// Color is a straight-alpha RGBA color with each component in [0, 1].
type Color struct {
	R, G, B, A float32
}

// RGB creates an opaque color. Components are clamped to [0, 1].
func RGB(r, g, b float32) Color {
	return Color{R: clamp01(r), G: clamp01(g), B: clamp01(b), A: 1}
}

// RGBA creates a color from RGBA components, clamped to [0, 1].
func RGBA(r, g, b, a float32) Color {
	return Color{R: clamp01(r), G: clamp01(g), B: clamp01(b), A: clamp01(a)}
}

// FromColor converts a standard color.Color.
func FromColor(c color.Color) Color {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{
		R: float32(nc.R) / 255,
		G: float32(nc.G) / 255,
		B: float32(nc.B) / 255,
		A: float32(nc.A) / 255,
	}
}

// RGBA implements color.Color with alpha-premultiplied 16-bit channels.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// NRGBA converts to an 8-bit straight-alpha color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(math32.Round(clamp01(c.R) * 255)),
		G: uint8(math32.Round(clamp01(c.G) * 255)),
		B: uint8(math32.Round(clamp01(c.B) * 255)),
		A: uint8(math32.Round(clamp01(c.A) * 255)),
	}
}

// Clamp returns c with every channel clamped to [0, 1].
func (c Color) Clamp() Color {
	return RGBA(c.R, c.G, c.B, c.A)
}

// Array returns the components in shader order.
func (c Color) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// String returns the color as #rrggbbaa.
func (c Color) String() string {
	n := c.NRGBA()
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

// Hex creates a color from a hex string, returning opaque black for
// malformed input. Supports "RGB", "RGBA", "RRGGBB" and "RRGGBBAA" with an
// optional leading '#'.
func Hex(hex string) Color {
	c, err := ParseHex(hex)
	if err != nil {
		return Black
	}
	return c
}

// ParseHex is like Hex but reports malformed input.
func ParseHex(hex string) (Color, error) {
	s := hex
	if s != "" && s[0] == '#' {
		s = s[1:]
	}

	var r, g, b uint32
	a := uint32(255)
	ok := true
	switch len(s) {
	case 3, 4:
		ok = parseHex(s[0:1], &r) && parseHex(s[1:2], &g) && parseHex(s[2:3], &b)
		r, g, b = r*17, g*17, b*17
		if len(s) == 4 {
			ok = ok && parseHex(s[3:4], &a)
			a *= 17
		}
	case 6, 8:
		ok = parseHex(s[0:2], &r) && parseHex(s[2:4], &g) && parseHex(s[4:6], &b)
		if len(s) == 8 {
			ok = ok && parseHex(s[6:8], &a)
		}
	default:
		ok = false
	}
	if !ok {
		return Color{}, fmt.Errorf("gplot: invalid hex color %q", hex)
	}

	return Color{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}, nil
}

// parseHex parses hex digits into val and reports whether all were valid.
func parseHex(s string, val *uint32) bool {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return false
		}
	}
	return true
}

// MarshalText encodes the color as #rrggbbaa.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a hex color.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// clamp01 restricts x to [0, 1]. NaN maps to 0.
func clamp01(x float32) float32 {
	if math32.IsNaN(x) {
		return 0
	}
	return math32.Min(math32.Max(x, 0), 1)
}

// Common colors
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Red         = RGB(1, 0, 0)
	Green       = RGB(0, 1, 0)
	Blue        = RGB(0, 0, 1)
	Orange      = RGB(1, 0.5, 0)
	Gray        = RGB(0.5, 0.5, 0.5)
	Transparent = RGBA(0, 0, 0, 0)
)
