package gplot

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/gogpu/gplot/internal/gpu"
)

// ColorMap names the lookup table a window shades images and surfaces
// through. Values are normalized to [0, 1] and looked up in 256 steps.
type ColorMap uint8

// Built-in color maps.
const (
	// ColorMapDefault is a black to white ramp.
	ColorMapDefault ColorMap = iota
	// ColorMapSpectrum runs from red through green and blue to violet.
	ColorMapSpectrum
	// ColorMapRed runs from black through red to white.
	ColorMapRed
	// ColorMapBlue runs from black through blue to white.
	ColorMapBlue
	// ColorMapHeat runs from black through red and yellow to white.
	ColorMapHeat
	// ColorMapMood is a diverging blue to red map with a light middle.
	ColorMapMood
	// ColorMapViridis is a perceptually uniform purple to yellow map.
	ColorMapViridis
	// ColorMapInferno is a perceptually uniform black to pale yellow map.
	ColorMapInferno

	colorMapCount
)

var colorMapNames = [colorMapCount]string{
	"default", "spectrum", "red", "blue", "heat", "mood", "viridis", "inferno",
}

// colorMapStops are evenly spaced control colors, interpolated linearly.
var colorMapStops = [colorMapCount][]Color{
	ColorMapDefault:  {Black, White},
	ColorMapSpectrum: {RGB(1, 0, 0), RGB(1, 1, 0), RGB(0, 1, 0), RGB(0, 1, 1), RGB(0, 0, 1), RGB(0.56, 0, 1)},
	ColorMapRed:      {Black, RGB(1, 0, 0), White},
	ColorMapBlue:     {Black, RGB(0, 0, 1), White},
	ColorMapHeat:     {Black, RGB(1, 0, 0), RGB(1, 1, 0), White},
	ColorMapMood:     {RGB(0.23, 0.30, 0.75), RGB(0.87, 0.87, 0.87), RGB(0.71, 0.02, 0.15)},
	ColorMapViridis: {
		RGB(0.267, 0.005, 0.329), RGB(0.283, 0.141, 0.458), RGB(0.254, 0.265, 0.530),
		RGB(0.207, 0.372, 0.553), RGB(0.164, 0.471, 0.558), RGB(0.128, 0.567, 0.551),
		RGB(0.135, 0.659, 0.518), RGB(0.267, 0.749, 0.441), RGB(0.478, 0.821, 0.318),
		RGB(0.741, 0.873, 0.150), RGB(0.993, 0.906, 0.144),
	},
	ColorMapInferno: {
		RGB(0.001, 0, 0.014), RGB(0.258, 0.039, 0.406), RGB(0.578, 0.148, 0.404),
		RGB(0.865, 0.317, 0.226), RGB(0.988, 0.645, 0.040), RGB(0.988, 0.998, 0.645),
	},
}

// Valid reports whether m is a built-in color map.
func (m ColorMap) Valid() bool { return m < colorMapCount }

// String returns the color map name.
func (m ColorMap) String() string {
	if !m.Valid() {
		return fmt.Sprintf("ColorMap(%d)", uint8(m))
	}
	return colorMapNames[m]
}

// ParseColorMap returns the color map with the given name.
func ParseColorMap(name string) (ColorMap, error) {
	for i, n := range colorMapNames {
		if n == name {
			return ColorMap(i), nil
		}
	}
	return 0, fmt.Errorf("gplot: unknown color map %q", name)
}

// MarshalText encodes the color map name.
func (m ColorMap) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("gplot: invalid color map %d", uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a color map name.
func (m *ColorMap) UnmarshalText(text []byte) error {
	parsed, err := ParseColorMap(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// At returns the color of the normalized value t, clamped to [0, 1].
// Unknown maps fall back to ColorMapDefault.
func (m ColorMap) At(t float32) Color {
	if !m.Valid() {
		m = ColorMapDefault
	}
	stops := colorMapStops[m]
	pos := clamp01(t) * float32(len(stops)-1)
	i := min(int(pos), len(stops)-2)
	f := pos - float32(i)
	a, b := stops[i], stops[i+1]
	return Color{
		R: lerp(a.R, b.R, f),
		G: lerp(a.G, b.G, f),
		B: lerp(a.B, b.B, f),
		A: lerp(a.A, b.A, f),
	}
}

// table returns the lookup entries as packed RGBA8 words, red in the low
// byte.
func (m ColorMap) table() []uint32 {
	out := make([]uint32, gpu.ColorMapEntries)
	for i := range out {
		c := m.At(float32(i) / float32(gpu.ColorMapEntries-1)).NRGBA()
		out[i] = uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
	}
	return out
}

func lerp(a, b, f float32) float32 {
	return a + (b-a)*math32.Min(math32.Max(f, 0), 1)
}
