package gplot

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Theme holds the layout constants and colors shared by every chart.
//
// A Theme can be loaded from TOML:
//
//	tick_count = 5
//	background = "#ffffff"
//	foreground = "#202020"
//	color_map = "viridis"
//
//	[margins]
//	left = 48
//	bottom = 32
type Theme struct {
	// Margins reserves space around each chart's plotting area.
	Margins Margins `toml:"margins"`
	// TickCount is the target number of tick marks per axis.
	TickCount int `toml:"tick_count"`
	// TitleBand is the height in pixels reserved above a grid cell with a title.
	TitleBand int `toml:"title_band"`
	// BarGap is the fraction of a histogram bin left empty between bars.
	BarGap float32 `toml:"bar_gap"`
	// GridLines draws faint lines across the plot at every tick.
	GridLines bool `toml:"grid_lines"`

	// Background clears each frame.
	Background Color `toml:"background"`
	// Foreground draws borders and tick marks.
	Foreground Color `toml:"foreground"`
	// GridColor draws grid lines.
	GridColor Color `toml:"grid_color"`
	// TextColor is passed to the text renderer for titles and tick labels.
	TextColor Color `toml:"text_color"`
	// ColorMap is the initial color map of new windows.
	ColorMap ColorMap `toml:"color_map"`
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	return Theme{
		Margins: Margins{
			Left:   48,
			Right:  16,
			Top:    16,
			Bottom: 32,
			Tick:   10,
		},
		TickCount:  5,
		TitleBand:  20,
		BarGap:     0.1,
		GridLines:  true,
		Background: RGB(1, 1, 1),
		Foreground: RGB(0.12, 0.12, 0.12),
		GridColor:  RGBA(0.5, 0.5, 0.5, 0.35),
		TextColor:  RGB(0.12, 0.12, 0.12),
	}
}

// LoadTheme decodes a TOML theme. Keys missing from r keep their
// DefaultTheme values; unknown keys are rejected.
func LoadTheme(r io.Reader) (Theme, error) {
	t := DefaultTheme()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		return Theme{}, fmt.Errorf("gplot: decode theme: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// LoadThemeFile reads a TOML theme from path.
func LoadThemeFile(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("gplot: read theme: %w", err)
	}
	return LoadTheme(bytes.NewReader(data))
}

// Validate reports values that cannot produce a usable layout.
func (t Theme) Validate() error {
	m := t.Margins
	switch {
	case m.Left < 0 || m.Right < 0 || m.Top < 0 || m.Bottom < 0 || m.Tick < 0:
		return fmt.Errorf("gplot: negative theme margin %+v", m)
	case t.TickCount < 0:
		return fmt.Errorf("gplot: negative tick count %d", t.TickCount)
	case t.TitleBand < 0:
		return fmt.Errorf("gplot: negative title band %d", t.TitleBand)
	case t.BarGap < 0 || t.BarGap >= 1:
		return fmt.Errorf("gplot: bar gap %g outside [0, 1)", t.BarGap)
	case !t.ColorMap.Valid():
		return fmt.Errorf("gplot: invalid color map %d", uint8(t.ColorMap))
	}
	return nil
}

// Encode writes the theme as TOML.
func (t Theme) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(t)
}
