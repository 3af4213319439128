package gplot

import (
	"image"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"golang.org/x/text/unicode/norm"
)

// TextRenderer draws titles and tick labels. gplot computes where each
// string goes with the label font metrics; LabelOverlay is the built-in
// renderer.
type TextRenderer interface {
	// DrawText draws s with its baseline starting at (x, y) in frame
	// pixels. The frame's render pass is open while DrawText runs.
	DrawText(f *Frame, s string, x, y int, c Color) error
}

// Tick is one labelled position along an axis.
type Tick struct {
	// Fraction is the position along the axis in [0, 1].
	Fraction float32
	// Value is the data value at Fraction.
	Value float32
	// Label is Value formatted for display.
	Label string
}

// Ticks returns n evenly spaced ticks covering [minV, maxV]. Fewer than two
// ticks cannot span an axis, so n < 2 yields none.
func Ticks(minV, maxV float32, n int) []Tick {
	if n < 2 {
		return nil
	}
	span := maxV - minV
	decimals := tickDecimals(span / float32(n-1))
	ticks := make([]Tick, n)
	for i := range ticks {
		f := float32(i) / float32(n-1)
		v := minV + f*span
		ticks[i] = Tick{Fraction: f, Value: v, Label: formatTick(v, decimals)}
	}
	return ticks
}

// tickDecimals returns the number of decimals needed to tell apart ticks
// step apart.
func tickDecimals(step float32) int {
	step = math32.Abs(step)
	if step == 0 || math32.IsNaN(step) || math32.IsInf(step, 0) {
		return 0
	}
	d := max(int(-math32.Floor(math32.Log10(step))), 0)
	for limit := d + 2; d < limit; d++ {
		scaled := step * math32.Pow(10, float32(d))
		if math32.Abs(scaled-math32.Round(scaled)) < 1e-3*scaled {
			break
		}
	}
	return min(d, 6)
}

func formatTick(v float32, decimals int) string {
	s := strconv.FormatFloat(float64(v), 'f', decimals, 32)
	if strings.Trim(s, "-0.") == "" {
		return strings.TrimPrefix(s, "-")
	}
	return s
}

// textWidth returns the advance of s in pixels.
func textWidth(s string) int {
	return defaultLabelFont().width(s)
}

// textAscent returns the distance from the top of a line to its baseline.
func textAscent() int {
	return defaultLabelFont().ascent()
}

// textHeight returns the line height in pixels.
func textHeight() int {
	return defaultLabelFont().height()
}

// normalizeTitle converts s to NFC so composed and decomposed input
// measure and compare the same.
func normalizeTitle(s string) string {
	return norm.NFC.String(s)
}

// label is a string placed at a baseline origin.
type label struct {
	text string
	at   image.Point
}

// centeredAt returns the label placed so its box is centered on (cx, cy).
func centeredAt(s string, cx, cy int) label {
	return label{
		text: s,
		at:   image.Pt(cx-textWidth(s)/2, cy-textHeight()/2+textAscent()),
	}
}
