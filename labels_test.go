package gplot

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tickLabels(ticks []Tick) []string {
	out := make([]string, len(ticks))
	for i, t := range ticks {
		out[i] = t.Label
	}
	return out
}

func TestTicks(t *testing.T) {
	tests := []struct {
		name     string
		min, max float32
		n        int
		want     []string
	}{
		{"integers", 0, 4, 5, []string{"0", "1", "2", "3", "4"}},
		{"quarters", 0, 1, 5, []string{"0.00", "0.25", "0.50", "0.75", "1.00"}},
		{"halves of five", 0, 10, 5, []string{"0.0", "2.5", "5.0", "7.5", "10.0"}},
		{"symmetric", -1, 1, 3, []string{"-1", "0", "1"}},
		{"hundreds", 0, 400, 5, []string{"0", "100", "200", "300", "400"}},
		{"reversed", 1, -1, 3, []string{"1", "0", "-1"}},
		{"constant", 2, 2, 3, []string{"2", "2", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tickLabels(Ticks(tt.min, tt.max, tt.n)))
		})
	}
}

func TestTicksFractions(t *testing.T) {
	ticks := Ticks(10, 20, 3)
	if assert.Len(t, ticks, 3) {
		assert.Equal(t, float32(0), ticks[0].Fraction)
		assert.Equal(t, float32(0.5), ticks[1].Fraction)
		assert.Equal(t, float32(1), ticks[2].Fraction)
		assert.Equal(t, float32(15), ticks[1].Value)
	}
}

func TestTicksTooFew(t *testing.T) {
	assert.Nil(t, Ticks(0, 1, 1))
	assert.Nil(t, Ticks(0, 1, 0))
}

func TestFormatTickNegativeZero(t *testing.T) {
	assert.Equal(t, "0.00", formatTick(-0.0001, 2))
	assert.Equal(t, "-0.50", formatTick(-0.5, 2))
}

func TestNormalizeTitle(t *testing.T) {
	decomposed := "Cafe\u0301"
	assert.Equal(t, "Caf\u00e9", normalizeTitle(decomposed))
	assert.Equal(t, textWidth("Caf\u00e9"), textWidth(normalizeTitle(decomposed)))
}

func TestCenteredAt(t *testing.T) {
	l := centeredAt("abcd", 100, 50)
	assert.Equal(t, "abcd", l.text)
	assert.Equal(t, image.Pt(100-textWidth("abcd")/2, 50-textHeight()/2+textAscent()), l.at)
}

func TestTextMetrics(t *testing.T) {
	assert.Zero(t, textWidth(""))
	assert.Positive(t, textWidth("a"))
	assert.Greater(t, textWidth("abcd"), textWidth("ab"))
	assert.Greater(t, textWidth("WWW"), textWidth("iii"), "proportional advances")
	assert.Positive(t, textAscent())
	assert.GreaterOrEqual(t, textHeight(), textAscent())
}

func TestLabelFontCoverage(t *testing.T) {
	lf := defaultLabelFont()
	require.Nil(t, lf.fallback)
	for _, s := range []string{"Café", "µs", "ΔT", "±1.5"} {
		assert.True(t, lf.covers(s), s)
	}
	assert.False(t, lf.covers("温"))
}

func TestLabelFontFallback(t *testing.T) {
	lf := loadLabelFont([]byte("not a font"), labelSize)
	require.NotNil(t, lf.fallback)
	assert.Equal(t, 28, lf.width("abcd"))
	assert.Equal(t, 13, lf.height())
	assert.False(t, lf.covers("é"))

	canvas := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	lf.draw(canvas, "ab", 2, 14, White.NRGBA())
	assert.Positive(t, inked(canvas, canvas.Bounds()))
}
