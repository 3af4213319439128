package gplot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultThemeValid(t *testing.T) {
	require.NoError(t, DefaultTheme().Validate())
}

func TestLoadThemePartial(t *testing.T) {
	const src = `
tick_count = 3
grid_lines = false
background = "#000000"

[margins]
left = 60
`
	th, err := LoadTheme(strings.NewReader(src))
	require.NoError(t, err)

	def := DefaultTheme()
	assert.Equal(t, 3, th.TickCount)
	assert.False(t, th.GridLines)
	assert.Equal(t, Black, th.Background)
	assert.Equal(t, 60, th.Margins.Left)
	assert.Equal(t, def.Margins.Bottom, th.Margins.Bottom)
	assert.Equal(t, def.Foreground, th.Foreground)
}

func TestLoadThemeRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown key", "tick_cuont = 3\n"},
		{"bad color", "background = \"#12\"\n"},
		{"negative margin", "[margins]\nleft = -1\n"},
		{"bar gap", "bar_gap = 1.5\n"},
		{"syntax", "tick_count = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTheme(strings.NewReader(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestThemeEncodeRoundTrip(t *testing.T) {
	in := DefaultTheme()
	in.TickCount = 7
	in.Background = Hex("#102030")
	in.ColorMap = ColorMapHeat

	var buf bytes.Buffer
	require.NoError(t, in.Encode(&buf))
	assert.Contains(t, buf.String(), "#102030ff")
	assert.Contains(t, buf.String(), "heat")

	out, err := LoadTheme(&buf)
	require.NoError(t, err)
	assert.Equal(t, in.Margins, out.Margins)
	assert.Equal(t, in.TickCount, out.TickCount)
	assert.Equal(t, in.Background.NRGBA(), out.Background.NRGBA())
	assert.Equal(t, in.GridColor.NRGBA(), out.GridColor.NRGBA())
	assert.Equal(t, ColorMapHeat, out.ColorMap)
}

func TestLoadThemeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.toml")
	require.NoError(t, os.WriteFile(path, []byte("title_band = 32\n"), 0o600))

	th, err := LoadThemeFile(path)
	require.NoError(t, err)
	assert.Equal(t, 32, th.TitleBand)

	_, err = LoadThemeFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestNewContextRejectsInvalidTheme(t *testing.T) {
	device, queue := createNoopDevice(t)
	bad := DefaultTheme()
	bad.TickCount = -1
	_, err := NewContext(device, queue, WithTheme(bad))
	assert.Error(t, err)
}
