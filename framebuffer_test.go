package gplot

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gogpu/gplot/surface"
)

// plainTarget hides the readback of the target it wraps.
type plainTarget struct {
	surface.Target
}

func TestSaveFrameBuffer(t *testing.T) {
	ctx, _ := newTestContext(t)
	w := newTestWindow(t, ctx, 40, 30)
	p, err := NewPlot(ctx, 3, Float32)
	require.NoError(t, err)
	defer p.Destroy()
	require.NoError(t, w.DrawSingle(p))
	require.NoError(t, w.SwapBuffers())

	dir := t.TempDir()
	decoders := map[string]func(f *os.File) (image.Image, error){
		"frame.png":  func(f *os.File) (image.Image, error) { return png.Decode(f) },
		"frame.BMP":  func(f *os.File) (image.Image, error) { return bmp.Decode(f) },
		"frame.tiff": func(f *os.File) (image.Image, error) { return tiff.Decode(f) },
	}
	for name, decode := range decoders {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, w.SaveFrameBuffer(path))

			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()
			img, err := decode(f)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())
		})
	}

	require.NoError(t, w.SaveFrameBuffer(filepath.Join(dir, "frame.jpg")))
	_, err = os.Stat(filepath.Join(dir, "frame.jpg"))
	assert.NoError(t, err)
}

func TestSaveFrameBufferErrors(t *testing.T) {
	ctx, _ := newTestContext(t)
	w := newTestWindow(t, ctx, 20, 20)

	dir := t.TempDir()
	assert.ErrorIs(t, w.SaveFrameBuffer(filepath.Join(dir, "frame.gif")), ErrUnknownImageFormat)
	assert.ErrorIs(t, w.SaveFrameBuffer(filepath.Join(dir, "frame")), ErrUnknownImageFormat)

	// Nothing presented yet.
	assert.ErrorIs(t, w.SaveFrameBuffer(filepath.Join(dir, "frame.png")), surface.ErrNoFrame)

	so := surface.DefaultOptions(20, 20)
	so.Device, so.Queue = ctx.Device(), ctx.Queue()
	off, err := surface.NewOffscreen(so)
	require.NoError(t, err)
	plain, err := NewWindow(ctx, plainTarget{off})
	require.NoError(t, err)
	defer plain.Close()
	assert.ErrorIs(t, plain.SaveFrameBuffer(filepath.Join(dir, "plain.png")), ErrNoReadback)

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.SaveFrameBuffer(filepath.Join(dir, "closed.png")), ErrWindowClosed)
}
