package gplot

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gogpu/gplot/surface"
)

// imageEncoders maps lower-case file extensions to encoders.
var imageEncoders = map[string]func(io.Writer, image.Image) error{
	".png": png.Encode,
	".jpg": func(w io.Writer, m image.Image) error {
		return jpeg.Encode(w, m, &jpeg.Options{Quality: 95})
	},
	".jpeg": func(w io.Writer, m image.Image) error {
		return jpeg.Encode(w, m, &jpeg.Options{Quality: 95})
	},
	".bmp": bmp.Encode,
	".tif": func(w io.Writer, m image.Image) error {
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
	},
	".tiff": func(w io.Writer, m image.Image) error {
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
	},
}

// ReadPixels returns the last presented frame. The target must implement
// surface.Reader.
func (w *Window) ReadPixels() (*image.RGBA, error) {
	w.ctx.mu.Lock()
	defer w.ctx.mu.Unlock()
	if w.closed {
		return nil, ErrWindowClosed
	}
	r, ok := w.target.(surface.Reader)
	if !ok {
		return nil, ErrNoReadback
	}
	img, err := r.ReadPixels()
	if err != nil {
		return nil, fmt.Errorf("gplot: read pixels: %w", err)
	}
	return img, nil
}

// SaveFrameBuffer writes the last presented frame to path. The format is
// chosen by the extension: .png, .jpg/.jpeg, .bmp or .tif/.tiff.
func (w *Window) SaveFrameBuffer(path string) error {
	encode, ok := imageEncoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownImageFormat, filepath.Ext(path))
	}
	img, err := w.ReadPixels()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gplot: save frame buffer: %w", err)
	}
	if err := encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("gplot: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("gplot: save frame buffer: %w", err)
	}
	Logger().Debug("gplot: frame buffer saved", "window", w.id, "path", path)
	return nil
}
