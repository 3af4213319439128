package gplot

import (
	"fmt"
	"image"
	"sync"
)

// FrameFinisher is implemented by text renderers that batch their output.
// A window calls FinishFrame after the last cell of a frame has rendered,
// while the render pass is still open.
type FrameFinisher interface {
	FinishFrame(f *Frame) error
}

// LabelOverlay is a TextRenderer that shapes labels with HarfBuzz, fills
// the Go Regular outlines on the CPU and composites them over the frame as
// one full-window image.
//
//	ctx, err := gplot.NewContext(device, queue, gplot.WithTextRenderer(gplot.NewLabelOverlay()))
//
// Each window gets its own canvas and GPU image, released when the window
// closes. A LabelOverlay is safe for concurrent use.
type LabelOverlay struct {
	mu     sync.Mutex
	layers map[WindowID]*overlayLayer
}

type overlayLayer struct {
	canvas *image.NRGBA
	img    *Image
	dirty  bool
}

// NewLabelOverlay creates an overlay with no window state.
func NewLabelOverlay() *LabelOverlay {
	return &LabelOverlay{layers: make(map[WindowID]*overlayLayer)}
}

// DrawText implements TextRenderer.
func (o *LabelOverlay) DrawText(f *Frame, s string, x, y int, c Color) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, err := o.layer(f)
	if err != nil {
		return err
	}
	defaultLabelFont().draw(l.canvas, s, x, y, c.NRGBA())
	l.dirty = true
	return nil
}

// FinishFrame implements FrameFinisher. It uploads the labels drawn since
// the last frame and draws them over the whole window.
func (o *LabelOverlay) FinishFrame(f *Frame) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.layers[f.WindowID()]
	if !ok || !l.dirty {
		return nil
	}
	if err := l.img.buf.Write(0, l.canvas.Pix); err != nil {
		return fmt.Errorf("gplot: upload labels: %w", err)
	}
	clear(l.canvas.Pix)
	l.dirty = false

	b := f.Bounds()
	return l.img.Render(f, b.Min.X, b.Min.Y, b.Dx(), b.Dy())
}

// layer returns the window's layer, (re)creating it to match the frame
// size. o.mu must be held.
func (o *LabelOverlay) layer(f *Frame) (*overlayLayer, error) {
	id := f.WindowID()
	b := f.Bounds()
	if l, ok := o.layers[id]; ok {
		if l.canvas.Bounds() == b {
			return l, nil
		}
		o.drop(id)
	}
	if b.Empty() {
		return nil, fmt.Errorf("gplot: empty frame for window %d", id)
	}

	img, err := newImage(f.ctx, fmt.Sprintf("labels_w%d", id), b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	img.keepAspect = false
	l := &overlayLayer{canvas: image.NewNRGBA(b), img: img}
	o.layers[id] = l
	return l, nil
}

// forget releases the canvas and GPU image of a closed window.
func (o *LabelOverlay) forget(id WindowID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.drop(id)
}

func (o *LabelOverlay) drop(id WindowID) {
	if l, ok := o.layers[id]; ok {
		l.img.release()
		delete(o.layers, id)
	}
}

// Windows returns the number of windows the overlay holds state for.
func (o *LabelOverlay) Windows() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.layers)
}

// release drops every layer.
func (o *LabelOverlay) release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for id := range o.layers {
		o.drop(id)
	}
}
