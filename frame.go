package gplot

import (
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gplot/internal/gpu"
)

// Renderable is anything a Window can place in a grid cell.
//
// Render draws into the sub-viewport whose top-left corner is (x, y) and
// whose size is w x h, all in frame pixels. It must leave the frame's
// render state as it found it: no scissor, program or binding active.
type Renderable interface {
	Render(f *Frame, x, y, w, h int) error
}

// Forgetter is implemented by renderables and text renderers from outside
// this package that cache per-window state. A closing window calls Forget
// with its id while holding the context lock, so Forget must not call back
// into the Context. Implementations must be comparable.
type Forgetter interface {
	Forget(id WindowID)
}

// windowState is the Forgetter of the built-in primitives: forget runs
// with the context lock held.
type windowState interface {
	forget(id WindowID)
}

// forgetWindow releases the state r holds for window id, if any.
func forgetWindow(r any, id WindowID) {
	switch fg := r.(type) {
	case windowState:
		fg.forget(id)
	case Forgetter:
		fg.Forget(id)
	}
}

// contextBound is implemented by primitives tied to the Context that
// allocated their buffers.
type contextBound interface {
	context() *Context
}

// Frame is the render state of one window during SwapBuffers.
type Frame struct {
	ctx  *Context
	pass *gpu.Pass
	rp   hal.RenderPassEncoder
}

// WindowID returns the id of the window being rendered.
func (f *Frame) WindowID() WindowID { return f.pass.WindowID() }

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.pass.Bounds().Dx() }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.pass.Bounds().Dy() }

// Bounds returns the frame rectangle.
func (f *Frame) Bounds() image.Rectangle { return f.pass.Bounds() }

// Format returns the color format of the frame texture.
func (f *Frame) Format() gputypes.TextureFormat { return f.pass.Format() }

// Theme returns the theme of the rendering context.
func (f *Frame) Theme() Theme { return f.ctx.theme }

// RenderPass returns the open render pass, for text renderers and other
// collaborators that record their own draws. Pipelines and bind groups set
// through it do not need to be restored.
func (f *Frame) RenderPass() hal.RenderPassEncoder { return f.rp }

// drawText forwards to the context's text renderer, if any.
func (f *Frame) drawText(l label, c Color) error {
	if f.ctx.text == nil || l.text == "" {
		return nil
	}
	return f.ctx.text.DrawText(f, l.text, l.at.X, l.at.Y, c)
}
