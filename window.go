package gplot

import (
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gplot/internal/gpu"
	"github.com/gogpu/gplot/surface"
)

var lastWindowID atomic.Uint64

func nextWindowID() WindowID {
	return WindowID(lastWindowID.Add(1))
}

// Window composes charts into a grid and presents them on a surface
// target.
//
// Cells hold non-owning references: closing a window never destroys the
// primitives drawn in it, it only releases their state for this window.
type Window struct {
	ctx    *Context
	id     WindowID
	target surface.Target
	arena  *gpu.UniformArena
	depth  *gpu.DepthTarget
	cmap   *gpu.ColorMapTable

	title      string
	background Color
	colorMap   ColorMap
	rows, cols int
	cells      []cell
	seen       map[Renderable]struct{}

	frames uint64
	closed bool
}

// NewWindow creates a window presenting on target. The window takes
// ownership of the target and closes it on Close.
func NewWindow(ctx *Context, target surface.Target, opts ...WindowOption) (*Window, error) {
	if target == nil {
		return nil, errors.New("gplot: NewWindow: nil target")
	}
	o := defaultWindowOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.colorMap != nil && !o.colorMap.Valid() {
		return nil, fmt.Errorf("gplot: NewWindow: invalid color map %d", uint8(*o.colorMap))
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if err := ctx.checkLocked(); err != nil {
		return nil, err
	}

	id := nextWindowID()
	label := fmt.Sprintf("window%d", id)
	w := &Window{
		ctx:        ctx,
		id:         id,
		target:     target,
		arena:      gpu.NewUniformArena(ctx.programs, label),
		depth:      gpu.NewDepthTarget(ctx.device, label),
		title:      normalizeTitle(o.title),
		background: ctx.theme.Background,
		colorMap:   ctx.theme.ColorMap,
		seen:       make(map[Renderable]struct{}),
	}
	if o.background != nil {
		w.background = *o.background
	}
	if o.colorMap != nil {
		w.colorMap = *o.colorMap
	}
	cmap, err := gpu.NewColorMapTable(ctx.programs, ctx.buffers, label+"_colormap", w.colorMap.table())
	if err != nil {
		return nil, fmt.Errorf("gplot: NewWindow: %w", err)
	}
	w.cmap = cmap
	w.resetGrid(o.rows, o.cols)

	if t, ok := target.(surface.Titled); ok && w.title != "" {
		t.SetTitle(w.title)
	}
	Logger().Debug("gplot: window created",
		"id", id, "width", target.Width(), "height", target.Height(), "grid", fmt.Sprintf("%dx%d", o.rows, o.cols))
	return w, nil
}

// OpenWindow creates a width x height target from the surface registry on
// the context's device and wraps it in a window. WithTarget selects the
// target kind; otherwise the highest priority available kind is used.
func OpenWindow(ctx *Context, width, height int, opts ...WindowOption) (*Window, error) {
	o := defaultWindowOptions()
	for _, opt := range opts {
		opt(&o)
	}

	so := surface.DefaultOptions(width, height)
	so.Title = o.title
	so.Device = ctx.device
	so.Queue = ctx.queue

	var (
		target surface.Target
		err    error
	)
	if o.targetName != "" {
		target, err = surface.NewTargetByName(o.targetName, so)
	} else {
		target, err = surface.NewTarget(so)
	}
	if err != nil {
		return nil, fmt.Errorf("gplot: open window: %w", err)
	}

	w, err := NewWindow(ctx, target, opts...)
	if err != nil {
		_ = target.Close()
		return nil, err
	}
	return w, nil
}

// ID returns the window id.
func (w *Window) ID() WindowID { return w.id }

// Target returns the surface target the window presents on.
func (w *Window) Target() surface.Target { return w.target }

// Width returns the current target width in pixels.
func (w *Window) Width() int { return w.target.Width() }

// Height returns the current target height in pixels.
func (w *Window) Height() int { return w.target.Height() }

// Frames returns the number of frames presented.
func (w *Window) Frames() uint64 {
	w.ctx.mu.Lock()
	defer w.ctx.mu.Unlock()
	return w.frames
}

// Title returns the window title.
func (w *Window) Title() string {
	w.ctx.mu.Lock()
	defer w.ctx.mu.Unlock()
	return w.title
}

// SetTitle sets the window title, forwarding it to targets that show one.
func (w *Window) SetTitle(title string) {
	w.ctx.mu.Lock()
	defer w.ctx.mu.Unlock()
	w.title = normalizeTitle(title)
	if t, ok := w.target.(surface.Titled); ok {
		t.SetTitle(w.title)
	}
}

// SetPos moves the window. Targets without a position ignore it.
func (w *Window) SetPos(x, y int) {
	if t, ok := w.target.(surface.Titled); ok {
		t.SetPos(x, y)
	}
}

// SetSize resizes the target. The next frame lays out the grid for the
// new size.
func (w *Window) SetSize(width, height int) error {
	w.ctx.mu.Lock()
	defer w.ctx.mu.Unlock()
	t, ok := w.target.(surface.Titled)
	if !ok {
		return fmt.Errorf("gplot: target %T cannot be resized", w.target)
	}
	return t.SetSize(width, height)
}

// SetBackground sets the clear color.
func (w *Window) SetBackground(c Color) {
	w.ctx.mu.Lock()
	defer w.ctx.mu.Unlock()
	w.background = c.Clamp()
}

// SetColorMap selects the color map that images drawn color-mapped and
// surfaces are shaded through in this window.
func (w *Window) SetColorMap(m ColorMap) error {
	if !m.Valid() {
		return fmt.Errorf("gplot: SetColorMap: invalid color map %d", uint8(m))
	}
	w.ctx.mu.Lock()
	defer w.ctx.mu.Unlock()
	if w.closed {
		return ErrWindowClosed
	}
	if m == w.colorMap {
		return nil
	}
	if err := w.cmap.Set(m.table()); err != nil {
		return fmt.Errorf("gplot: SetColorMap: %w", err)
	}
	w.colorMap = m
	return nil
}

// ColorMap returns the window's color map.
func (w *Window) ColorMap() ColorMap {
	w.ctx.mu.Lock()
	defer w.ctx.mu.Unlock()
	return w.colorMap
}

// Show makes the window visible.
func (w *Window) Show() { w.target.Show() }

// Hide hides the window.
func (w *Window) Hide() { w.target.Hide() }

// SwapBuffers renders every occupied cell into a new frame and presents
// it. Cells are rendered in row-major order into one render pass.
func (w *Window) SwapBuffers() error {
	c := w.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if w.closed {
		return ErrWindowClosed
	}
	if err := c.checkLocked(); err != nil {
		return err
	}

	if err := w.target.MakeCurrent(); err != nil {
		return fmt.Errorf("gplot: make current: %w", err)
	}
	sf, err := w.target.AcquireFrame()
	if err != nil {
		return fmt.Errorf("gplot: acquire frame: %w", err)
	}
	depth, err := w.depth.Ensure(sf.Width, sf.Height)
	if err != nil {
		return fmt.Errorf("gplot: %w", err)
	}

	label := fmt.Sprintf("window%d_frame%d", w.id, w.frames)
	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("gplot: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("gplot: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       sf.View,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clearValue(w.background),
		}},
		DepthStencilAttachment: gpu.DepthAttachment(depth),
	})

	w.arena.Reset()
	f := &Frame{
		ctx:  c,
		pass: gpu.NewPass(rp, w.arena, w.id, sf.Format, sf.Width, sf.Height),
		rp:   rp,
	}
	f.pass.SetColorMap(w.cmap.Group())
	err = w.renderCells(f)
	if fin, ok := c.text.(FrameFinisher); ok && err == nil {
		err = fin.FinishFrame(f)
	}
	rp.End()
	if err != nil {
		encoder.DiscardEncoding()
		return err
	}

	if err := w.arena.Flush(); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("gplot: %w", err)
	}
	if err := gpu.Finish(c.device, c.queue, encoder); err != nil {
		return fmt.Errorf("gplot: %w", err)
	}
	if err := w.target.SwapBuffers(); err != nil {
		return fmt.Errorf("gplot: present: %w", err)
	}
	w.frames++
	Logger().Debug("gplot: frame presented",
		"window", w.id, "frame", w.frames, "draws", f.pass.Draws(), "uniform_slots", w.arena.Used())
	return nil
}

// renderCells renders each occupied cell, with its title band, into f.
func (w *Window) renderCells(f *Frame) error {
	bounds := f.Bounds()
	theme := w.ctx.theme
	for row := 0; row < w.rows; row++ {
		for col := 0; col < w.cols; col++ {
			cl := w.cells[row*w.cols+col]
			if cl.r == nil {
				continue
			}
			r := cellRect(bounds, w.rows, w.cols, row, col)
			if cl.title != "" {
				band := min(theme.TitleBand, r.Dy())
				l := centeredAt(cl.title, r.Min.X+r.Dx()/2, r.Min.Y+band/2)
				if err := f.drawText(l, theme.TextColor); err != nil {
					return fmt.Errorf("gplot: cell (%d, %d) title: %w", row, col, err)
				}
				r.Min.Y += band
			}
			if r.Empty() {
				continue
			}
			if err := cl.r.Render(f, r.Min.X, r.Min.Y, r.Dx(), r.Dy()); err != nil {
				return fmt.Errorf("gplot: cell (%d, %d): %w", row, col, err)
			}
		}
	}
	return nil
}

// clearValue converts c to the premultiplied clear color of a frame.
func clearValue(c Color) gputypes.Color {
	a := float64(c.A)
	return gputypes.Color{R: float64(c.R) * a, G: float64(c.G) * a, B: float64(c.B) * a, A: a}
}

// Close releases the window's state in every primitive it has drawn and
// closes the target. The primitives stay usable in other windows. Close is
// idempotent.
func (w *Window) Close() error {
	c := w.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	for r := range w.seen {
		forgetWindow(r, w.id)
	}
	w.seen = nil
	forgetWindow(c.text, w.id)
	if !c.destroyed {
		c.decor.forget(w.id)
	}
	w.cells = nil
	w.arena.Destroy()
	w.depth.Destroy()
	w.cmap.Destroy()

	if err := w.target.Close(); err != nil {
		Logger().Warn("gplot: closing target failed", "window", w.id, "err", err)
		return fmt.Errorf("gplot: close target: %w", err)
	}
	Logger().Debug("gplot: window closed", "id", w.id, "frames", w.frames)
	return nil
}

// Bounds returns the target rectangle.
func (w *Window) Bounds() image.Rectangle {
	return image.Rect(0, 0, w.target.Width(), w.target.Height())
}
