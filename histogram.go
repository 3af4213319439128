package gplot

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gplot/internal/gpu"
)

// Histogram is a bar chart of a fixed number of bins.
//
// Bin i spans [i, i+1) on the x axis and its height is the bin value.
// Each bar is one instance of a six-vertex quad.
type Histogram struct {
	chart

	bins     int
	dataType DataType
	buf      *gpu.Buffer
	cache    *gpu.BindingCache

	destroyed bool
}

// NewHistogram creates a histogram of nbins bins with values of type t.
// Float32, Int32 and Uint32 are supported; any other type returns a
// *TypeError.
func NewHistogram(ctx *Context, nbins int, t DataType) (*Histogram, error) {
	if !t.Supported() || t.Packed() {
		return nil, &TypeError{Op: "NewHistogram", Type: t}
	}
	if nbins <= 0 {
		return nil, fmt.Errorf("gplot: NewHistogram: %w (bins=%d)", ErrInvalidCount, nbins)
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if err := ctx.checkLocked(); err != nil {
		return nil, err
	}

	buf, err := ctx.buffers.Create("histogram", t, nbins, nil, gpu.HintDynamic)
	if err != nil {
		return nil, fmt.Errorf("gplot: NewHistogram: %w", err)
	}

	h := &Histogram{
		chart: chart{
			ctx:    ctx,
			limits: Limits{XMin: 0, XMax: float32(nbins), YMin: 0, YMax: 1},
			color:  DefaultSeriesColor,
		},
		bins:     nbins,
		dataType: t,
		buf:      buf,
	}
	h.cache = gpu.NewBindingCache(ctx.programs, "histogram", buf, gpu.VertexLayout{
		Program:    gpu.ProgramBar,
		Components: 1,
		StepMode:   gputypes.VertexStepModeInstance,
		Topology:   gputypes.PrimitiveTopologyTriangleList,
	})
	return h, nil
}

// Bins returns the number of bins.
func (h *Histogram) Bins() int { return h.bins }

// DataType implements Uploader.
func (h *Histogram) DataType() DataType { return h.dataType }

// Elements implements Uploader.
func (h *Histogram) Elements() int { return h.bins }

// BufferHandle returns the GPU buffer holding the bin values, or nil
// after Destroy. Writes through it bypass the context lock.
func (h *Histogram) BufferHandle() hal.Buffer {
	h.ctx.mu.Lock()
	defer h.ctx.mu.Unlock()
	if h.destroyed {
		return nil
	}
	return h.buf.Handle()
}

// Size returns the size of the bin buffer in bytes.
func (h *Histogram) Size() uint64 { return h.buf.Size() }

// SetData uploads all bin values. data must be a slice of the histogram's
// data type with one value per bin.
func (h *Histogram) SetData(data any) error {
	return setData(h, data)
}

func (h *Histogram) upload(raw []byte) error {
	h.ctx.mu.Lock()
	defer h.ctx.mu.Unlock()
	if h.destroyed {
		return ErrDestroyed
	}
	return h.buf.Write(0, raw)
}

// Render implements Renderable.
func (h *Histogram) Render(f *Frame, x, y, w, vh int) error {
	if h.destroyed {
		return ErrDestroyed
	}
	pass := f.pass
	pass.Check("Histogram.Render")

	theme := f.ctx.theme
	t := ComputeTransform(h.limits, w, vh, theme.Margins)

	pass.SetViewport(image.Rect(x, y, x+w, y+vh))
	pass.EnableScissor(t.Scissor(x, y))
	pass.UseProgram(gpu.ProgramBar)

	u := gpu.Uniforms{
		Transform: t.Matrix(),
		Color:     h.color.Array(),
		Params:    [4]float32{theme.BarGap},
	}
	err := pass.SetUniforms(&u)
	if err == nil {
		err = h.cache.Bind(pass)
	}
	if err == nil {
		pass.Draw(6, h.bins)
	}
	h.cache.Unbind(pass)

	pass.DisableScissor()
	pass.ReleaseProgram()
	if err != nil {
		return fmt.Errorf("gplot: render histogram: %w", err)
	}

	if err := h.ctx.decor.render(f, &h.chart, t, x, y, w, vh); err != nil {
		return fmt.Errorf("gplot: render histogram axes: %w", err)
	}
	pass.Check("Histogram.Render")
	return nil
}

func (h *Histogram) forget(id WindowID) { h.cache.Forget(id) }

// Windows returns the number of windows the histogram holds GPU state for.
func (h *Histogram) Windows() int {
	h.ctx.mu.Lock()
	defer h.ctx.mu.Unlock()
	return h.cache.Len()
}

// Destroy releases the bin buffer and the state of every window.
// Destroy is idempotent.
func (h *Histogram) Destroy() {
	h.ctx.mu.Lock()
	defer h.ctx.mu.Unlock()
	if h.destroyed {
		return
	}
	h.destroyed = true
	h.cache.Destroy()
	h.buf.Destroy()
}
