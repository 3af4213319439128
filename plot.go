package gplot

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gplot/internal/gpu"
)

// DefaultSeriesColor is the color of a newly created plot or histogram.
var DefaultSeriesColor = RGB(0.18, 0.42, 0.78)

// Plot is a 2D line chart of a fixed number of points.
//
// The points live in a GPU buffer of 2*n elements (x0, y0, x1, y1, ...)
// of the data type chosen at construction. A Plot can be drawn into any
// number of windows; GPU state specific to a window is created on its
// first render and kept until the window closes or the plot is destroyed.
type Plot struct {
	chart

	points   int
	dataType DataType
	program  gpu.ProgramID
	buf      *gpu.Buffer
	cache    *gpu.BindingCache

	destroyed bool
}

// NewPlot creates a plot of n points with elements of type t.
//
// Float32, Int32, Uint32 and Uint8 are supported; any other type returns
// a *TypeError. n must be positive.
func NewPlot(ctx *Context, n int, t DataType) (*Plot, error) {
	if !t.Supported() {
		return nil, &TypeError{Op: "NewPlot", Type: t}
	}
	if n <= 0 {
		return nil, fmt.Errorf("gplot: NewPlot: %w (points=%d)", ErrInvalidCount, n)
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if err := ctx.checkLocked(); err != nil {
		return nil, err
	}

	buf, err := ctx.buffers.Create("plot", t, 2*n, nil, gpu.HintDynamic)
	if err != nil {
		return nil, fmt.Errorf("gplot: NewPlot: %w", err)
	}

	// Byte points cannot be fetched as vertex attributes; they are read
	// from the buffer as packed words instead.
	program := gpu.ProgramLine
	if t.Packed() {
		program = gpu.ProgramLinePacked
	}

	p := &Plot{
		chart: chart{
			ctx:    ctx,
			limits: Limits{XMin: -1, XMax: 1, YMin: -1, YMax: 1},
			color:  DefaultSeriesColor,
		},
		points:   n,
		dataType: t,
		program:  program,
		buf:      buf,
	}
	p.cache = gpu.NewBindingCache(ctx.programs, "plot", buf, gpu.VertexLayout{
		Program:    program,
		Components: 2,
		StepMode:   gputypes.VertexStepModeVertex,
		Topology:   gputypes.PrimitiveTopologyLineStrip,
	})
	return p, nil
}

// Points returns the number of points.
func (p *Plot) Points() int { return p.points }

// DataType implements Uploader.
func (p *Plot) DataType() DataType { return p.dataType }

// Elements implements Uploader. A plot holds two elements per point.
func (p *Plot) Elements() int { return 2 * p.points }

// BufferHandle returns the GPU buffer holding the points, for interop
// such as compute passes that generate the data, or nil after Destroy.
// Writes through it bypass the context lock and must not overlap a frame.
func (p *Plot) BufferHandle() hal.Buffer {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if p.destroyed {
		return nil
	}
	return p.buf.Handle()
}

// Size returns the size of the point buffer in bytes: 2 * points * the
// element size.
func (p *Plot) Size() uint64 { return p.buf.Size() }

// SetData uploads all points. data must be a []float32, []int32, []uint32
// or []uint8 matching the plot's data type, holding x0, y0, x1, y1, ...
func (p *Plot) SetData(data any) error {
	return setData(p, data)
}

func (p *Plot) upload(raw []byte) error {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if p.destroyed {
		return ErrDestroyed
	}
	return p.buf.Write(0, raw)
}

// Render implements Renderable. It draws the series as a line strip
// clipped to the plotting area, then the axes.
func (p *Plot) Render(f *Frame, x, y, w, h int) error {
	if p.destroyed {
		return ErrDestroyed
	}
	pass := f.pass
	pass.Check("Plot.Render")

	t := ComputeTransform(p.limits, w, h, f.ctx.theme.Margins)

	pass.SetViewport(image.Rect(x, y, x+w, y+h))
	pass.EnableScissor(t.Scissor(x, y))
	pass.UseProgram(p.program)

	u := gpu.Uniforms{Transform: t.Matrix(), Color: p.color.Array()}
	err := pass.SetUniforms(&u)
	if err == nil {
		err = p.cache.Bind(pass)
	}
	if err == nil {
		pass.Draw(p.points, 1)
	}
	p.cache.Unbind(pass)

	pass.DisableScissor()
	pass.ReleaseProgram()
	if err != nil {
		return fmt.Errorf("gplot: render plot: %w", err)
	}

	if err := p.ctx.decor.render(f, &p.chart, t, x, y, w, h); err != nil {
		return fmt.Errorf("gplot: render plot axes: %w", err)
	}
	pass.Check("Plot.Render")
	return nil
}

// forget drops the binding of a closing window.
func (p *Plot) forget(id WindowID) { p.cache.Forget(id) }

// Windows returns the number of windows the plot holds GPU state for.
func (p *Plot) Windows() int {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.cache.Len()
}

// Destroy releases the point buffer and the state of every window.
// Destroy is idempotent.
func (p *Plot) Destroy() {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.cache.Destroy()
	p.buf.Destroy()
}
