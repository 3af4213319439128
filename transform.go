package gplot

import (
	"image"

	"github.com/chewxy/math32"
)

// DegenerateEpsilon is the smallest axis range that is scaled. Narrower
// ranges (constant data) get a zero scale instead of dividing by a value
// close to zero.
const DegenerateEpsilon = 1e-3

// Limits are the data-space bounds of a chart's axes.
type Limits struct {
	XMin, XMax float32
	YMin, YMax float32
}

// RangeX returns XMax - XMin.
func (l Limits) RangeX() float32 { return l.XMax - l.XMin }

// RangeY returns YMax - YMin.
func (l Limits) RangeY() float32 { return l.YMax - l.YMin }

// Margins is the pixel space reserved around a chart's plotting area for
// axis decorations. Tick is the additional allowance for tick marks on the
// left and bottom edges.
type Margins struct {
	Left   int `toml:"left"`
	Right  int `toml:"right"`
	Top    int `toml:"top"`
	Bottom int `toml:"bottom"`
	Tick   int `toml:"tick"`
}

// Transform maps data coordinates of one chart into the normalized device
// coordinates of its viewport. It is derived on every render and never
// stored.
type Transform struct {
	// GraphScaleX and GraphScaleY map the data range onto [-1, 1]:
	// 2/range, or 0 for degenerate ranges.
	GraphScaleX, GraphScaleY float32
	// ViewScaleX and ViewScaleY are the plot-area to viewport ratios.
	ViewScaleX, ViewScaleY float32
	// OffsetX and OffsetY locate the plot-area center in device space.
	OffsetX, OffsetY float32
	// ScaleX and ScaleY are the composed per-axis scales.
	ScaleX, ScaleY float32

	limits    Limits
	margins   Margins
	viewportW int
	viewportH int
}

// graphScale returns 2/(max-min), or 0 when the range is degenerate.
func graphScale(minV, maxV float32) float32 {
	r := maxV - minV
	if math32.Abs(r) < DegenerateEpsilon || math32.IsNaN(r) {
		return 0
	}
	return 2 / r
}

// ComputeTransform derives the data-to-device transform for a chart with
// the given axis limits drawn into a viewport of vpW x vpH pixels.
func ComputeTransform(l Limits, vpW, vpH int, m Margins) Transform {
	t := Transform{
		GraphScaleX: graphScale(l.XMin, l.XMax),
		GraphScaleY: graphScale(l.YMin, l.YMax),
		limits:      l,
		margins:     m,
		viewportW:   vpW,
		viewportH:   vpH,
	}

	if vpW > 0 {
		w := float32(vpW)
		viewW := w - float32(m.Left+m.Right+m.Tick)
		t.ViewScaleX = viewW / w
		t.OffsetX = (2*float32(m.Left+m.Tick) + (viewW - w)) / w
	}
	if vpH > 0 {
		h := float32(vpH)
		viewH := h - float32(m.Bottom+m.Top+m.Tick)
		t.ViewScaleY = viewH / h
		t.OffsetY = (2*float32(m.Bottom+m.Tick) + (viewH - h)) / h
	}

	t.ScaleX = t.ViewScaleX * t.GraphScaleX
	t.ScaleY = t.ViewScaleY * t.GraphScaleY
	return t
}

// Matrix returns the scale-then-translate matrix uploaded to the shaders.
// The data range midpoint lands on the plot-area center, so a degenerate
// axis draws its constant value through the middle of the plot.
func (t Transform) Matrix() Mat4 {
	midX := (t.limits.XMin + t.limits.XMax) / 2
	midY := (t.limits.YMin + t.limits.YMax) / 2
	return Translate(t.OffsetX-t.ScaleX*midX, t.OffsetY-t.ScaleY*midY).
		Multiply(Scale(t.ScaleX, t.ScaleY))
}

// PlotArea returns the plotting rectangle in target pixels for a viewport
// whose top-left corner is (x, y).
func (t Transform) PlotArea(x, y int) image.Rectangle {
	m := t.margins
	return rectWH(
		x+m.Left+m.Tick,
		y+m.Top,
		t.viewportW-m.Left-m.Right-m.Tick,
		t.viewportH-m.Top-m.Bottom-m.Tick,
	)
}

// Scissor returns the clip rectangle for the data series: the plotting
// area widened by half the tick allowance on the axis sides.
func (t Transform) Scissor(x, y int) image.Rectangle {
	m := t.margins
	return rectWH(
		x+m.Left+m.Tick/2,
		y+m.Top,
		t.viewportW-m.Left-m.Right-m.Tick/2,
		t.viewportH-m.Top-m.Bottom-m.Tick/2,
	)
}

// rectWH builds a rectangle from an origin and a size clamped at zero.
func rectWH(x, y, w, h int) image.Rectangle {
	return image.Rect(x, y, x+max(w, 0), y+max(h, 0))
}
