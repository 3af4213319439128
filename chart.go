package gplot

import (
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gplot/internal/gpu"
)

// chart holds the axis state shared by plots and histograms. Its exported
// methods are promoted to the embedding primitive.
type chart struct {
	ctx    *Context
	limits Limits
	xTitle string
	yTitle string
	color  Color
}

func (c *chart) context() *Context { return c.ctx }

// SetColor sets the series color. Components are clamped to [0, 1] and
// the color is opaque.
func (c *chart) SetColor(r, g, b float32) {
	c.ctx.mu.Lock()
	defer c.ctx.mu.Unlock()
	c.color = RGB(r, g, b)
}

// Color returns the series color.
func (c *chart) Color() Color {
	c.ctx.mu.Lock()
	defer c.ctx.mu.Unlock()
	return c.color
}

// SetAxesLimits sets the data range shown on each axis. Limits may be
// given in any order; a zero-width range draws its data along the middle
// of the plot.
func (c *chart) SetAxesLimits(xmax, xmin, ymax, ymin float32) {
	c.ctx.mu.Lock()
	defer c.ctx.mu.Unlock()
	c.limits = Limits{XMin: xmin, XMax: xmax, YMin: ymin, YMax: ymax}
}

// AxesLimits returns the current axis limits.
func (c *chart) AxesLimits() Limits {
	c.ctx.mu.Lock()
	defer c.ctx.mu.Unlock()
	return c.limits
}

// XMin returns the lower x axis limit.
func (c *chart) XMin() float32 { return c.AxesLimits().XMin }

// XMax returns the upper x axis limit.
func (c *chart) XMax() float32 { return c.AxesLimits().XMax }

// YMin returns the lower y axis limit.
func (c *chart) YMin() float32 { return c.AxesLimits().YMin }

// YMax returns the upper y axis limit.
func (c *chart) YMax() float32 { return c.AxesLimits().YMax }

// SetXAxisTitle sets the label drawn under the x axis.
func (c *chart) SetXAxisTitle(title string) {
	c.ctx.mu.Lock()
	defer c.ctx.mu.Unlock()
	c.xTitle = normalizeTitle(title)
}

// SetYAxisTitle sets the label drawn above the y axis.
func (c *chart) SetYAxisTitle(title string) {
	c.ctx.mu.Lock()
	defer c.ctx.mu.Unlock()
	c.yTitle = normalizeTitle(title)
}

// XAxisTitle returns the x axis title.
func (c *chart) XAxisTitle() string {
	c.ctx.mu.Lock()
	defer c.ctx.mu.Unlock()
	return c.xTitle
}

// YAxisTitle returns the y axis title.
func (c *chart) YAxisTitle() string {
	c.ctx.mu.Lock()
	defer c.ctx.mu.Unlock()
	return c.yTitle
}

// Decoration vertex layout: the unit square border as a line list,
// followed by one segment per x tick from (f, 0) to (f, 1) and one per
// y tick from (0, f) to (1, f).
const borderVertices = 8

// decoration draws the border, tick marks and grid lines of every chart
// of a context from one static unit-space line buffer. Each part is
// placed by its own transform.
type decoration struct {
	buf   *gpu.Buffer
	cache *gpu.BindingCache
	ticks int
}

func newDecoration(c *Context) (*decoration, error) {
	ticks := c.theme.TickCount
	if ticks < 2 {
		ticks = 0
	}
	verts := decorationGeometry(ticks)
	buf, err := c.buffers.Create("decoration", gpu.Float32, len(verts), sliceBytes(verts), gpu.HintStatic)
	if err != nil {
		return nil, err
	}
	cache := gpu.NewBindingCache(c.programs, "decoration", buf, gpu.VertexLayout{
		Program:    gpu.ProgramLine,
		Components: 2,
		StepMode:   gputypes.VertexStepModeVertex,
		Topology:   gputypes.PrimitiveTopologyLineList,
	})
	return &decoration{buf: buf, cache: cache, ticks: ticks}, nil
}

// decorationGeometry returns the interleaved x, y vertices.
func decorationGeometry(ticks int) []float32 {
	verts := []float32{
		0, 0, 1, 0,
		1, 0, 1, 1,
		1, 1, 0, 1,
		0, 1, 0, 0,
	}
	for i := 0; i < ticks; i++ {
		f := float32(i) / float32(ticks-1)
		verts = append(verts, f, 0, f, 1)
	}
	for i := 0; i < ticks; i++ {
		f := float32(i) / float32(ticks-1)
		verts = append(verts, 0, f, 1, f)
	}
	return verts
}

func (d *decoration) xTicks() (first, count int) { return borderVertices, 2 * d.ticks }

func (d *decoration) yTicks() (first, count int) { return borderVertices + 2*d.ticks, 2 * d.ticks }

func (d *decoration) forget(id WindowID) { d.cache.Forget(id) }

func (d *decoration) destroy() {
	d.cache.Destroy()
	d.buf.Destroy()
}

// pixelMatrix maps the unit square onto a w x h viewport: unit (0, 0)
// lands on pixel (ox, oy) and unit (1, 1) on (ox+sx, oy-sy). Pixel y grows
// downwards.
func pixelMatrix(w, h int, ox, oy, sx, sy float32) Mat4 {
	fw, fh := float32(w), float32(h)
	return Translate(2*ox/fw-1, 1-2*oy/fh).Multiply(Scale(2*sx/fw, 2*sy/fh))
}

// lineRun is one draw of decoration vertices with its own transform.
type lineRun struct {
	first, count int
	m            Mat4
	col          Color
}

// draw binds the decoration once and draws each run in order.
func (d *decoration) draw(pass *gpu.Pass, runs []lineRun) error {
	pass.UseProgram(gpu.ProgramLine)
	var err error
	for i, r := range runs {
		u := gpu.Uniforms{Transform: r.m, Color: r.col.Array()}
		if err = pass.SetUniforms(&u); err != nil {
			break
		}
		if i == 0 {
			if err = d.cache.Bind(pass); err != nil {
				break
			}
		}
		pass.DrawRange(r.first, r.count, 1)
	}
	d.cache.Unbind(pass)
	pass.ReleaseProgram()
	return err
}

// render draws the decoration of c into the viewport at (x, y).
func (d *decoration) render(f *Frame, c *chart, t Transform, x, y, w, h int) error {
	area := t.PlotArea(0, 0)
	if w <= 0 || h <= 0 || area.Empty() {
		return nil
	}
	theme := f.ctx.theme
	pass := f.pass

	left, bottom := float32(area.Min.X), float32(area.Max.Y)
	pw, ph := float32(area.Dx()), float32(area.Dy())
	tick := float32(theme.Margins.Tick)
	plot := pixelMatrix(w, h, left, bottom, pw, ph)

	xFirst, xCount := d.xTicks()
	yFirst, yCount := d.yTicks()
	var runs []lineRun
	if theme.GridLines && d.ticks > 0 {
		runs = append(runs,
			lineRun{xFirst, xCount, plot, theme.GridColor},
			lineRun{yFirst, yCount, plot, theme.GridColor})
	}
	runs = append(runs, lineRun{0, borderVertices, plot, theme.Foreground})
	if d.ticks > 0 && tick > 0 {
		runs = append(runs,
			lineRun{xFirst, xCount, pixelMatrix(w, h, left, bottom+tick, pw, tick), theme.Foreground},
			lineRun{yFirst, yCount, pixelMatrix(w, h, left-tick, bottom, tick, ph), theme.Foreground})
	}
	pass.SetViewport(image.Rect(x, y, x+w, y+h))
	if err := d.draw(pass, runs); err != nil {
		return err
	}

	for _, l := range c.labels(theme, area.Add(image.Pt(x, y)), d.ticks) {
		if err := f.drawText(l, theme.TextColor); err != nil {
			return err
		}
	}
	return nil
}

// labels lays out tick labels and axis titles around area, given in frame
// pixels.
func (c *chart) labels(theme Theme, area image.Rectangle, ticks int) []label {
	tick := theme.Margins.Tick
	ascent, height := textAscent(), textHeight()
	var out []label

	for _, t := range Ticks(c.limits.XMin, c.limits.XMax, ticks) {
		cx := area.Min.X + int(t.Fraction*float32(area.Dx()))
		out = append(out, label{
			text: t.Label,
			at:   image.Pt(cx-textWidth(t.Label)/2, area.Max.Y+tick+2+ascent),
		})
	}
	for _, t := range Ticks(c.limits.YMin, c.limits.YMax, ticks) {
		cy := area.Max.Y - int(t.Fraction*float32(area.Dy()))
		out = append(out, label{
			text: t.Label,
			at:   image.Pt(area.Min.X-tick-3-textWidth(t.Label), cy-height/2+ascent),
		})
	}

	if c.xTitle != "" {
		cx := area.Min.X + area.Dx()/2
		out = append(out, centeredAt(c.xTitle, cx, area.Max.Y+tick+2+height+height/2))
	}
	if c.yTitle != "" {
		out = append(out, label{text: c.yTitle, at: image.Pt(area.Min.X-tick, area.Min.Y-3)})
	}
	return out
}
