package gplot

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gplot/internal/gpu"
)

// Default surface camera, in degrees.
const (
	DefaultAzimuth   = 30
	DefaultElevation = 30
)

// cubeRadius is half the diagonal of the unit cube, so the cube fits the
// plotting area at any view angle.
const cubeRadius = 0.8660254

// Surface is a 3D height field over a regular nx x ny grid.
//
// Heights live in a GPU buffer of nx*ny elements with x varying fastest.
// Each grid cell is drawn as two depth-tested triangles, shaded through
// the window's color map by height between the z limits and tinted by the
// series color. The x and y axis limits label the grid edges; they do not
// move vertices.
type Surface struct {
	chart

	nx, ny   int
	dataType DataType
	buf      *gpu.Buffer
	cache    *gpu.BindingCache

	zmin, zmax float32
	zTitle     string
	azimuth    float32
	elevation  float32

	destroyed bool
}

// NewSurface creates a surface of nx x ny heights with elements of type t.
// Float32, Int32 and Uint32 are supported; any other type returns a
// *TypeError. Both dimensions must be at least 2.
func NewSurface(ctx *Context, nx, ny int, t DataType) (*Surface, error) {
	if !t.Supported() || t.Packed() {
		return nil, &TypeError{Op: "NewSurface", Type: t}
	}
	if nx < 2 || ny < 2 {
		return nil, fmt.Errorf("gplot: NewSurface: %w (grid=%dx%d)", ErrInvalidCount, nx, ny)
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if err := ctx.checkLocked(); err != nil {
		return nil, err
	}

	buf, err := ctx.buffers.Create("surface", t, nx*ny, nil, gpu.HintDynamic)
	if err != nil {
		return nil, fmt.Errorf("gplot: NewSurface: %w", err)
	}

	s := &Surface{
		chart: chart{
			ctx:    ctx,
			limits: Limits{XMin: 0, XMax: float32(nx - 1), YMin: 0, YMax: float32(ny - 1)},
			color:  White,
		},
		nx:        nx,
		ny:        ny,
		dataType:  t,
		buf:       buf,
		zmin:      0,
		zmax:      1,
		azimuth:   DefaultAzimuth,
		elevation: DefaultElevation,
	}
	s.cache = gpu.NewBindingCache(ctx.programs, "surface", buf, gpu.VertexLayout{
		Program:   gpu.ProgramSurface,
		Topology:  gputypes.PrimitiveTopologyTriangleList,
		DepthTest: true,
	})
	return s, nil
}

// GridSize returns the number of heights along x and y.
func (s *Surface) GridSize() (nx, ny int) { return s.nx, s.ny }

// DataType implements Uploader.
func (s *Surface) DataType() DataType { return s.dataType }

// Elements implements Uploader. A surface holds one element per grid point.
func (s *Surface) Elements() int { return s.nx * s.ny }

// BufferHandle returns the GPU buffer holding the heights, or nil after
// Destroy. Writes through it bypass the context lock.
func (s *Surface) BufferHandle() hal.Buffer {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	if s.destroyed {
		return nil
	}
	return s.buf.Handle()
}

// Size returns the size of the height buffer in bytes.
func (s *Surface) Size() uint64 { return s.buf.Size() }

// SetData uploads all heights. data must be a []float32, []int32 or
// []uint32 matching the surface's data type, row by row.
func (s *Surface) SetData(data any) error {
	return setData(s, data)
}

func (s *Surface) upload(raw []byte) error {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	if s.destroyed {
		return ErrDestroyed
	}
	return s.buf.Write(0, raw)
}

// SetZAxisLimits sets the height range mapped onto the box and spread over
// the color map. Limits may be given in any order; a zero-width range
// draws the surface flat through the middle of the box.
func (s *Surface) SetZAxisLimits(zmax, zmin float32) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	s.zmin, s.zmax = zmin, zmax
}

// ZMin returns the lower z axis limit.
func (s *Surface) ZMin() float32 {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.zmin
}

// ZMax returns the upper z axis limit.
func (s *Surface) ZMax() float32 {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.zmax
}

// SetZAxisTitle sets the label drawn above the z axis.
func (s *Surface) SetZAxisTitle(title string) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	s.zTitle = normalizeTitle(title)
}

// ZAxisTitle returns the z axis title.
func (s *Surface) ZAxisTitle() string {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.zTitle
}

// SetView sets the camera angles in degrees. Azimuth turns the box about
// its vertical axis; elevation tilts the camera from the side (0) to
// straight above (90) and is clamped to [-90, 90].
func (s *Surface) SetView(azimuth, elevation float32) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	s.azimuth = azimuth
	s.elevation = math32.Max(-90, math32.Min(90, elevation))
}

// View returns the camera angles in degrees.
func (s *Surface) View() (azimuth, elevation float32) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.azimuth, s.elevation
}

// viewMatrix maps the unit cube onto the plotting area of t, rotated to
// the camera angles, with depth in [0, 1] growing away from the camera.
func (s *Surface) viewMatrix(t Transform) Mat4 {
	area := t.PlotArea(0, 0)
	side := float32(min(area.Dx(), area.Dy()))
	sx := side / float32(t.viewportW) / cubeRadius
	sy := side / float32(t.viewportH) / cubeRadius
	az := s.azimuth * math32.Pi / 180
	el := s.elevation * math32.Pi / 180
	return Translate3(t.OffsetX, t.OffsetY, 0.5).
		Multiply(Scale3(sx, sy, -0.5/cubeRadius)).
		Multiply(RotateX(el - math32.Pi/2)).
		Multiply(RotateZ(-az)).
		Multiply(Translate3(-0.5, -0.5, -0.5))
}

// unitMatrix maps grid indices and heights into the unit cube.
func (s *Surface) unitMatrix() Mat4 {
	zs, zo := float32(0), float32(0.5)
	if r := s.zmax - s.zmin; math32.Abs(r) >= DegenerateEpsilon && !math32.IsNaN(r) {
		zs, zo = 1/r, -s.zmin/r
	}
	return Translate3(0, 0, zo).
		Multiply(Scale3(1/float32(s.nx-1), 1/float32(s.ny-1), zs))
}

// Render implements Renderable. It draws the floor grid and z axis, then
// the height field, then the labels.
func (s *Surface) Render(f *Frame, x, y, w, h int) error {
	if s.destroyed {
		return ErrDestroyed
	}
	pass := f.pass
	pass.Check("Surface.Render")

	t := ComputeTransform(s.limits, w, h, f.ctx.theme.Margins)
	if w <= 0 || h <= 0 || t.PlotArea(0, 0).Empty() {
		return nil
	}
	view := s.viewMatrix(t)

	pass.SetViewport(image.Rect(x, y, x+w, y+h))
	if err := s.ctx.decor.renderFloor(f, view); err != nil {
		return fmt.Errorf("gplot: render surface axes: %w", err)
	}

	pass.UseProgram(gpu.ProgramSurface)
	u := gpu.Uniforms{
		Transform: view.Multiply(s.unitMatrix()),
		Color:     s.color.Array(),
		Params:    [4]float32{float32(s.nx), float32(s.ny), s.zmin, s.zmax},
	}
	err := pass.SetUniforms(&u)
	if err == nil {
		err = s.cache.Bind(pass)
	}
	if err == nil {
		pass.Draw(6, (s.nx-1)*(s.ny-1))
	}
	s.cache.Unbind(pass)
	pass.ReleaseProgram()
	if err != nil {
		return fmt.Errorf("gplot: render surface: %w", err)
	}

	theme := f.ctx.theme
	for _, l := range s.labels(theme, view, image.Rect(x, y, x+w, y+h), s.ctx.decor.ticks) {
		if err := f.drawText(l, theme.TextColor); err != nil {
			return err
		}
	}
	pass.Check("Surface.Render")
	return nil
}

// project returns the frame pixel of unit cube point (ux, uy, uz) in
// viewport vp.
func project(view Mat4, vp image.Rectangle, ux, uy, uz float32) image.Point {
	cx, cy, _ := view.TransformPoint3(ux, uy, uz)
	return image.Pt(
		vp.Min.X+int((cx+1)/2*float32(vp.Dx())),
		vp.Min.Y+int((1-cy)/2*float32(vp.Dy())),
	)
}

// labels lays out tick labels along the floor edges and the z axis, and
// the axis titles, in frame pixels.
func (s *Surface) labels(theme Theme, view Mat4, vp image.Rectangle, ticks int) []label {
	const off = 0.12
	ascent, height := textAscent(), textHeight()
	var out []label

	for _, t := range Ticks(s.limits.XMin, s.limits.XMax, ticks) {
		p := project(view, vp, t.Fraction, -off, 0)
		out = append(out, centeredAt(t.Label, p.X, p.Y))
	}
	for _, t := range Ticks(s.limits.YMin, s.limits.YMax, ticks) {
		p := project(view, vp, -off, t.Fraction, 0)
		out = append(out, centeredAt(t.Label, p.X, p.Y))
	}
	for _, t := range Ticks(s.zmin, s.zmax, ticks) {
		p := project(view, vp, 0, 0, t.Fraction)
		out = append(out, label{
			text: t.Label,
			at:   image.Pt(p.X-theme.Margins.Tick-3-textWidth(t.Label), p.Y-height/2+ascent),
		})
	}

	if s.xTitle != "" {
		p := project(view, vp, 0.5, -2.5*off, 0)
		out = append(out, centeredAt(s.xTitle, p.X, p.Y))
	}
	if s.yTitle != "" {
		p := project(view, vp, -2.5*off, 0.5, 0)
		out = append(out, centeredAt(s.yTitle, p.X, p.Y))
	}
	if s.zTitle != "" {
		p := project(view, vp, 0, 0, 1+off)
		out = append(out, centeredAt(s.zTitle, p.X, p.Y))
	}
	return out
}

// zEdge maps the first border segment, (0, 0) to (1, 0), onto the vertical
// edge of the unit cube at the origin.
var zEdge = Mat4{
	0, 0, 1, 0,
	0, 0, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// renderFloor draws the decoration on the floor of the unit cube mapped by
// view, plus the vertical z axis. The viewport must already be set.
func (d *decoration) renderFloor(f *Frame, view Mat4) error {
	theme := f.ctx.theme
	var runs []lineRun
	if theme.GridLines && d.ticks > 0 {
		xFirst, xCount := d.xTicks()
		yFirst, yCount := d.yTicks()
		runs = append(runs,
			lineRun{xFirst, xCount, view, theme.GridColor},
			lineRun{yFirst, yCount, view, theme.GridColor})
	}
	runs = append(runs,
		lineRun{0, borderVertices, view, theme.Foreground},
		lineRun{0, 2, view.Multiply(zEdge), theme.Foreground})
	return d.draw(f.pass, runs)
}

// forget drops the binding of a closing window.
func (s *Surface) forget(id WindowID) { s.cache.Forget(id) }

// Windows returns the number of windows the surface holds GPU state for.
func (s *Surface) Windows() int {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	return s.cache.Len()
}

// Destroy releases the height buffer and the state of every window.
// Destroy is idempotent.
func (s *Surface) Destroy() {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.cache.Destroy()
	s.buf.Destroy()
}
