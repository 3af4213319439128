package gplot

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"

	"github.com/gogpu/gplot/internal/gpu"
)

// Image displays a fixed-size RGBA picture.
//
// Pixels are stored as straight-alpha RGBA bytes in a GPU buffer and
// sampled with nearest filtering. Decoding is left to the application:
// anything implementing image.Image can be uploaded.
type Image struct {
	ctx    *Context
	width  int
	height int
	buf    *gpu.Buffer
	cache  *gpu.BindingCache

	keepAspect  bool
	colorMapped bool
	alpha       float32
	destroyed   bool
}

// NewImage creates a width x height image, initially transparent.
func NewImage(ctx *Context, width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gplot: NewImage: %w (%dx%d)", ErrInvalidCount, width, height)
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if err := ctx.checkLocked(); err != nil {
		return nil, err
	}
	return newImage(ctx, "image", width, height)
}

// newImage allocates an image. ctx.mu must be held.
func newImage(ctx *Context, label string, width, height int) (*Image, error) {
	buf, err := ctx.buffers.Create(label, gpu.Uint8, width*height*4, nil, gpu.HintDynamic)
	if err != nil {
		return nil, fmt.Errorf("gplot: NewImage: %w", err)
	}
	img := &Image{
		ctx:        ctx,
		width:      width,
		height:     height,
		buf:        buf,
		keepAspect: true,
		alpha:      1,
	}
	img.cache = gpu.NewBindingCache(ctx.programs, label, buf, gpu.VertexLayout{
		Program:  gpu.ProgramImage,
		Topology: gputypes.PrimitiveTopologyTriangleList,
	})
	return img, nil
}

// Width returns the image width in pixels.
func (m *Image) Width() int { return m.width }

// Height returns the image height in pixels.
func (m *Image) Height() int { return m.height }

// DataType implements Uploader. Pixels are bytes.
func (m *Image) DataType() DataType { return Uint8 }

// Elements implements Uploader: four bytes per pixel.
func (m *Image) Elements() int { return m.width * m.height * 4 }

// Size returns the pixel buffer size in bytes.
func (m *Image) Size() uint64 { return m.buf.Size() }

// SetKeepAspectRatio selects whether the image is letterboxed to keep its
// proportions (the default) or stretched over the whole cell.
func (m *Image) SetKeepAspectRatio(keep bool) {
	m.ctx.mu.Lock()
	defer m.ctx.mu.Unlock()
	m.keepAspect = keep
}

// KeepAspectRatio reports the aspect policy.
func (m *Image) KeepAspectRatio() bool {
	m.ctx.mu.Lock()
	defer m.ctx.mu.Unlock()
	return m.keepAspect
}

// SetColorMapped selects whether pixels are shown as they are (the
// default) or by luminance through the window's color map, keeping their
// alpha.
func (m *Image) SetColorMapped(on bool) {
	m.ctx.mu.Lock()
	defer m.ctx.mu.Unlock()
	m.colorMapped = on
}

// ColorMapped reports whether pixels are shaded through the color map.
func (m *Image) ColorMapped() bool {
	m.ctx.mu.Lock()
	defer m.ctx.mu.Unlock()
	return m.colorMapped
}

// SetAlpha sets a global opacity multiplied into every pixel.
func (m *Image) SetAlpha(a float32) {
	m.ctx.mu.Lock()
	defer m.ctx.mu.Unlock()
	m.alpha = clamp01(a)
}

// SetImage uploads src. A source of a different size is scaled to fit
// the image with bilinear filtering.
func (m *Image) SetImage(src image.Image) error {
	dst := image.NewNRGBA(image.Rect(0, 0, m.width, m.height))
	sb := src.Bounds()
	if sb.Dx() == m.width && sb.Dy() == m.height {
		draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	}
	return m.upload(dst.Pix)
}

// SetPixels uploads raw straight-alpha RGBA bytes, row by row from the
// top.
func (m *Image) SetPixels(rgba []uint8) error {
	return Upload(m, rgba)
}

func (m *Image) upload(raw []byte) error {
	m.ctx.mu.Lock()
	defer m.ctx.mu.Unlock()
	if m.destroyed {
		return ErrDestroyed
	}
	return m.buf.Write(0, raw)
}

// fit returns the quad scale placing an image of aspect ratio imgAspect
// into a viewport of aspect ratio vpAspect.
func fit(imgAspect, vpAspect float32, keep bool) (sx, sy float32) {
	if !keep || imgAspect <= 0 || vpAspect <= 0 {
		return 1, 1
	}
	if imgAspect > vpAspect {
		return 1, vpAspect / imgAspect
	}
	return imgAspect / vpAspect, 1
}

// uniforms returns the draw block for a quad scaled by (sx, sy). Params
// z flags shading by luminance through the color map.
func (m *Image) uniforms(sx, sy float32) gpu.Uniforms {
	u := gpu.Uniforms{
		Transform: Scale(sx, sy),
		Color:     [4]float32{1, 1, 1, m.alpha},
		Params:    [4]float32{float32(m.width), float32(m.height)},
	}
	if m.colorMapped {
		u.Params[2] = 1
	}
	return u
}

// Render implements Renderable. The image fills the cell, letterboxed when
// the aspect ratio is kept.
func (m *Image) Render(f *Frame, x, y, w, h int) error {
	if m.destroyed {
		return ErrDestroyed
	}
	if w <= 0 || h <= 0 {
		return nil
	}
	pass := f.pass
	pass.Check("Image.Render")

	sx, sy := fit(float32(m.width)/float32(m.height), float32(w)/float32(h), m.keepAspect)
	cell := image.Rect(x, y, x+w, y+h)

	pass.SetViewport(cell)
	pass.EnableScissor(cell)
	pass.UseProgram(gpu.ProgramImage)

	u := m.uniforms(sx, sy)
	err := pass.SetUniforms(&u)
	if err == nil {
		err = m.cache.Bind(pass)
	}
	if err == nil {
		pass.Draw(6, 1)
	}
	m.cache.Unbind(pass)

	pass.DisableScissor()
	pass.ReleaseProgram()
	pass.Check("Image.Render")
	if err != nil {
		return fmt.Errorf("gplot: render image: %w", err)
	}
	return nil
}

func (m *Image) forget(id WindowID) { m.cache.Forget(id) }

func (m *Image) context() *Context { return m.ctx }

// Windows returns the number of windows the image holds GPU state for.
func (m *Image) Windows() int {
	m.ctx.mu.Lock()
	defer m.ctx.mu.Unlock()
	return m.cache.Len()
}

// Destroy releases the pixel buffer and the state of every window.
// Destroy is idempotent.
func (m *Image) Destroy() {
	m.ctx.mu.Lock()
	defer m.ctx.mu.Unlock()
	m.release()
}

// release is Destroy with ctx.mu held.
func (m *Image) release() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	m.cache.Destroy()
	m.buf.Destroy()
}
