package gplot

import (
	"image"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/gplot/internal/gpu"
	"github.com/gogpu/gplot/surface"
)

// createNoopDevice opens a noop device and registers its teardown.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	require.NoError(t, err)
	adapters := instance.EnumerateAdapters(nil)
	require.NotEmpty(t, adapters)
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	require.NoError(t, err)
	t.Cleanup(func() {
		open.Device.Destroy()
		instance.Destroy()
	})
	return open.Device, open.Queue
}

// countingDevice wraps a hal.Device and counts allocations.
type countingDevice struct {
	hal.Device

	buffersCreated   int
	buffersDestroyed map[hal.Buffer]int
	pipelinesCreated int
	pipelinesDestroy int

	// beginErr, when set, makes every new command encoder fail to begin.
	beginErr error
	discards int
}

func (d *countingDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	d.buffersCreated++
	return d.Device.CreateBuffer(desc)
}

func (d *countingDevice) DestroyBuffer(b hal.Buffer) {
	d.buffersDestroyed[b]++
	d.Device.DestroyBuffer(b)
}

func (d *countingDevice) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	d.pipelinesCreated++
	return d.Device.CreateRenderPipeline(desc)
}

func (d *countingDevice) DestroyRenderPipeline(p hal.RenderPipeline) {
	d.pipelinesDestroy++
	d.Device.DestroyRenderPipeline(p)
}

func (d *countingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil || d.beginErr == nil {
		return enc, err
	}
	return &failingEncoder{CommandEncoder: enc, device: d}, nil
}

// failingEncoder refuses to begin encoding and counts discards.
type failingEncoder struct {
	hal.CommandEncoder
	device *countingDevice
}

func (e *failingEncoder) BeginEncoding(string) error { return e.device.beginErr }

func (e *failingEncoder) DiscardEncoding() { e.device.discards++ }

// newTestContext creates a context on a counting noop device.
func newTestContext(t *testing.T, opts ...ContextOption) (*Context, *countingDevice) {
	t.Helper()
	device, queue := createNoopDevice(t)
	counting := &countingDevice{Device: device, buffersDestroyed: make(map[hal.Buffer]int)}
	ctx, err := NewContext(counting, queue, opts...)
	require.NoError(t, err)
	t.Cleanup(ctx.Destroy)
	return ctx, counting
}

// newTestWindow opens an offscreen window of w x h pixels on ctx.
func newTestWindow(t *testing.T, ctx *Context, w, h int, opts ...WindowOption) *Window {
	t.Helper()
	so := surface.DefaultOptions(w, h)
	so.Device = ctx.Device()
	so.Queue = ctx.Queue()
	target, err := surface.NewOffscreen(so)
	require.NoError(t, err)
	win, err := NewWindow(ctx, target, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = win.Close() })
	return win
}

// drawnText is one DrawText call.
type drawnText struct {
	s      string
	x, y   int
	color  Color
	window WindowID
}

// recordingText is a TextRenderer that records what it is asked to draw.
type recordingText struct {
	calls []drawnText
}

func (r *recordingText) DrawText(f *Frame, s string, x, y int, c Color) error {
	r.calls = append(r.calls, drawnText{s: s, x: x, y: y, color: c, window: f.WindowID()})
	return nil
}

func (r *recordingText) strings() []string {
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.s
	}
	return out
}

// ramp returns n interleaved points on the line y = x over [0, 1].
func ramp(n int) []float32 {
	xy := make([]float32, 2*n)
	for i := 0; i < n; i++ {
		v := float32(i) / float32(max(n-1, 1))
		xy[2*i] = v
		xy[2*i+1] = v
	}
	return xy
}

// drawEncoder is a gpu.Encoder that records draws and scissor rectangles.
type drawEncoder struct {
	draws    [][4]uint32
	scissors []image.Rectangle
	viewport []image.Rectangle
}

func (e *drawEncoder) SetPipeline(hal.RenderPipeline) {}
func (e *drawEncoder) SetBindGroup(uint32, hal.BindGroup, []uint32) {}
func (e *drawEncoder) SetVertexBuffer(uint32, hal.Buffer, uint64) {}

func (e *drawEncoder) SetViewport(x, y, w, h, _, _ float32) {
	e.viewport = append(e.viewport, image.Rect(int(x), int(y), int(x+w), int(y+h)))
}

func (e *drawEncoder) SetScissorRect(x, y, w, h uint32) {
	e.scissors = append(e.scissors, image.Rect(int(x), int(y), int(x+w), int(y+h)))
}

func (e *drawEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	e.draws = append(e.draws, [4]uint32{vertexCount, instanceCount, firstVertex, firstInstance})
}

// newTestFrame returns a w x h frame of window id recording into enc,
// shading through the default color map. The color map is allocated
// outside the context so buffer stats only count primitives.
func newTestFrame(t *testing.T, ctx *Context, enc gpu.Encoder, id WindowID, w, h int) *Frame {
	t.Helper()
	arena := gpu.NewUniformArena(ctx.programs, "test")
	t.Cleanup(arena.Destroy)
	buffers, err := gpu.NewBuffers(ctx.device, ctx.queue)
	require.NoError(t, err)
	cmap, err := gpu.NewColorMapTable(ctx.programs, buffers, "test_colormap", ColorMapDefault.table())
	require.NoError(t, err)
	t.Cleanup(cmap.Destroy)
	pass := gpu.NewPass(enc, arena, id, gputypes.TextureFormatBGRA8Unorm, w, h)
	pass.SetColorMap(cmap.Group())
	return &Frame{ctx: ctx, pass: pass}
}

// renderCell renders r into a w x h frame of window id, outside any
// window, and returns what was recorded.
func renderCell(t *testing.T, ctx *Context, id WindowID, w, h int, r Renderable) *drawEncoder {
	t.Helper()
	enc := &drawEncoder{}
	require.NoError(t, r.Render(newTestFrame(t, ctx, enc, id, w, h), 0, 0, w, h))
	return enc
}
