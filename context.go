package gplot

import (
	"fmt"
	"io"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // registers the Vulkan backend for OpenDefaultContext

	"github.com/gogpu/gplot/internal/gpu"
	"github.com/gogpu/gplot/render"
)

// BufferStats reports buffer allocations of a Context.
type BufferStats = gpu.BufferStats

// Context owns the GPU objects shared by every chart and window created
// from it: the buffer manager, the program registry and the chart
// decoration geometry. It does not own the device unless it was opened by
// OpenDefaultContext.
//
// A Context serializes frame recording and data uploads with a mutex, so
// primitives may be updated from other goroutines while windows render.
// Context implements io.Closer.
type Context struct {
	mu sync.Mutex

	device   hal.Device
	queue    hal.Queue
	buffers  *gpu.Buffers
	programs *gpu.Programs
	decor    *decoration
	theme    Theme
	text     TextRenderer

	// release tears down a device opened by OpenDefaultContext.
	release   func()
	destroyed bool
}

var _ io.Closer = (*Context)(nil)

// NewContext creates a context on an existing device and queue.
func NewContext(device hal.Device, queue hal.Queue, opts ...ContextOption) (*Context, error) {
	o := defaultContextOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.theme.Validate(); err != nil {
		return nil, err
	}

	buffers, err := gpu.NewBuffers(device, queue)
	if err != nil {
		return nil, fmt.Errorf("gplot: %w", err)
	}
	programs, err := gpu.NewPrograms(device, queue, gpu.ProgramsOptions{SPIRV: o.spirv})
	if err != nil {
		return nil, fmt.Errorf("gplot: create programs: %w", err)
	}

	c := &Context{
		device:   device,
		queue:    queue,
		buffers:  buffers,
		programs: programs,
		theme:    o.theme,
		text:     o.text,
	}
	c.decor, err = newDecoration(c)
	if err != nil {
		programs.Destroy()
		return nil, err
	}

	Logger().Info("gplot: context created", "spirv", o.spirv, "tick_count", o.theme.TickCount)
	return c, nil
}

// NewContextFromProvider creates a context on a device shared by a host
// application.
func NewContextFromProvider(h render.DeviceHandle, opts ...ContextOption) (*Context, error) {
	device, queue, err := render.HalDevice(h)
	if err != nil {
		return nil, fmt.Errorf("gplot: %w", err)
	}
	return NewContext(device, queue, opts...)
}

// OpenDefaultContext opens a Vulkan device on the first discrete or
// integrated GPU (falling back to the first adapter) and creates a context
// that owns it. Destroy releases the device.
func OpenDefaultContext(opts ...ContextOption) (*Context, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not registered", ErrNoAdapter)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", ErrNoAdapter, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := selectAdapter(adapters)

	open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gplot: open device: %w", err)
	}

	c, err := NewContext(open.Device, open.Queue, opts...)
	if err != nil {
		open.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	c.release = func() {
		open.Device.Destroy()
		instance.Destroy()
	}
	Logger().Info("gplot: GPU initialized", "adapter", selected.Info.Name, "type", selected.Info.DeviceType)
	return c, nil
}

// selectAdapter prefers a discrete GPU, then an integrated one, then the
// first adapter.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	var integrated *hal.ExposedAdapter
	for i := range adapters {
		switch adapters[i].Info.DeviceType {
		case gputypes.DeviceTypeDiscreteGPU:
			return &adapters[i]
		case gputypes.DeviceTypeIntegratedGPU:
			if integrated == nil {
				integrated = &adapters[i]
			}
		}
	}
	if integrated != nil {
		return integrated
	}
	return &adapters[0]
}

// Device returns the HAL device.
func (c *Context) Device() hal.Device { return c.device }

// Queue returns the HAL queue.
func (c *Context) Queue() hal.Queue { return c.queue }

// Theme returns the context theme.
func (c *Context) Theme() Theme { return c.theme }

// BufferStats returns allocation counters for all primitives of the
// context.
func (c *Context) BufferStats() BufferStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffers.Stats()
}

// Destroy releases the shared programs and decoration geometry, and the
// device when the context opened it. Primitives and windows must be
// destroyed first. Destroy is idempotent.
func (c *Context) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.destroyed = true

	if r, ok := c.text.(interface{ release() }); ok {
		r.release()
	}
	c.decor.destroy()
	c.programs.Destroy()
	if live := c.buffers.Stats().Live(); live > 0 {
		Logger().Warn("gplot: context destroyed with live buffers", "live", live)
	}
	if c.release != nil {
		c.release()
		c.release = nil
	}
	Logger().Info("gplot: context destroyed")
}

// Close implements io.Closer. It calls Destroy and always returns nil.
func (c *Context) Close() error {
	c.Destroy()
	return nil
}

// checkLocked reports ErrDestroyed after Destroy. c.mu must be held.
func (c *Context) checkLocked() error {
	if c.destroyed {
		return ErrDestroyed
	}
	return nil
}
