// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"testing"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// countingDevice wraps a hal.Device and counts allocation calls.
type countingDevice struct {
	hal.Device

	buffersCreated   int
	buffersDestroyed map[hal.Buffer]int
	pipelinesCreated int
	pipelinesDestroy int
	shadersCreated   int
	groupsCreated    int
	groupsDestroyed  int
	texturesCreated  int
	texturesDestroy  int
	lastPipelineDesc *hal.RenderPipelineDescriptor
	lastShaderDesc   *hal.ShaderModuleDescriptor
}

func newCountingDevice(inner hal.Device) *countingDevice {
	return &countingDevice{Device: inner, buffersDestroyed: make(map[hal.Buffer]int)}
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
	d.lastPipelineDesc = desc
	return d.Device.CreateRenderPipeline(desc)
}

func (d *countingDevice) DestroyRenderPipeline(p hal.RenderPipeline) {
	d.pipelinesDestroy++
	d.Device.DestroyRenderPipeline(p)
}

func (d *countingDevice) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	d.shadersCreated++
	d.lastShaderDesc = desc
	return d.Device.CreateShaderModule(desc)
}

func (d *countingDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	d.groupsCreated++
	return d.Device.CreateBindGroup(desc)
}

func (d *countingDevice) DestroyBindGroup(g hal.BindGroup) {
	d.groupsDestroyed++
	d.Device.DestroyBindGroup(g)
}

func (d *countingDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	d.texturesCreated++
	return d.Device.CreateTexture(desc)
}

func (d *countingDevice) DestroyTexture(tex hal.Texture) {
	d.texturesDestroy++
	d.Device.DestroyTexture(tex)
}

// readBuffer copies the contents of a noop buffer.
func readBuffer(t *testing.T, device hal.Device, buf hal.Buffer, size uint64) []byte {
	t.Helper()
	m, err := device.MapBuffer(buf, 0, size)
	if err != nil {
		t.Fatalf("MapBuffer failed: %v", err)
	}
	defer func() { _ = device.UnmapBuffer(buf) }()
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(m.Ptr), size))
	return out
}

// recordedCall is one call captured by recordingEncoder.
type recordedCall struct {
	name string
	args []any
}

// recordingEncoder records the calls made through the Encoder interface.
type recordingEncoder struct {
	calls []recordedCall
}

func (e *recordingEncoder) add(name string, args ...any) {
	e.calls = append(e.calls, recordedCall{name: name, args: args})
}

func (e *recordingEncoder) SetPipeline(p hal.RenderPipeline) { e.add("SetPipeline", p) }

func (e *recordingEncoder) SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32) {
	e.add("SetBindGroup", index, group, offsets)
}

func (e *recordingEncoder) SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64) {
	e.add("SetVertexBuffer", slot, buffer, offset)
}

func (e *recordingEncoder) SetViewport(x, y, w, h, minDepth, maxDepth float32) {
	e.add("SetViewport", x, y, w, h, minDepth, maxDepth)
}

func (e *recordingEncoder) SetScissorRect(x, y, w, h uint32) {
	e.add("SetScissorRect", x, y, w, h)
}

func (e *recordingEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	e.add("Draw", vertexCount, instanceCount, firstVertex, firstInstance)
}

// names returns the sequence of recorded call names.
func (e *recordingEncoder) names() []string {
	out := make([]string, len(e.calls))
	for i, c := range e.calls {
		out[i] = c.name
	}
	return out
}

// count returns how many times name was called.
func (e *recordingEncoder) count(name string) int {
	n := 0
	for _, c := range e.calls {
		if c.name == name {
			n++
		}
	}
	return n
}

// newTestPrograms builds a registry on a counting noop device.
func newTestPrograms(t *testing.T) (*Programs, *countingDevice, hal.Queue) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)
	counting := newCountingDevice(device)
	programs, err := NewPrograms(counting, queue, ProgramsOptions{})
	if err != nil {
		t.Fatalf("NewPrograms failed: %v", err)
	}
	t.Cleanup(programs.Destroy)
	return programs, counting, queue
}
