// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

const (
	// UniformSize is the byte size of the Uniforms block in WGSL:
	// mat4x4<f32> + vec4<f32> + vec4<f32>.
	UniformSize = 96

	// UniformStride is the distance between slots, matching the default
	// minUniformBufferOffsetAlignment.
	UniformStride = 256

	// slotsPerChunk is the number of slots in one arena buffer.
	slotsPerChunk = 64
)

// Uniforms is the per-draw uniform block shared by every program.
type Uniforms struct {
	// Transform maps data coordinates to clip space (column-major).
	Transform [16]float32
	// Color is the straight-alpha RGBA draw color.
	Color [4]float32
	// Params carries program-specific values (bar gap, image size, surface
	// grid size and z range).
	Params [4]float32
}

// encode writes the block in WGSL uniform layout.
func (u *Uniforms) encode(dst []byte) {
	off := 0
	put := func(v float32) {
		binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(v))
		off += 4
	}
	for _, v := range u.Transform {
		put(v)
	}
	for _, v := range u.Color {
		put(v)
	}
	for _, v := range u.Params {
		put(v)
	}
}

type uniformChunk struct {
	buffer  hal.Buffer
	group   hal.BindGroup
	staging []byte
	used    int
}

// UniformArena hands out uniform slots for one window's frame.
//
// Each draw pushes its Uniforms into the next free 256-byte slot and binds
// group 0 with that slot's dynamic offset. Slots are staged on the CPU and
// uploaded by Flush before the frame is submitted. Reset reclaims every
// slot at the start of the next frame; chunks are kept for reuse.
type UniformArena struct {
	programs *Programs
	label    string
	chunks   []*uniformChunk
	current  int
}

// NewUniformArena creates an empty arena. Chunks are allocated on demand.
func NewUniformArena(programs *Programs, label string) *UniformArena {
	return &UniformArena{programs: programs, label: label}
}

// Reset marks every slot free.
func (a *UniformArena) Reset() {
	for _, c := range a.chunks {
		c.used = 0
	}
	a.current = 0
}

// Used returns the number of slots handed out since the last Reset.
func (a *UniformArena) Used() int {
	n := 0
	for _, c := range a.chunks {
		n += c.used
	}
	return n
}

// Push stages u in a free slot and returns the bind group and dynamic
// offset that select it.
func (a *UniformArena) Push(u *Uniforms) (hal.BindGroup, uint32, error) {
	c, err := a.chunk()
	if err != nil {
		return nil, 0, err
	}
	offset := c.used * UniformStride
	u.encode(c.staging[offset : offset+UniformSize])
	c.used++
	return c.group, uint32(offset), nil //nolint:gosec // bounded by chunk size
}

func (a *UniformArena) chunk() (*uniformChunk, error) {
	for a.current < len(a.chunks) {
		c := a.chunks[a.current]
		if c.used < slotsPerChunk {
			return c, nil
		}
		a.current++
	}

	device := a.programs.Device()
	size := uint64(slotsPerChunk * UniformStride)
	label := fmt.Sprintf("%s_uniforms_%d", a.label, len(a.chunks))
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	group, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label,
		Layout: a.programs.UniformLayout(),
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(), Offset: 0, Size: UniformSize,
			}},
		},
	})
	if err != nil {
		device.DestroyBuffer(buf)
		return nil, fmt.Errorf("create %s bind group: %w", label, err)
	}

	c := &uniformChunk{buffer: buf, group: group, staging: make([]byte, size)}
	a.chunks = append(a.chunks, c)
	a.current = len(a.chunks) - 1
	slogger().Debug("gpu: uniform chunk allocated", "label", label, "chunks", len(a.chunks))
	return c, nil
}

// Flush uploads every used slot. Call once per frame before submit.
func (a *UniformArena) Flush() error {
	queue := a.programs.Queue()
	for _, c := range a.chunks {
		if c.used == 0 {
			continue
		}
		if err := queue.WriteBuffer(c.buffer, 0, c.staging[:c.used*UniformStride]); err != nil {
			return fmt.Errorf("flush %s uniforms: %w", a.label, err)
		}
	}
	return nil
}

// Destroy releases all chunks.
func (a *UniformArena) Destroy() {
	device := a.programs.Device()
	for _, c := range a.chunks {
		device.DestroyBindGroup(c.group)
		device.DestroyBuffer(c.buffer)
	}
	a.chunks = nil
	a.current = 0
}
