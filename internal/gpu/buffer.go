// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Buffer errors.
var (
	// ErrUnsupportedType is matched by every *TypeError.
	ErrUnsupportedType = errors.New("gpu: unsupported data type")

	// ErrInvalidCount is returned when a buffer is requested with zero elements.
	ErrInvalidCount = errors.New("gpu: element count must be positive")

	// ErrBufferDestroyed is returned when operating on a destroyed buffer.
	ErrBufferDestroyed = errors.New("gpu: buffer has been destroyed")

	// ErrWriteOutOfRange is returned when a write exceeds the buffer size.
	ErrWriteOutOfRange = errors.New("gpu: write exceeds buffer size")

	// ErrUnalignedWrite is returned when a write offset is not 4-byte aligned.
	ErrUnalignedWrite = errors.New("gpu: write offset must be 4-byte aligned")

	// ErrNilDevice is returned when a manager is created without a device.
	ErrNilDevice = errors.New("gpu: device is nil")
)

// copyAlignment is the WebGPU alignment for buffer sizes and write offsets.
const copyAlignment = 4

// UsageHint describes how often the contents of a buffer change.
// WebGPU has no driver-side equivalent; the hint is kept for diagnostics
// and to decide whether the buffer accepts writes after creation.
type UsageHint uint8

const (
	// HintDynamic marks buffers rewritten frequently by the application.
	HintDynamic UsageHint = iota
	// HintStatic marks buffers written once at creation.
	HintStatic
)

// String returns the string representation of the UsageHint.
func (h UsageHint) String() string {
	switch h {
	case HintDynamic:
		return "dynamic"
	case HintStatic:
		return "static"
	default:
		return fmt.Sprintf("UsageHint(%d)", uint8(h))
	}
}

// BufferStats summarizes the allocations made through a Buffers manager.
type BufferStats struct {
	// Created is the total number of buffers ever created.
	Created int
	// Destroyed is the total number of buffers released.
	Destroyed int
	// LiveBytes is the allocated size of buffers not yet released.
	LiveBytes uint64
}

// Live returns the number of buffers not yet released.
func (s BufferStats) Live() int {
	return s.Created - s.Destroyed
}

// Buffers allocates GPU data buffers typed by element width.
//
// Every buffer is created with vertex, storage and copy-destination usage,
// so the same allocation can feed either vertex attributes or packed
// storage reads. Buffers is not safe for concurrent use.
type Buffers struct {
	device hal.Device
	queue  hal.Queue
	stats  BufferStats
}

// NewBuffers creates a buffer manager on the given device and queue.
func NewBuffers(device hal.Device, queue hal.Queue) (*Buffers, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	return &Buffers{device: device, queue: queue}, nil
}

// Stats returns allocation counters.
func (m *Buffers) Stats() BufferStats {
	return m.stats
}

// Create allocates a buffer holding count elements of type t.
//
// The logical size is count*t.Size() bytes; the allocation is rounded up
// to the 4-byte copy alignment. If data is non-nil it is uploaded
// immediately and must not exceed the logical size.
func (m *Buffers) Create(label string, t ScalarType, count int, data []byte, hint UsageHint) (*Buffer, error) {
	if !t.Supported() {
		return nil, &TypeError{Op: label, Type: t}
	}
	if count <= 0 {
		return nil, fmt.Errorf("%s: %w (count=%d)", label, ErrInvalidCount, count)
	}

	size := uint64(count) * uint64(t.Size()) //nolint:gosec // count checked positive
	if uint64(len(data)) > size {
		return nil, fmt.Errorf("%s: %w (%d > %d bytes)", label, ErrWriteOutOfRange, len(data), size)
	}
	allocated := alignUp(size, copyAlignment)

	handle, err := m.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  allocated,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", label, err)
	}

	b := &Buffer{
		manager:   m,
		handle:    handle,
		label:     label,
		elemType:  t,
		count:     count,
		size:      size,
		allocated: allocated,
		hint:      hint,
	}
	m.stats.Created++
	m.stats.LiveBytes += allocated

	if len(data) > 0 {
		if err := b.upload(0, data); err != nil {
			b.Destroy()
			return nil, err
		}
	}

	slogger().Debug("gpu: buffer created",
		"label", label, "type", t, "count", count, "bytes", size, "hint", hint)
	return b, nil
}

// release is called exactly once per buffer by Buffer.Destroy.
func (m *Buffers) release(b *Buffer) {
	m.device.DestroyBuffer(b.handle)
	m.stats.Destroyed++
	m.stats.LiveBytes -= b.allocated
}

// Buffer is a GPU-resident data buffer owned by exactly one chart primitive.
type Buffer struct {
	manager   *Buffers
	handle    hal.Buffer
	label     string
	elemType  ScalarType
	count     int
	size      uint64
	allocated uint64
	hint      UsageHint
	destroyed bool
}

// Handle returns the raw GPU buffer, or nil once destroyed.
func (b *Buffer) Handle() hal.Buffer {
	if b == nil || b.destroyed {
		return nil
	}
	return b.handle
}

// Size returns the logical size in bytes (count * element size).
func (b *Buffer) Size() uint64 {
	return b.size
}

// AllocatedSize returns the size of the GPU allocation, which may include
// alignment padding past Size.
func (b *Buffer) AllocatedSize() uint64 {
	return b.allocated
}

// Count returns the number of elements.
func (b *Buffer) Count() int {
	return b.count
}

// Type returns the element type.
func (b *Buffer) Type() ScalarType {
	return b.elemType
}

// Hint returns the usage hint given at creation.
func (b *Buffer) Hint() UsageHint {
	return b.hint
}

// Destroyed reports whether Destroy has been called.
func (b *Buffer) Destroyed() bool {
	return b.destroyed
}

// Write replaces bytes starting at offset. The offset must be 4-byte
// aligned; a short tail is zero-padded up to the alignment.
func (b *Buffer) Write(offset uint64, data []byte) error {
	if b.destroyed {
		return ErrBufferDestroyed
	}
	if b.hint == HintStatic {
		slogger().Debug("gpu: write to static buffer", "label", b.label, "bytes", len(data))
	}
	return b.upload(offset, data)
}

func (b *Buffer) upload(offset uint64, data []byte) error {
	if offset%copyAlignment != 0 {
		return fmt.Errorf("%s: %w (offset=%d)", b.label, ErrUnalignedWrite, offset)
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("%s: %w (%d+%d > %d bytes)", b.label, ErrWriteOutOfRange, offset, len(data), b.size)
	}
	if len(data) == 0 {
		return nil
	}
	if rem := len(data) % copyAlignment; rem != 0 {
		padded := make([]byte, len(data)+copyAlignment-rem)
		copy(padded, data)
		data = padded
	}
	if err := b.manager.queue.WriteBuffer(b.handle, offset, data); err != nil {
		return fmt.Errorf("write %s buffer: %w", b.label, err)
	}
	return nil
}

// Destroy releases the GPU buffer. Subsequent calls are no-ops, which
// guarantees a single DestroyBuffer per handle.
func (b *Buffer) Destroy() {
	if b == nil || b.destroyed {
		return
	}
	b.destroyed = true
	b.manager.release(b)
	slogger().Debug("gpu: buffer destroyed", "label", b.label, "bytes", b.size)
}

// alignUp rounds n up to a multiple of align (a power of two).
func alignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}
