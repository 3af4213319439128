// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ColorMapEntries is the length of a color map lookup table. Entry i is
// the packed RGBA8 color of the normalized value i/255.
const ColorMapEntries = 256

// ColorMapTable is a color lookup table in a storage buffer, bound at
// group 2 for programs that shade by value.
type ColorMapTable struct {
	programs *Programs
	buf      *Buffer
	group    hal.BindGroup
}

// NewColorMapTable allocates a table holding entries, which must have
// ColorMapEntries words.
func NewColorMapTable(programs *Programs, buffers *Buffers, label string, entries []uint32) (*ColorMapTable, error) {
	if len(entries) != ColorMapEntries {
		return nil, fmt.Errorf("%s: color map has %d entries, want %d", label, len(entries), ColorMapEntries)
	}
	buf, err := buffers.Create(label, Uint32, ColorMapEntries, packWords(entries), HintDynamic)
	if err != nil {
		return nil, err
	}
	group, err := programs.CreateColorMapGroup(label, buf)
	if err != nil {
		buf.Destroy()
		return nil, err
	}
	return &ColorMapTable{programs: programs, buf: buf, group: group}, nil
}

// Set replaces the table contents.
func (t *ColorMapTable) Set(entries []uint32) error {
	if len(entries) != ColorMapEntries {
		return fmt.Errorf("gpu: color map has %d entries, want %d", len(entries), ColorMapEntries)
	}
	return t.buf.Write(0, packWords(entries))
}

// Group returns the group 2 bind group.
func (t *ColorMapTable) Group() hal.BindGroup { return t.group }

// Buffer returns the lookup buffer.
func (t *ColorMapTable) Buffer() *Buffer { return t.buf }

// Destroy releases the bind group and the buffer. Safe to call twice.
func (t *ColorMapTable) Destroy() {
	if t.group != nil {
		t.programs.DestroyGroup(t.group)
		t.group = nil
	}
	t.buf.Destroy()
}

// CreateColorMapGroup binds a lookup table buffer at group 2.
func (p *Programs) CreateColorMapGroup(label string, buf *Buffer) (hal.BindGroup, error) {
	if p.destroyed {
		return nil, ErrProgramsDestroyed
	}
	if buf.Destroyed() {
		return nil, ErrBufferDestroyed
	}
	group, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label,
		Layout: p.colorMapLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: buf.Handle().NativeHandle(), Offset: 0, Size: buf.AllocatedSize(),
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s color map group: %w", label, err)
	}
	return group, nil
}

func packWords(words []uint32) []byte {
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[4*i:], w)
	}
	return out
}
