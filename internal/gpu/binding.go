// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Binding cache errors.
var (
	// ErrCacheDestroyed is returned when binding through a destroyed cache.
	ErrCacheDestroyed = errors.New("gpu: binding cache has been destroyed")

	// ErrFormatMismatch is returned when a window changes its target format
	// after its binding was created.
	ErrFormatMismatch = errors.New("gpu: render target format changed for window")
)

// VertexLayout is the fixed attribute layout a primitive feeds its program.
type VertexLayout struct {
	// Program selects the shader program.
	Program ProgramID
	// Components is the vector width read per vertex or instance.
	Components int
	// StepMode advances the attribute per vertex or per instance.
	StepMode gputypes.VertexStepMode
	// Topology is the primitive assembly mode.
	Topology gputypes.PrimitiveTopology
	// DepthTest makes the pipeline test and write the window depth buffer.
	DepthTest bool
}

// Binding is the window-scoped state linking a data buffer to a program:
// a render pipeline built for the window's target format plus either a
// vertex buffer slot or a storage bind group.
type Binding struct {
	window   WindowID
	format   gputypes.TextureFormat
	program  ProgramID
	pipeline hal.RenderPipeline
	vertex   hal.Buffer
	storage  hal.BindGroup
}

// Window returns the window the binding was created for.
func (b *Binding) Window() WindowID { return b.window }

// BindingCache maps window ids to bindings for one primitive.
//
// Entries are created on the first Bind for a window and reused for the
// rest of the primitive's life. Forget drops one window's entry when the
// window closes; Destroy drops them all.
type BindingCache struct {
	programs *Programs
	label    string
	source   *Buffer
	layout   VertexLayout

	entries   map[WindowID]*Binding
	created   int
	destroyed bool
}

// NewBindingCache creates an empty cache for source drawn with layout.
func NewBindingCache(programs *Programs, label string, source *Buffer, layout VertexLayout) *BindingCache {
	return &BindingCache{
		programs: programs,
		label:    label,
		source:   source,
		layout:   layout,
		entries:  make(map[WindowID]*Binding),
	}
}

// Bind activates the binding for the pass's window, creating it on a miss.
// The pass must have the cache's program selected.
func (c *BindingCache) Bind(p *Pass) error {
	if c.destroyed {
		return ErrCacheDestroyed
	}
	b, ok := c.entries[p.WindowID()]
	if !ok {
		var err error
		b, err = c.create(p.WindowID(), p.Format())
		if err != nil {
			return err
		}
		c.entries[p.WindowID()] = b
		c.created++
	} else if b.format != p.Format() {
		return fmt.Errorf("%s: %w %d (%s != %s)", c.label, ErrFormatMismatch, p.WindowID(), p.Format(), b.format)
	}
	p.activate(b)
	return nil
}

// Unbind deactivates whatever binding the pass has active. Safe to call
// with nothing bound.
func (c *BindingCache) Unbind(p *Pass) {
	p.deactivate()
}

func (c *BindingCache) create(window WindowID, format gputypes.TextureFormat) (*Binding, error) {
	if c.source.Destroyed() {
		return nil, ErrBufferDestroyed
	}
	label := fmt.Sprintf("%s_w%d", c.label, window)
	pipeline, err := c.programs.CreatePipeline(PipelineDesc{
		Label:      label,
		Program:    c.layout.Program,
		Scalar:     c.source.Type(),
		Components: c.layout.Components,
		StepMode:   c.layout.StepMode,
		Topology:   c.layout.Topology,
		Format:     format,
		DepthTest:  c.layout.DepthTest,
	})
	if err != nil {
		return nil, err
	}

	b := &Binding{
		window:   window,
		format:   format,
		program:  c.layout.Program,
		pipeline: pipeline,
	}
	if c.layout.Program.usesStorage() {
		group, err := c.programs.CreateStorageGroup(label, c.source)
		if err != nil {
			c.programs.DestroyPipeline(pipeline)
			return nil, err
		}
		b.storage = group
	} else {
		b.vertex = c.source.Handle()
	}

	slogger().Debug("gpu: binding created",
		"label", c.label, "window", window, "program", c.layout.Program, "format", format)
	return b, nil
}

// Len returns the number of live entries.
func (c *BindingCache) Len() int { return len(c.entries) }

// Created returns the number of entries ever created.
func (c *BindingCache) Created() int { return c.created }

// Has reports whether an entry exists for window.
func (c *BindingCache) Has(window WindowID) bool {
	_, ok := c.entries[window]
	return ok
}

// Forget releases the entry for window, if any.
func (c *BindingCache) Forget(window WindowID) {
	b, ok := c.entries[window]
	if !ok {
		return
	}
	delete(c.entries, window)
	c.release(b)
	slogger().Debug("gpu: binding released", "label", c.label, "window", window)
}

// Destroy releases every entry. Further binds fail with ErrCacheDestroyed.
func (c *BindingCache) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	for window, b := range c.entries {
		delete(c.entries, window)
		c.release(b)
	}
}

func (c *BindingCache) release(b *Binding) {
	c.programs.DestroyGroup(b.storage)
	c.programs.DestroyPipeline(b.pipeline)
}
