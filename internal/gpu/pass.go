// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// WindowID identifies the window a frame is recorded for.
type WindowID uint64

// Encoder is the subset of hal.RenderPassEncoder used to record chart draws.
type Encoder interface {
	SetPipeline(pipeline hal.RenderPipeline)
	SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32)
	SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64)
	SetViewport(x, y, width, height, minDepth, maxDepth float32)
	SetScissorRect(x, y, width, height uint32)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

// Compile-time check that the HAL render pass satisfies Encoder.
var _ Encoder = hal.RenderPassEncoder(nil)

// StateError reports render state left inconsistent at a checkpoint.
// It is raised with panic: drawing on with corrupted state is not an option.
type StateError struct {
	// Op is the checkpoint that detected the problem.
	Op string
	// Reason describes the leaked or missing state.
	Reason string
}

// Error implements the error interface.
func (e *StateError) Error() string {
	return fmt.Sprintf("gpu: inconsistent render state at %s: %s", e.Op, e.Reason)
}

func fail(op, format string, args ...any) {
	panic(&StateError{Op: op, Reason: fmt.Sprintf(format, args...)})
}

// Pass records draws for one window into a render pass and tracks the
// state that every primitive must restore before returning: scissor,
// active program and active binding.
type Pass struct {
	enc    Encoder
	arena  *UniformArena
	window WindowID
	format gputypes.TextureFormat
	width  int
	height int

	scissor       bool
	programActive bool
	program       ProgramID
	binding       *Binding

	uniformGroup  hal.BindGroup
	uniformOffset uint32
	uniformSet    bool

	colorMap hal.BindGroup

	draws int
}

// NewPass wraps enc for a target of the given format and pixel size.
func NewPass(enc Encoder, arena *UniformArena, window WindowID, format gputypes.TextureFormat, width, height int) *Pass {
	return &Pass{
		enc:    enc,
		arena:  arena,
		window: window,
		format: format,
		width:  width,
		height: height,
	}
}

// SetColorMap sets the lookup table bound at group 2 for programs that
// shade through a color map.
func (p *Pass) SetColorMap(group hal.BindGroup) { p.colorMap = group }

// WindowID returns the window the pass renders into.
func (p *Pass) WindowID() WindowID { return p.window }

// Format returns the color format of the render target.
func (p *Pass) Format() gputypes.TextureFormat { return p.format }

// Bounds returns the render target rectangle.
func (p *Pass) Bounds() image.Rectangle { return image.Rect(0, 0, p.width, p.height) }

// Draws returns the number of draw calls recorded so far.
func (p *Pass) Draws() int { return p.draws }

// SetViewport maps clip space onto r, clamped to the target.
func (p *Pass) SetViewport(r image.Rectangle) {
	r = r.Intersect(p.Bounds())
	p.enc.SetViewport(float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), 0, 1)
}

// EnableScissor restricts rasterization to r, clamped to the target.
func (p *Pass) EnableScissor(r image.Rectangle) {
	r = r.Intersect(p.Bounds())
	p.setScissor(r)
	p.scissor = true
}

// DisableScissor restores rasterization over the whole target.
func (p *Pass) DisableScissor() {
	p.setScissor(p.Bounds())
	p.scissor = false
}

func (p *Pass) setScissor(r image.Rectangle) {
	p.enc.SetScissorRect(uint32(r.Min.X), uint32(r.Min.Y), uint32(r.Dx()), uint32(r.Dy())) //nolint:gosec // clamped to target
}

// ScissorEnabled reports whether a scissor rectangle is active.
func (p *Pass) ScissorEnabled() bool { return p.scissor }

// UseProgram selects the program for following binds and draws.
func (p *Pass) UseProgram(id ProgramID) {
	if p.binding != nil {
		fail("UseProgram", "program %s selected while a %s binding is active", id, p.binding.program)
	}
	p.program = id
	p.programActive = true
	p.uniformSet = false
}

// ReleaseProgram deselects the active program.
func (p *Pass) ReleaseProgram() {
	if p.binding != nil {
		fail("ReleaseProgram", "binding for window %d still active", p.binding.window)
	}
	p.programActive = false
	p.uniformSet = false
}

// Program returns the active program and whether one is selected.
func (p *Pass) Program() (ProgramID, bool) { return p.program, p.programActive }

// SetUniforms stages u for the following draws. The slot is bound to
// group 0 as soon as a pipeline is active.
func (p *Pass) SetUniforms(u *Uniforms) error {
	if !p.programActive {
		fail("SetUniforms", "no program selected")
	}
	group, offset, err := p.arena.Push(u)
	if err != nil {
		return err
	}
	p.uniformGroup = group
	p.uniformOffset = offset
	p.uniformSet = true
	if p.binding != nil {
		p.enc.SetBindGroup(0, p.uniformGroup, []uint32{p.uniformOffset})
	}
	return nil
}

// activate makes b the current binding.
func (p *Pass) activate(b *Binding) {
	if !p.programActive || p.program != b.program {
		fail("Bind", "binding for program %s activated without that program", b.program)
	}
	p.enc.SetPipeline(b.pipeline)
	if b.vertex != nil {
		p.enc.SetVertexBuffer(0, b.vertex, 0)
	}
	if b.storage != nil {
		p.enc.SetBindGroup(1, b.storage, nil)
	}
	if b.program.usesColorMap() {
		if p.colorMap == nil {
			fail("Bind", "program %s needs a color map and the pass has none", b.program)
		}
		p.enc.SetBindGroup(2, p.colorMap, nil)
	}
	if p.uniformSet {
		p.enc.SetBindGroup(0, p.uniformGroup, []uint32{p.uniformOffset})
	}
	p.binding = b
}

// deactivate clears the current binding. Safe with nothing bound.
func (p *Pass) deactivate() {
	p.binding = nil
}

// Bound reports whether a binding is active.
func (p *Pass) Bound() bool { return p.binding != nil }

// Draw records a draw over the active binding.
func (p *Pass) Draw(vertices, instances int) {
	p.DrawRange(0, vertices, instances)
}

// DrawRange records a draw of vertices starting at vertex first.
func (p *Pass) DrawRange(first, vertices, instances int) {
	if p.binding == nil {
		fail("Draw", "no binding active")
	}
	if !p.uniformSet {
		fail("Draw", "no uniforms staged for program %s", p.program)
	}
	if vertices <= 0 || instances <= 0 || first < 0 {
		return
	}
	p.enc.Draw(uint32(vertices), uint32(instances), uint32(first), 0) //nolint:gosec // positive
	p.draws++
}

// Check panics with a *StateError if any tracked state is still active.
// Primitives call it on entry to and exit from their render method.
func (p *Pass) Check(op string) {
	switch {
	case p.binding != nil:
		fail(op, "binding for window %d still active", p.binding.window)
	case p.programActive:
		fail(op, "program %s still selected", p.program)
	case p.scissor:
		fail(op, "scissor still enabled")
	}
}
