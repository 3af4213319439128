// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"image"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPass(t *testing.T) (*Pass, *recordingEncoder) {
	t.Helper()
	programs, _, _ := newTestPrograms(t)
	arena := NewUniformArena(programs, "pass")
	t.Cleanup(arena.Destroy)
	enc := &recordingEncoder{}
	return NewPass(enc, arena, 1, gputypes.TextureFormatBGRA8Unorm, 640, 480), enc
}

func TestPassScissorClamped(t *testing.T) {
	p, enc := newTestPass(t)

	p.EnableScissor(image.Rect(-10, 20, 700, 100))
	require.Len(t, enc.calls, 1)
	assert.Equal(t, []any{uint32(0), uint32(20), uint32(640), uint32(80)}, enc.calls[0].args)
	assert.True(t, p.ScissorEnabled())

	p.DisableScissor()
	assert.Equal(t, []any{uint32(0), uint32(0), uint32(640), uint32(480)}, enc.calls[1].args)
	assert.False(t, p.ScissorEnabled())
}

func TestPassViewport(t *testing.T) {
	p, enc := newTestPass(t)

	p.SetViewport(image.Rect(320, 0, 640, 240))
	require.Len(t, enc.calls, 1)
	assert.Equal(t, "SetViewport", enc.calls[0].name)
	assert.Equal(t, []any{float32(320), float32(0), float32(320), float32(240), float32(0), float32(1)}, enc.calls[0].args)
}

func TestPassCheck(t *testing.T) {
	tests := []struct {
		name  string
		setup func(p *Pass)
		want  string
	}{
		{
			name:  "clean",
			setup: func(*Pass) {},
		},
		{
			name:  "scissor",
			setup: func(p *Pass) { p.EnableScissor(image.Rect(0, 0, 10, 10)) },
			want:  "gpu: inconsistent render state at render: scissor still enabled",
		},
		{
			name:  "program",
			setup: func(p *Pass) { p.UseProgram(ProgramBar) },
			want:  "gpu: inconsistent render state at render: program bar still selected",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPass(t)
			tt.setup(p)
			if tt.want == "" {
				assert.NotPanics(t, func() { p.Check("render") })
				return
			}
			assert.PanicsWithError(t, tt.want, func() { p.Check("render") })
		})
	}
}

func TestPassPanicsAreStateErrors(t *testing.T) {
	p, _ := newTestPass(t)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(*StateError)
		require.True(t, ok, "panic value %T", r)
		assert.Equal(t, "Draw", err.Op)
	}()
	p.Draw(3, 1)
}

func TestPassSetUniformsWithoutProgram(t *testing.T) {
	p, _ := newTestPass(t)
	assert.Panics(t, func() { _ = p.SetUniforms(&Uniforms{}) })
}

func TestPassUniformsRebindWhileBound(t *testing.T) {
	cache, _, _, arena := newTestCache(t, Float32, lineLayout)
	enc := &recordingEncoder{}
	p := NewPass(enc, arena, 9, gputypes.TextureFormatBGRA8Unorm, 100, 100)

	p.UseProgram(ProgramLine)
	require.NoError(t, p.SetUniforms(&Uniforms{}))
	require.NoError(t, cache.Bind(p))
	require.NoError(t, p.SetUniforms(&Uniforms{}))
	p.Draw(4, 1)

	groups := 0
	var offsets []uint32
	for _, c := range enc.calls {
		if c.name == "SetBindGroup" {
			groups++
			offsets = append(offsets, c.args[2].([]uint32)[0])
		}
	}
	assert.Equal(t, 2, groups)
	assert.Equal(t, []uint32{0, UniformStride}, offsets)
	assert.Equal(t, 1, p.Draws())

	cache.Unbind(p)
	p.ReleaseProgram()
	p.Check("test")
}

func TestPassDrawSkipsEmpty(t *testing.T) {
	cache, _, _, arena := newTestCache(t, Float32, lineLayout)
	enc := &recordingEncoder{}
	p := NewPass(enc, arena, 1, gputypes.TextureFormatBGRA8Unorm, 100, 100)

	p.UseProgram(ProgramLine)
	require.NoError(t, p.SetUniforms(&Uniforms{}))
	require.NoError(t, cache.Bind(p))
	p.Draw(0, 1)
	assert.Equal(t, 0, enc.count("Draw"))
	cache.Unbind(p)
	p.ReleaseProgram()
}

func TestPassDrawRange(t *testing.T) {
	cache, _, _, arena := newTestCache(t, Float32, lineLayout)
	enc := &recordingEncoder{}
	p := NewPass(enc, arena, 1, gputypes.TextureFormatBGRA8Unorm, 100, 100)

	p.UseProgram(ProgramLine)
	require.NoError(t, p.SetUniforms(&Uniforms{}))
	require.NoError(t, cache.Bind(p))
	p.DrawRange(8, 10, 1)
	cache.Unbind(p)
	p.ReleaseProgram()

	require.Equal(t, 1, enc.count("Draw"))
	last := enc.calls[len(enc.calls)-1]
	assert.Equal(t, []any{uint32(10), uint32(1), uint32(8), uint32(0)}, last.args)
}
