// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTarget is a Target with no GPU resources.
type stubTarget struct {
	w, h   int
	closed bool
}

func (s *stubTarget) MakeCurrent() error           { return nil }
func (s *stubTarget) AcquireFrame() (Frame, error) { return Frame{Width: s.w, Height: s.h}, nil }
func (s *stubTarget) SwapBuffers() error           { return nil }
func (s *stubTarget) Width() int                   { return s.w }
func (s *stubTarget) Height() int                  { return s.h }
func (s *stubTarget) Display() uintptr             { return 0 }
func (s *stubTarget) Context() uintptr             { return 0 }
func (s *stubTarget) Show()                        {}
func (s *stubTarget) Hide()                        {}
func (s *stubTarget) Close() error                 { s.closed = true; return nil }

func stubKind(name string, priority int) Kind {
	return Kind{Name: name, Priority: priority, New: func(opts Options) (Target, error) {
		return &stubTarget{w: opts.Width, h: opts.Height}, nil
	}}
}

func TestRegistryRegisterRejects(t *testing.T) {
	var r Registry
	assert.Error(t, r.Register(Kind{New: stubKind("x", 0).New}))
	assert.Error(t, r.Register(Kind{Name: "nofactory"}))
	assert.Empty(t, r.Kinds(false))
}

func TestRegistryLookupAndReplace(t *testing.T) {
	var r Registry
	require.NoError(t, r.Register(stubKind("a", 10)))
	require.NoError(t, r.Register(stubKind("a", 50)))

	k, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, 50, k.Priority)
	assert.True(t, k.available(), "nil Available means always")

	r.Unregister("a")
	r.Unregister("a")
	_, ok = r.Lookup("a")
	assert.False(t, ok)
}

func TestRegistryKindsOrder(t *testing.T) {
	var r Registry
	for _, k := range []Kind{stubKind("low", 10), stubKind("high", 100), stubKind("mid", 50), stubKind("alpha", 50)} {
		require.NoError(t, r.Register(k))
	}
	off := stubKind("off", 200)
	off.Available = func() bool { return false }
	require.NoError(t, r.Register(off))

	assert.Equal(t, []string{"off", "high", "alpha", "mid", "low"}, r.Kinds(false))
	assert.Equal(t, []string{"high", "alpha", "mid", "low"}, r.Kinds(true))
}

func TestRegistryNewTarget(t *testing.T) {
	var r Registry
	_, err := r.NewTarget(Options{Width: 1, Height: 1})
	assert.ErrorIs(t, err, ErrNoTargetKind)

	require.NoError(t, r.Register(stubKind("stub", 50)))
	tgt, err := r.NewTarget(Options{Width: 100, Height: 80})
	require.NoError(t, err)
	defer tgt.Close()
	assert.Equal(t, 100, tgt.Width())
	assert.Equal(t, 80, tgt.Height())
}

func TestRegistryNewTargetByNameErrors(t *testing.T) {
	var r Registry
	off := stubKind("off", 50)
	off.Available = func() bool { return false }
	require.NoError(t, r.Register(off))

	tests := []struct {
		name string
		want error
	}{
		{"missing", ErrUnknownKind},
		{"off", ErrKindUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.NewTargetByName(tt.name, Options{Width: 1, Height: 1})
			var ke *KindError
			require.ErrorAs(t, err, &ke)
			assert.Equal(t, tt.name, ke.Name)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, `surface: target kind "missing": not registered`,
		(&KindError{Name: "missing", Err: ErrUnknownKind}).Error())
}

func TestRegistryFallsBackOnFactoryError(t *testing.T) {
	var r Registry
	boom := errors.New("creation failed")
	require.NoError(t, r.Register(Kind{Name: "failing", Priority: 100, New: func(Options) (Target, error) {
		return nil, boom
	}}))
	require.NoError(t, r.Register(stubKind("working", 10)))

	tgt, err := r.NewTarget(Options{Width: 10, Height: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, tgt.Width())

	r.Unregister("working")
	_, err = r.NewTarget(Options{Width: 10, Height: 10})
	assert.ErrorIs(t, err, boom)
	var ke *KindError
	require.ErrorAs(t, err, &ke)
	assert.Equal(t, "failing", ke.Name)
}

func TestDefaultRegistryHasOffscreen(t *testing.T) {
	assert.Contains(t, Kinds(true), "offscreen")
	k, ok := Lookup("offscreen")
	require.True(t, ok)
	assert.Equal(t, 10, k.Priority)

	_, err := NewTargetByName("offscreen", Options{Width: 10, Height: 10})
	assert.ErrorIs(t, err, ErrNoDevice, "the built-in kind needs a device")
}
