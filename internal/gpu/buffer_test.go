// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffersCreateSize(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	m, err := NewBuffers(device, queue)
	require.NoError(t, err)

	for _, typ := range []ScalarType{Float32, Int32, Uint32, Uint8} {
		for _, n := range []int{1, 100, 100000} {
			b, err := m.Create("points", typ, 2*n, nil, HintDynamic)
			require.NoError(t, err, "%s n=%d", typ, n)
			assert.Equal(t, uint64(2*n*typ.Size()), b.Size(), "%s n=%d", typ, n)
			assert.Zero(t, b.AllocatedSize()%copyAlignment)
			assert.GreaterOrEqual(t, b.AllocatedSize(), b.Size())
			assert.Equal(t, 2*n, b.Count())
			assert.Equal(t, typ, b.Type())
			b.Destroy()
		}
	}
	assert.Zero(t, m.Stats().Live())
	assert.Zero(t, m.Stats().LiveBytes)
}

func TestBuffersCreateUnsupported(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	m, err := NewBuffers(device, queue)
	require.NoError(t, err)

	for _, typ := range []ScalarType{Int8, Int16, Uint16, Float64, ScalarType(0), ScalarType(99)} {
		_, err := m.Create("points", typ, 10, nil, HintDynamic)
		require.Error(t, err, "%s", typ)
		assert.ErrorIs(t, err, ErrUnsupportedType)

		var typeErr *TypeError
		require.True(t, errors.As(err, &typeErr))
		assert.Equal(t, typ, typeErr.Type)
	}
	assert.Zero(t, m.Stats().Created)
}

func TestBuffersCreateInvalidCount(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	m, err := NewBuffers(device, queue)
	require.NoError(t, err)

	for _, n := range []int{0, -1} {
		_, err := m.Create("points", Float32, n, nil, HintDynamic)
		assert.ErrorIs(t, err, ErrInvalidCount)
	}
}

func TestNewBuffersNilDevice(t *testing.T) {
	_, err := NewBuffers(nil, nil)
	assert.ErrorIs(t, err, ErrNilDevice)
}

func TestBufferDestroyOnce(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	counting := newCountingDevice(device)
	m, err := NewBuffers(counting, queue)
	require.NoError(t, err)

	b, err := m.Create("points", Float32, 8, nil, HintDynamic)
	require.NoError(t, err)
	handle := b.Handle()
	require.NotNil(t, handle)

	b.Destroy()
	b.Destroy()
	b.Destroy()

	assert.Equal(t, 1, counting.buffersCreated)
	assert.Equal(t, 1, counting.buffersDestroyed[handle])
	assert.True(t, b.Destroyed())
	assert.Nil(t, b.Handle())
	assert.ErrorIs(t, b.Write(0, []byte{1, 2, 3, 4}), ErrBufferDestroyed)
}

func TestBufferWrite(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	m, err := NewBuffers(device, queue)
	require.NoError(t, err)

	b, err := m.Create("bytes", Uint8, 6, []byte{1, 2, 3, 4, 5, 6}, HintDynamic)
	require.NoError(t, err)
	defer b.Destroy()

	assert.Equal(t, uint64(6), b.Size())
	assert.Equal(t, uint64(8), b.AllocatedSize())
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 0, 0}, readBuffer(t, device, b.Handle(), 8))

	require.NoError(t, b.Write(4, []byte{9, 9}))
	assert.Equal(t, []byte{1, 2, 3, 4, 9, 9, 0, 0}, readBuffer(t, device, b.Handle(), 8))

	tests := []struct {
		name   string
		offset uint64
		data   []byte
		want   error
	}{
		{"unaligned", 2, []byte{1}, ErrUnalignedWrite},
		{"past end", 4, []byte{1, 2, 3}, ErrWriteOutOfRange},
		{"empty", 0, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.Write(tt.offset, tt.data)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuffersCreateOversizedData(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	m, err := NewBuffers(device, queue)
	require.NoError(t, err)

	_, err = m.Create("points", Float32, 1, make([]byte, 8), HintStatic)
	assert.ErrorIs(t, err, ErrWriteOutOfRange)
}

func TestScalarTypeString(t *testing.T) {
	tests := []struct {
		typ  ScalarType
		want string
	}{
		{Float32, "float32"},
		{Int32, "int32"},
		{Uint32, "uint32"},
		{Uint8, "uint8"},
		{Float64, "float64"},
		{ScalarType(42), "ScalarType(42)"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestScalarTypeVertexFormat(t *testing.T) {
	for _, typ := range []ScalarType{Float32, Int32, Uint32} {
		for _, n := range []int{1, 2} {
			if _, ok := typ.VertexFormat(n); !ok {
				t.Errorf("%s x%d: expected a vertex format", typ, n)
			}
		}
	}
	if _, ok := Uint8.VertexFormat(2); ok {
		t.Error("uint8 must not map to a vertex format")
	}
	if _, ok := Float32.VertexFormat(3); ok {
		t.Error("3 components are not used")
	}
}
