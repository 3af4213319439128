// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// ScalarType identifies the element type stored in a data buffer.
//
// Only Float32, Int32, Uint32 and Uint8 can feed the shaders. The remaining
// kinds are recognized so that errors can name them, but every buffer
// operation rejects them with a *TypeError.
type ScalarType uint8

const (
	// Float32 is a 32-bit IEEE 754 float.
	Float32 ScalarType = iota + 1
	// Int32 is a signed 32-bit integer.
	Int32
	// Uint32 is an unsigned 32-bit integer.
	Uint32
	// Uint8 is an unsigned byte.
	Uint8
	// Int8 is a signed byte (unsupported).
	Int8
	// Int16 is a signed 16-bit integer (unsupported).
	Int16
	// Uint16 is an unsigned 16-bit integer (unsupported).
	Uint16
	// Float64 is a 64-bit IEEE 754 float (unsupported).
	Float64
)

// String returns the string representation of the ScalarType.
func (t ScalarType) String() string {
	switch t {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Uint8:
		return "uint8"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("ScalarType(%d)", uint8(t))
	}
}

// Supported reports whether buffers of this type can be created.
func (t ScalarType) Supported() bool {
	switch t {
	case Float32, Int32, Uint32, Uint8:
		return true
	default:
		return false
	}
}

// Size returns the size of one element in bytes, or 0 for unknown types.
func (t ScalarType) Size() int {
	switch t {
	case Float32, Int32, Uint32:
		return 4
	case Uint8, Int8:
		return 1
	case Int16, Uint16:
		return 2
	case Float64:
		return 8
	default:
		return 0
	}
}

// Packed reports whether elements of this type are narrower than the
// 4-byte vertex stride alignment, so shaders must unpack them from a
// storage buffer instead of reading vertex attributes.
func (t ScalarType) Packed() bool {
	return t == Uint8
}

// wgslType returns the WGSL scalar the shader declares for vertex input.
func (t ScalarType) wgslType() string {
	switch t {
	case Int32:
		return "i32"
	case Uint32, Uint8:
		return "u32"
	default:
		return "f32"
	}
}

// VertexFormat returns the vertex attribute format for a vector of the
// given component count, or false when no attribute format exists.
func (t ScalarType) VertexFormat(components int) (gputypes.VertexFormat, bool) {
	switch {
	case t == Float32 && components == 1:
		return gputypes.VertexFormatFloat32, true
	case t == Float32 && components == 2:
		return gputypes.VertexFormatFloat32x2, true
	case t == Int32 && components == 1:
		return gputypes.VertexFormatSint32, true
	case t == Int32 && components == 2:
		return gputypes.VertexFormatSint32x2, true
	case t == Uint32 && components == 1:
		return gputypes.VertexFormatUint32, true
	case t == Uint32 && components == 2:
		return gputypes.VertexFormatUint32x2, true
	default:
		var none gputypes.VertexFormat
		return none, false
	}
}

// TypeError reports a scalar type that the requested operation cannot use.
type TypeError struct {
	// Op is the operation that rejected the type, e.g. "Plot".
	Op string
	// Type is the rejected element type.
	Type ScalarType
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: unsupported data type %s", e.Op, e.Type)
}

// Is reports whether target is ErrUnsupportedType.
func (e *TypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}
