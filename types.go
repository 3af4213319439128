package gplot

import "github.com/gogpu/gplot/internal/gpu"

// DataType is the scalar type of a primitive's elements.
// It is fixed at construction and determines the buffer stride.
type DataType = gpu.ScalarType

// Supported data types.
const (
	Float32 = gpu.Float32
	Int32   = gpu.Int32
	Uint32  = gpu.Uint32
	Uint8   = gpu.Uint8
)

// Data types recognized only to be rejected with a *TypeError.
const (
	Int8    = gpu.Int8
	Int16   = gpu.Int16
	Uint16  = gpu.Uint16
	Float64 = gpu.Float64
)

// WindowID identifies a window. Ids are never reused within a process.
type WindowID = gpu.WindowID

// Scalar is the set of Go element types that map to a DataType.
type Scalar interface {
	float32 | int32 | uint32 | uint8
}

// dataTypeOf returns the DataType for T.
func dataTypeOf[T Scalar]() DataType {
	var zero T
	switch any(zero).(type) {
	case int32:
		return Int32
	case uint32:
		return Uint32
	case uint8:
		return Uint8
	default:
		return Float32
	}
}
