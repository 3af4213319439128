package gplot

import (
	"fmt"
	"unsafe"
)

// Uploader is implemented by primitives whose data buffer can be filled
// from a Go slice.
type Uploader interface {
	// DataType returns the element type fixed at construction.
	DataType() DataType
	// Elements returns the number of scalar elements in the buffer.
	Elements() int

	upload(raw []byte) error
}

// Upload replaces the whole data buffer of dst. T must match dst's data
// type and data must hold exactly dst.Elements() values.
//
//	xy := make([]float32, 2*n) // x0, y0, x1, y1, ...
//	err := gplot.Upload(plot, xy)
func Upload[T Scalar](dst Uploader, data []T) error {
	t := dataTypeOf[T]()
	if t != dst.DataType() {
		return fmt.Errorf("%w: %s data for a %s buffer", ErrTypeMismatch, t, dst.DataType())
	}
	if len(data) != dst.Elements() {
		return fmt.Errorf("%w: got %d, want %d", ErrDataLength, len(data), dst.Elements())
	}
	return dst.upload(sliceBytes(data))
}

// setData dispatches an untyped slice to Upload.
func setData(dst Uploader, data any) error {
	switch d := data.(type) {
	case []float32:
		return Upload(dst, d)
	case []int32:
		return Upload(dst, d)
	case []uint32:
		return Upload(dst, d)
	case []uint8:
		return Upload(dst, d)
	default:
		return fmt.Errorf("%w: %T", ErrTypeMismatch, data)
	}
}

// sliceBytes reinterprets data as its in-memory bytes.
func sliceBytes[T Scalar](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*int(unsafe.Sizeof(zero))) //nolint:gosec // scalar slice serialization
}
