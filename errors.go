package gplot

import (
	"errors"

	"github.com/gogpu/gplot/internal/gpu"
)

// Errors reported by gplot.
var (
	// ErrUnsupportedType is matched by every *TypeError.
	ErrUnsupportedType = gpu.ErrUnsupportedType

	// ErrInvalidCount is returned when a primitive is created with no elements.
	ErrInvalidCount = gpu.ErrInvalidCount

	// ErrDestroyed is returned when using a primitive or context after Destroy.
	ErrDestroyed = errors.New("gplot: object has been destroyed")

	// ErrWindowClosed is returned when drawing with a closed window.
	ErrWindowClosed = errors.New("gplot: window is closed")

	// ErrCellOutOfRange is returned when a grid cell index is outside the grid.
	ErrCellOutOfRange = errors.New("gplot: grid cell out of range")

	// ErrForeignContext is returned when drawing a primitive created on
	// another Context than the window's.
	ErrForeignContext = errors.New("gplot: primitive belongs to a different context")

	// ErrInvalidGrid is returned for grids with fewer than one row or column.
	ErrInvalidGrid = errors.New("gplot: grid must have at least one row and column")

	// ErrTypeMismatch is returned when uploaded data has a different
	// element type than the primitive.
	ErrTypeMismatch = errors.New("gplot: data type does not match primitive")

	// ErrDataLength is returned when uploaded data does not match the
	// primitive's element count.
	ErrDataLength = errors.New("gplot: data length does not match element count")

	// ErrNoReadback is returned by SaveFrameBuffer when the window's target
	// cannot read pixels back.
	ErrNoReadback = errors.New("gplot: render target does not support pixel readback")

	// ErrUnknownImageFormat is returned by SaveFrameBuffer for file
	// extensions without an encoder.
	ErrUnknownImageFormat = errors.New("gplot: unknown image file extension")

	// ErrNoAdapter is returned by OpenDefaultContext when no GPU is usable.
	ErrNoAdapter = errors.New("gplot: no GPU adapter available")
)

// TypeError reports a data type that a primitive cannot use.
// errors.Is(err, ErrUnsupportedType) holds for every TypeError.
type TypeError = gpu.TypeError

// StateError is the panic value raised when render state is left
// inconsistent at a checkpoint. It indicates a bug, never bad input.
type StateError = gpu.StateError
