// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Target is the window a chart grid is composited into.
//
// A Target owns its presentation resources. It does not own the GPU device:
// the device and queue are supplied through Options and shared by every
// target of a process.
//
// Targets are NOT thread-safe. The caller serializes access, which the
// chart compositor does with its context lock.
type Target interface {
	// MakeCurrent makes this target the destination of subsequent frames.
	MakeCurrent() error

	// AcquireFrame returns the texture the next frame renders into.
	AcquireFrame() (Frame, error)

	// SwapBuffers presents the last acquired frame.
	SwapBuffers() error

	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Display returns the native display handle, or 0 when there is none.
	Display() uintptr

	// Context returns the native context handle, or 0 when there is none.
	Context() uintptr

	// Show makes the target visible.
	Show()

	// Hide makes the target invisible.
	Hide()

	// Close releases the target. Calling Close more than once is a no-op.
	Close() error
}

// Reader is implemented by targets that can read back presented pixels.
type Reader interface {
	// ReadPixels returns the contents of the last rendered frame.
	ReadPixels() (*image.RGBA, error)
}

// Titled is implemented by targets with window decorations.
type Titled interface {
	SetTitle(title string)
	SetPos(x, y int)
	SetSize(width, height int) error
}

// Frame is one acquired render target.
type Frame struct {
	Texture hal.Texture
	View    hal.TextureView
	Format  gputypes.TextureFormat
	Width   int
	Height  int
}

// Bounds returns the frame rectangle.
func (f Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Options configures target creation.
type Options struct {
	// Width and Height are the initial size in pixels.
	Width  int
	Height int

	// Title is the window title, ignored by undecorated targets.
	Title string

	// Format is the color format. Zero selects BGRA8Unorm.
	Format gputypes.TextureFormat

	// Device and Queue are the shared GPU objects frames are rendered with.
	Device hal.Device
	Queue  hal.Queue
}

// DefaultOptions returns options for a target of the given size.
func DefaultOptions(width, height int) Options {
	return Options{
		Width:  width,
		Height: height,
		Format: gputypes.TextureFormatBGRA8Unorm,
	}
}

// Errors.
var (
	// ErrClosed is returned by operations on a closed target.
	ErrClosed = errors.New("surface: target closed")

	// ErrInvalidSize is returned for non-positive dimensions.
	ErrInvalidSize = errors.New("surface: invalid size")

	// ErrNoDevice is returned when Options carry no device or queue.
	ErrNoDevice = errors.New("surface: no GPU device")

	// ErrNoFrame is returned by ReadPixels before any frame was rendered.
	ErrNoFrame = errors.New("surface: no frame rendered")
)
