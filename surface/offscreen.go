// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gplot/internal/gpu"
)

// copyPitchAlignment is the row alignment required for texture-to-buffer
// copies.
const copyPitchAlignment = 256

// Offscreen is a Target backed by a GPU texture with no window. Frames are
// never shown; ReadPixels copies the last presented frame back to memory.
type Offscreen struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat

	title   string
	x, y    int
	width   int
	height  int
	visible bool

	texture  hal.Texture
	view     hal.TextureView
	acquired bool
	rendered bool
	closed   bool
}

// NewOffscreen creates an offscreen target on the device in opts.
func NewOffscreen(opts Options) (*Offscreen, error) {
	if opts.Device == nil || opts.Queue == nil {
		return nil, ErrNoDevice
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, opts.Width, opts.Height)
	}
	format := opts.Format
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatBGRA8Unorm
	}

	o := &Offscreen{
		device: opts.Device,
		queue:  opts.Queue,
		format: format,
		title:  opts.Title,
		width:  opts.Width,
		height: opts.Height,
	}
	if err := o.createTexture(); err != nil {
		return nil, err
	}
	slogger().Debug("surface: offscreen target created", "width", o.width, "height", o.height, "format", format)
	return o, nil
}

func (o *Offscreen) createTexture() error {
	tex, err := o.device.CreateTexture(&hal.TextureDescriptor{
		Label: "offscreen_color",
		Size: hal.Extent3D{
			Width:              uint32(o.width),  //nolint:gosec // validated positive
			Height:             uint32(o.height), //nolint:gosec // validated positive
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        o.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("surface: create offscreen texture: %w", err)
	}
	view, err := o.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "offscreen_color_view"})
	if err != nil {
		o.device.DestroyTexture(tex)
		return fmt.Errorf("surface: create offscreen view: %w", err)
	}
	o.texture = tex
	o.view = view
	o.rendered = false
	return nil
}

func (o *Offscreen) destroyTexture() {
	if o.view != nil {
		o.device.DestroyTextureView(o.view)
		o.view = nil
	}
	if o.texture != nil {
		o.device.DestroyTexture(o.texture)
		o.texture = nil
	}
}

// MakeCurrent implements Target.
func (o *Offscreen) MakeCurrent() error {
	if o.closed {
		return ErrClosed
	}
	return nil
}

// AcquireFrame implements Target.
func (o *Offscreen) AcquireFrame() (Frame, error) {
	if o.closed {
		return Frame{}, ErrClosed
	}
	o.acquired = true
	return Frame{
		Texture: o.texture,
		View:    o.view,
		Format:  o.format,
		Width:   o.width,
		Height:  o.height,
	}, nil
}

// SwapBuffers implements Target. The acquired frame becomes the one
// ReadPixels returns.
func (o *Offscreen) SwapBuffers() error {
	if o.closed {
		return ErrClosed
	}
	if o.acquired {
		o.rendered = true
		o.acquired = false
	}
	return nil
}

// Width implements Target.
func (o *Offscreen) Width() int { return o.width }

// Height implements Target.
func (o *Offscreen) Height() int { return o.height }

// Display implements Target. Offscreen targets have no display.
func (o *Offscreen) Display() uintptr { return 0 }

// Context implements Target. Offscreen targets have no native context.
func (o *Offscreen) Context() uintptr { return 0 }

// Show implements Target.
func (o *Offscreen) Show() { o.visible = true }

// Hide implements Target.
func (o *Offscreen) Hide() { o.visible = false }

// Visible reports the last Show/Hide state.
func (o *Offscreen) Visible() bool { return o.visible }

// Format returns the color format of acquired frames.
func (o *Offscreen) Format() gputypes.TextureFormat { return o.format }

// SetTitle implements Titled.
func (o *Offscreen) SetTitle(title string) { o.title = title }

// Title returns the last title set.
func (o *Offscreen) Title() string { return o.title }

// SetPos implements Titled.
func (o *Offscreen) SetPos(x, y int) { o.x, o.y = x, y }

// Pos returns the last position set.
func (o *Offscreen) Pos() (x, y int) { return o.x, o.y }

// SetSize implements Titled. The backing texture is recreated and the
// previous frame is discarded.
func (o *Offscreen) SetSize(width, height int) error {
	if o.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width == o.width && height == o.height {
		return nil
	}
	o.destroyTexture()
	o.width, o.height = width, height
	return o.createTexture()
}

// Close implements Target.
func (o *Offscreen) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true
	o.destroyTexture()
	slogger().Debug("surface: offscreen target closed")
	return nil
}

// ReadPixels implements Reader.
//
// The frame texture is copied into a staging buffer with 256-byte aligned
// rows, the copy is submitted and waited for, and the mapped rows are
// converted to tightly packed RGBA.
func (o *Offscreen) ReadPixels() (*image.RGBA, error) {
	if o.closed {
		return nil, ErrClosed
	}
	if !o.rendered {
		return nil, ErrNoFrame
	}

	w, h := uint32(o.width), uint32(o.height) //nolint:gosec // validated positive
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := o.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "offscreen_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("surface: create staging buffer: %w", err)
	}
	defer o.device.DestroyBuffer(staging)

	encoder, err := o.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "offscreen_readback"})
	if err != nil {
		return nil, fmt.Errorf("surface: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("offscreen_readback"); err != nil {
		return nil, fmt.Errorf("surface: begin encoding: %w", err)
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: o.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(o.texture, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: o.texture, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: o.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	if err := gpu.Finish(o.device, o.queue, encoder); err != nil {
		return nil, fmt.Errorf("surface: readback: %w", err)
	}

	mapping, err := o.device.MapBuffer(staging, 0, stagingSize)
	if err != nil {
		return nil, fmt.Errorf("surface: map staging buffer: %w", err)
	}
	defer func() { _ = o.device.UnmapBuffer(staging) }()
	src := unsafe.Slice((*byte)(mapping.Ptr), stagingSize)

	img := image.NewRGBA(image.Rect(0, 0, o.width, o.height))
	swap := isBGRA(o.format)
	for row := 0; row < o.height; row++ {
		srcRow := src[row*int(alignedBytesPerRow) : row*int(alignedBytesPerRow)+int(bytesPerRow)]
		dstRow := img.Pix[row*img.Stride : row*img.Stride+int(bytesPerRow)]
		copy(dstRow, srcRow)
		if swap {
			for i := 0; i < len(dstRow); i += 4 {
				dstRow[i], dstRow[i+2] = dstRow[i+2], dstRow[i]
			}
		}
	}
	return img, nil
}

func isBGRA(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatBGRA8Unorm || f == gputypes.TextureFormatBGRA8UnormSrgb
}

var (
	_ Target = (*Offscreen)(nil)
	_ Reader = (*Offscreen)(nil)
	_ Titled = (*Offscreen)(nil)
)
