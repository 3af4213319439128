// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DepthFormat is the format of every window depth buffer. All pipelines
// declare it, since a pass with a depth attachment rejects pipelines
// without a matching depth state.
const DepthFormat = gputypes.TextureFormatDepth32Float

// DepthTarget is the depth buffer of one window, recreated whenever the
// frame size changes.
type DepthTarget struct {
	device hal.Device
	label  string

	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
}

// NewDepthTarget returns an empty depth target; Ensure allocates it.
func NewDepthTarget(device hal.Device, label string) *DepthTarget {
	return &DepthTarget{device: device, label: label}
}

// Ensure returns a view of a width x height depth texture, recreating the
// texture if the size changed.
func (d *DepthTarget) Ensure(width, height int) (hal.TextureView, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%s: empty depth target %dx%d", d.label, width, height)
	}
	w, h := uint32(width), uint32(height) //nolint:gosec // checked positive
	if d.tex != nil && d.width == w && d.height == h {
		return d.view, nil
	}
	d.Destroy()

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         d.label + "_depth",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s depth texture: %w", d.label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: d.label + "_depth_view"})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create %s depth view: %w", d.label, err)
	}
	d.tex, d.view = tex, view
	d.width, d.height = w, h
	slogger().Debug("gpu: depth target created", "label", d.label, "width", w, "height", h)
	return view, nil
}

// Size returns the allocated size, zero before the first Ensure.
func (d *DepthTarget) Size() (width, height int) { return int(d.width), int(d.height) }

// Destroy releases the texture. The target can be ensured again.
func (d *DepthTarget) Destroy() {
	if d.view != nil {
		d.device.DestroyTextureView(d.view)
		d.view = nil
	}
	if d.tex != nil {
		d.device.DestroyTexture(d.tex)
		d.tex = nil
	}
	d.width, d.height = 0, 0
}

// DepthAttachment returns the pass attachment clearing view to the far
// plane. DepthFormat has no stencil aspect, so the stencil ops stay unset.
func DepthAttachment(view hal.TextureView) *hal.RenderPassDepthStencilAttachment {
	return &hal.RenderPassDepthStencilAttachment{
		View:            view,
		DepthLoadOp:     gputypes.LoadOpClear,
		DepthStoreOp:    gputypes.StoreOpDiscard,
		DepthClearValue: 1.0,
	}
}
