// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle provides GPU device access from the host application.
//
// gplot RECEIVES the device from the host, it does NOT create one when a
// handle is given. Charts then share buffers, queues and synchronization
// with the rest of the host's rendering.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, so any provider
// from the gpucontext ecosystem can be passed directly.
type DeviceHandle = gpucontext.DeviceProvider

// halDeviceProvider is implemented by device wrappers that expose their
// HAL device (for example *wgpu.Device).
type halDeviceProvider interface {
	HalDevice() any
}

// halQueueProvider is implemented by queue wrappers that expose their HAL
// queue.
type halQueueProvider interface {
	HalQueue() any
}

// ErrNoHalDevice is returned when a handle does not expose a HAL device
// and queue.
var ErrNoHalDevice = errors.New("render: device handle has no HAL device")

// HalDevice extracts the HAL device and queue from h.
//
// The handle's Device and Queue are accepted either as HAL objects
// directly or as wrappers exposing HalDevice/HalQueue.
func HalDevice(h DeviceHandle) (hal.Device, hal.Queue, error) {
	if h == nil {
		return nil, nil, ErrNoHalDevice
	}
	device := unwrapDevice(h.Device())
	queue := unwrapQueue(h.Queue())
	if device == nil || queue == nil {
		return nil, nil, fmt.Errorf("%w (device %T, queue %T)", ErrNoHalDevice, h.Device(), h.Queue())
	}
	return device, queue, nil
}

func unwrapDevice(d gpucontext.Device) hal.Device {
	switch v := d.(type) {
	case hal.Device:
		return v
	case halDeviceProvider:
		if hd, ok := v.HalDevice().(hal.Device); ok {
			return hd
		}
	}
	return nil
}

func unwrapQueue(q gpucontext.Queue) hal.Queue {
	switch v := q.(type) {
	case hal.Queue:
		return v
	case halQueueProvider:
		if hq, ok := v.HalQueue().(hal.Queue); ok {
			return hq
		}
	}
	return nil
}

// HalDeviceHandle is a DeviceHandle over an already opened HAL device.
type HalDeviceHandle struct {
	HalDevice hal.Device
	HalQueue  hal.Queue
	Format    gputypes.TextureFormat
	Info      gpucontext.AdapterInfo
}

// Device returns the HAL device.
func (h HalDeviceHandle) Device() gpucontext.Device { return h.HalDevice }

// Queue returns the HAL queue.
func (h HalDeviceHandle) Queue() gpucontext.Queue { return h.HalQueue }

// Adapter returns nil; the adapter is not retained.
func (h HalDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns the preferred frame format.
func (h HalDeviceHandle) SurfaceFormat() gputypes.TextureFormat { return h.Format }

// AdapterInfo returns the adapter metadata given at construction.
func (h HalDeviceHandle) AdapterInfo() gpucontext.AdapterInfo { return h.Info }

// NullDeviceHandle is a DeviceHandle with no device.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo returns an unknown adapter.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

var (
	_ DeviceHandle = NullDeviceHandle{}
	_ DeviceHandle = HalDeviceHandle{}
)
