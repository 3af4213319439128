// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render connects gplot to GPU devices owned by a host application.
//
// A host that already runs a WebGPU device passes a DeviceHandle
// (gpucontext.DeviceProvider) to gplot.NewContextFromProvider; HalDevice
// extracts the HAL device and queue charts are recorded with:
//
//	handle := render.HalDeviceHandle{HalDevice: dev, HalQueue: queue}
//	ctx, err := gplot.NewContextFromProvider(handle)
package render
