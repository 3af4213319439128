// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu holds the GPU resource layer used by gplot chart primitives.
//
// Everything here talks to the WebGPU hardware abstraction layer of
// gogpu/wgpu (hal.Device, hal.Queue, hal.RenderPassEncoder). The package
// is internal: the public chart API in the root package wraps it.
//
// # Components
//
//   - Buffers: allocates and destroys vertex/storage buffers typed by a
//     ScalarType, and tracks live allocations.
//   - Programs: the per-device registry of shader modules, bind group
//     layouts and pipeline layouts shared by every primitive. It is created
//     once per rendering context and destroyed with it.
//   - BindingCache: per-primitive map from window id to a Binding, the
//     window-scoped pipeline that wires a data buffer into the shader.
//   - UniformArena: per-window ring of 256-byte uniform slots addressed
//     with dynamic offsets, flushed once per frame.
//   - Pass: a render pass wrapper that tracks scissor, program and binding
//     state so callers can assert consistency at checkpoints.
//
// # Threading
//
// Nothing in this package is safe for concurrent use. The root package
// serializes frame recording and buffer mutation with its Context lock.
package gpu
