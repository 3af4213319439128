// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface defines the window contract charts are composited into.
//
// A Target hands out frames (a texture view plus its format and size) and
// presents them. Windowing and context creation live outside this module;
// an integration implements Target and registers a factory:
//
//	func init() {
//	    _ = surface.Register(surface.Kind{Name: "glfw", Priority: 100, New: newGLFWTarget})
//	}
//
// The built-in Offscreen target renders into a texture with no window and
// implements Reader so frames can be copied back to memory. It is
// registered under the name "offscreen".
//
// Optional capabilities are separate interfaces, checked with a type
// assertion:
//
//   - Reader: pixel readback of the last presented frame
//   - Titled: title, position and size forwarding
package surface
