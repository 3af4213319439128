// Package gplot draws charts with the GPU.
//
// # Overview
//
// gplot renders line plots, histograms, images and 3D surfaces through WebGPU
// (github.com/gogpu/wgpu). Chart data lives in GPU buffers owned by the
// primitive; drawing a chart only updates a few uniforms, so a plot of a
// million points costs one draw call.
//
// # Quick Start
//
//	ctx, err := gplot.OpenDefaultContext()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Destroy()
//
//	plot, _ := gplot.NewPlot(ctx, len(xs), gplot.Float32)
//	_ = gplot.Upload(plot, interleave(xs, ys))
//	plot.SetAxesLimits(10, 0, 1, -1)
//	defer plot.Destroy()
//
//	win, _ := gplot.OpenWindow(ctx, 800, 600, gplot.WithTitle("signal"))
//	defer win.Close()
//	_ = win.DrawSingle(plot)
//	_ = win.SwapBuffers()
//	_ = win.SaveFrameBuffer("signal.png")
//
// # Architecture
//
// The package is organized into:
//   - Context: device, shared shader programs, chart decoration geometry
//   - Primitives: Plot, Histogram, Image and Surface, each owning its data buffer
//   - Window: a grid of cells presented on a surface.Target, with a depth
//     buffer and a color map
//   - LabelOverlay: tick labels and titles shaped with go-text and drawn in Go Regular
//   - internal/gpu: buffers, programs, uniform arena, per-window bindings
//   - surface: the target contract and an offscreen implementation
//
// A primitive may be drawn into any number of windows. The first time it
// renders into a window it creates the pipeline and bindings that window
// needs and keeps them until the window closes or the primitive is
// destroyed.
//
// # Coordinate System
//
// Cell and viewport coordinates are target pixels with the origin at the
// top-left and y increasing down. Data coordinates follow the axis limits
// with y increasing up.
//
// # Concurrency
//
// A Context serializes frame recording and data uploads, so primitives may
// be updated from one goroutine while a window renders on another. Cells
// of one window render sequentially.
package gplot
