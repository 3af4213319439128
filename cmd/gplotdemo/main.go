// Command gplotdemo renders a 2x3 grid of charts offscreen and saves it.
package main

import (
	"flag"
	"image"
	"image/color"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/gplot"
)

func main() {
	var (
		width   = flag.Int("width", 1024, "image width")
		height  = flag.Int("height", 768, "image height")
		points  = flag.Int("points", 2000, "points in the line plot")
		theme   = flag.String("theme", "", "TOML theme file")
		cmap    = flag.String("colormap", "viridis", "color map for the surface and heat map")
		output  = flag.String("output", "gplot.png", "output file (.png, .jpg, .bmp, .tiff)")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		gplot.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	opts := []gplot.ContextOption{gplot.WithTextRenderer(gplot.NewLabelOverlay())}
	if *theme != "" {
		th, err := gplot.LoadThemeFile(*theme)
		if err != nil {
			log.Fatalf("Failed to load theme: %v", err)
		}
		opts = append(opts, gplot.WithTheme(th))
	}

	colorMap, err := gplot.ParseColorMap(*cmap)
	if err != nil {
		log.Fatalf("Invalid color map: %v", err)
	}

	ctx, err := gplot.OpenDefaultContext(opts...)
	if err != nil {
		log.Fatalf("Failed to open GPU: %v", err)
	}
	defer ctx.Destroy()

	win, err := gplot.OpenWindow(ctx, *width, *height,
		gplot.WithTitle("gplot demo"), gplot.WithTarget("offscreen"), gplot.WithGrid(2, 3),
		gplot.WithColorMap(colorMap))
	if err != nil {
		log.Fatalf("Failed to open window: %v", err)
	}
	defer win.Close()

	sine, err := sinePlot(ctx, *points)
	if err != nil {
		log.Fatalf("Failed to create plot: %v", err)
	}
	defer sine.Destroy()

	steps, err := stepPlot(ctx)
	if err != nil {
		log.Fatalf("Failed to create plot: %v", err)
	}
	defer steps.Destroy()

	hist, err := normalHistogram(ctx, 32)
	if err != nil {
		log.Fatalf("Failed to create histogram: %v", err)
	}
	defer hist.Destroy()

	pic, err := gradientImage(ctx, 64, 48)
	if err != nil {
		log.Fatalf("Failed to create image: %v", err)
	}
	defer pic.Destroy()

	ripple, err := rippleSurface(ctx, 64)
	if err != nil {
		log.Fatalf("Failed to create surface: %v", err)
	}
	defer ripple.Destroy()

	heat, err := gradientImage(ctx, 64, 48)
	if err != nil {
		log.Fatalf("Failed to create image: %v", err)
	}
	defer heat.Destroy()
	heat.SetColorMapped(true)

	for _, err := range []error{
		win.Draw(0, 0, sine, "damped sine"),
		win.Draw(0, 1, hist, "normal distribution"),
		win.Draw(1, 0, steps, "byte steps"),
		win.DrawImage(1, 1, pic, "gradient", true),
		win.Draw(0, 2, ripple, "ripple"),
		win.DrawImage(1, 2, heat, "gradient luminance", true),
	} {
		if err != nil {
			log.Fatalf("Failed to lay out grid: %v", err)
		}
	}

	if err := win.SwapBuffers(); err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	if err := win.SaveFrameBuffer(*output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Demo saved to %s (%dx%d)\n", *output, *width, *height)
}

func sinePlot(ctx *gplot.Context, n int) (*gplot.Plot, error) {
	p, err := gplot.NewPlot(ctx, n, gplot.Float32)
	if err != nil {
		return nil, err
	}
	xy := make([]float32, 2*n)
	for i := 0; i < n; i++ {
		x := 10 * float64(i) / float64(n-1)
		xy[2*i] = float32(x)
		xy[2*i+1] = float32(math.Exp(-x/4) * math.Sin(3*x))
	}
	if err := gplot.Upload(p, xy); err != nil {
		p.Destroy()
		return nil, err
	}
	p.SetAxesLimits(10, 0, 1, -1)
	p.SetXAxisTitle("t [s]")
	p.SetYAxisTitle("amplitude")
	return p, nil
}

func stepPlot(ctx *gplot.Context) (*gplot.Plot, error) {
	const n = 16
	p, err := gplot.NewPlot(ctx, n, gplot.Uint8)
	if err != nil {
		return nil, err
	}
	xy := make([]uint8, 2*n)
	for i := 0; i < n; i++ {
		xy[2*i] = uint8(i * 16)
		xy[2*i+1] = uint8((i / 2) * 32)
	}
	if err := gplot.Upload(p, xy); err != nil {
		p.Destroy()
		return nil, err
	}
	p.SetAxesLimits(255, 0, 255, 0)
	p.SetColor(0.85, 0.35, 0.1)
	return p, nil
}

func normalHistogram(ctx *gplot.Context, bins int) (*gplot.Histogram, error) {
	h, err := gplot.NewHistogram(ctx, bins, gplot.Float32)
	if err != nil {
		return nil, err
	}
	values := make([]float32, bins)
	for i := range values {
		x := (float64(i) + 0.5 - float64(bins)/2) / (float64(bins) / 6)
		values[i] = float32(math.Exp(-x * x / 2))
	}
	if err := h.SetData(values); err != nil {
		h.Destroy()
		return nil, err
	}
	h.SetColor(0.2, 0.6, 0.3)
	h.SetXAxisTitle("bin")
	return h, nil
}

func gradientImage(ctx *gplot.Context, w, h int) (*gplot.Image, error) {
	img, err := gplot.NewImage(ctx, w, h)
	if err != nil {
		return nil, err
	}
	src := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src.SetNRGBA(x, y, color.NRGBA{
				R: uint8(255 * x / (w - 1)),
				G: uint8(255 * y / (h - 1)),
				B: 160,
				A: 255,
			})
		}
	}
	if err := img.SetImage(src); err != nil {
		img.Destroy()
		return nil, err
	}
	return img, nil
}

func rippleSurface(ctx *gplot.Context, n int) (*gplot.Surface, error) {
	s, err := gplot.NewSurface(ctx, n, n, gplot.Float32)
	if err != nil {
		return nil, err
	}
	z := make([]float32, n*n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			x := 8 * (float64(i)/float64(n-1) - 0.5)
			y := 8 * (float64(j)/float64(n-1) - 0.5)
			r := math.Hypot(x, y)
			z[j*n+i] = float32(math.Cos(2*r) * math.Exp(-r/3))
		}
	}
	if err := s.SetData(z); err != nil {
		s.Destroy()
		return nil, err
	}
	s.SetAxesLimits(4, -4, 4, -4)
	s.SetZAxisLimits(1, -1)
	s.SetZAxisTitle("height")
	return s, nil
}
