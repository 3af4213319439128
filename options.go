package gplot

// ContextOption configures a Context during creation.
//
// Example:
//
//	// Default theme, WGSL shaders
//	ctx, err := gplot.NewContext(device, queue)
//
//	// Custom theme and precompiled SPIR-V
//	ctx, err := gplot.NewContext(device, queue, gplot.WithTheme(dark), gplot.WithSPIRV())
type ContextOption func(*contextOptions)

// contextOptions holds optional configuration for Context creation.
type contextOptions struct {
	theme Theme
	text  TextRenderer
	spirv bool
}

// defaultContextOptions returns the default context options.
func defaultContextOptions() contextOptions {
	return contextOptions{
		theme: DefaultTheme(),
	}
}

// WithTheme sets the layout constants and colors used by every chart of
// the context.
func WithTheme(t Theme) ContextOption {
	return func(o *contextOptions) {
		o.theme = t
	}
}

// WithTextRenderer sets the collaborator that draws titles and tick
// labels. Without one, charts lay out space for text but draw none.
// NewLabelOverlay returns the built-in renderer, which draws Go Regular.
func WithTextRenderer(tr TextRenderer) ContextOption {
	return func(o *contextOptions) {
		o.text = tr
	}
}

// WithSPIRV precompiles the shared programs to SPIR-V instead of handing
// WGSL to the device.
func WithSPIRV() ContextOption {
	return func(o *contextOptions) {
		o.spirv = true
	}
}

// WindowOption configures a Window during creation.
type WindowOption func(*windowOptions)

type windowOptions struct {
	title      string
	background *Color
	colorMap   *ColorMap
	targetName string
	rows, cols int
}

func defaultWindowOptions() windowOptions {
	return windowOptions{rows: 1, cols: 1}
}

// WithTitle sets the window title.
func WithTitle(title string) WindowOption {
	return func(o *windowOptions) {
		o.title = title
	}
}

// WithBackground overrides the theme background for one window.
func WithBackground(c Color) WindowOption {
	return func(o *windowOptions) {
		c = c.Clamp()
		o.background = &c
	}
}

// WithColorMap sets the color map images and surfaces are shaded with,
// overriding the theme. See Window.SetColorMap.
func WithColorMap(m ColorMap) WindowOption {
	return func(o *windowOptions) {
		o.colorMap = &m
	}
}

// WithTarget selects a registered surface kind by name for OpenWindow.
// By default the highest priority available kind is used.
func WithTarget(name string) WindowOption {
	return func(o *windowOptions) {
		o.targetName = name
	}
}

// WithGrid sets the initial grid arrangement. Invalid sizes are ignored.
func WithGrid(rows, cols int) WindowOption {
	return func(o *windowOptions) {
		if rows > 0 && cols > 0 {
			o.rows, o.cols = rows, cols
		}
	}
}
