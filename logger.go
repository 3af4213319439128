package gplot

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gplot/internal/gpu"
	"github.com/gogpu/gplot/surface"
)

// silent is the logger in effect until SetLogger is called.
var silent = slog.New(slog.DiscardHandler)

var logger atomic.Pointer[slog.Logger]

func init() { logger.Store(silent) }

// SetLogger configures the logger for gplot and its internal packages.
// By default, gplot produces no log output. Pass nil to silence it again.
// SetLogger is safe for concurrent use.
//
// Log levels used by gplot:
//   - [slog.LevelDebug]: bindings, pipelines, shader compilation, buffer sizes, frames
//   - [slog.LevelInfo]: context lifecycle, adapter selection
//   - [slog.LevelWarn]: live buffers at context teardown, target close failures
//
// Example:
//
//	gplot.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	logger.Store(l)
	gpu.SetLogger(l)
	surface.SetLogger(l)
}

// Logger returns the current logger used by gplot.
func Logger() *slog.Logger {
	return logger.Load()
}
