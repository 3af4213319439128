package gplot

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/gplot/surface"
)

// captureLogs routes gplot logging at level and above into a buffer for
// the duration of the test.
func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	return &buf
}

func TestLoggerSilentByDefault(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	SetLogger(slog.Default())
	SetLogger(nil)
	l := Logger()
	require.NotNil(t, l)
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		assert.False(t, l.Enabled(context.Background(), level), level)
	}
}

func TestSetLogger(t *testing.T) {
	buf := captureLogs(t, slog.LevelDebug)
	Logger().Info("hello", "key", "value")
	assert.Contains(t, buf.String(), "msg=hello key=value")
}

func TestSetLoggerReachesSurface(t *testing.T) {
	buf := captureLogs(t, slog.LevelDebug)

	var r surface.Registry
	require.NoError(t, r.Register(surface.Kind{Name: "broken", New: func(surface.Options) (surface.Target, error) {
		return nil, assert.AnError
	}}))
	_, err := r.NewTarget(surface.DefaultOptions(8, 8))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "surface: target kind failed")
}

func TestContextLogsLifecycle(t *testing.T) {
	buf := captureLogs(t, slog.LevelDebug)

	ctx, _ := newTestContext(t)
	w := newTestWindow(t, ctx, 64, 64)
	p, err := NewPlot(ctx, 4, Float32)
	require.NoError(t, err)
	require.NoError(t, w.DrawSingle(p))
	require.NoError(t, w.SwapBuffers())
	require.NoError(t, w.Close())
	p.Destroy()
	ctx.Destroy()

	out := buf.String()
	for _, want := range []string{
		"gplot: context created",
		"gpu: buffer created",
		"gplot: window created",
		"gplot: frame presented",
		"gplot: window closed",
		"gplot: context destroyed",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "live buffers")
}

func TestContextWarnsOnLiveBuffers(t *testing.T) {
	buf := captureLogs(t, slog.LevelWarn)

	ctx, _ := newTestContext(t)
	_, err := NewHistogram(ctx, 3, Float32)
	require.NoError(t, err)
	ctx.Destroy()

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "live=1")
}

func TestLoggerConcurrentAccess(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Logger().Debug("concurrent read")
		}()
		go func() {
			defer wg.Done()
			SetLogger(slog.Default())
			SetLogger(nil)
		}()
	}
	wg.Wait()
}

func BenchmarkLoggerDisabledLog(b *testing.B) {
	l := Logger()
	b.ReportAllocs()
	for b.Loop() {
		l.Debug("message", "key", "value")
	}
}
