// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"log/slog"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() { SetLogger(nil) }

// slogger returns the logger every message of surface goes through.
func slogger() *slog.Logger { return logger.Load() }

// SetLogger replaces the package logger; nil silences it. gplot.SetLogger
// calls it so the module shares one configuration.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger.Store(l)
}
