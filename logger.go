// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shaderwall

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// NopLogger returns a logger that silently discards all output.
func NopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with rendering on another goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(NopLogger())
}

// SetLogger configures the logger shared by shaderwall and its sub-packages.
// By default nothing is logged.
//
// SetLogger is safe for concurrent use. Components capture the logger when
// they are constructed, so call SetLogger before creating a catalog or a
// renderer, or pass a logger explicitly with their WithLogger options.
// Pass nil to restore the silent default.
//
// Log levels used by shaderwall:
//   - [slog.LevelDebug]: per-frame detail (uniform uploads, skipped draws)
//   - [slog.LevelInfo]: lifecycle events (catalog published, renderer ready)
//   - [slog.LevelWarn]: skipped effect sources, failed compiles, failed
//     render target allocations
//
// Example:
//
//	shaderwall.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = NopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Sub-packages call this to share the
// same configuration without introducing import cycles.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
