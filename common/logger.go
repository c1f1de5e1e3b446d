package common

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(NewDefaultLogger(os.Stderr))
}

// NewDefaultLogger returns the logger installed at startup, writing text records at Info
// level and above to w. Profiler reports are logged at Info.
//
// Parameters:
//   - w: the destination of the records
//
// Returns:
//   - *slog.Logger: the logger
func NewDefaultLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// SetLogger replaces the logger shared by the engine and all of its sub-packages.
// By default info, warnings and errors are written to stderr. Pass nil to silence all output.
//
// Log levels used by the engine:
//   - [slog.LevelDebug]: GPU object creation, pipeline cache misses
//   - [slog.LevelInfo]: adapter selection, profiler output
//   - [slog.LevelWarn]: misuse that is survivable (unknown shader inputs, failed texture loads,
//     incomplete framebuffers, draws without bound buffers)
//   - [slog.LevelError]: backend failures
//
// Parameters:
//   - l: the logger to install, or nil to disable logging
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current engine logger. Safe for concurrent use.
//
// Returns:
//   - *slog.Logger: the active logger
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
