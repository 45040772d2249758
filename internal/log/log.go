package log

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var (
	level  = new(slog.LevelVar)
	logger atomic.Pointer[slog.Logger]
)

func init() {
	// Warnings only until Init runs.
	level.Set(slog.LevelWarn)
	logger.Store(slog.New(NewHandler(HandlerOptions{Level: level, Format: FormatText})))
}

// Init configures the process logger from -v=N and --log-format. Records
// go to stderr; stdout carries command output only.
func Init(v int, format string) {
	setup(os.Stderr, v, format)
}

func setup(w io.Writer, v int, format string) {
	level.Set(VerbosityToLevel(v))
	l := slog.New(NewHandler(HandlerOptions{Level: level, Format: format, Output: w}))
	logger.Store(l)
	slog.SetDefault(l)
}

// Component returns a logger tagged with component name.
func Component(name string) *slog.Logger {
	return logger.Load().With("component", name)
}

// SetInvocation tags every later record with the invocation id of this run.
func SetInvocation(id string) {
	tagged := logger.Load().With("invocation", id)
	logger.Store(tagged)
	slog.SetDefault(tagged)
}
