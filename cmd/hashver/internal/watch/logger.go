package watch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// ChangeType represents the type of file change.
type ChangeType string

const (
	ChangeAdded    ChangeType = "+"
	ChangeModified ChangeType = "~"
	ChangeDeleted  ChangeType = "-"
)

// Logger handles watch mode output formatting.
type Logger struct {
	writer  io.Writer
	isTTY   bool
	verbose bool
	noColor bool
	jsonOut bool

	statsMu sync.Mutex
	stats   WatchStats
}

// WatchStats tracks statistics for the watch session.
type WatchStats struct {
	Recomputes int
	Changes    int
	Errors     int
	StartTime  time.Time
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	Writer  io.Writer
	Verbose bool
	NoColor bool
	JSON    bool
}

// NewLogger creates a new logger with the given configuration.
func NewLogger(cfg LoggerConfig) *Logger {
	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	isTTY := false
	if f, ok := writer.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}

	return &Logger{
		writer:  writer,
		isTTY:   isTTY,
		verbose: cfg.Verbose,
		noColor: cfg.NoColor,
		jsonOut: cfg.JSON,
		stats:   WatchStats{StartTime: time.Now()},
	}
}

// Ready logs the initial ready message.
func (l *Logger) Ready(modules int, path string) {
	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event":   "ready",
			"modules": modules,
			"path":    path,
		})
		return
	}

	l.printf("hashver: watching %d modules in %s\n", modules, path)
	l.println("hashver: ready")
	l.println()
}

// FileChanged logs a file change event.
func (l *Logger) FileChanged(path string, change ChangeType) {
	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event":  "file_changed",
			"path":   path,
			"change": string(change),
			"time":   time.Now().Format(time.RFC3339),
		})
		return
	}

	if l.verbose {
		l.printf("[%s] %s %s\n", l.timestamp(), l.colorize(string(change), change), path)
	}
}

// Recomputing logs that a recomputation is starting.
func (l *Logger) Recomputing(paths []string) {
	l.statsMu.Lock()
	l.stats.Recomputes++
	l.statsMu.Unlock()

	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event": "recomputing",
			"paths": paths,
			"time":  time.Now().Format(time.RFC3339),
		})
		return
	}

	if len(paths) == 1 {
		l.printf("[%s] %s changed, recomputing...\n", l.timestamp(), paths[0])
	} else {
		l.printf("[%s] %d files changed, recomputing...\n", l.timestamp(), len(paths))
	}
}

// VersionChanged logs a module whose hashversion changed. old is empty for
// a module seen for the first time, cur is empty for a removed module.
func (l *Logger) VersionChanged(key, old, cur string) {
	l.statsMu.Lock()
	l.stats.Changes++
	l.statsMu.Unlock()

	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event": "changed",
			"key":   key,
			"old":   old,
			"new":   cur,
			"time":  time.Now().Format(time.RFC3339),
		})
		return
	}

	switch {
	case old == "":
		l.printf("[%s] %s %s = %s\n", l.timestamp(), l.colorize("+", ChangeAdded), key, cur)
	case cur == "":
		l.printf("[%s] %s %s\n", l.timestamp(), l.colorize("-", ChangeDeleted), key)
	default:
		l.printf("[%s] %s %s = %s\n", l.timestamp(), l.colorize("~", ChangeModified), key, cur)
	}
}

// Unchanged logs a recomputation that changed no hashversion.
func (l *Logger) Unchanged() {
	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event": "unchanged",
			"time":  time.Now().Format(time.RFC3339),
		})
		return
	}
	l.printf("[%s] %s hashversions unchanged\n", l.timestamp(), l.colorize("✓", ChangeAdded))
}

// Error logs an error.
func (l *Logger) Error(err error) {
	l.statsMu.Lock()
	l.stats.Errors++
	l.statsMu.Unlock()

	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event": "error",
			"error": err.Error(),
			"time":  time.Now().Format(time.RFC3339),
		})
		return
	}

	xmark := l.colorize("✗", ChangeDeleted)
	l.printf("[%s] %s error: %v\n", l.timestamp(), xmark, err)
}

// Shutdown logs the shutdown message with statistics.
func (l *Logger) Shutdown() {
	stats := l.Stats()

	if l.jsonOut {
		l.writeJSON(map[string]any{
			"event":      "shutdown",
			"recomputes": stats.Recomputes,
			"changes":    stats.Changes,
			"errors":     stats.Errors,
			"duration":   time.Since(stats.StartTime).String(),
		})
		return
	}

	l.println()
	l.printf("hashver: shutting down (%d recomputes, %d changes, %d errors)\n",
		stats.Recomputes, stats.Changes, stats.Errors)
}

// Stats returns the current watch statistics.
func (l *Logger) Stats() WatchStats {
	l.statsMu.Lock()
	defer l.statsMu.Unlock()
	return l.stats
}

func (l *Logger) timestamp() string {
	return time.Now().Format("15:04:05")
}

// colorize applies ANSI color codes based on change type.
func (l *Logger) colorize(s string, change ChangeType) string {
	if l.noColor || !l.isTTY {
		return s
	}

	var color string
	switch change {
	case ChangeAdded:
		color = "\033[32m"
	case ChangeModified:
		color = "\033[33m"
	case ChangeDeleted:
		color = "\033[31m"
	default:
		return s
	}
	return color + s + "\033[0m"
}

func (l *Logger) writeJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		l.println(`{"event":"internal_error","error":"json marshal failed"}`)
		return
	}
	l.println(string(data))
}

func (l *Logger) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(l.writer, format, args...)
}

func (l *Logger) println(args ...any) {
	_, _ = fmt.Fprintln(l.writer, args...)
}
