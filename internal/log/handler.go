package log

import (
	"io"
	"log/slog"
	"os"
	"slices"
)

// Output formats for --log-format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSON}

// ValidFormat reports whether format is a supported output format.
func ValidFormat(format string) bool {
	return slices.Contains(Formats, format)
}

// HandlerOptions configures the log handler.
type HandlerOptions struct {
	Level  slog.Leveler
	Format string
	Output io.Writer // nil means stderr
}

// NewHandler returns a text or JSON handler that prints custom level names.
func NewHandler(opts HandlerOptions) slog.Handler {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       opts.Level,
		ReplaceAttr: replaceLevelNames,
	}
	if opts.Format == FormatJSON {
		return slog.NewJSONHandler(opts.Output, handlerOpts)
	}
	return slog.NewTextHandler(opts.Output, handlerOpts)
}

func replaceLevelNames(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if l, ok := a.Value.Any().(slog.Level); ok {
		a.Value = slog.StringValue(LevelName(l))
	}
	return a
}
