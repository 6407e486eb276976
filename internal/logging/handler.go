package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Log output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options controls the process-wide logger built by New.
type Options struct {
	// Format is FormatText (default) or FormatJSON.
	Format string

	// Debug lowers the level to slog.LevelDebug.
	Debug bool
}

// New builds a slog.Logger writing to w.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(opts.Format) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q, must be one of: text, json", opts.Format)
	}
}
