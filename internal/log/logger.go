package log

import (
	"io"
	"log/slog"
)

// NewLogger creates a text-format slog.Logger writing to w.
//
// verbose maps to Debug level; the default of Info keeps the rotation
// loop's per-iteration chatter visible without drowning the user in
// probe internals. Timestamps are dropped: the tool runs in a terminal
// where the shell's history already supplies them, and the rotation
// history database keeps the durable record.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
