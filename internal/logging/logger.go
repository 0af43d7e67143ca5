// Package logging builds the slog loggers used across arbor. Handlers write
// to stderr so that stdout stays reserved for plan output and MCP traffic.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text logger at the given level. The conventional attribute
// key for errors is "err"; slog.Any("error", ...) values are renamed on the
// way out so call sites can use either.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a logger that discards every record. Components take it as
// their default so logging stays opt-in.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
