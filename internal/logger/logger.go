// Package logger builds the zerolog logger shared by the store, the gate
// and the CLI.
//
// The terminal belongs to the UI, so logs go to a file or nowhere:
//
//	TRACE (-1) → DEBUG (0) → INFO (1) → WARN (2) → ERROR (3)
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger construction.
type Options struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	// Empty means info.
	Level string
	// Pretty switches from JSON lines to human-readable console output.
	Pretty bool
	// Output receives the log lines. Nil discards them.
	Output io.Writer
}

// New returns a logger configured by opts.
func New(opts Options) zerolog.Logger {
	if opts.Output == nil {
		return zerolog.Nop()
	}

	out := opts.Output
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
	}

	lvl, _ := ParseLevel(opts.Level)
	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// OpenFile opens path for appending, creating parent directories. The
// caller closes the returned file.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logger: creating directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: opening %s: %w", path, err)
	}
	return f, nil
}

// ParseLevel converts a level name to a zerolog.Level using zerolog's own
// names. Empty means info and "warning" is accepted for warn. Unknown names
// map to info and report false.
func ParseLevel(s string) (zerolog.Level, bool) {
	switch name := strings.ToLower(strings.TrimSpace(s)); name {
	case "":
		return zerolog.InfoLevel, true
	case "warning":
		return zerolog.WarnLevel, true
	default:
		lvl, err := zerolog.ParseLevel(name)
		if err != nil {
			return zerolog.InfoLevel, false
		}
		return lvl, true
	}
}
