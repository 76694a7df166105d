// Package logging configures the zerolog logger shared by the CLI.
package logging

import (
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// New builds a console logger writing to stderr. Every invocation gets a
// fresh run ID so log lines from overlapping shells can be told apart.
func New(level zerolog.Level) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(cw).
		Level(level).
		With().
		Timestamp().
		Str("run_id", ulid.Make().String()).
		Logger()
}

// ParseLevel parses a level name, defaulting to info when the name is
// unknown or empty.
func ParseLevel(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
