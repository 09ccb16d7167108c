// Package log provides zerolog construction helpers for the library.
//
// The library itself never writes to a global logger: estimators hold a
// zerolog.Logger supplied at construction (defaulting to a disabled one) and
// emit structured Debug events about fit dimensions and stage losses.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Nop returns a disabled logger. This is the default for every estimator.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// New builds a JSON logger writing to w at the given level string
// ("debug", "info", "warn", "error"). Unknown levels fall back to info.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(ToLevel(level)).With().Timestamp().Logger()
}

// NewConsole builds a human-readable console logger on stderr, intended for
// example programs and debugging sessions.
func NewConsole(level string) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(cw).Level(ToLevel(level)).With().Timestamp().Logger()
}

// ToLevel maps a level string to a zerolog.Level, defaulting to info.
func ToLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
