// Package rlog is the leveled logger shared by every component of the
// state cache. It wraps zerolog so call sites read
// "logger.Warn(msg, fields...)" instead of reaching for zerolog's
// builder API directly.
package rlog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level is one of the supported logging levels.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config controls how the global logger is initialized.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// base is the process-wide logger. Init replaces it; until Init is
// called it logs at info level to stderr in console form, so tests and
// one-off tools get sane output without explicit setup.
var base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger().Level(zerolog.InfoLevel)

// Init configures the global logger used by WithComponent.
func Init(cfg Config) {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.JSONOutput {
		base = zerolog.New(output).With().Timestamp().Logger()
	} else {
		base = zerolog.New(zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
}

// Logger is a component-scoped handle. It exposes the leveled helpers
// components actually call; the zerolog event builder stays internal.
type Logger struct {
	z zerolog.Logger
}

// WithComponent returns a logger tagged with a "component" field, the
// way callers scope their logging to "blockstate", "store", etc.
func WithComponent(component string) Logger {
	return Logger{z: base.With().Str("component", component).Logger()}
}

func (l Logger) with(fields []interface{}) zerolog.Context {
	ctx := l.z.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, _ := fields[i].(string)
		ctx = ctx.Interface(key, fields[i+1])
	}
	return ctx
}

// Debug logs at debug level with alternating key/value fields.
func (l Logger) Debug(msg string, fields ...interface{}) {
	l.with(fields).Logger().Debug().Msg(msg)
}

// Info logs at info level with alternating key/value fields.
func (l Logger) Info(msg string, fields ...interface{}) {
	l.with(fields).Logger().Info().Msg(msg)
}

// Warn logs at warn level with alternating key/value fields.
func (l Logger) Warn(msg string, fields ...interface{}) {
	l.with(fields).Logger().Warn().Msg(msg)
}

// Error logs at error level, attaching err if non-nil.
func (l Logger) Error(msg string, err error, fields ...interface{}) {
	ev := l.with(fields).Logger().Error()
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(msg)
}

// Crit logs at error level and marks the event as fatal-grade; unlike
// zerolog's own Fatal it does not call os.Exit — a library has no
// business killing its host process, the driver decides what to do
// with a fatal condition.
func (l Logger) Crit(msg string, err error, fields ...interface{}) {
	ev := l.with(fields).Logger().Error().Bool("crit", true)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(msg)
}
