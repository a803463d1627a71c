// Package logger provides the structured logging capability the core
// decoder is handed through injection (spec.md §6: "Logging is
// delegated through an injectable log(level, message) hook"). The core
// itself never imports this package directly; it depends only on the
// Sink interface declared here, and cmd/dabmon supplies a *Logger.
package logger

import (
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Level represents log level
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Config holds logger configuration
type Config struct {
	Level  string
	Format string // "text" or "json"
	Output io.Writer
}

// Field represents a structured logging field
type Field struct {
	Key   string
	Value interface{}
}

// Sink is the capability the decoder core is injected with. Any type
// satisfying it — *Logger included — can be passed to dab.Decoder.
type Sink interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Logger represents a structured logger backed by charmbracelet/log.
type Logger struct {
	level Level
	inner *charmlog.Logger
}

// New creates a new logger.
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	level := parseLevel(cfg.Level)

	opts := charmlog.Options{
		ReportTimestamp: true,
	}
	if cfg.Format == "json" {
		opts.Formatter = charmlog.JSONFormatter
	}

	inner := charmlog.NewWithOptions(output, opts)
	inner.SetLevel(toCharmLevel(level))

	return &Logger{level: level, inner: inner}
}

// WithComponent creates a child logger with a component prefix.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		level: l.level,
		inner: l.inner.With("component", component),
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...Field) { l.inner.Debug(msg, toArgs(fields)...) }

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...Field) { l.inner.Info(msg, toArgs(fields)...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...Field) { l.inner.Warn(msg, toArgs(fields)...) }

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...Field) { l.inner.Error(msg, toArgs(fields)...) }

func toArgs(fields []Field) []interface{} {
	args := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}

func toCharmLevel(l Level) charmlog.Level {
	switch l {
	case DebugLevel:
		return charmlog.DebugLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

func parseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Field constructors

// String creates a string field.
func String(key, val string) Field { return Field{Key: key, Value: val} }

// Int creates an int field.
func Int(key string, val int) Field { return Field{Key: key, Value: val} }

// Int64 creates an int64 field.
func Int64(key string, val int64) Field { return Field{Key: key, Value: val} }

// Uint64 creates a uint64 field.
func Uint64(key string, val uint64) Field { return Field{Key: key, Value: val} }

// Bool creates a bool field.
func Bool(key string, val bool) Field { return Field{Key: key, Value: val} }

// Uint creates a uint field.
func Uint(key string, val uint) Field { return Field{Key: key, Value: val} }

// Uint32 creates a uint32 field.
func Uint32(key string, val uint32) Field { return Field{Key: key, Value: val} }

// Float64 creates a float64 field.
func Float64(key string, val float64) Field { return Field{Key: key, Value: val} }

// Error creates an error field.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "nil"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any creates a field with any value.
func Any(key string, val interface{}) Field { return Field{Key: key, Value: val} }
