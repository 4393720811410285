package logging

import "strings"

// Level orders log severities
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

// String returns the lowercase wire name of a level
func (l Level) String() string {
	if l < DebugLevel || l > ErrorLevel {
		return "unknown"
	}
	return levelNames[l]
}

// ParseLevel maps a level name to a Level, case-insensitively.
// Unknown names resolve to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Field is one structured key-value pair on a log line
type Field struct {
	Key   string
	Value any
}

// Logger is the structured logger carried through the engine. With
// returns a child logger whose fields appear on every line, which is
// how sessions and requests tag their output.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// NopLogger discards everything. The TUI installs it because the
// terminal owns stdout, and tests default to it.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (n NopLogger) With(...Field) Logger { return n }

// NewNopLogger returns a logger that discards all output
func NewNopLogger() Logger {
	return NopLogger{}
}
