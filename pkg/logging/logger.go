// Package logging emits one flat JSON object per line: ts, level, msg,
// and the line's fields as top-level keys. Child loggers created with
// With carry session and request tags on every line.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type jsonLogger struct {
	out    io.Writer
	level  Level
	preset []Field
	mu     *sync.Mutex
}

// New creates a structured logger writing JSON lines to out,
// suppressing everything below level.
func New(out io.Writer, level Level) Logger {
	return &jsonLogger{out: out, level: level, mu: &sync.Mutex{}}
}

func (l *jsonLogger) Debug(msg string, fields ...Field) { l.emit(DebugLevel, msg, fields) }
func (l *jsonLogger) Info(msg string, fields ...Field)  { l.emit(InfoLevel, msg, fields) }
func (l *jsonLogger) Warn(msg string, fields ...Field)  { l.emit(WarnLevel, msg, fields) }
func (l *jsonLogger) Error(msg string, fields ...Field) { l.emit(ErrorLevel, msg, fields) }

// With returns a child logger sharing the parent's writer and lock,
// with the given fields stamped onto every line it emits.
func (l *jsonLogger) With(fields ...Field) Logger {
	preset := make([]Field, 0, len(l.preset)+len(fields))
	preset = append(preset, l.preset...)
	preset = append(preset, fields...)
	return &jsonLogger{out: l.out, level: l.level, preset: preset, mu: l.mu}
}

func (l *jsonLogger) emit(lv Level, msg string, fields []Field) {
	if lv < l.level {
		return
	}

	entry := make(map[string]any, len(l.preset)+len(fields)+3)
	for _, f := range l.preset {
		entry[f.Key] = f.Value
	}
	for _, f := range fields {
		entry[f.Key] = f.Value
	}
	entry["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = lv.String()
	entry["msg"] = msg

	line, err := json.Marshal(entry)
	if err != nil {
		// An unmarshalable field value must not lose the message
		line = []byte(fmt.Sprintf(`{"level":%q,"msg":%q,"logerr":%q}`, lv.String(), msg, err.Error()))
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Write(line)
}

var (
	defaultLogger Logger
	defaultOnce   sync.Once
)

// DefaultLogger returns the process-wide logger: JSON lines on stderr,
// level taken from ATLAS_LOG_LEVEL when set.
func DefaultLogger() Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(os.Stderr, ParseLevel(os.Getenv("ATLAS_LOG_LEVEL")))
	})
	return defaultLogger
}

// TimedOperation measures one operation from StartTimer to End
type TimedOperation struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}

// StartTimer begins timing an operation; End logs it with its latency
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{logger: logger, msg: msg, start: time.Now(), fields: fields}
}

// End logs the operation at info level with its duration
func (t *TimedOperation) End() {
	t.logger.Info(t.msg, append(t.fields, Latency(time.Since(t.start)))...)
}

// EndError logs the operation as an error with its duration
func (t *TimedOperation) EndError(err error) {
	t.logger.Error(t.msg, append(t.fields, Latency(time.Since(t.start)), Error(err))...)
}
