// Package logging is a small leveled logger for the CLI's diagnostic stream.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Level is a logging threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

// String returns the level's tag.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelSilent:
		return "SILENT"
	default:
		return "UNKNOWN"
	}
}

var levelColors = map[Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  color.New(color.FgCyan),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed, color.Bold),
}

// Field is a key/value pair appended to a message.
type Field struct {
	Key   string
	Value any
}

// F creates a field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logger writes leveled lines to a writer. A nil *Logger discards everything,
// so components can take one as an optional dependency.
type Logger struct {
	mu     *sync.Mutex
	out    io.Writer
	level  Level
	fields []Field
}

// New creates a logger writing messages at or above level to out.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{mu: &sync.Mutex{}, out: out, level: level}
}

// ForVerbosity returns an Info logger on stderr, or a Debug one when verbose.
func ForVerbosity(verbose bool) *Logger {
	if verbose {
		return New(LevelDebug, os.Stderr)
	}
	return New(LevelInfo, os.Stderr)
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	return New(LevelSilent, io.Discard)
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && level >= l.level && level < LevelSilent
}

// With returns a logger that appends fields to every message.
func (l *Logger) With(fields ...Field) *Logger {
	if l == nil {
		return nil
	}
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Logger{mu: l.mu, out: l.out, level: l.level, fields: merged}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

func (l *Logger) log(level Level, msg string, fields []Field) {
	if !l.Enabled(level) {
		return
	}

	var b strings.Builder
	b.WriteString(levelColors[level].Sprintf("%-5s", level.String()))
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, f := range l.fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, b.String())
}
