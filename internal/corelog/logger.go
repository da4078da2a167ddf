// Package corelog is a small leveled logger shared by the storage
// engine components. It generalizes the teacher's ad hoc
// fmt.Printf("[BufferPool] ...") tagging into a reusable writer-backed
// logger; components accept a *Logger that may be nil, in which case
// logging is a no-op and nothing about correctness depends on it.
package corelog

import (
	"io"
	"log"
)

// Level controls which calls actually reach the underlying writer.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

// Logger is a tagged, leveled wrapper around the standard log package.
type Logger struct {
	level  Level
	tag    string
	logger *log.Logger
}

// New creates a logger writing lines prefixed with "[tag] " to out.
func New(out io.Writer, tag string, level Level) *Logger {
	return &Logger{
		level:  level,
		tag:    tag,
		logger: log.New(out, "", log.LstdFlags|log.Lmicroseconds),
	}
}

// With returns a logger sharing out and level but tagged differently,
// so each component (the buffer pool and the tree) can log under its
// own name without constructing a new writer.
func (l *Logger) With(tag string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{level: l.level, tag: tag, logger: l.logger}
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if l == nil || level < l.level {
		return
	}
	l.logger.Printf("["+l.tag+"] "+format, args...)
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(Debug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(Info, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(Warn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(Error, format, args...) }
