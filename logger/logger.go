package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
type ZeroLogger struct {
	zlog *zerolog.Logger
}

// Ensure ZeroLogger implements the interface
var _ Logger = (*ZeroLogger)(nil)

// New creates a new ZeroLogger writing to stdout with the specified log
// level. If pretty is true, output is formatted for human readability.
func New(level string, pretty bool) *ZeroLogger {
	return NewWithOutput(level, pretty, os.Stdout)
}

// NewWithOutput creates a ZeroLogger writing to the given destination.
// Unparsable levels fall back to info.
func NewWithOutput(level string, pretty bool, out io.Writer) *ZeroLogger {
	var l zerolog.Logger

	if pretty {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		l = zerolog.New(out).With().Timestamp().Logger()
	}

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l}
}

// WithFields returns a logger with additional fields attached to all entries.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	log := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &log}
}

// Info creates an info-level log event
func (l *ZeroLogger) Info() LogEvent {
	return &zeroEvent{event: l.zlog.Info()}
}

// Error creates an error-level log event
func (l *ZeroLogger) Error() LogEvent {
	return &zeroEvent{event: l.zlog.Error()}
}

// Debug creates a debug-level log event
func (l *ZeroLogger) Debug() LogEvent {
	return &zeroEvent{event: l.zlog.Debug()}
}

// Warn creates a warning-level log event
func (l *ZeroLogger) Warn() LogEvent {
	return &zeroEvent{event: l.zlog.Warn()}
}

// zeroEvent adapts zerolog events to the LogEvent interface
type zeroEvent struct {
	event *zerolog.Event
}

func (e *zeroEvent) Msg(msg string) {
	e.event.Msg(msg)
}

func (e *zeroEvent) Msgf(format string, args ...any) {
	e.event.Msgf(format, args...)
}

func (e *zeroEvent) Err(err error) LogEvent {
	return &zeroEvent{event: e.event.Err(err)}
}

func (e *zeroEvent) Str(key, value string) LogEvent {
	return &zeroEvent{event: e.event.Str(key, value)}
}

func (e *zeroEvent) Int(key string, value int) LogEvent {
	return &zeroEvent{event: e.event.Int(key, value)}
}

func (e *zeroEvent) Int64(key string, value int64) LogEvent {
	return &zeroEvent{event: e.event.Int64(key, value)}
}

func (e *zeroEvent) Dur(key string, d time.Duration) LogEvent {
	return &zeroEvent{event: e.event.Dur(key, d)}
}

func (e *zeroEvent) Interface(key string, i any) LogEvent {
	return &zeroEvent{event: e.event.Interface(key, i)}
}

func (e *zeroEvent) Bytes(key string, val []byte) LogEvent {
	return &zeroEvent{event: e.event.Bytes(key, val)}
}
