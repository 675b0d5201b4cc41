package logger

import "time"

// Noop returns a Logger that discards every event. It is the default when an
// SDK client is constructed without a logger.
func Noop() Logger {
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Info() LogEvent                     { return noopEvent{} }
func (noopLogger) Error() LogEvent                    { return noopEvent{} }
func (noopLogger) Debug() LogEvent                    { return noopEvent{} }
func (noopLogger) Warn() LogEvent                     { return noopEvent{} }
func (noopLogger) WithFields(_ map[string]any) Logger { return noopLogger{} }

type noopEvent struct{}

func (noopEvent) Msg(string)                         {}
func (noopEvent) Msgf(string, ...any)                {}
func (noopEvent) Err(error) LogEvent                 { return noopEvent{} }
func (noopEvent) Str(string, string) LogEvent        { return noopEvent{} }
func (noopEvent) Int(string, int) LogEvent           { return noopEvent{} }
func (noopEvent) Int64(string, int64) LogEvent       { return noopEvent{} }
func (noopEvent) Dur(string, time.Duration) LogEvent { return noopEvent{} }
func (noopEvent) Interface(string, any) LogEvent     { return noopEvent{} }
func (noopEvent) Bytes(string, []byte) LogEvent      { return noopEvent{} }
