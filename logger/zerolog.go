package logger

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
//
// The level lives in an atomic shared with every logger derived through With,
// so SetLevel is safe while other goroutines are logging.
type ZerologLogger struct {
	logger zerolog.Logger
	level  *atomic.Int32
}

var _ Logger = (*ZerologLogger)(nil)

// NewZerolog creates a zerolog backed logger writing JSON lines to w.
// A nil writer defaults to stderr.
func NewZerolog(w io.Writer, level Level) Logger {
	if w == nil {
		w = os.Stderr
	}

	inst := &ZerologLogger{
		logger: zerolog.New(w).With().Timestamp().Logger(),
		level:  &atomic.Int32{},
	}
	inst.SetLevel(level)

	return inst
}

func (l *ZerologLogger) Debug(msg string, keysAndValues ...any) {
	l.log(zerolog.DebugLevel, msg, keysAndValues)
}

func (l *ZerologLogger) Info(msg string, keysAndValues ...any) {
	l.log(zerolog.InfoLevel, msg, keysAndValues)
}

func (l *ZerologLogger) Warn(msg string, keysAndValues ...any) {
	l.log(zerolog.WarnLevel, msg, keysAndValues)
}

func (l *ZerologLogger) Error(msg string, keysAndValues ...any) {
	l.log(zerolog.ErrorLevel, msg, keysAndValues)
}

func (l *ZerologLogger) Fatal(msg string, keysAndValues ...any) {
	l.logger.WithLevel(zerolog.FatalLevel).Fields(keysAndValues).Msg(msg)
	os.Exit(1)
}

func (l *ZerologLogger) With(keyValues ...any) Logger {
	return &ZerologLogger{
		logger: l.logger.With().Fields(keyValues).Logger(),
		level:  l.level,
	}
}

func (l *ZerologLogger) Level() Level {
	switch zerolog.Level(l.level.Load()) {
	case zerolog.DebugLevel, zerolog.TraceLevel:
		return DebugLevel
	case zerolog.InfoLevel:
		return InfoLevel
	case zerolog.WarnLevel:
		return WarnLevel
	case zerolog.ErrorLevel:
		return ErrorLevel
	default:
		return FatalLevel
	}
}

func (l *ZerologLogger) SetLevel(level Level) {
	l.level.Store(int32(toZerologLevel(level)))
}

func (l *ZerologLogger) log(level zerolog.Level, msg string, keysAndValues []any) {
	if level < zerolog.Level(l.level.Load()) {
		return
	}
	l.logger.WithLevel(level).Fields(keysAndValues).Msg(msg)
}

func toZerologLevel(level Level) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.FatalLevel
	}
}
