package logger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// Level represents logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns string representation of Level
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
	default:
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger is the interface for logging
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	SetLevel(level Level)
}

// DefaultLogger renders colorized, timestamped lines via tint. Callers keep
// the printf-style Logger interface; the message is formatted up front and
// handed to slog as a single bare message, so this is console-friendly
// output rather than structured key/value logging.
type DefaultLogger struct {
	levelVar *slog.LevelVar
	slog     *slog.Logger
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger(level Level) *DefaultLogger {
	lv := &slog.LevelVar{}
	lv.Set(level.slogLevel())

	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      lv,
		TimeFormat: "15:04:05.000",
	})

	return &DefaultLogger{
		levelVar: lv,
		slog:     slog.New(handler),
	}
}

// Debug logs debug message
func (l *DefaultLogger) Debug(format string, args ...interface{}) {
	l.slog.Debug(fmt.Sprintf(format, args...))
}

// Info logs info message
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.slog.Info(fmt.Sprintf(format, args...))
}

// Warn logs warning message
func (l *DefaultLogger) Warn(format string, args ...interface{}) {
	l.slog.Warn(fmt.Sprintf(format, args...))
}

// Error logs error message
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.slog.Error(fmt.Sprintf(format, args...))
}

// SetLevel sets the logging level
func (l *DefaultLogger) SetLevel(level Level) {
	l.levelVar.Set(level.slogLevel())
}

// NoOpLogger is a logger that doesn't log anything
type NoOpLogger struct{}

// NewNoOpLogger creates a logger that doesn't log
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// Debug does nothing
func (l *NoOpLogger) Debug(format string, args ...interface{}) {}

// Info does nothing
func (l *NoOpLogger) Info(format string, args ...interface{}) {}

// Warn does nothing
func (l *NoOpLogger) Warn(format string, args ...interface{}) {}

// Error does nothing
func (l *NoOpLogger) Error(format string, args ...interface{}) {}

// SetLevel does nothing
func (l *NoOpLogger) SetLevel(level Level) {}

// Global default logger
var defaultLogger Logger = NewDefaultLogger(LevelInfo)

// SetDefault sets the default logger
func SetDefault(logger Logger) {
	defaultLogger = logger
}

// GetDefault returns the default logger
func GetDefault() Logger {
	return defaultLogger
}

// Helper functions using default logger

// Debug logs debug message using default logger
func Debug(format string, args ...interface{}) {
	defaultLogger.Debug(format, args...)
}

// Info logs info message using default logger
func Info(format string, args ...interface{}) {
	defaultLogger.Info(format, args...)
}

// Warn logs warning message using default logger
func Warn(format string, args ...interface{}) {
	defaultLogger.Warn(format, args...)
}

// Error logs error message using default logger
func Error(format string, args ...interface{}) {
	defaultLogger.Error(format, args...)
}

// Logf is a generic logging function
func Logf(level Level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	switch level {
	case LevelDebug:
		defaultLogger.Debug(msg)
	case LevelInfo:
		defaultLogger.Info(msg)
	case LevelWarn:
		defaultLogger.Warn(msg)
	case LevelError:
		defaultLogger.Error(msg)
	}
}

var frameDebug bool

// SetFrameDebug toggles hex-dump logging of raw link frames.
func SetFrameDebug(enable bool) {
	frameDebug = enable
}

// FrameDebugEnabled reports whether frame hex dumps should be logged.
func FrameDebugEnabled() bool {
	return frameDebug
}
