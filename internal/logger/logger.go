package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the logging interface used throughout the application
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	SetLevel(level zapcore.Level)
	GetLevel() zapcore.Level
	EnableHTTPLogging()
	DisableHTTPLogging()
	IsHTTPLoggingEnabled() bool
}

// ZapLogger wraps a zap.SugaredLogger to implement our Logger interface
type ZapLogger struct {
	sugar       *zap.SugaredLogger
	level       zap.AtomicLevel
	httpLogging *atomic.Bool
}

// New creates a new ZapLogger with default settings (info level)
func New() *ZapLogger {
	return NewWithLevel(zapcore.InfoLevel)
}

// NewWithLevel creates a new ZapLogger writing to stdout at a specific level
func NewWithLevel(level zapcore.Level) *ZapLogger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter creates a ZapLogger that writes console-encoded entries to w
func NewWithWriter(w io.Writer, level zapcore.Level) *ZapLogger {
	atomicLevel := zap.NewAtomicLevelAt(level)

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		atomicLevel,
	)

	return &ZapLogger{
		sugar:       zap.New(core).Sugar(),
		level:       atomicLevel,
		httpLogging: &atomic.Bool{},
	}
}

// NewNop returns a logger that discards everything
func NewNop() *ZapLogger {
	return &ZapLogger{
		sugar:       zap.NewNop().Sugar(),
		level:       zap.NewAtomicLevelAt(zapcore.InfoLevel),
		httpLogging: &atomic.Bool{},
	}
}

// ParseLevel converts a string log level to a zapcore.Level.
// Accepts: debug, info, warn, error (case-insensitive).
// Returns zapcore.InfoLevel if the level is not recognized.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NextLevel returns the level after current in the debug -> info -> warn -> error cycle
func NextLevel(current zapcore.Level) zapcore.Level {
	switch current {
	case zapcore.DebugLevel:
		return zapcore.InfoLevel
	case zapcore.InfoLevel:
		return zapcore.WarnLevel
	case zapcore.WarnLevel:
		return zapcore.ErrorLevel
	case zapcore.ErrorLevel:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *ZapLogger) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *ZapLogger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *ZapLogger) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

func (l *ZapLogger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

// With returns a child logger carrying the given key/value pairs.
// The child shares level and HTTP logging state with its parent.
func (l *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{
		sugar:       l.sugar.With(args...),
		level:       l.level,
		httpLogging: l.httpLogging,
	}
}

// Sync flushes buffered entries
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

// SetLevel changes the logging level dynamically
func (l *ZapLogger) SetLevel(level zapcore.Level) {
	l.level.SetLevel(level)
}

// GetLevel returns the current logging level
func (l *ZapLogger) GetLevel() zapcore.Level {
	return l.level.Level()
}

// EnableHTTPLogging enables HTTP request logging
func (l *ZapLogger) EnableHTTPLogging() {
	l.httpLogging.Store(true)
}

// DisableHTTPLogging disables HTTP request logging
func (l *ZapLogger) DisableHTTPLogging() {
	l.httpLogging.Store(false)
}

// IsHTTPLoggingEnabled returns whether HTTP logging is enabled
func (l *ZapLogger) IsHTTPLoggingEnabled() bool {
	return l.httpLogging.Load()
}
