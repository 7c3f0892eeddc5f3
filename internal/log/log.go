// Package log provides categorized structured logging for flowlens.
//
// The TUI owns stdout/stderr, so all logging goes to a file. Logging is
// disabled entirely until Init is called; every call before that is a no-op,
// which keeps tests quiet and makes the logger safe to use from any package.
package log

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category identifies the subsystem a log line originates from.
type Category string

// Log categories.
const (
	CatUI       Category = "ui"
	CatLoader   Category = "loader"
	CatGesture  Category = "gesture"
	CatRender   Category = "render"
	CatTabs     Category = "tabs"
	CatConfig   Category = "config"
	CatCommands Category = "commands"
)

var (
	mu     sync.RWMutex
	logger *zap.SugaredLogger
)

// Init opens (or creates) the log file at path and enables logging at the
// given level ("debug", "info", "warn", "error"). An unknown level means info.
func Init(path, level string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304 -- user-configured log path
	if err != nil {
		return err
	}

	lvl := zapcore.InfoLevel
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), lvl)

	mu.Lock()
	logger = zap.New(core).Sugar()
	mu.Unlock()
	return nil
}

// Close flushes any buffered log entries.
func Close() {
	mu.RLock()
	defer mu.RUnlock()
	if logger != nil {
		_ = logger.Sync()
	}
}

// Debug logs a debug message with key-value pairs.
func Debug(cat Category, msg string, kv ...any) { emit(zapcore.DebugLevel, cat, msg, kv...) }

// Info logs an info message with key-value pairs.
func Info(cat Category, msg string, kv ...any) { emit(zapcore.InfoLevel, cat, msg, kv...) }

// Warn logs a warning with key-value pairs.
func Warn(cat Category, msg string, kv ...any) { emit(zapcore.WarnLevel, cat, msg, kv...) }

// Error logs an error with key-value pairs.
func Error(cat Category, msg string, kv ...any) { emit(zapcore.ErrorLevel, cat, msg, kv...) }

func emit(lvl zapcore.Level, cat Category, msg string, kv ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		return
	}
	kv = append([]any{"cat", string(cat)}, kv...)
	switch lvl {
	case zapcore.DebugLevel:
		l.Debugw(msg, kv...)
	case zapcore.InfoLevel:
		l.Infow(msg, kv...)
	case zapcore.WarnLevel:
		l.Warnw(msg, kv...)
	default:
		l.Errorw(msg, kv...)
	}
}
