// Package logger provides the process-wide structured logger for gem-sources.
//
// It wraps a zap SugaredLogger behind printf-style helpers so call sites stay
// short. Output goes to stderr to keep stdout clean for command output such as
// the list table or version JSON.
package logger

import (
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	current atomic.Pointer[zap.SugaredLogger]
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	current.Store(newLogger(level).Sugar())
}

// Initialize replaces the global logger with one writing at the given level.
// Unknown level names fall back to info.
func Initialize(levelName string) {
	lvl, ok := ParseLevel(levelName)
	if !ok {
		Warnf("Invalid log level %q, using info", levelName)
	}
	level.SetLevel(lvl)
	current.Store(newLogger(level).Sugar())
}

// ParseLevel maps a level name to a zap level. The boolean is false when the
// name is not recognised; the returned level is then info.
func ParseLevel(name string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info", "":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// Replace swaps in an arbitrary zap logger, mostly for tests using zaptest/observer.
func Replace(l *zap.Logger) {
	current.Store(l.Sugar())
}

// Get returns the current sugared logger.
func Get() *zap.SugaredLogger {
	return current.Load()
}

func newLogger(lvl zap.AtomicLevel) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		lvl,
	)
	return zap.New(core)
}

// Debugf logs a formatted message at debug level.
func Debugf(msg string, args ...any) { Get().Debugf(msg, args...) }

// Infof logs a formatted message at info level.
func Infof(msg string, args ...any) { Get().Infof(msg, args...) }

// Warnf logs a formatted message at warn level.
func Warnf(msg string, args ...any) { Get().Warnf(msg, args...) }

// Errorf logs a formatted message at error level.
func Errorf(msg string, args ...any) { Get().Errorf(msg, args...) }

// Debugw logs a message with structured key/value pairs at debug level.
func Debugw(msg string, keysAndValues ...any) { Get().Debugw(msg, keysAndValues...) }
