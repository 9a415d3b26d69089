// Package debug provides diagnostics logging for candlecourse.
//
// Diagnostics are structured zap records. The TUI owns the terminal, so the
// interactive command points the logger at a file under the XDG state dir;
// CLI subcommands log to stderr. Debug-level output is enabled by setting
// the CANDLE_DEBUG environment variable:
//
//	CANDLE_DEBUG=1 candlecourse
//
// Usage:
//
//	import "github.com/vanderheijden86/candlecourse/pkg/debug"
//
//	func myFunc() {
//	    debug.Log("loaded %d lessons", count)
//	    // ...
//	    debug.LogTiming("myFunc", elapsed)
//	}
//
// Components that emit diagnostics take a *zap.Logger; a nil logger falls
// back to Logger().
package debug

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	level  = zap.NewAtomicLevelAt(zap.InfoLevel)
	logger = zap.NewNop()
)

func init() {
	if os.Getenv("CANDLE_DEBUG") != "" {
		level.SetLevel(zap.DebugLevel)
	}
}

// ParseLevel maps a config level name to a zap level. Unknown names map to
// info.
func ParseLevel(name string) zapcore.Level {
	switch name {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// NewLogger builds a console-encoded logger writing to outputs ("stderr",
// "stdout" or file paths). It shares the package level, so SetEnabled
// affects every logger built here.
func NewLogger(outputs ...string) (*zap.Logger, error) {
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	encoder := zap.NewProductionEncoderConfig()
	encoder.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder.EncodeLevel = zapcore.CapitalLevelEncoder

	config := zap.Config{
		Level:            level,
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    encoder,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}
	return config.Build()
}

// Init builds the process logger and installs it as Logger(). A non-empty
// levelName overrides the default level unless CANDLE_DEBUG is set. The
// returned function flushes buffered records.
func Init(levelName string, outputs ...string) (func(), error) {
	if levelName != "" && os.Getenv("CANDLE_DEBUG") == "" {
		level.SetLevel(ParseLevel(levelName))
	}
	l, err := NewLogger(outputs...)
	if err != nil {
		return func() {}, fmt.Errorf("build logger: %w", err)
	}
	SetLogger(l)
	return func() { _ = l.Sync() }, nil
}

// Logger returns the process logger. It is a no-op logger until Init or
// SetLogger runs.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger replaces the process logger. A nil logger installs a no-op.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Or returns l, or the process logger when l is nil.
func Or(l *zap.Logger) *zap.Logger {
	if l != nil {
		return l
	}
	return Logger()
}

// Enabled returns whether debug-level output is enabled.
func Enabled() bool {
	return level.Enabled(zap.DebugLevel)
}

// SetEnabled toggles debug-level output.
func SetEnabled(e bool) {
	if e {
		level.SetLevel(zap.DebugLevel)
		return
	}
	level.SetLevel(zap.InfoLevel)
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !Enabled() {
		return
	}
	Logger().Sugar().Debugf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !Enabled() {
		return
	}
	Logger().Debug("timing", zap.String("op", name), zap.Duration("took", d))
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !cond {
		return
	}
	Log(format, args...)
}

// LogEnterExit logs function entry and exit with timing.
//
//	func myFunc() {
//	    defer debug.LogEnterExit("myFunc")()
//	}
func LogEnterExit(name string) func() {
	if !Enabled() {
		return func() {}
	}
	Logger().Debug("enter", zap.String("fn", name))
	start := time.Now()
	return func() {
		Logger().Debug("exit", zap.String("fn", name), zap.Duration("took", time.Since(start)))
	}
}
