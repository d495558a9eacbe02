// Package logging provides the process-wide structured logger.
//
// Stdout carries the MCP stdio transport, so log output always goes to a
// rotated file under the user's state directory.
package logging

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger     *Logger
	noopLogger = &Logger{zap.NewNop().Sugar()}
)

// Logger wraps zap's SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
}

// With adds structured fields to the logger and returns a new instance.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return noopLogger
	}
	return &Logger{l.SugaredLogger.With(args...)}
}

// L returns the global logger or a no-op fallback if uninitialized.
func L() *Logger {
	if logger == nil {
		return noopLogger
	}
	return logger
}

// Options controls Init. Zero values fall back to the environment.
type Options struct {
	// Level overrides LOG_LEVEL when set.
	Level string
	// Dir overrides the state directory the log file is written to.
	Dir string
}

// Init initializes the global logger and returns the log file path.
//
// The mode comes from BLOGPAD_ENV:
//
//   - BLOGPAD_ENV=dev   → console-encoded logs in app-debug.log
//   - anything else     → JSON logs in app.log
//
// The level comes from opts.Level, then LOG_LEVEL, defaulting to debug in dev
// mode and info otherwise.
func Init(appName string, opts Options) string {
	mode := detectMode()
	logPath := selectLogPath(appName, mode, opts.Dir)

	level := opts.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	})

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if mode == "dev" {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, writer, ParseLevel(level, mode))
	logger = &Logger{zap.New(core, zap.AddCaller()).Sugar()}

	logger.Infof("logger initialized in %s mode, writing to %s", mode, logPath)
	return logPath
}

// InitTest installs a development logger writing to stderr.
func InitTest() {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.OutputPaths = []string{"stderr"}
	raw, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return
	}
	logger = &Logger{raw.Sugar()}
}

// Sync flushes any buffered log entries.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}

// ParseLevel maps a level name to a zap level. Unknown names get the mode's
// default.
func ParseLevel(name, mode string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		if mode == "dev" {
			return zap.DebugLevel
		}
		return zap.InfoLevel
	}
}

// ValidLevel reports whether name is a level ParseLevel understands.
func ValidLevel(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

func detectMode() string {
	switch strings.ToLower(os.Getenv("BLOGPAD_ENV")) {
	case "dev", "development":
		return "dev"
	default:
		return "prod"
	}
}

func selectLogPath(appName, mode, dir string) string {
	fileName := "app.log"
	if mode == "dev" {
		fileName = "app-debug.log"
	}

	if dir != "" {
		_ = os.MkdirAll(dir, 0o755)
		return filepath.Join(dir, fileName)
	}

	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		path := filepath.Join(xdg, appName)
		_ = os.MkdirAll(path, 0o755)
		return filepath.Join(path, fileName)
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".local", "state", appName)
		_ = os.MkdirAll(path, 0o755)
		return filepath.Join(path, fileName)
	}

	path := filepath.Join(os.TempDir(), appName)
	_ = os.MkdirAll(path, 0o755)
	return filepath.Join(path, fileName)
}
