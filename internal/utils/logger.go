package utils

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the level of logging verbosity
type LogLevel int

const (
	// LevelQuiet suppresses all output except errors
	LevelQuiet LogLevel = iota
	// LevelNormal shows standard pipeline progress
	LevelNormal
	// LevelVerbose shows detailed information about each stage
	LevelVerbose
	// LevelDebug shows all debugging information
	LevelDebug
)

var (
	// CurrentLogLevel is the global log level setting
	CurrentLogLevel LogLevel = LevelNormal

	atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	loggerMu sync.RWMutex
	logger   = newConsoleLogger()
)

func newConsoleLogger() *zap.Logger {
	encoderFor := func() zapcore.Encoder {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.TimeKey = ""
		cfg.CallerKey = ""
		return zapcore.NewConsoleEncoder(cfg)
	}

	stdout := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l < zapcore.ErrorLevel && atomicLevel.Enabled(l)
	})
	stderr := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.ErrorLevel
	})

	return zap.New(zapcore.NewTee(
		zapcore.NewCore(encoderFor(), zapcore.Lock(os.Stdout), stdout),
		zapcore.NewCore(encoderFor(), zapcore.Lock(os.Stderr), stderr),
	))
}

// SetLogLevel sets the global logging level
func SetLogLevel(level LogLevel) {
	CurrentLogLevel = level
	switch level {
	case LevelQuiet:
		atomicLevel.SetLevel(zapcore.ErrorLevel)
	case LevelDebug:
		atomicLevel.SetLevel(zapcore.DebugLevel)
	default:
		atomicLevel.SetLevel(zapcore.InfoLevel)
	}
}

// LogLevelFromString converts a string level name to LogLevel
func LogLevelFromString(level string) LogLevel {
	switch strings.ToLower(level) {
	case "quiet", "q":
		return LevelQuiet
	case "normal", "n":
		return LevelNormal
	case "verbose", "v":
		return LevelVerbose
	case "debug", "d":
		return LevelDebug
	default:
		return LevelNormal
	}
}

// SetLogger replaces the underlying zap logger and returns a func that restores
// the previous one. Tests use it with a zaptest/observer core.
func SetLogger(l *zap.Logger) func() {
	loggerMu.Lock()
	prev := logger
	logger = l
	loggerMu.Unlock()
	return func() {
		loggerMu.Lock()
		logger = prev
		loggerMu.Unlock()
	}
}

// Logger returns the current zap logger.
func Logger() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger().Sync()
}

// LogError logs an error message (always shown)
func LogError(format string, args ...interface{}) {
	Logger().Error(Error(fmt.Sprintf(format, args...)))
}

// LogInfo logs an informational message at Normal+ level
func LogInfo(format string, args ...interface{}) {
	if CurrentLogLevel >= LevelNormal {
		Logger().Info(Info(fmt.Sprintf(format, args...)))
	}
}

// LogSuccess logs a success message at Normal+ level
func LogSuccess(format string, args ...interface{}) {
	if CurrentLogLevel >= LevelNormal {
		Logger().Info(Success(fmt.Sprintf(format, args...)))
	}
}

// LogVerbose logs a message at Verbose+ level
func LogVerbose(format string, args ...interface{}) {
	if CurrentLogLevel >= LevelVerbose {
		Logger().Info("\t" + Info(fmt.Sprintf(format, args...)))
	}
}

// LogDebug logs a debug message at Debug level
func LogDebug(format string, args ...interface{}) {
	if CurrentLogLevel >= LevelDebug {
		Logger().Debug("\t" + Debug(fmt.Sprintf(format, args...)))
	}
}

// LogWarning logs a warning message at Normal+ level
func LogWarning(format string, args ...interface{}) {
	if CurrentLogLevel >= LevelNormal {
		Logger().Warn(Warning(fmt.Sprintf(format, args...)))
	}
}
