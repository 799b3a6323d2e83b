package logging

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *zap.SugaredLogger
	level        = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init builds the global JSON logger. Production logs at info, every other
// environment at debug.
func Init(appEnv string) error {
	cfg := zap.NewDevelopmentConfig()
	level.SetLevel(zapcore.DebugLevel)
	if appEnv == "production" {
		cfg = zap.NewProductionConfig()
		level.SetLevel(zapcore.InfoLevel)
	}
	cfg.Level = level
	cfg.Encoding = "json"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	globalLogger = logger.Sugar().With("service", "formbridge", "env", appEnv)
	return nil
}

// SetLevel changes the level of the running logger
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// DebugEnabled reports whether debug entries are currently written
func DebugEnabled() bool {
	return globalLogger != nil && level.Enabled(zapcore.DebugLevel)
}

// GetLogger returns the global logger. Code that never called Init, tests
// included, gets a no-op logger.
func GetLogger() *zap.SugaredLogger {
	if globalLogger == nil {
		globalLogger = zap.NewNop().Sugar()
	}
	return globalLogger
}

func Close() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}

func Info(message string, fields ...interface{}) {
	GetLogger().Infow(message, fields...)
}

func Debug(message string, fields ...interface{}) {
	GetLogger().Debugw(message, fields...)
}

func Warn(message string, fields ...interface{}) {
	GetLogger().Warnw(message, fields...)
}

func Error(message string, fields ...interface{}) {
	GetLogger().Errorw(message, fields...)
}

// Fatal logs and exits with status 1
func Fatal(message string, fields ...interface{}) {
	GetLogger().Errorw(message, fields...)
	_ = Close()
	os.Exit(1)
}

// WithRequest scopes a logger to one request against one form
func WithRequest(requestID string, endpoint string, formID uint) *zap.SugaredLogger {
	return GetLogger().With(
		"request_id", requestID,
		"endpoint", endpoint,
		"form_id", strconv.FormatUint(uint64(formID), 10),
	)
}
