// Package logging builds the process logger: human-readable console output
// plus an optional structured JSON file.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Guliveer/vitalis/desktop/internal/config"
)

// ParseLevel maps a config level string to a zap level. Unknown values are info.
func ParseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New creates a zap logger based on the configuration.
// It outputs to stderr (human-readable) and, when File is set, to a JSON log file.
// A log file that cannot be opened is reported once on the console and skipped.
func New(cfg config.LoggingConfig) *zap.Logger {
	level := ParseLevel(cfg.Level)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	var fileErr error
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0750); err != nil {
			fileErr = err
		} else if file, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640); err != nil {
			fileErr = err
		} else {
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			))
		}
	}

	logger := zap.New(zapcore.NewTee(cores...))
	if fileErr != nil {
		logger.Warn("Log file unavailable, logging to console only",
			zap.String("file", cfg.File),
			zap.Error(fileErr))
	}
	return logger
}
