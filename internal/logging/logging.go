// Package logging builds the zap logger used throughout sfbilling.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// ParseLevel converts a textual log level into a zap level.
// Unknown values fall back to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a logger with the given level and output format (json or console).
func New(level, format string) (*zap.Logger, error) {
	var conf zap.Config
	switch strings.ToLower(format) {
	case "", FormatConsole:
		conf = zap.NewDevelopmentConfig()
		conf.DisableStacktrace = true
	case FormatJSON:
		conf = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format '%s', valid values are '%s' and '%s'", format, FormatJSON, FormatConsole)
	}

	conf.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	conf.EncoderConfig.TimeKey = "timestamp"
	conf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := conf.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
