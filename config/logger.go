package config

import (
	"fmt"

	"go.uber.org/zap"
)

var appLogger *zap.Logger

// NewLogger builds a zap logger. format "json" selects the production encoder,
// anything else the human-readable development encoder.
func NewLogger(level, format string) (*zap.Logger, error) {
	var zapCfg zap.Config

	if format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info", "":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	return zapCfg.Build()
}

// GetLogger returns the process logger. It is a no-op logger until SetLogger is called.
func GetLogger() *zap.Logger {
	if appLogger == nil {
		return zap.NewNop()
	}
	return appLogger
}

// SetLogger sets the process logger
func SetLogger(logger *zap.Logger) {
	appLogger = logger
}
