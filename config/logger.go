package config

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds a zap logger from the logging section. The console format
// uses the development encoder; anything else logs JSON.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level.SetLevel(zap.DebugLevel)
	case "", "info":
		zapCfg.Level.SetLevel(zap.InfoLevel)
	case "warn":
		zapCfg.Level.SetLevel(zap.WarnLevel)
	case "error":
		zapCfg.Level.SetLevel(zap.ErrorLevel)
	default:
		return nil, fmt.Errorf("unknown log level %q", cfg.Level)
	}

	return zapCfg.Build()
}
