// Package logger builds the process zap logger.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/skillsprint/roadmap-api/internal/platform/config"
)

// New returns a development logger (console, debug level) when mode normalizes to
// config.ModeDevelopment and a production logger (JSON, info level) otherwise.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch config.NormalizeMode(mode) {
	case config.ModeDevelopment:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	return cfg.Build()
}
