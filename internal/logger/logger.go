package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aliskhannn/prompt-study-bot/internal/config"
)

// New builds the application logger. Production emits JSON at info level,
// every other environment uses the colored development console.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == "production" {
		zc := zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return zc.Build()
	}

	zc := zap.NewDevelopmentConfig()
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zc.Build()
}
