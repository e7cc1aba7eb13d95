// Package logging builds the process-wide zap logger.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a production JSON logger. LOG_LEVEL overrides the
// default info level; unknown values fall back to info.
func NewLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()

	if levelStr, ok := os.LookupEnv("LOG_LEVEL"); ok {
		if level, err := zapcore.ParseLevel(levelStr); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	logger, err := cfg.Build()
	if err != nil {
		// Building a stock production config only fails on a bad output
		// path, which we never set.
		panic(err)
	}

	return logger
}
