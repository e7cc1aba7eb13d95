package handlers

import (
	"go.uber.org/zap"

	"finderworks/x402-finder/internal/app/finder"
	"finderworks/x402-finder/internal/config"
	"finderworks/x402-finder/internal/x402"
)

const (
	serviceName    = "ProviderFinder API"
	serviceAgent   = "provider-finder"
	serviceVersion = "2.0.0"
)

type Handlers struct {
	cfg    *config.Config
	gate   *x402.Gate
	finder *finder.Finder
	logger *zap.Logger
}

func NewHandlers(cfg *config.Config, gate *x402.Gate, finderService *finder.Finder, logger *zap.Logger) *Handlers {
	return &Handlers{
		cfg:    cfg,
		gate:   gate,
		finder: finderService,
		logger: logger,
	}
}
