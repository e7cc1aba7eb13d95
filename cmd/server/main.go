package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"finderworks/x402-finder/internal/app/finder"
	"finderworks/x402-finder/internal/app/server"
	"finderworks/x402-finder/internal/app/workers"
	"finderworks/x402-finder/internal/app/workers/processors"
	"finderworks/x402-finder/internal/config"
	"finderworks/x402-finder/internal/logging"
	"finderworks/x402-finder/internal/x402"
)

func main() {
	cfg := config.NewConfig()

	logger := logging.NewLogger()
	defer logger.Sync()

	ctx := context.Background()

	// Data source
	var source finder.DataSource
	if cfg.Finder.DataSource == "redis" {
		cacheOpts := redis.Options{
			Addr:         fmt.Sprintf("%s:%s", cfg.Cache.Host, cfg.Cache.Port),
			Password:     cfg.Cache.Password,
			DB:           0,
			MinIdleConns: 10,
		}

		rdb := redis.NewClient(&cacheOpts)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			logger.Fatal("redis unavailable", zap.Error(err))
		}

		source = finder.NewRedisSource(rdb)
	} else {
		source = finder.NewMockSource()
	}

	finderService := finder.NewFinder(source, logger)

	// Facilitator client; nil verifier means structural acceptance only
	var facilitatorClient *x402.FacilitatorClient
	var verifier x402.Verifier
	var settler x402.Settler
	if cfg.Facilitator.URL != "" {
		facilitatorClient = x402.NewFacilitatorClient(
			cfg.Facilitator.URL,
			time.Duration(cfg.Facilitator.VerifyTimeoutSeconds)*time.Second,
			time.Duration(cfg.Facilitator.SettleTimeoutSeconds)*time.Second,
		)
		verifier = facilitatorClient
		settler = facilitatorClient
	}

	settlementMode := cfg.Settlement.Mode
	if settler == nil {
		settlementMode = x402.SettlementOff
	}

	// Async settlement pipeline
	settlementEventsCh := make(chan any, cfg.Settlement.BufferSize)
	if settlementMode == x402.SettlementAsync {
		settlementProcessor := processors.NewSettlementProcessor(settler, logger)
		settlementOrchestrator := workers.NewOrchestrator(cfg.Settlement.WorkerCount, settlementEventsCh, settlementProcessor, logger)
		settlementOrchestrator.StartWorkers(ctx)
	}

	gate := x402.NewGate(x402.GateConfig{
		Requirements: x402.PaymentRequirements{
			Scheme:            "exact",
			Network:           cfg.Payment.Network,
			Asset:             cfg.Payment.Asset,
			Amount:            cfg.Payment.AmountBaseUnits,
			PayTo:             cfg.Payment.PayTo,
			MaxTimeoutSeconds: cfg.Payment.MaxTimeoutSeconds,
		},
		ResourceDescription: "Ranked local service providers with license and review data",
		ProtectedRoutes:     []string{http.MethodPost + " /find"},
		Verifier:            verifier,
		Settler:             settler,
		SettlementMode:      settlementMode,
		SettlementEvents:    settlementEventsCh,
	}, logger)

	srv := server.NewServer(cfg, gate, finderService, logger)

	logger.Info("server starting",
		zap.String("port", cfg.Server.Port),
		zap.String("network", cfg.Payment.Network),
		zap.String("settlement_mode", settlementMode),
		zap.String("data_source", cfg.Finder.DataSource))

	if err := srv.Run(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}

	close(settlementEventsCh)
}
