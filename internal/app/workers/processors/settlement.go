package processors

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"finderworks/x402-finder/internal/x402"
)

// SettlementProcessor reports fulfilled payments to the facilitator. The
// resource was already delivered, so a failed settlement is logged and at
// most retried once by the worker, never surfaced to any caller.
type SettlementProcessor struct {
	settler x402.Settler
	logger  *zap.Logger
}

func NewSettlementProcessor(settler x402.Settler, logger *zap.Logger) *SettlementProcessor {
	return &SettlementProcessor{
		settler: settler,
		logger:  logger,
	}
}

func (p *SettlementProcessor) ProcessEvent(ctx context.Context, event any) error {
	settlement := event.(*x402.SettlementEvent)

	receipt, err := p.settler.Settle(ctx, settlement.Payload, settlement.Requirements)
	if err != nil {
		return fmt.Errorf("settlement call failed: %w", err)
	}

	if !receipt.Success {
		return fmt.Errorf("settlement rejected: %s", receipt.ErrorReason)
	}

	p.logger.Info("payment settled",
		zap.String("request_id", settlement.RequestID),
		zap.String("transaction", receipt.Transaction),
		zap.String("network", receipt.Network))

	return nil
}
