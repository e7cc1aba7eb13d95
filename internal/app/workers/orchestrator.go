package workers

import (
	"context"

	"go.uber.org/zap"

	"finderworks/x402-finder/internal/app/workers/processors"
)

type Orchestrator struct {
	workers         []*worker
	eventsCh        chan any
	eventsProcessor processors.Processor
}

func NewOrchestrator(workersCount int, eventsCh chan any, eventsProcessor processors.Processor, logger *zap.Logger) *Orchestrator {
	var workers []*worker
	for id := 0; id < workersCount; id++ {
		worker := newWorker(id, true, eventsCh, eventsProcessor, logger)
		workers = append(workers, worker)
	}

	return &Orchestrator{
		workers:         workers,
		eventsCh:        eventsCh,
		eventsProcessor: eventsProcessor,
	}
}

func (o *Orchestrator) StartWorkers(ctx context.Context) {
	for _, worker := range o.workers {
		go worker.start(ctx)
	}
}
