package workers

import (
	"context"

	"go.uber.org/zap"

	"finderworks/x402-finder/internal/app/workers/processors"
)

type worker struct {
	id              int
	reenqueue       bool
	eventsCh        chan any
	eventsProcessor processors.Processor
	logger          *zap.Logger
}

func newWorker(id int, reenqueue bool, eventsCh chan any, eventsProcessor processors.Processor, logger *zap.Logger) *worker {
	return &worker{
		id:              id,
		reenqueue:       reenqueue,
		eventsCh:        eventsCh,
		eventsProcessor: eventsProcessor,
		logger:          logger,
	}
}

func (w *worker) start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.eventsCh:
			if !ok {
				return
			}

			if err := w.eventsProcessor.ProcessEvent(ctx, event); err != nil {
				w.logger.Error("error processing event",
					zap.Int("worker", w.id), zap.Error(err))

				if w.reenqueue && markRetry(event) {
					select {
					case w.eventsCh <- event:
					default:
						w.logger.Warn("retry dropped, buffer full", zap.Int("worker", w.id))
					}
				}
			}
		}
	}
}

// Retryable events get a single re-enqueue after a failure.
type Retryable interface {
	Retry() bool
}

func markRetry(event any) bool {
	retryable, ok := event.(Retryable)
	if !ok {
		return false
	}

	return retryable.Retry()
}
