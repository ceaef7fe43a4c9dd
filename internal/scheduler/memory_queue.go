package scheduler

import (
	"context"
	"log/slog"
	"maps"
	"time"
)

// MemoryQueue fires tasks from timers in this process. Tasks are lost on
// restart.
type MemoryQueue struct {
	logger *slog.Logger
	due    chan map[string]any
	done   chan struct{}
}

func NewMemoryQueue(logger *slog.Logger) *MemoryQueue {
	return &MemoryQueue{
		logger: logger.With("component", "memory_queue"),
		due:    make(chan map[string]any),
		done:   make(chan struct{}),
	}
}

func (that *MemoryQueue) Enqueue(_ context.Context, payload map[string]any, delay time.Duration) error {
	payload = maps.Clone(payload)

	time.AfterFunc(delay, func() {
		select {
		case that.due <- payload:
		case <-that.done:
		}
	})

	return nil
}

func (that *MemoryQueue) Run(ctx context.Context, handler Handler) error {
	log := that.logger.With("method", "Run")
	defer close(that.done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload := <-that.due:
			go dispatch(ctx, log, handler, payload)
		}
	}
}

func dispatch(ctx context.Context, log *slog.Logger, handler Handler, payload map[string]any) {
	if err := handler(ctx, payload); err != nil {
		log.Error("task failed", "error", err)
	}
}
