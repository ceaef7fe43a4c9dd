// Package scheduler delivers delayed tasks. RedisQueue delivers at least
// once; MemoryQueue loses pending tasks on restart.
package scheduler

import (
	"context"
	"time"
)

// Handler receives the payload of a due task. RedisQueue retries a failed
// task unless the error wraps apperror.ErrInvalidTask.
type Handler func(ctx context.Context, payload map[string]any) error

type Queue interface {
	Enqueue(ctx context.Context, payload map[string]any, delay time.Duration) error

	// Run dispatches due tasks to handler, each in its own goroutine, until ctx
	// is done.
	Run(ctx context.Context, handler Handler) error
}
