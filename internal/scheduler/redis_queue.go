package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
)

const (
	tasksKey  = "gridgames:tasks"
	leasesKey = "gridgames:tasks:leased"
)

type envelope struct {
	ID      string         `json:"id"`
	Payload map[string]any `json:"payload"`
}

// KEYS: tasks, leases. ARGV: now, lease deadline, batch size.
// Expired leases go back to the due set before due tasks are leased.
var leaseScript = redis.NewScript(`
local expired = redis.call('ZRANGEBYSCORE', KEYS[2], '-inf', ARGV[1])
for _, member in ipairs(expired) do
	redis.call('ZREM', KEYS[2], member)
	redis.call('ZADD', KEYS[1], ARGV[1], member)
end
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[3]))
for _, member in ipairs(due) do
	redis.call('ZREM', KEYS[1], member)
	redis.call('ZADD', KEYS[2], ARGV[2], member)
end
return due
`)

// RedisQueue keeps tasks in a sorted set scored by their due time. A poller
// leases due members into a second sorted set scored by the lease deadline
// and deletes them once the handler succeeds. Leases that run out are handed
// out again, so a task outlives a crashed or failing handler.
type RedisQueue struct {
	client       *redis.Client
	logger       *slog.Logger
	pollInterval time.Duration
	batchSize    int64
	leaseTimeout time.Duration
}

func NewRedisQueue(
	client *redis.Client,
	logger *slog.Logger,
	pollInterval time.Duration,
	batchSize int,
	leaseTimeout time.Duration,
) *RedisQueue {
	return &RedisQueue{
		client:       client,
		logger:       logger.With("component", "redis_queue"),
		pollInterval: pollInterval,
		batchSize:    int64(batchSize),
		leaseTimeout: leaseTimeout,
	}
}

func (that *RedisQueue) Enqueue(ctx context.Context, payload map[string]any, delay time.Duration) error {
	member, err := json.Marshal(envelope{ID: uuid.NewString(), Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	due := time.Now().Add(delay).UnixMilli()
	if err = that.client.ZAdd(ctx, tasksKey, redis.Z{Score: float64(due), Member: member}).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	return nil
}

func (that *RedisQueue) Run(ctx context.Context, handler Handler) error {
	log := that.logger.With("method", "Run")

	ticker := time.NewTicker(that.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := that.poll(ctx, handler); err != nil {
				log.Error("failed to poll tasks", "error", err)
			}
		}
	}
}

func (that *RedisQueue) poll(ctx context.Context, handler Handler) error {
	log := that.logger.With("method", "poll")

	now := time.Now()
	members, err := leaseScript.Run(ctx, that.client,
		[]string{tasksKey, leasesKey},
		now.UnixMilli(), now.Add(that.leaseTimeout).UnixMilli(), that.batchSize,
	).StringSlice()
	if err != nil {
		return fmt.Errorf("failed to lease due tasks: %w", err)
	}

	for _, member := range members {
		task, err := decodeEnvelope(member)
		if err != nil {
			log.Error("dropping unreadable task", "error", err)
			that.ack(ctx, log, member)

			continue
		}

		go that.dispatch(ctx, log.With("taskID", task.ID), handler, member, task.Payload)
	}

	return nil
}

// dispatch acks the task unless the handler failed with a retryable error.
// A retryable failure keeps the lease, which expires into a new delivery.
func (that *RedisQueue) dispatch(ctx context.Context, log *slog.Logger, handler Handler, member string, payload map[string]any) {
	err := handler(ctx, payload)
	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrInvalidTask):
		log.Error("dropping rejected task", "error", err)
	default:
		log.Error("task failed, retrying after lease timeout", "error", err, "leaseTimeout", that.leaseTimeout)
		return
	}

	that.ack(ctx, log, member)
}

func (that *RedisQueue) ack(ctx context.Context, log *slog.Logger, member string) {
	if err := that.client.ZRem(context.WithoutCancel(ctx), leasesKey, member).Err(); err != nil {
		log.Error("failed to ack task", "error", err)
	}
}

// decodeEnvelope keeps numbers as json.Number so handlers can tell an
// integer from a fraction.
func decodeEnvelope(member string) (*envelope, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(member)))
	decoder.UseNumber()

	var task envelope
	if err := decoder.Decode(&task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}

	return &task, nil
}

// Pending reports how many tasks are waiting or leased.
func (that *RedisQueue) Pending(ctx context.Context) (int64, error) {
	waiting, err := that.client.ZCard(ctx, tasksKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	leased, err := that.client.ZCard(ctx, leasesKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count leases: %w", err)
	}

	return waiting + leased, nil
}
