package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
	"github.com/rocketscienceinc/gridgames-backend/internal/metrics"
)

// ExpirationHandler forces a turn once its time is up. Moves that never
// arrived are replaced by the default move of the game.
type ExpirationHandler struct {
	advancer      turnAdvancer
	logger        *slog.Logger
	maxTurnNumber int
}

// NewExpirationHandler rejects tasks for turns above maxTurnNumber. Moves keep
// advancing a game past it.
func NewExpirationHandler(advancer turnAdvancer, logger *slog.Logger, maxTurnNumber int) *ExpirationHandler {
	return &ExpirationHandler{
		advancer:      advancer,
		logger:        logger.With("component", "turn_expiration"),
		maxTurnNumber: maxTurnNumber,
	}
}

func (that *ExpirationHandler) Handle(ctx context.Context, payload map[string]any) error {
	log := that.logger.With("method", "Handle")

	task, err := DecodeExpirationTask(payload)
	if err != nil {
		log.Error("invalid expiration task", "error", err, "payload", payload)
		metrics.Expirations.WithLabelValues(metrics.ExpirationInvalid).Inc()

		return err
	}

	log = log.With("sessionID", task.SessionID, "gameID", task.GameID, "turnNumber", task.TurnNumber)

	if task.TurnNumber > that.maxTurnNumber {
		log.Error("turn number above ceiling", "ceiling", that.maxTurnNumber)
		metrics.Expirations.WithLabelValues(metrics.ExpirationInvalid).Inc()

		return fmt.Errorf("%w: %w: %d > %d", apperror.ErrInvalidTask, apperror.ErrTurnCeilingExceeded, task.TurnNumber, that.maxTurnNumber)
	}

	result, err := that.advancer.Advance(ctx, task.SessionID, task.GameID, task.TurnNumber)
	if err != nil {
		metrics.Expirations.WithLabelValues(metrics.ExpirationFailed).Inc()
		return fmt.Errorf("failed to expire turn: %w", err)
	}

	metrics.Expirations.WithLabelValues(metrics.ExpirationHandled).Inc()
	if result.NewTurnCreated {
		log.Info("turn expired", "newTurnNumber", result.NewTurnNumber)
	}

	return nil
}

// DecodeExpirationTask reads a loosely typed task payload. Every field is
// required and turnNumber must be an integer.
func DecodeExpirationTask(payload map[string]any) (*entity.ExpirationTask, error) {
	var (
		task     entity.ExpirationTask
		metadata mapstructure.Metadata
	)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:   &task,
		Metadata: &metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder: %w", err)
	}

	if err = decoder.Decode(payload); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidTask, err)
	}

	if len(metadata.Unset) > 0 {
		return nil, fmt.Errorf("%w: missing %v", apperror.ErrInvalidTask, metadata.Unset)
	}

	if task.SessionID == "" || task.GameID == "" || task.TurnNumber < 0 {
		return nil, fmt.Errorf("%w: %+v", apperror.ErrInvalidTask, task)
	}

	return &task, nil
}
