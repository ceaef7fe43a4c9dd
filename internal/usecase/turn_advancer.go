package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

type turnProcessor interface {
	ProcessTurn(ctx context.Context, sessionID, gameID string, turnNumber int) (*TurnResult, error)
}

type taskQueue interface {
	Enqueue(ctx context.Context, payload map[string]any, delay time.Duration) error
}

type botNotifier interface {
	NotifyBots(ctx context.Context, sessionID, gameID string, turnNumber int)
}

// TurnAdvancer is the one entry point every trigger uses to move a game on.
// After a new turn is committed it arms the expiration of that turn and asks
// the bots for their moves.
type TurnAdvancer struct {
	processor turnProcessor
	queue     taskQueue
	bots      botNotifier
	logger    *slog.Logger
}

func NewTurnAdvancer(processor turnProcessor, queue taskQueue, bots botNotifier, logger *slog.Logger) *TurnAdvancer {
	return &TurnAdvancer{
		processor: processor,
		queue:     queue,
		bots:      bots,
		logger:    logger.With("component", "turn_advancer"),
	}
}

func (that *TurnAdvancer) Advance(ctx context.Context, sessionID, gameID string, turnNumber int) (*TurnResult, error) {
	result, err := that.processor.ProcessTurn(ctx, sessionID, gameID, turnNumber)
	if err != nil {
		return nil, err
	}

	if result.NewTurnCreated && !result.GameOver {
		that.StartTurn(ctx, sessionID, gameID, result.NewTurnNumber, result.TurnDuration)
	}

	return result, nil
}

// StartTurn runs the follow-ons of a committed turn. Failures are logged and
// never undo the commit.
func (that *TurnAdvancer) StartTurn(ctx context.Context, sessionID, gameID string, turnNumber int, duration time.Duration) {
	log := that.logger.With("method", "StartTurn", "sessionID", sessionID, "gameID", gameID, "turnNumber", turnNumber)

	task := entity.ExpirationTask{SessionID: sessionID, GameID: gameID, TurnNumber: turnNumber}
	if err := that.queue.Enqueue(ctx, task.Payload(), duration); err != nil {
		log.Error("failed to schedule turn expiration", "error", err)
	}

	go that.bots.NotifyBots(context.WithoutCancel(ctx), sessionID, gameID, turnNumber)
}
