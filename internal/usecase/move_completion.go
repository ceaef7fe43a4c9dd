package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
	"github.com/rocketscienceinc/gridgames-backend/internal/repository"
)

type moveStatusStore interface {
	Subscribe(ctx context.Context, channel string) (<-chan entity.GameEvent, error)
	GetMoveStatus(ctx context.Context, sessionID, gameID string, turnNumber int) (*entity.MoveStatus, error)
}

type turnAdvancer interface {
	Advance(ctx context.Context, sessionID, gameID string, turnNumber int) (*TurnResult, error)
}

// MoveCompletionDetector advances a turn as soon as every alive participant
// has moved.
type MoveCompletionDetector struct {
	store    moveStatusStore
	advancer turnAdvancer
	logger   *slog.Logger
}

func NewMoveCompletionDetector(store moveStatusStore, advancer turnAdvancer, logger *slog.Logger) *MoveCompletionDetector {
	return &MoveCompletionDetector{
		store:    store,
		advancer: advancer,
		logger:   logger.With("component", "move_completion"),
	}
}

// Run handles move status events until ctx is done.
func (that *MoveCompletionDetector) Run(ctx context.Context) error {
	events, err := that.store.Subscribe(ctx, repository.MoveStatusChannel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to move status: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}

			go that.HandleEvent(ctx, event)
		}
	}
}

func (that *MoveCompletionDetector) HandleEvent(ctx context.Context, event entity.GameEvent) {
	log := that.logger.With("method", "HandleEvent", "sessionID", event.SessionID, "gameID", event.GameID, "turnNumber", event.TurnNumber)

	status, err := that.store.GetMoveStatus(ctx, event.SessionID, event.GameID, event.TurnNumber)
	if err != nil {
		log.Error("failed to get move status", "error", err)
		return
	}

	if !status.AllMoved() {
		log.Debug("waiting for moves", "moved", len(status.MovedPlayerIDs), "alive", len(status.AlivePlayerIDs))
		return
	}

	if _, err = that.advancer.Advance(ctx, event.SessionID, event.GameID, event.TurnNumber); err != nil {
		log.Error("failed to advance turn", "error", err)
	}
}
