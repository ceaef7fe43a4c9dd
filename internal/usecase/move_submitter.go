package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

type moveRecorder interface {
	RecordMove(ctx context.Context, sessionID string, move *entity.Move) error
}

// MoveSubmitter stores human moves. Bots go through the bot notifier.
type MoveSubmitter struct {
	store  moveRecorder
	logger *slog.Logger
	now    func() time.Time
}

func NewMoveSubmitter(store moveRecorder, logger *slog.Logger) *MoveSubmitter {
	return &MoveSubmitter{
		store:  store,
		logger: logger.With("component", "move_submitter"),
		now:    time.Now,
	}
}

func (that *MoveSubmitter) SubmitMove(
	ctx context.Context,
	sessionID, gameID, playerID string,
	turnNumber, cell int,
) (*entity.Move, error) {
	log := that.logger.With("method", "SubmitMove", "sessionID", sessionID, "gameID", gameID, "playerID", playerID, "turnNumber", turnNumber)

	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", apperror.ErrInvalidPlayer)
	}

	move := &entity.Move{
		GameID:     gameID,
		TurnNumber: turnNumber,
		PlayerID:   playerID,
		Move:       cell,
		Timestamp:  that.now(),
	}

	if err := that.store.RecordMove(ctx, sessionID, move); err != nil {
		log.Debug("move rejected", "error", err)
		return nil, fmt.Errorf("failed to submit move: %w", err)
	}

	return move, nil
}
