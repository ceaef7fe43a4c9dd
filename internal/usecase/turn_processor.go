package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
	"github.com/rocketscienceinc/gridgames-backend/internal/metrics"
	"github.com/rocketscienceinc/gridgames-backend/internal/rules"
)

type turnStore interface {
	AdvanceTurn(
		ctx context.Context,
		sessionID, gameID string,
		turnNumber int,
		fn func(snapshot *entity.TurnSnapshot) (*entity.Turn, error),
	) (*entity.Turn, error)
}

// TurnResult is the outcome of one ProcessTurn call. NewTurnCreated is false
// for every idempotent no-op.
type TurnResult struct {
	NewTurnCreated bool
	NewTurnNumber  int
	TurnDuration   time.Duration
	GameOver       bool
}

// TurnProcessor resolves a turn exactly once. All of its reads and the write
// of the next turn share one transaction, so concurrent triggers for the same
// turn converge on a single new turn.
type TurnProcessor struct {
	store  turnStore
	logger *slog.Logger
	now    func() time.Time
}

func NewTurnProcessor(store turnStore, logger *slog.Logger) *TurnProcessor {
	return &TurnProcessor{
		store:  store,
		logger: logger.With("component", "turn_processor"),
		now:    time.Now,
	}
}

func (that *TurnProcessor) ProcessTurn(ctx context.Context, sessionID, gameID string, turnNumber int) (*TurnResult, error) {
	log := that.logger.With("method", "ProcessTurn", "sessionID", sessionID, "gameID", gameID, "turnNumber", turnNumber)

	var duration time.Duration
	turn, err := that.store.AdvanceTurn(ctx, sessionID, gameID, turnNumber, func(snapshot *entity.TurnSnapshot) (*entity.Turn, error) {
		duration = snapshot.Setup.TurnDuration()
		return that.nextTurn(log, snapshot, turnNumber)
	})

	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		log.Warn("game not found")
		metrics.TurnsProcessed.WithLabelValues(metrics.TurnNoop).Inc()

		return &TurnResult{}, nil
	case err != nil:
		log.Error("failed to process turn", "error", err)
		metrics.TurnsProcessed.WithLabelValues(metrics.TurnError).Inc()

		return nil, fmt.Errorf("failed to process turn: %w", err)
	case turn == nil:
		metrics.TurnsProcessed.WithLabelValues(metrics.TurnNoop).Inc()

		return &TurnResult{}, nil
	}

	log.Info("turn created", "newTurnNumber", turn.TurnNumber, "gameOver", turn.GameOver, "alive", len(turn.AlivePlayers))
	metrics.TurnsProcessed.WithLabelValues(metrics.TurnCreated).Inc()

	return &TurnResult{
		NewTurnCreated: true,
		NewTurnNumber:  turn.TurnNumber,
		TurnDuration:   duration,
		GameOver:       turn.GameOver,
	}, nil
}

// nextTurn returns nil when the turn was already processed or cannot be.
func (that *TurnProcessor) nextTurn(log *slog.Logger, snapshot *entity.TurnSnapshot, turnNumber int) (*entity.Turn, error) {
	switch {
	case snapshot.CurrentTurn != turnNumber:
		log.Debug("turn is not current", "currentTurn", snapshot.CurrentTurn)
		return nil, nil
	case snapshot.GameOver:
		log.Debug("game is over")
		return nil, nil
	case snapshot.Turn == nil:
		log.Warn("turn does not exist")
		return nil, nil
	case snapshot.Turn.GameOver:
		return nil, nil
	}

	setup := &snapshot.Setup
	engine, err := rules.ForKind(setup.GameKind)
	if err != nil {
		return nil, err
	}

	current := snapshot.Turn
	now := that.now()
	moves := completeMoves(engine, setup, current, snapshot.Moves, now)

	next, err := engine.ApplyMoves(setup, current, moves)
	if errors.Is(err, apperror.ErrGameFinished) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to apply moves: %w", err)
	}

	next.TurnNumber = turnNumber + 1
	next.StartTime = now
	next.EndTime = now.Add(setup.TurnDuration())
	next.AlivePlayers = slices.DeleteFunc(next.AlivePlayers, func(id string) bool {
		return !current.IsAlive(id)
	})

	return next, nil
}

// completeMoves returns one move per alive participant in roster order.
// Missing moves get the engine default and moves of anyone else are dropped.
func completeMoves(
	engine rules.Engine,
	setup *entity.GameSetup,
	current *entity.Turn,
	recorded []entity.Move,
	now time.Time,
) []entity.Move {
	byPlayer := make(map[string]entity.Move, len(recorded))
	for _, move := range recorded {
		byPlayer[move.PlayerID] = move
	}

	out := make([]entity.Move, 0, len(current.AlivePlayers))
	for _, player := range setup.GamePlayers {
		if !current.IsAlive(player.ID) {
			continue
		}

		if move, ok := byPlayer[player.ID]; ok {
			out = append(out, move)
			continue
		}

		out = append(out, entity.Move{
			TurnNumber: current.TurnNumber,
			PlayerID:   player.ID,
			Move:       engine.DefaultMove(setup, current, player.ID),
			Timestamp:  now,
		})
	}

	return out
}
