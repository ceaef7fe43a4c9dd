package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
	"github.com/rocketscienceinc/gridgames-backend/internal/rules"
)

const defaultMaxTurnTime = 60

type gameStore interface {
	Create(ctx context.Context, state *entity.GameState) error
	GetGame(ctx context.Context, sessionID, gameID string) (*entity.GameState, error)
	GetTurn(ctx context.Context, sessionID, gameID string, turnNumber int) (*entity.Turn, error)
}

type turnStarter interface {
	StartTurn(ctx context.Context, sessionID, gameID string, turnNumber int, duration time.Duration)
}

type GameStarter struct {
	store   gameStore
	starter turnStarter
	logger  *slog.Logger
	now     func() time.Time
}

func NewGameStarter(store gameStore, starter turnStarter, logger *slog.Logger) *GameStarter {
	return &GameStarter{
		store:   store,
		starter: starter,
		logger:  logger.With("component", "game_starter"),
		now:     time.Now,
	}
}

// StartGame validates the setup, stores turn 0 and starts its clock.
func (that *GameStarter) StartGame(ctx context.Context, sessionID string, setup entity.GameSetup) (*entity.GameState, error) {
	log := that.logger.With("method", "StartGame", "sessionID", sessionID, "gameType", setup.GameKind)

	if setup.MaxTurnTime <= 0 {
		setup.MaxTurnTime = defaultMaxTurnTime
	}

	if err := rules.ValidateSetup(&setup); err != nil {
		log.Warn("rejected game setup", "error", err)
		return nil, fmt.Errorf("invalid game setup: %w", err)
	}

	engine, err := rules.ForKind(setup.GameKind)
	if err != nil {
		return nil, err
	}

	now := that.now()
	if setup.Seed == 0 {
		setup.Seed = rand.Int64()
	}
	setup.StartedAt = now

	first, err := engine.FirstTurn(&setup)
	if err != nil {
		return nil, fmt.Errorf("failed to build first turn: %w", err)
	}

	first.TurnNumber = 0
	first.StartTime = now
	first.EndTime = now.Add(setup.TurnDuration())

	state := &entity.GameState{
		SessionID:   sessionID,
		GameID:      uuid.NewString(),
		Setup:       setup,
		Turns:       []*entity.Turn{first},
		CurrentTurn: 0,
		GameOver:    first.GameOver,
	}

	if err = that.store.Create(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.Info("game started", "gameID", state.GameID, "players", len(first.AlivePlayers))

	if !first.GameOver {
		that.starter.StartTurn(ctx, sessionID, state.GameID, 0, setup.TurnDuration())
	}

	return state, nil
}

func (that *GameStarter) GetGame(ctx context.Context, sessionID, gameID string) (*entity.GameState, error) {
	state, err := that.store.GetGame(ctx, sessionID, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return state, nil
}

func (that *GameStarter) GetTurn(ctx context.Context, sessionID, gameID string, turnNumber int) (*entity.Turn, error) {
	turn, err := that.store.GetTurn(ctx, sessionID, gameID, turnNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get turn: %w", err)
	}

	return turn, nil
}
