package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

type memoryRecord struct {
	mu sync.Mutex

	setup    entity.GameSetup
	turns    []*entity.Turn
	current  int
	gameOver bool
	moves    map[int]map[string]entity.Move
	alive    map[int][]string
}

type memorySubscriber struct {
	ctx context.Context
	out chan entity.GameEvent
}

// memoryGame keeps games in process. A per-game mutex replaces the optimistic
// transaction, so AdvanceTurn never retries.
type memoryGame struct {
	mu          sync.RWMutex
	games       map[string]*memoryRecord
	subscribers map[string][]*memorySubscriber
}

func NewMemoryGameRepository() GameRepository {
	return &memoryGame{
		games:       make(map[string]*memoryRecord),
		subscribers: make(map[string][]*memorySubscriber),
	}
}

func (that *memoryGame) Create(_ context.Context, state *entity.GameState) error {
	first := state.LatestTurn()
	if first == nil {
		return apperror.ErrTurnNotFound
	}

	key := newGameKeys(state.SessionID, state.GameID).tag

	that.mu.Lock()
	if _, ok := that.games[key]; ok {
		that.mu.Unlock()
		return apperror.ErrGameAlreadyExists
	}

	that.games[key] = &memoryRecord{
		setup:    state.Setup,
		turns:    []*entity.Turn{first.Clone()},
		current:  first.TurnNumber,
		gameOver: first.GameOver,
		moves:    map[int]map[string]entity.Move{},
		alive:    map[int][]string{first.TurnNumber: slices.Clone(first.AlivePlayers)},
	}
	that.mu.Unlock()

	that.publish(TurnsChannel, entity.GameEvent{SessionID: state.SessionID, GameID: state.GameID, TurnNumber: first.TurnNumber})

	return nil
}

func (that *memoryGame) record(sessionID, gameID string) (*memoryRecord, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	record, ok := that.games[newGameKeys(sessionID, gameID).tag]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return record, nil
}

func (that *memoryGame) GetGame(_ context.Context, sessionID, gameID string) (*entity.GameState, error) {
	record, err := that.record(sessionID, gameID)
	if err != nil {
		return nil, err
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	state := &entity.GameState{
		SessionID:   sessionID,
		GameID:      gameID,
		Setup:       record.setup,
		Turns:       make([]*entity.Turn, 0, len(record.turns)),
		CurrentTurn: record.current,
		GameOver:    record.gameOver,
	}

	for _, turn := range record.turns {
		state.Turns = append(state.Turns, turn.Clone())
	}

	return state, nil
}

func (that *memoryGame) GetTurn(_ context.Context, sessionID, gameID string, turnNumber int) (*entity.Turn, error) {
	record, err := that.record(sessionID, gameID)
	if err != nil {
		return nil, err
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	if turnNumber < 0 || turnNumber >= len(record.turns) {
		return nil, apperror.ErrTurnNotFound
	}

	return record.turns[turnNumber].Clone(), nil
}

func (that *memoryGame) GetMoveStatus(_ context.Context, sessionID, gameID string, turnNumber int) (*entity.MoveStatus, error) {
	record, err := that.record(sessionID, gameID)
	if err != nil {
		return nil, err
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	alive := slices.Clone(record.alive[turnNumber])
	moved := make([]string, 0, len(record.moves[turnNumber]))
	for id := range record.moves[turnNumber] {
		moved = append(moved, id)
	}

	slices.Sort(alive)
	slices.Sort(moved)

	return &entity.MoveStatus{TurnNumber: turnNumber, AlivePlayerIDs: alive, MovedPlayerIDs: moved}, nil
}

func (that *memoryGame) RecordMove(_ context.Context, sessionID string, move *entity.Move) error {
	record, err := that.record(sessionID, move.GameID)
	if err != nil {
		return err
	}

	record.mu.Lock()
	switch {
	case record.gameOver:
		err = apperror.ErrGameFinished
	case record.current != move.TurnNumber:
		err = apperror.ErrTurnNotCurrent
	case !slices.Contains(record.alive[move.TurnNumber], move.PlayerID):
		err = apperror.ErrPlayerNotAlive
	}

	if err == nil {
		moves := record.moves[move.TurnNumber]
		if moves == nil {
			moves = make(map[string]entity.Move)
			record.moves[move.TurnNumber] = moves
		}

		if _, ok := moves[move.PlayerID]; ok {
			err = apperror.ErrMoveAlreadyRecorded
		} else {
			moves[move.PlayerID] = *move
		}
	}
	record.mu.Unlock()

	if err != nil {
		return err
	}

	that.publish(MoveStatusChannel, entity.GameEvent{SessionID: sessionID, GameID: move.GameID, TurnNumber: move.TurnNumber})

	return nil
}

func (that *memoryGame) AdvanceTurn(
	_ context.Context,
	sessionID, gameID string,
	turnNumber int,
	fn AdvanceFunc,
) (*entity.Turn, error) {
	record, err := that.record(sessionID, gameID)
	if err != nil {
		return nil, err
	}

	record.mu.Lock()

	snapshot := &entity.TurnSnapshot{
		Setup:       record.setup,
		CurrentTurn: record.current,
		GameOver:    record.gameOver,
	}

	if turnNumber >= 0 && turnNumber < len(record.turns) {
		snapshot.Turn = record.turns[turnNumber].Clone()
		for _, player := range record.setup.GamePlayers {
			if move, ok := record.moves[turnNumber][player.ID]; ok {
				snapshot.Moves = append(snapshot.Moves, move)
			}
		}
	}

	next, err := fn(snapshot)
	if err != nil || next == nil {
		record.mu.Unlock()
		return nil, err
	}

	record.turns = append(record.turns, next.Clone())
	record.current = next.TurnNumber
	record.gameOver = next.GameOver
	record.alive[next.TurnNumber] = slices.Clone(next.AlivePlayers)
	record.mu.Unlock()

	that.publish(TurnsChannel, entity.GameEvent{SessionID: sessionID, GameID: gameID, TurnNumber: next.TurnNumber})

	return next, nil
}

func (that *memoryGame) Subscribe(ctx context.Context, channel string) (<-chan entity.GameEvent, error) {
	subscriber := &memorySubscriber{ctx: ctx, out: make(chan entity.GameEvent, 64)}

	that.mu.Lock()
	that.subscribers[channel] = append(that.subscribers[channel], subscriber)
	that.mu.Unlock()

	go func() {
		<-ctx.Done()

		that.mu.Lock()
		that.subscribers[channel] = slices.DeleteFunc(that.subscribers[channel], func(s *memorySubscriber) bool {
			return s == subscriber
		})
		that.mu.Unlock()
	}()

	return subscriber.out, nil
}

// publish delivers without holding any game lock. Slow subscribers get the
// event from a goroutine so writers never block.
func (that *memoryGame) publish(channel string, event entity.GameEvent) {
	that.mu.RLock()
	subscribers := slices.Clone(that.subscribers[channel])
	that.mu.RUnlock()

	for _, subscriber := range subscribers {
		select {
		case subscriber.out <- event:
		default:
			go func() {
				select {
				case subscriber.out <- event:
				case <-subscriber.ctx.Done():
				}
			}()
		}
	}
}
