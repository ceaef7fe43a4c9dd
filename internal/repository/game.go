package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

// Change notification channels.
const (
	MoveStatusChannel = "gridgames:movestatus"
	TurnsChannel      = "gridgames:turns"
)

const (
	fieldSetup       = "setup"
	fieldCurrentTurn = "current_turn"
	fieldGameOver    = "game_over"
)

// AdvanceFunc builds the next turn from what the transaction has read. A nil
// turn without error leaves the game untouched.
type AdvanceFunc = func(snapshot *entity.TurnSnapshot) (*entity.Turn, error)

type GameRepository interface {
	// Create stores the setup, turn 0 and the MoveStatus of turn 0.
	Create(ctx context.Context, state *entity.GameState) error
	GetGame(ctx context.Context, sessionID, gameID string) (*entity.GameState, error)
	GetTurn(ctx context.Context, sessionID, gameID string, turnNumber int) (*entity.Turn, error)
	GetMoveStatus(ctx context.Context, sessionID, gameID string, turnNumber int) (*entity.MoveStatus, error)

	// RecordMove stores a move for the current turn, marks the player as moved
	// and publishes on MoveStatusChannel in one atomic step.
	RecordMove(ctx context.Context, sessionID string, move *entity.Move) error

	// AdvanceTurn runs fn inside an optimistic transaction over the game and
	// the moves of turnNumber. The returned turn is committed together with
	// the new current turn number, its MoveStatus and a TurnsChannel event.
	AdvanceTurn(ctx context.Context, sessionID, gameID string, turnNumber int, fn AdvanceFunc) (*entity.Turn, error)

	// Subscribe streams the events published on channel until ctx is done.
	Subscribe(ctx context.Context, channel string) (<-chan entity.GameEvent, error)
}

// gameKeys share one hash tag so every key of a game lives in one slot.
type gameKeys struct {
	tag string
}

func newGameKeys(sessionID, gameID string) gameKeys {
	return gameKeys{tag: "game:{" + sessionID + ":" + gameID + "}"}
}

func (that gameKeys) meta() string  { return that.tag + ":meta" }
func (that gameKeys) turns() string { return that.tag + ":turns" }

func (that gameKeys) moves(turnNumber int) string {
	return that.tag + ":moves:" + strconv.Itoa(turnNumber)
}

func (that gameKeys) moved(turnNumber int) string {
	return that.tag + ":moved:" + strconv.Itoa(turnNumber)
}

func (that gameKeys) alive(turnNumber int) string {
	return that.tag + ":alive:" + strconv.Itoa(turnNumber)
}

// recordMoveScript result codes.
const (
	recordNotFound   = -1
	recordFinished   = -2
	recordNotCurrent = -3
	recordNotAlive   = -4
	recordDuplicate  = 0
)

// KEYS: meta, moves, moved, alive. ARGV: turn, player, move, channel, event.
var recordMoveScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if redis.call('HGET', KEYS[1], 'game_over') == '1' then
	return -2
end
if redis.call('HGET', KEYS[1], 'current_turn') ~= ARGV[1] then
	return -3
end
if redis.call('SISMEMBER', KEYS[4], ARGV[2]) == 0 then
	return -4
end
if redis.call('HSETNX', KEYS[2], ARGV[2], ARGV[3]) == 0 then
	return 0
end
redis.call('SADD', KEYS[3], ARGV[2])
redis.call('PUBLISH', ARGV[4], ARGV[5])
return 1
`)

type dbGame struct {
	client       *redis.Client
	txMaxElapsed time.Duration
}

func NewGameRepository(client *redis.Client, txMaxElapsed time.Duration) GameRepository {
	return &dbGame{
		client:       client,
		txMaxElapsed: txMaxElapsed,
	}
}

func (that *dbGame) Create(ctx context.Context, state *entity.GameState) error {
	keys := newGameKeys(state.SessionID, state.GameID)

	first := state.LatestTurn()
	if first == nil {
		return fmt.Errorf("game %s has no first turn", state.GameID)
	}

	setupJSON, err := json.Marshal(state.Setup)
	if err != nil {
		return fmt.Errorf("failed to marshal setup: %w", err)
	}

	turnJSON, err := json.Marshal(first)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	eventJSON, err := json.Marshal(entity.GameEvent{SessionID: state.SessionID, GameID: state.GameID, TurnNumber: first.TurnNumber})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = that.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, keys.meta()).Result()
		if err != nil {
			return fmt.Errorf("failed to check game: %w", err)
		}

		if exists > 0 {
			return apperror.ErrGameAlreadyExists
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, keys.meta(),
				fieldSetup, setupJSON,
				fieldCurrentTurn, first.TurnNumber,
				fieldGameOver, flag(first.GameOver),
			)
			pipe.RPush(ctx, keys.turns(), turnJSON)
			if len(first.AlivePlayers) > 0 {
				pipe.SAdd(ctx, keys.alive(first.TurnNumber), members(first.AlivePlayers)...)
			}
			pipe.Publish(ctx, TurnsChannel, eventJSON)

			return nil
		})

		return err
	}, keys.meta())

	switch {
	case errors.Is(err, apperror.ErrGameAlreadyExists):
		return err
	case errors.Is(err, redis.TxFailedErr):
		return apperror.ErrGameAlreadyExists
	case err != nil:
		return fmt.Errorf("failed to create game: %w", err)
	}

	return nil
}

func (that *dbGame) GetGame(ctx context.Context, sessionID, gameID string) (*entity.GameState, error) {
	keys := newGameKeys(sessionID, gameID)

	meta, err := that.client.HGetAll(ctx, keys.meta()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	state, err := decodeMeta(sessionID, gameID, meta)
	if err != nil {
		return nil, err
	}

	raw, err := that.client.LRange(ctx, keys.turns(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get turns: %w", err)
	}

	state.Turns = make([]*entity.Turn, 0, len(raw))
	for _, item := range raw {
		turn, err := decodeTurn(item)
		if err != nil {
			return nil, err
		}
		state.Turns = append(state.Turns, turn)
	}

	return state, nil
}

func (that *dbGame) GetTurn(ctx context.Context, sessionID, gameID string, turnNumber int) (*entity.Turn, error) {
	keys := newGameKeys(sessionID, gameID)

	if err := that.ensureGame(ctx, keys); err != nil {
		return nil, err
	}

	raw, err := that.client.LIndex(ctx, keys.turns(), int64(turnNumber)).Result()
	if errors.Is(err, redis.Nil) || turnNumber < 0 {
		return nil, apperror.ErrTurnNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get turn: %w", err)
	}

	return decodeTurn(raw)
}

func (that *dbGame) GetMoveStatus(ctx context.Context, sessionID, gameID string, turnNumber int) (*entity.MoveStatus, error) {
	keys := newGameKeys(sessionID, gameID)

	if err := that.ensureGame(ctx, keys); err != nil {
		return nil, err
	}

	alive, err := that.client.SMembers(ctx, keys.alive(turnNumber)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get alive players: %w", err)
	}

	moved, err := that.client.SMembers(ctx, keys.moved(turnNumber)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get moved players: %w", err)
	}

	slices.Sort(alive)
	slices.Sort(moved)

	return &entity.MoveStatus{TurnNumber: turnNumber, AlivePlayerIDs: alive, MovedPlayerIDs: moved}, nil
}

func (that *dbGame) RecordMove(ctx context.Context, sessionID string, move *entity.Move) error {
	keys := newGameKeys(sessionID, move.GameID)

	moveJSON, err := json.Marshal(move)
	if err != nil {
		return fmt.Errorf("failed to marshal move: %w", err)
	}

	eventJSON, err := json.Marshal(entity.GameEvent{SessionID: sessionID, GameID: move.GameID, TurnNumber: move.TurnNumber})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	code, err := recordMoveScript.Run(ctx, that.client,
		[]string{keys.meta(), keys.moves(move.TurnNumber), keys.moved(move.TurnNumber), keys.alive(move.TurnNumber)},
		move.TurnNumber, move.PlayerID, moveJSON, MoveStatusChannel, eventJSON,
	).Int()
	if err != nil {
		return fmt.Errorf("failed to record move: %w", err)
	}

	return recordResult(code)
}

func recordResult(code int) error {
	switch code {
	case recordNotFound:
		return apperror.ErrGameNotFound
	case recordFinished:
		return apperror.ErrGameFinished
	case recordNotCurrent:
		return apperror.ErrTurnNotCurrent
	case recordNotAlive:
		return apperror.ErrPlayerNotAlive
	case recordDuplicate:
		return apperror.ErrMoveAlreadyRecorded
	}

	return nil
}

func (that *dbGame) AdvanceTurn(
	ctx context.Context,
	sessionID, gameID string,
	turnNumber int,
	fn AdvanceFunc,
) (*entity.Turn, error) {
	keys := newGameKeys(sessionID, gameID)

	var committed *entity.Turn
	txf := func(tx *redis.Tx) error {
		committed = nil

		snapshot, err := readSnapshot(ctx, tx, keys, sessionID, gameID, turnNumber)
		if err != nil {
			return err
		}

		next, err := fn(snapshot)
		if err != nil || next == nil {
			return err
		}

		turnJSON, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal turn: %w", err)
		}

		eventJSON, err := json.Marshal(entity.GameEvent{SessionID: sessionID, GameID: gameID, TurnNumber: next.TurnNumber})
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, keys.meta(), fieldCurrentTurn, next.TurnNumber, fieldGameOver, flag(next.GameOver))
			pipe.RPush(ctx, keys.turns(), turnJSON)
			if len(next.AlivePlayers) > 0 {
				pipe.SAdd(ctx, keys.alive(next.TurnNumber), members(next.AlivePlayers)...)
			}
			pipe.Publish(ctx, TurnsChannel, eventJSON)

			return nil
		})
		if err != nil {
			return err
		}

		committed = next

		return nil
	}

	operation := func() error {
		err := that.client.Watch(ctx, txf, keys.meta(), keys.moves(turnNumber))
		if err == nil || errors.Is(err, redis.TxFailedErr) {
			return err
		}

		return backoff.Permanent(err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	policy.MaxElapsedTime = that.txMaxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("failed to advance turn %d: %w", turnNumber, err)
	}

	return committed, nil
}

func (that *dbGame) Subscribe(ctx context.Context, channel string) (<-chan entity.GameEvent, error) {
	pubsub := that.client.Subscribe(ctx, channel)

	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	out := make(chan entity.GameEvent)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case message, ok := <-messages:
				if !ok {
					return
				}

				var event entity.GameEvent
				if err := json.Unmarshal([]byte(message.Payload), &event); err != nil {
					continue
				}

				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (that *dbGame) ensureGame(ctx context.Context, keys gameKeys) error {
	exists, err := that.client.Exists(ctx, keys.meta()).Result()
	if err != nil {
		return fmt.Errorf("failed to check game: %w", err)
	}

	if exists == 0 {
		return apperror.ErrGameNotFound
	}

	return nil
}

func readSnapshot(
	ctx context.Context,
	tx *redis.Tx,
	keys gameKeys,
	sessionID, gameID string,
	turnNumber int,
) (*entity.TurnSnapshot, error) {
	meta, err := tx.HGetAll(ctx, keys.meta()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	state, err := decodeMeta(sessionID, gameID, meta)
	if err != nil {
		return nil, err
	}

	snapshot := &entity.TurnSnapshot{
		Setup:       state.Setup,
		CurrentTurn: state.CurrentTurn,
		GameOver:    state.GameOver,
	}

	raw, err := tx.LIndex(ctx, keys.turns(), int64(turnNumber)).Result()
	switch {
	case errors.Is(err, redis.Nil) || turnNumber < 0:
		return snapshot, nil
	case err != nil:
		return nil, fmt.Errorf("failed to get turn: %w", err)
	}

	if snapshot.Turn, err = decodeTurn(raw); err != nil {
		return nil, err
	}

	moves, err := tx.HGetAll(ctx, keys.moves(turnNumber)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get moves: %w", err)
	}

	for _, item := range moves {
		var move entity.Move
		if err := json.Unmarshal([]byte(item), &move); err != nil {
			return nil, fmt.Errorf("failed to unmarshal move: %w", err)
		}
		snapshot.Moves = append(snapshot.Moves, move)
	}

	slices.SortFunc(snapshot.Moves, func(a, b entity.Move) int {
		return state.Setup.PlayerIndex(a.PlayerID) - state.Setup.PlayerIndex(b.PlayerID)
	})

	return snapshot, nil
}

func decodeMeta(sessionID, gameID string, meta map[string]string) (*entity.GameState, error) {
	if len(meta) == 0 {
		return nil, apperror.ErrGameNotFound
	}

	state := &entity.GameState{SessionID: sessionID, GameID: gameID, GameOver: meta[fieldGameOver] == "1"}

	if err := json.Unmarshal([]byte(meta[fieldSetup]), &state.Setup); err != nil {
		return nil, fmt.Errorf("failed to unmarshal setup: %w", err)
	}

	current, err := strconv.Atoi(meta[fieldCurrentTurn])
	if err != nil {
		return nil, fmt.Errorf("failed to parse current turn: %w", err)
	}
	state.CurrentTurn = current

	return state, nil
}

func decodeTurn(raw string) (*entity.Turn, error) {
	var turn entity.Turn
	if err := json.Unmarshal([]byte(raw), &turn); err != nil {
		return nil, fmt.Errorf("failed to unmarshal turn: %w", err)
	}

	return &turn, nil
}

func flag(value bool) string {
	if value {
		return "1"
	}

	return "0"
}

func members(ids []string) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, id)
	}

	return out
}
