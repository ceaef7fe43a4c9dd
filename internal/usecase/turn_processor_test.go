package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
	"github.com/rocketscienceinc/gridgames-backend/internal/repository"
	"github.com/rocketscienceinc/gridgames-backend/internal/rules"
	"github.com/rocketscienceinc/gridgames-backend/testing/suite"
)

func players(kind string, ids ...string) []entity.GamePlayer {
	out := make([]entity.GamePlayer, 0, len(ids))
	for _, id := range ids {
		out = append(out, entity.GamePlayer{ID: id, Type: kind})
	}

	return out
}

// seedGame stores turn 0 of a new game directly.
func seedGame(t *testing.T, repo repository.GameRepository, gameID string, setup entity.GameSetup) *entity.GameState {
	t.Helper()

	engine, err := rules.ForKind(setup.GameKind)
	require.NoError(t, err)

	first, err := engine.FirstTurn(&setup)
	require.NoError(t, err)

	state := &entity.GameState{SessionID: "s", GameID: gameID, Setup: setup, Turns: []*entity.Turn{first}}
	require.NoError(t, repo.Create(context.Background(), state))

	return state
}

func ticTacToe() entity.GameSetup {
	return entity.GameSetup{
		GameKind:    entity.TacticToes,
		BoardWidth:  3,
		BoardHeight: 3,
		GamePlayers: players(entity.HumanType, "a", "b"),
		MaxTurnTime: 30,
		Seed:        1,
	}
}

func snakeDuel(kind string) entity.GameSetup {
	return entity.GameSetup{
		GameKind:    entity.Snek,
		BoardWidth:  9,
		BoardHeight: 9,
		GamePlayers: players(kind, "a", "b"),
		MaxTurnTime: 10,
		Seed:        1,
	}
}

func move(gameID, playerID string, turnNumber, cell int) *entity.Move {
	return &entity.Move{GameID: gameID, TurnNumber: turnNumber, PlayerID: playerID, Move: cell}
}

func TestTurnProcessor_ProcessTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates the next turn from recorded moves", func(t *testing.T) {
		// Given: both players of a tic-tac-toe game moved
		repo := repository.NewMemoryGameRepository()
		seedGame(t, repo, "g1", ticTacToe())
		require.NoError(t, repo.RecordMove(ctx, "s", move("g1", "a", 0, 0)))
		require.NoError(t, repo.RecordMove(ctx, "s", move("g1", "b", 0, 4)))

		processor := NewTurnProcessor(repo, suite.Logger())

		// When: turn 0 is processed
		result, err := processor.ProcessTurn(ctx, "s", "g1", 0)

		// Then: turn 1 holds both pieces and a fresh clock
		require.NoError(t, err)
		assert.Equal(t, &TurnResult{NewTurnCreated: true, NewTurnNumber: 1, TurnDuration: 30 * time.Second}, result)

		turn, err := repo.GetTurn(ctx, "s", "g1", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, turn.TurnNumber)
		assert.Equal(t, []int{0}, turn.PlayerPieces["a"])
		assert.Equal(t, []int{4}, turn.PlayerPieces["b"])
		assert.Equal(t, 30*time.Second, turn.EndTime.Sub(turn.StartTime))

		// And: processing the same turn again changes nothing
		again, err := processor.ProcessTurn(ctx, "s", "g1", 0)
		require.NoError(t, err)
		assert.False(t, again.NewTurnCreated)

		state, err := repo.GetGame(ctx, "s", "g1")
		require.NoError(t, err)
		assert.Len(t, state.Turns, 2)
	})

	t.Run("Missing moves fall back to the default move", func(t *testing.T) {
		// Given: a snake game where only a moved
		repo := repository.NewMemoryGameRepository()
		state := seedGame(t, repo, "g1", snakeDuel(entity.HumanType))
		headA := state.Turns[0].PlayerPieces["a"][0]
		headB := state.Turns[0].PlayerPieces["b"][0]
		require.NoError(t, repo.RecordMove(ctx, "s", move("g1", "a", 0, headA+1)))

		// When: the turn is forced
		result, err := NewTurnProcessor(repo, suite.Logger()).ProcessTurn(ctx, "s", "g1", 0)

		// Then: b continued upwards
		require.NoError(t, err)
		require.True(t, result.NewTurnCreated)

		turn, err := repo.GetTurn(ctx, "s", "g1", 1)
		require.NoError(t, err)
		assert.Equal(t, headA+1, turn.PlayerPieces["a"][0])
		assert.Equal(t, headB-9, turn.PlayerPieces["b"][0])
		assert.Equal(t, []string{"a", "b"}, turn.AlivePlayers)
	})

	t.Run("Concurrent triggers create a single turn", func(t *testing.T) {
		repo := repository.NewMemoryGameRepository()
		seedGame(t, repo, "g1", ticTacToe())
		processor := NewTurnProcessor(repo, suite.Logger())

		var (
			wg      sync.WaitGroup
			created atomic.Int32
		)
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()

				result, err := processor.ProcessTurn(ctx, "s", "g1", 0)
				if assert.NoError(t, err) && result.NewTurnCreated {
					created.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), created.Load())

		state, err := repo.GetGame(ctx, "s", "g1")
		require.NoError(t, err)
		assert.Len(t, state.Turns, 2)
		assert.Equal(t, 1, state.CurrentTurn)
	})

	t.Run("Finished games are not advanced", func(t *testing.T) {
		// Given: a plays the top row and wins on turn 3
		repo := repository.NewMemoryGameRepository()
		seedGame(t, repo, "g1", ticTacToe())
		processor := NewTurnProcessor(repo, suite.Logger())

		for n, cells := range [][2]int{{0, 3}, {1, 4}, {2, 8}} {
			require.NoError(t, repo.RecordMove(ctx, "s", move("g1", "a", n, cells[0])))
			require.NoError(t, repo.RecordMove(ctx, "s", move("g1", "b", n, cells[1])))

			result, err := processor.ProcessTurn(ctx, "s", "g1", n)
			require.NoError(t, err)
			require.True(t, result.NewTurnCreated)
			assert.Equal(t, n == 2, result.GameOver)
		}

		// When: the final turn is processed
		result, err := processor.ProcessTurn(ctx, "s", "g1", 3)

		// Then: nothing happens
		require.NoError(t, err)
		assert.False(t, result.NewTurnCreated)

		state, err := repo.GetGame(ctx, "s", "g1")
		require.NoError(t, err)
		assert.True(t, state.GameOver)
		assert.Equal(t, "a", state.LatestTurn().Winners[0].PlayerID)
	})

	t.Run("Unknown games and stale turns are no-ops", func(t *testing.T) {
		repo := repository.NewMemoryGameRepository()
		seedGame(t, repo, "g1", ticTacToe())
		processor := NewTurnProcessor(repo, suite.Logger())

		result, err := processor.ProcessTurn(ctx, "s", "missing", 0)
		require.NoError(t, err)
		assert.False(t, result.NewTurnCreated)

		result, err = processor.ProcessTurn(ctx, "s", "g1", 4)
		require.NoError(t, err)
		assert.False(t, result.NewTurnCreated)
	})

	t.Run("Long games keep advancing", func(t *testing.T) {
		// Given: a longboi game where nobody ever places a piece
		repo := repository.NewMemoryGameRepository()
		setup := ticTacToe()
		setup.GameKind = entity.Longboi
		setup.BoardWidth, setup.BoardHeight = 9, 9
		seedGame(t, repo, "g1", setup)

		processor := NewTurnProcessor(repo, suite.Logger())

		// When: more than a thousand turns pass
		for turn := 0; turn <= 1000; turn++ {
			result, err := processor.ProcessTurn(ctx, "s", "g1", turn)
			require.NoError(t, err)
			require.True(t, result.NewTurnCreated, "turn %d", turn)
		}

		// Then: the game is still running on turn 1001
		state, err := repo.GetGame(ctx, "s", "g1")
		require.NoError(t, err)
		assert.Equal(t, 1001, state.CurrentTurn)
		assert.False(t, state.GameOver)
	})
}

func TestCompleteMoves(t *testing.T) {
	// Given: a turn where only a and b are alive and c sent a stale move
	setup := snakeDuel(entity.BotType)
	setup.GamePlayers = append(setup.GamePlayers, entity.GamePlayer{ID: "c", Type: entity.BotType})

	engine, err := rules.ForKind(entity.Snek)
	require.NoError(t, err)

	current := &entity.Turn{
		TurnNumber:   2,
		PlayerPieces: map[string][]int{"a": {30, 39}, "b": {60, 61}},
		AlivePlayers: []string{"a", "b"},
	}
	recorded := []entity.Move{
		{PlayerID: "c", Move: 10},
		{PlayerID: "b", Move: 51},
	}

	// When: the moves are completed
	moves := completeMoves(engine, &setup, current, recorded, time.Now())

	// Then: a gets its default, b keeps its move and c is dropped
	require.Len(t, moves, 2)
	assert.Equal(t, "a", moves[0].PlayerID)
	assert.Equal(t, 21, moves[0].Move)
	assert.Equal(t, 2, moves[0].TurnNumber)
	assert.Equal(t, "b", moves[1].PlayerID)
	assert.Equal(t, 51, moves[1].Move)
}
