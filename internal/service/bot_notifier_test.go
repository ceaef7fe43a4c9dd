package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gridgames-backend/internal/battlesnake"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
	"github.com/rocketscienceinc/gridgames-backend/internal/repository"
	"github.com/rocketscienceinc/gridgames-backend/internal/rules"
	"github.com/rocketscienceinc/gridgames-backend/internal/usecase"
	"github.com/rocketscienceinc/gridgames-backend/testing/suite"
)

type fixture struct {
	games   repository.GameRepository
	players repository.PlayerRepository
	state   *entity.GameState
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	setup := entity.GameSetup{
		GameKind:    entity.Snek,
		BoardWidth:  9,
		BoardHeight: 9,
		GamePlayers: []entity.GamePlayer{
			{ID: "a", Type: entity.BotType},
			{ID: "b", Type: entity.BotType},
			{ID: "h", Type: entity.HumanType},
		},
		MaxTurnTime: 30,
		Seed:        1,
	}

	engine, err := rules.ForKind(setup.GameKind)
	require.NoError(t, err)

	first, err := engine.FirstTurn(&setup)
	require.NoError(t, err)

	state := &entity.GameState{SessionID: "s", GameID: "g", Setup: setup, Turns: []*entity.Turn{first}}

	games := repository.NewMemoryGameRepository()
	require.NoError(t, games.Create(context.Background(), state))

	return &fixture{games: games, players: repository.NewMemoryPlayerRepository(), state: state}
}

func (that *fixture) addBot(t *testing.T, id string, handler http.HandlerFunc) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	require.NoError(t, that.players.SaveBot(context.Background(), &entity.Bot{ID: id, Name: id, URL: server.URL, Colour: "#00FF00"}))
}

func (that *fixture) notifier(timeout time.Duration) *BotNotifier {
	return NewBotNotifier(that.games, usecase.NewPlayerDirectory(that.players), suite.Logger(), timeout, "")
}

func answer(move string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"move":"` + move + `"}`))
	}
}

func TestBotNotifier_NotifyBots(t *testing.T) {
	ctx := context.Background()

	t.Run("Records answers and ignores failing bots", func(t *testing.T) {
		// Given: bot a answers "up" and bot b is broken
		f := newFixture(t)

		var request battlesnake.MoveRequest
		f.addBot(t, "a", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/move", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
			answer("up")(w, r)
		})
		f.addBot(t, "b", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		// When: the bots of turn 0 are notified
		f.notifier(time.Second).NotifyBots(ctx, "s", "g", 0)

		// Then: only a has moved, one cell up from its head
		status, err := f.games.GetMoveStatus(ctx, "s", "g", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, status.MovedPlayerIDs)

		assert.Equal(t, "a", request.You.ID)
		assert.Equal(t, 7, request.Board.Width)
		assert.Len(t, request.Board.Snakes, 3)
		assert.Equal(t, "#00FF00", request.You.Customizations.Color)

		_, err = f.games.AdvanceTurn(ctx, "s", "g", 0, func(snapshot *entity.TurnSnapshot) (*entity.Turn, error) {
			require.Len(t, snapshot.Moves, 1)
			head := f.state.Turns[0].PlayerPieces["a"][0]
			assert.Equal(t, head-9, snapshot.Moves[0].Move)
			return nil, nil
		})
		require.NoError(t, err)
	})

	t.Run("Malformed answers are dropped", func(t *testing.T) {
		f := newFixture(t)
		f.addBot(t, "a", answer("north"))
		f.addBot(t, "b", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`this is not json`))
		})

		f.notifier(time.Second).NotifyBots(ctx, "s", "g", 0)

		status, err := f.games.GetMoveStatus(ctx, "s", "g", 0)
		require.NoError(t, err)
		assert.Empty(t, status.MovedPlayerIDs)
	})

	t.Run("Slow bots time out without blocking others", func(t *testing.T) {
		f := newFixture(t)
		f.addBot(t, "a", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			answer("up")(w, r)
		})
		f.addBot(t, "b", answer("left"))

		started := time.Now()
		f.notifier(50 * time.Millisecond).NotifyBots(ctx, "s", "g", 0)

		assert.Less(t, time.Since(started), 300*time.Millisecond)

		status, err := f.games.GetMoveStatus(ctx, "s", "g", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, status.MovedPlayerIDs)
	})

	t.Run("Unregistered bots and finished turns are skipped", func(t *testing.T) {
		f := newFixture(t)

		var calls atomic.Int32
		f.addBot(t, "a", func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			answer("up")(w, r)
		})

		f.notifier(time.Second).NotifyBots(ctx, "s", "g", 7)
		assert.Equal(t, int32(0), calls.Load())

		f.notifier(time.Second).NotifyBots(ctx, "s", "g", 0)
		assert.Equal(t, int32(1), calls.Load())

		status, err := f.games.GetMoveStatus(ctx, "s", "g", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, status.MovedPlayerIDs)
	})
}
