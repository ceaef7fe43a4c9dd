package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
	"github.com/rocketscienceinc/gridgames-backend/internal/repository"
	"github.com/rocketscienceinc/gridgames-backend/internal/usecase"
	"github.com/rocketscienceinc/gridgames-backend/testing/suite"
	"github.com/rocketscienceinc/gridgames-backend/transport/rest"
)

type noopStarter struct{}

func (noopStarter) StartTurn(context.Context, string, string, int, time.Duration) {}

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()

	games := repository.NewMemoryGameRepository()
	players := usecase.NewPlayerDirectory(repository.NewMemoryPlayerRepository())

	handlers := rest.NewHandlers(
		suite.Logger(),
		usecase.NewGameStarter(games, noopStarter{}, suite.Logger()),
		usecase.NewMoveSubmitter(games, suite.Logger()),
		players,
	)

	server := httptest.NewServer(rest.NewRouter(suite.Logger(), handlers, rest.NewPingHandler(nil), nil))
	t.Cleanup(server.Close)

	return server
}

func call(t *testing.T, server *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, server.URL+path, strings.NewReader(body))
	require.NoError(t, err)

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, payload
}

const ticTacToeSetup = `{
	"gameType": "tactictoes",
	"boardWidth": 3,
	"boardHeight": 3,
	"gamePlayers": [{"id": "a", "type": "human"}, {"id": "b", "type": "human"}],
	"maxTurnTime": 15
}`

func TestPing(t *testing.T) {
	t.Run("Answers pong", func(t *testing.T) {
		server := newAPI(t)

		status, body := call(t, server, http.MethodGet, "/ping", "")

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "pong", string(body))
	})

	t.Run("Reports failing storage", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler := rest.NewPingHandler(func(context.Context) error { return errors.New("redis down") })

		handler.PingHandler(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	})
}

func TestGames(t *testing.T) {
	server := newAPI(t)

	// Given: a started game
	status, body := call(t, server, http.MethodPost, "/sessions/s/games", ticTacToeSetup)
	require.Equal(t, http.StatusCreated, status, string(body))

	var state entity.GameState
	require.NoError(t, json.Unmarshal(body, &state))
	require.NotEmpty(t, state.GameID)
	assert.Equal(t, entity.TacticToes, state.Setup.GameKind)
	assert.Equal(t, 15, state.Setup.MaxTurnTime)

	gamePath := "/sessions/s/games/" + state.GameID

	t.Run("Reads the game and its turns", func(t *testing.T) {
		status, body := call(t, server, http.MethodGet, gamePath, "")
		require.Equal(t, http.StatusOK, status)

		var stored entity.GameState
		require.NoError(t, json.Unmarshal(body, &stored))
		assert.Equal(t, state.GameID, stored.GameID)

		status, body = call(t, server, http.MethodGet, gamePath+"/turns/0", "")
		require.Equal(t, http.StatusOK, status)

		var turn entity.Turn
		require.NoError(t, json.Unmarshal(body, &turn))
		assert.Equal(t, []string{"a", "b"}, turn.AlivePlayers)
	})

	t.Run("Maps lookup errors", func(t *testing.T) {
		status, _ := call(t, server, http.MethodGet, gamePath+"/turns/abc", "")
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = call(t, server, http.MethodGet, gamePath+"/turns/7", "")
		assert.Equal(t, http.StatusNotFound, status)

		status, _ = call(t, server, http.MethodGet, "/sessions/s/games/missing", "")
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Accepts one move per player and turn", func(t *testing.T) {
		status, body := call(t, server, http.MethodPost, gamePath+"/moves", `{"playerID":"a","turnNumber":0,"move":4}`)
		require.Equal(t, http.StatusCreated, status, string(body))

		var move entity.Move
		require.NoError(t, json.Unmarshal(body, &move))
		assert.Equal(t, 4, move.Move)

		status, _ = call(t, server, http.MethodPost, gamePath+"/moves", `{"playerID":"a","turnNumber":0,"move":5}`)
		assert.Equal(t, http.StatusConflict, status)

		status, _ = call(t, server, http.MethodPost, gamePath+"/moves", `{"playerID":"b","turnNumber":3,"move":5}`)
		assert.Equal(t, http.StatusConflict, status)

		status, _ = call(t, server, http.MethodPost, gamePath+"/moves", `{"turnNumber":0,"move":5}`)
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = call(t, server, http.MethodPost, gamePath+"/moves", `not json`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Rejects invalid setups", func(t *testing.T) {
		status, body := call(t, server, http.MethodPost, "/sessions/s/games", `{"gameType":"chess","boardWidth":8,"boardHeight":8}`)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, string(body), "unknown game kind")
	})
}

func TestPlayers(t *testing.T) {
	server := newAPI(t)

	// Given: a registered user and bot
	status, _ := call(t, server, http.MethodPut, "/users/u1", `{"name":"Ada","emoji":"🐍"}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = call(t, server, http.MethodPut, "/bots/b1", `{"name":"Snakey","url":"http://bot.local"}`)
	require.Equal(t, http.StatusOK, status)

	t.Run("Looks players up by path or query", func(t *testing.T) {
		for _, path := range []string{"/players/u1", "/players?playerID=u1"} {
			status, body := call(t, server, http.MethodGet, path, "")
			require.Equal(t, http.StatusOK, status)

			var info entity.PlayerPublicInfo
			require.NoError(t, json.Unmarshal(body, &info))
			assert.Equal(t, entity.PlayerPublicInfo{PlayerID: "u1", Name: "Ada", Emoji: "🐍", Type: entity.HumanType}, info)
		}

		status, body := call(t, server, http.MethodGet, "/players/b1", "")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(body), `"type":"bot"`)
	})

	t.Run("Maps directory errors", func(t *testing.T) {
		status, _ := call(t, server, http.MethodGet, "/players", "")
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = call(t, server, http.MethodGet, "/players/ghost", "")
		assert.Equal(t, http.StatusNotFound, status)

		status, _ = call(t, server, http.MethodPut, "/bots/b2", `{"name":"no url"}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestMetrics(t *testing.T) {
	server := newAPI(t)

	status, body := call(t, server, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "go_goroutines")
}
