package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

func bots(ids ...string) []entity.GamePlayer {
	out := make([]entity.GamePlayer, 0, len(ids))
	for _, id := range ids {
		out = append(out, entity.GamePlayer{ID: id, Type: entity.BotType})
	}

	return out
}

func snakeTurn(bodies map[string][]int, alive ...string) *entity.Turn {
	health := make(map[string]int, len(bodies))
	for id := range bodies {
		health[id] = 90
	}

	return &entity.Turn{
		TurnNumber:   4,
		PlayerPieces: bodies,
		PlayerHealth: health,
		AlivePlayers: alive,
		Food:         []int{},
	}
}

func TestSnek_FirstTurn(t *testing.T) {
	engine, err := ForKind(entity.Snek)
	require.NoError(t, err)

	setup := setupFor(entity.Snek, 11, 11, bots("a", "b"))

	turn, err := engine.FirstTurn(setup)
	require.NoError(t, err)

	b := setup.Board()
	for _, id := range []string{"a", "b"} {
		body := turn.PlayerPieces[id]
		require.Len(t, body, 3)
		assert.Equal(t, body[0], body[1])
		assert.False(t, b.IsPerimeter(body[0]))
		assert.Equal(t, 100, turn.PlayerHealth[id])
	}

	assert.NotEqual(t, turn.PlayerPieces["a"][0], turn.PlayerPieces["b"][0])
	assert.NotEmpty(t, turn.Food)
}

func TestSnek_ApplyMoves(t *testing.T) {
	engine, err := ForKind(entity.Snek)
	require.NoError(t, err)

	setup := setupFor(entity.Snek, 9, 9, bots("a", "b", "c"))

	t.Run("Running into its own body eliminates only that snake", func(t *testing.T) {
		// Given: a hooked snake whose head touches its own body
		current := snakeTurn(map[string][]int{
			"a": {30, 39, 40, 31, 32},
			"b": {59, 60, 61},
			"c": {65, 66, 67},
		}, "a", "b", "c")

		// When: a turns into its body while the others move up
		next, err := engine.ApplyMoves(setup, current, []entity.Move{mv("a", 31), mv("b", 50), mv("c", 56)})
		require.NoError(t, err)

		// Then: a is out and the game goes on
		assert.Equal(t, []string{"b", "c"}, next.AlivePlayers)
		assert.NotContains(t, next.PlayerPieces, "a")
		assert.Equal(t, []int{50, 59, 60}, next.PlayerPieces["b"])
		assert.Equal(t, 89, next.PlayerHealth["b"])
		assert.False(t, next.GameOver)
	})

	t.Run("Following its own tail is safe", func(t *testing.T) {
		current := snakeTurn(map[string][]int{
			"a": {30, 39, 40, 31},
			"b": {59, 60, 61},
			"c": {65, 66, 67},
		}, "a", "b", "c")

		next, err := engine.ApplyMoves(setup, current, []entity.Move{mv("a", 31), mv("b", 50), mv("c", 56)})
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b", "c"}, next.AlivePlayers)
		assert.Equal(t, []int{31, 30, 39, 40}, next.PlayerPieces["a"])
	})

	t.Run("Entering the wall kills", func(t *testing.T) {
		current := snakeTurn(map[string][]int{
			"a": {10, 11, 12},
			"b": {59, 60, 61},
			"c": {65, 66, 67},
		}, "a", "b", "c")

		next, err := engine.ApplyMoves(setup, current, []entity.Move{mv("a", 1), mv("b", 50), mv("c", 56)})
		require.NoError(t, err)

		assert.Equal(t, []string{"b", "c"}, next.AlivePlayers)
		assert.Equal(t, 0, next.PlayerHealth["a"])
	})

	t.Run("A move away from the head continues straight and eats", func(t *testing.T) {
		current := snakeTurn(map[string][]int{
			"a": {30, 39, 48},
			"b": {59, 60, 61},
			"c": {65, 66, 67},
		}, "a", "b", "c")
		current.Food = []int{21}

		assert.Equal(t, 21, engine.DefaultMove(setup, current, "a"))

		next, err := engine.ApplyMoves(setup, current, []entity.Move{mv("a", 0), mv("b", 50), mv("c", 56)})
		require.NoError(t, err)

		assert.Equal(t, []int{21, 30, 39, 48}, next.PlayerPieces["a"])
		assert.Equal(t, 100, next.PlayerHealth["a"])
		assert.NotContains(t, next.Food, 21)
		assert.NotEmpty(t, next.Food)
	})

	t.Run("Starving snakes die", func(t *testing.T) {
		current := snakeTurn(map[string][]int{
			"a": {30, 39, 48},
			"b": {59, 60, 61},
			"c": {65, 66, 67},
		}, "a", "b", "c")
		current.PlayerHealth["a"] = 1

		next, err := engine.ApplyMoves(setup, current, []entity.Move{mv("a", 21), mv("b", 50), mv("c", 56)})
		require.NoError(t, err)

		assert.Equal(t, []string{"b", "c"}, next.AlivePlayers)
	})
}

func TestSnek_HeadToHead(t *testing.T) {
	engine, err := ForKind(entity.Snek)
	require.NoError(t, err)

	setup := setupFor(entity.Snek, 9, 9, bots("a", "b"))

	t.Run("Longer snake survives and wins", func(t *testing.T) {
		current := snakeTurn(map[string][]int{
			"a": {30, 31, 32},
			"b": {28, 19},
		}, "a", "b")

		next, err := engine.ApplyMoves(setup, current, []entity.Move{mv("a", 29), mv("b", 29)})
		require.NoError(t, err)

		assert.Equal(t, []string{"a"}, next.AlivePlayers)
		require.True(t, next.GameOver)
		require.Len(t, next.Winners, 1)
		assert.Equal(t, "a", next.Winners[0].PlayerID)
	})

	t.Run("Equal lengths both die", func(t *testing.T) {
		current := snakeTurn(map[string][]int{
			"a": {30, 31},
			"b": {28, 19},
		}, "a", "b")

		next, err := engine.ApplyMoves(setup, current, []entity.Move{mv("a", 29), mv("b", 29)})
		require.NoError(t, err)

		assert.Empty(t, next.AlivePlayers)
		assert.True(t, next.GameOver)
		assert.Empty(t, next.Winners)
	})

	t.Run("A starving snake loses the collision it would have drawn", func(t *testing.T) {
		// Given: two snakes of equal length and a on its last point of health
		current := snakeTurn(map[string][]int{
			"a": {30, 31, 32},
			"b": {28, 37, 46},
		}, "a", "b")
		current.PlayerHealth["a"] = 1

		// When: both heads meet on 29
		next, err := engine.ApplyMoves(setup, current, []entity.Move{mv("a", 29), mv("b", 29)})
		require.NoError(t, err)

		// Then: a starved before the collision and b wins
		assert.Equal(t, []string{"b"}, next.AlivePlayers)
		assert.Equal(t, []int{29, 28, 37}, next.PlayerPieces["b"])
		require.True(t, next.GameOver)
		require.Len(t, next.Winners, 1)
		assert.Equal(t, "b", next.Winners[0].PlayerID)
	})

	t.Run("The body of a snake that hit the wall is not an obstacle", func(t *testing.T) {
		// Given: a about to leave the board and b heading into its neck
		current := snakeTurn(map[string][]int{
			"a": {10, 11, 12},
			"b": {19, 28, 37},
		}, "a", "b")

		// When: a enters the wall while b moves onto a's old head
		next, err := engine.ApplyMoves(setup, current, []entity.Move{mv("a", 1), mv("b", 10)})
		require.NoError(t, err)

		// Then: only a is eliminated
		assert.Equal(t, []string{"b"}, next.AlivePlayers)
		require.True(t, next.GameOver)
		require.Len(t, next.Winners, 1)
		assert.Equal(t, "b", next.Winners[0].PlayerID)
	})
}

func teamRoster() ([]entity.GamePlayer, []entity.Team) {
	players := []entity.GamePlayer{
		{ID: "rk", Type: entity.BotType, TeamID: "red", IsKing: true},
		{ID: "r2", Type: entity.BotType, TeamID: "red"},
		{ID: "bk", Type: entity.BotType, TeamID: "blue", IsKing: true},
		{ID: "b2", Type: entity.BotType, TeamID: "blue"},
		{ID: "watcher", Type: entity.HumanType},
	}
	teams := []entity.Team{{ID: "red", Color: "#FF0000"}, {ID: "blue", Color: "#0000FF"}}

	return players, teams
}

func teamTurn() *entity.Turn {
	return snakeTurn(map[string][]int{
		"rk": {10, 11, 12},
		"r2": {40, 41, 42},
		"bk": {58, 59, 60},
		"b2": {22, 23, 24},
	}, "rk", "r2", "bk", "b2")
}

func teamMoves() []entity.Move {
	return []entity.Move{mv("rk", 1), mv("r2", 39), mv("bk", 57), mv("b2", 21)}
}

func TestTeamSnek(t *testing.T) {
	engine, err := ForKind(entity.TeamSnek)
	require.NoError(t, err)

	players, teams := teamRoster()
	setup := setupFor(entity.TeamSnek, 9, 9, players)
	setup.Teams = teams

	t.Run("Players without a team observe", func(t *testing.T) {
		active := engine.FilterActivePlayers(setup)

		require.Len(t, active, 4)
		for _, player := range active {
			assert.NotEqual(t, "watcher", player.ID)
		}
	})

	t.Run("A team survives while any member lives", func(t *testing.T) {
		next, err := engine.ApplyMoves(setup, teamTurn(), teamMoves())
		require.NoError(t, err)

		assert.Equal(t, []string{"r2", "bk", "b2"}, next.AlivePlayers)
		assert.False(t, next.GameOver)
	})
}

func TestKingSnek(t *testing.T) {
	engine, err := ForKind(entity.KingSnek)
	require.NoError(t, err)

	players, teams := teamRoster()
	setup := setupFor(entity.KingSnek, 9, 9, players)
	setup.Teams = teams

	t.Run("Losing the king removes the whole team", func(t *testing.T) {
		// Given: the red king is about to hit the wall
		// When: the turn is applied
		next, err := engine.ApplyMoves(setup, teamTurn(), teamMoves())
		require.NoError(t, err)

		// Then: both red players are gone and blue wins
		assert.Equal(t, []string{"bk", "b2"}, next.AlivePlayers)
		assert.NotContains(t, next.PlayerPieces, "r2")
		require.True(t, next.GameOver)
		require.Len(t, next.Winners, 2)
		assert.Equal(t, "bk", next.Winners[0].PlayerID)
		assert.Equal(t, "b2", next.Winners[1].PlayerID)
	})

	t.Run("Every team needs exactly one king", func(t *testing.T) {
		bad := *setup
		bad.GamePlayers = append([]entity.GamePlayer(nil), setup.GamePlayers...)
		bad.GamePlayers[1].IsKing = true

		assert.ErrorContains(t, ValidateSetup(&bad), "team red needs exactly one king")
		assert.NoError(t, ValidateSetup(setup))
	})
}
