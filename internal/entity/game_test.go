package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveStatus_AllMoved(t *testing.T) {
	t.Run("Returns true when every alive player has moved", func(t *testing.T) {
		// Given: a status where both alive players moved
		status := &MoveStatus{
			AlivePlayerIDs: []string{"a", "b"},
			MovedPlayerIDs: []string{"b", "a"},
		}

		// Then: everyone has moved
		assert.True(t, status.AllMoved())
	})

	t.Run("Returns false when a player is missing", func(t *testing.T) {
		// Given: a status where only one of two players moved
		status := &MoveStatus{
			AlivePlayerIDs: []string{"a", "b"},
			MovedPlayerIDs: []string{"a"},
		}

		// Then: the turn is still waiting
		assert.False(t, status.AllMoved())
	})

	t.Run("Ignores moves of players that are not alive", func(t *testing.T) {
		// Given: an observer recorded as moved
		status := &MoveStatus{
			AlivePlayerIDs: []string{"a"},
			MovedPlayerIDs: []string{"a", "observer"},
		}

		// Then: the alive player is all that counts
		assert.True(t, status.AllMoved())
	})
}

func TestTurn_Clone(t *testing.T) {
	// Given: a turn with nested slices and maps
	turn := &Turn{
		TurnNumber:   3,
		PlayerPieces: map[string][]int{"a": {1, 2}},
		PlayerHealth: map[string]int{"a": 90},
		AlivePlayers: []string{"a"},
		Food:         []int{5},
		StartTime:    time.Unix(10, 0),
	}

	// When: the clone is modified
	clone := turn.Clone()
	clone.PlayerPieces["a"][0] = 99
	clone.PlayerHealth["a"] = 1
	clone.AlivePlayers = clone.AlivePlayers[:0]
	clone.Food[0] = 7

	// Then: the original is untouched
	assert.Equal(t, []int{1, 2}, turn.PlayerPieces["a"])
	assert.Equal(t, 90, turn.PlayerHealth["a"])
	assert.Equal(t, []string{"a"}, turn.AlivePlayers)
	assert.Equal(t, []int{5}, turn.Food)
}

func TestTurn_Owner(t *testing.T) {
	turn := &Turn{PlayerPieces: map[string][]int{"a": {1}, "b": {4}}}

	owner, ok := turn.Owner(4)
	require.True(t, ok)
	assert.Equal(t, "b", owner)

	_, ok = turn.Owner(2)
	assert.False(t, ok)
}

func TestGameSetup_Lookups(t *testing.T) {
	// Given: a team setup with a king
	setup := &GameSetup{
		GameKind:    KingSnek,
		MaxTurnTime: 30,
		GamePlayers: []GamePlayer{
			{ID: "a", Type: BotType, TeamID: "red", IsKing: true},
			{ID: "b", Type: HumanType, TeamID: "red"},
		},
		Teams: []Team{{ID: "red", Color: "#ff0000"}},
	}

	// Then: lookups resolve players, teams and kings
	assert.Equal(t, 1, setup.PlayerIndex("b"))
	assert.Equal(t, -1, setup.PlayerIndex("z"))
	assert.Equal(t, "a", setup.TeamKingID("red"))
	assert.Equal(t, 30*time.Second, setup.TurnDuration())

	team, ok := setup.Team("red")
	require.True(t, ok)
	assert.Equal(t, "#ff0000", team.Color)

	player, ok := setup.Player("a")
	require.True(t, ok)
	assert.True(t, player.IsBot())
	assert.True(t, setup.GameKind.IsTeamKind())
}
