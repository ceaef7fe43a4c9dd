package entity

import (
	"maps"
	"slices"
	"time"
)

// PassMove is the move of a participant that does nothing this turn.
const PassMove = -1

type Winner struct {
	PlayerID     string `json:"playerID"`
	Score        int    `json:"score"`
	WinningCells []int  `json:"winningSquares,omitempty"`
}

// Turn is an immutable snapshot of a game. Engines build new turns with
// Clone and never mutate a stored one.
type Turn struct {
	TurnNumber   int              `json:"turnNumber"`
	PlayerPieces map[string][]int `json:"playerPieces"`
	PlayerHealth map[string]int   `json:"playerHealth,omitempty"`
	AlivePlayers []string         `json:"alivePlayers"`
	Food         []int            `json:"food,omitempty"`
	Hazards      []int            `json:"hazards,omitempty"`
	GameOver     bool             `json:"gameOver"`
	Winners      []Winner         `json:"winners,omitempty"`
	StartTime    time.Time        `json:"startTime"`
	EndTime      time.Time        `json:"endTime"`
}

func (that *Turn) IsAlive(playerID string) bool {
	return slices.Contains(that.AlivePlayers, playerID)
}

// Owner returns the player occupying a cell.
func (that *Turn) Owner(cell int) (string, bool) {
	for id, pieces := range that.PlayerPieces {
		if slices.Contains(pieces, cell) {
			return id, true
		}
	}

	return "", false
}

// Clone returns a deep copy.
func (that *Turn) Clone() *Turn {
	out := &Turn{
		TurnNumber:   that.TurnNumber,
		PlayerPieces: make(map[string][]int, len(that.PlayerPieces)),
		PlayerHealth: maps.Clone(that.PlayerHealth),
		AlivePlayers: slices.Clone(that.AlivePlayers),
		Food:         slices.Clone(that.Food),
		Hazards:      slices.Clone(that.Hazards),
		GameOver:     that.GameOver,
		Winners:      slices.Clone(that.Winners),
		StartTime:    that.StartTime,
		EndTime:      that.EndTime,
	}

	for id, pieces := range that.PlayerPieces {
		out.PlayerPieces[id] = slices.Clone(pieces)
	}

	if out.PlayerHealth == nil {
		out.PlayerHealth = map[string]int{}
	}

	return out
}

type Move struct {
	GameID     string    `json:"gameID"`
	TurnNumber int       `json:"moveNumber"`
	PlayerID   string    `json:"playerID"`
	Move       int       `json:"move"`
	Timestamp  time.Time `json:"timestamp"`
}

// MoveStatus tracks who has moved in one turn.
type MoveStatus struct {
	TurnNumber     int      `json:"moveNumber"`
	AlivePlayerIDs []string `json:"alivePlayerIDs"`
	MovedPlayerIDs []string `json:"movedPlayerIDs"`
}

func (that *MoveStatus) AllMoved() bool {
	for _, id := range that.AlivePlayerIDs {
		if !slices.Contains(that.MovedPlayerIDs, id) {
			return false
		}
	}

	return true
}

// TurnSnapshot is what a turn transaction has read. Turn is nil when the
// requested turn does not exist.
type TurnSnapshot struct {
	Setup       GameSetup
	CurrentTurn int
	GameOver    bool
	Turn        *Turn
	Moves       []Move
}

// GameEvent is published when a game's move status or turn list changes.
type GameEvent struct {
	SessionID  string `json:"sessionID"`
	GameID     string `json:"gameID"`
	TurnNumber int    `json:"turnNumber"`
}

type ExpirationTask struct {
	SessionID  string `mapstructure:"sessionID"`
	GameID     string `mapstructure:"gameID"`
	TurnNumber int    `mapstructure:"turnNumber"`
}

func (that ExpirationTask) Payload() map[string]any {
	return map[string]any{
		"sessionID":  that.SessionID,
		"gameID":     that.GameID,
		"turnNumber": that.TurnNumber,
	}
}
