package entity

import (
	"time"

	"github.com/rocketscienceinc/gridgames-backend/internal/board"
)

type GameKind string

const (
	Connect4    GameKind = "connect4"
	Longboi     GameKind = "longboi"
	TacticToes  GameKind = "tactictoes"
	Snek        GameKind = "snek"
	TeamSnek    GameKind = "teamsnek"
	KingSnek    GameKind = "kingsnek"
	ColourClash GameKind = "colourclash"
	Reversi     GameKind = "reversi"
)

// IsTeamKind reports whether players are grouped into teams.
func (that GameKind) IsTeamKind() bool {
	return that == TeamSnek || that == KingSnek
}

const (
	HumanType = "human"
	BotType   = "bot"
)

type GamePlayer struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	TeamID string `json:"teamID,omitempty"`
	IsKing bool   `json:"isKing,omitempty"`
}

func (that GamePlayer) IsBot() bool {
	return that.Type == BotType
}

type Team struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Color string `json:"color"`
}

// GameSetup is fixed once the game has started.
type GameSetup struct {
	GameKind    GameKind     `json:"gameType"`
	BoardWidth  int          `json:"boardWidth"`
	BoardHeight int          `json:"boardHeight"`
	GamePlayers []GamePlayer `json:"gamePlayers"`
	Teams       []Team       `json:"teams,omitempty"`
	MaxTurnTime int          `json:"maxTurnTime"`
	Seed        int64        `json:"seed"`
	StartedAt   time.Time    `json:"startedAt"`
}

func (that *GameSetup) Board() board.Board {
	return board.New(that.BoardWidth, that.BoardHeight)
}

// TurnDuration is the time a turn may stay open before it is forced.
func (that *GameSetup) TurnDuration() time.Duration {
	return time.Duration(that.MaxTurnTime) * time.Second
}

// PlayerIndex returns the roster position of a player or -1.
func (that *GameSetup) PlayerIndex(id string) int {
	for i, player := range that.GamePlayers {
		if player.ID == id {
			return i
		}
	}

	return -1
}

func (that *GameSetup) Player(id string) (GamePlayer, bool) {
	if i := that.PlayerIndex(id); i >= 0 {
		return that.GamePlayers[i], true
	}

	return GamePlayer{}, false
}

func (that *GameSetup) Team(id string) (Team, bool) {
	for _, team := range that.Teams {
		if team.ID == id {
			return team, true
		}
	}

	return Team{}, false
}

// TeamKingID returns the king of a team, if there is one.
func (that *GameSetup) TeamKingID(teamID string) string {
	for _, player := range that.GamePlayers {
		if player.TeamID == teamID && player.IsKing {
			return player.ID
		}
	}

	return ""
}

// GameState is the aggregate root of a game.
type GameState struct {
	SessionID   string    `json:"sessionID"`
	GameID      string    `json:"gameID"`
	Setup       GameSetup `json:"setup"`
	Turns       []*Turn   `json:"turns"`
	CurrentTurn int       `json:"currentTurn"`
	GameOver    bool      `json:"gameOver"`
}

func (that *GameState) Turn(number int) (*Turn, bool) {
	if number < 0 || number >= len(that.Turns) {
		return nil, false
	}

	return that.Turns[number], true
}

func (that *GameState) LatestTurn() *Turn {
	if len(that.Turns) == 0 {
		return nil
	}

	return that.Turns[len(that.Turns)-1]
}
