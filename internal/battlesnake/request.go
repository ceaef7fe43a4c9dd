package battlesnake

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/board"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

const (
	DefaultRulesetVersion = "v1.1.15"
	DefaultColour         = "#FF0000"

	rulesetName     = "standard"
	mapName         = "standard"
	source          = "league"
	timeoutMillis   = 500
	reportedLatency = "111"
	defaultStyle    = "default"

	foodSpawnChance     = 15
	minimumFood         = 1
	hazardDamagePerTurn = 14
)

// AdjustPosition maps a full-board cell to wire coordinates: the wall is
// dropped and the y axis flipped.
func AdjustPosition(x, y, boardHeight int) Coord {
	return Coord{X: x - 1, Y: boardHeight - y - 2}
}

func IndexToCoord(index, boardWidth, boardHeight int) Coord {
	x, y := board.FlattenedToXY(index, boardWidth)
	return AdjustPosition(x, y, boardHeight)
}

func indexesToCoords(cells []int, width, height int) []Coord {
	out := make([]Coord, 0, len(cells))
	for _, cell := range cells {
		out = append(out, IndexToCoord(cell, width, height))
	}

	return out
}

// DirectionToIndex converts a bot answer into a full-board cell. "up" is
// towards row 0. A step over the edge returns the head itself.
func DirectionToIndex(direction string, head, boardWidth, boardHeight int) int {
	x, y := board.FlattenedToXY(head, boardWidth)

	switch direction {
	case "up":
		if y > 0 {
			return board.XYToFlattened(x, y-1, boardWidth)
		}
	case "down":
		if y < boardHeight-1 {
			return board.XYToFlattened(x, y+1, boardWidth)
		}
	case "left":
		if x > 0 {
			return board.XYToFlattened(x-1, y, boardWidth)
		}
	case "right":
		if x < boardWidth-1 {
			return board.XYToFlattened(x+1, y, boardWidth)
		}
	}

	return head
}

// ParseMoveResponse reads a bot answer and returns its direction.
func ParseMoveResponse(body []byte) (string, error) {
	var response MoveResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrMalformedBotResponse, err)
	}

	switch response.Move {
	case "up", "down", "left", "right":
		return response.Move, nil
	}

	return "", fmt.Errorf("%w: unknown move %q", apperror.ErrMalformedBotResponse, response.Move)
}

// SnakeColour is the team colour in team games, else the bot's own colour,
// else DefaultColour.
func SnakeColour(setup *entity.GameSetup, playerID string, botColours map[string]string) string {
	if setup.GameKind.IsTeamKind() {
		if player, ok := setup.Player(playerID); ok && player.TeamID != "" {
			if team, ok := setup.Team(player.TeamID); ok {
				return team.Color
			}
		}
	}

	if colour := botColours[playerID]; colour != "" {
		return colour
	}

	return DefaultColour
}

type RequestInput struct {
	RulesetVersion string
	GameID         string
	Setup          *entity.GameSetup
	Turn           *entity.Turn
	YouID          string

	// BotColours maps bot ids to their configured colour.
	BotColours map[string]string
}

func BuildMoveRequest(input RequestInput) *MoveRequest {
	setup, turn := input.Setup, input.Turn
	width, height := setup.BoardWidth, setup.BoardHeight

	version := input.RulesetVersion
	if version == "" {
		version = DefaultRulesetVersion
	}

	request := &MoveRequest{
		Game: Game{
			ID: input.GameID,
			Ruleset: Ruleset{
				Name:    rulesetName,
				Version: version,
				Settings: Settings{
					FoodSpawnChance:     foodSpawnChance,
					MinimumFood:         minimumFood,
					HazardDamagePerTurn: hazardDamagePerTurn,
				},
			},
			Map:     mapName,
			Source:  source,
			Timeout: timeoutMillis,
		},
		Turn: turn.TurnNumber,
		Board: Board{
			Height:  height - 2,
			Width:   width - 2,
			Food:    indexesToCoords(turn.Food, width, height),
			Hazards: indexesToCoords(turn.Hazards, width, height),
		},
	}

	for _, player := range setup.GamePlayers {
		if _, ok := turn.PlayerPieces[player.ID]; !ok {
			continue
		}

		snake := buildSnake(input, player.ID)
		request.Board.Snakes = append(request.Board.Snakes, snake)

		if player.ID == input.YouID {
			request.You = snake
		}
	}

	return request
}

func buildSnake(input RequestInput, playerID string) Snake {
	setup, turn := input.Setup, input.Turn
	body := indexesToCoords(turn.PlayerPieces[playerID], setup.BoardWidth, setup.BoardHeight)

	snake := Snake{
		ID:      playerID,
		Name:    playerID,
		Health:  turn.PlayerHealth[playerID],
		Body:    body,
		Length:  len(body),
		Latency: reportedLatency,
		Customizations: Customizations{
			Color: SnakeColour(setup, playerID, input.BotColours),
			Head:  defaultStyle,
			Tail:  defaultStyle,
		},
	}

	if len(body) > 0 {
		snake.Head = body[0]
	}

	player, _ := setup.Player(playerID)
	if !setup.GameKind.IsTeamKind() || player.TeamID == "" {
		return snake
	}

	snake.TeamID = player.TeamID
	if setup.GameKind == entity.KingSnek {
		isKing := player.IsKing
		snake.IsKing = &isKing
		snake.TeamKingID = setup.TeamKingID(player.TeamID)
	}

	return snake
}

// AliveBots lists the alive bot participants of a turn in roster order.
func AliveBots(setup *entity.GameSetup, turn *entity.Turn) []string {
	var out []string
	for _, player := range setup.GamePlayers {
		if player.IsBot() && slices.Contains(turn.AlivePlayers, player.ID) {
			out = append(out, player.ID)
		}
	}

	return out
}
