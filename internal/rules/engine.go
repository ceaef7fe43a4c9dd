// Package rules holds one rule engine per game kind. Engines are pure: they
// read the current turn and a complete set of moves and build the next turn
// without touching storage.
package rules

import (
	"fmt"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

type Engine interface {
	Kind() entity.GameKind

	// FilterActivePlayers decides from the setup alone who plays. Everyone
	// else observes.
	FilterActivePlayers(setup *entity.GameSetup) []entity.GamePlayer

	// Validate reports kind specific configuration errors.
	Validate(setup *entity.GameSetup) error

	// FirstTurn builds turn 0.
	FirstTurn(setup *entity.GameSetup) (*entity.Turn, error)

	// ApplyMoves builds the turn after current. moves holds exactly one move
	// per alive player.
	ApplyMoves(setup *entity.GameSetup, current *entity.Turn, moves []entity.Move) (*entity.Turn, error)

	// DefaultMove is the move played for an alive player that never moved.
	DefaultMove(setup *entity.GameSetup, current *entity.Turn, playerID string) int
}

var engines = map[entity.GameKind]Engine{
	entity.Connect4:    connect4{},
	entity.Longboi:     longboi{},
	entity.TacticToes:  tacticToes{},
	entity.Snek:        snek{},
	entity.TeamSnek:    teamSnek{},
	entity.KingSnek:    kingSnek{},
	entity.ColourClash: colourClash{},
	entity.Reversi:     reversi{},
}

// ForKind returns the engine of a game kind.
func ForKind(kind entity.GameKind) (Engine, error) {
	engine, ok := engines[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownGameKind, kind)
	}

	return engine, nil
}

// Kinds lists every supported game kind.
func Kinds() []entity.GameKind {
	return []entity.GameKind{
		entity.Connect4, entity.Longboi, entity.TacticToes, entity.Snek,
		entity.TeamSnek, entity.KingSnek, entity.ColourClash, entity.Reversi,
	}
}

// ValidateSetup checks a setup before a game starts.
func ValidateSetup(setup *entity.GameSetup) error {
	engine, err := ForKind(setup.GameKind)
	if err != nil {
		return err
	}

	if setup.BoardWidth < 3 || setup.BoardHeight < 3 {
		return fmt.Errorf("%w: %dx%d", apperror.ErrInvalidBoard, setup.BoardWidth, setup.BoardHeight)
	}

	seen := make(map[string]bool, len(setup.GamePlayers))
	for _, player := range setup.GamePlayers {
		if player.ID == "" {
			return fmt.Errorf("%w: player without id", apperror.ErrInvalidRoster)
		}

		if seen[player.ID] {
			return fmt.Errorf("%w: duplicate player %s", apperror.ErrInvalidRoster, player.ID)
		}
		seen[player.ID] = true

		if player.Type != entity.HumanType && player.Type != entity.BotType {
			return fmt.Errorf("%w: player %s has unknown type %q", apperror.ErrInvalidRoster, player.ID, player.Type)
		}

		if player.TeamID != "" {
			if _, ok := setup.Team(player.TeamID); !ok {
				return fmt.Errorf("%w: player %s references unknown team %s", apperror.ErrInvalidRoster, player.ID, player.TeamID)
			}
		}
	}

	if len(engine.FilterActivePlayers(setup)) == 0 {
		return fmt.Errorf("%w: no active players", apperror.ErrInvalidRoster)
	}

	return engine.Validate(setup)
}

// allPlayersActive is the default participant filter.
type allPlayersActive struct{}

func (allPlayersActive) FilterActivePlayers(setup *entity.GameSetup) []entity.GamePlayer {
	return setup.GamePlayers
}

// passByDefault is the forfeit policy of placement games: a missing move
// places nothing.
type passByDefault struct{}

func (passByDefault) DefaultMove(*entity.GameSetup, *entity.Turn, string) int {
	return entity.PassMove
}
