package rules

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

// teamSnek plays snek in teams. Players without a team observe. A team is
// out once all of its members are dead, and the last team standing wins.
type teamSnek struct{}

func (teamSnek) Kind() entity.GameKind {
	return entity.TeamSnek
}

func (teamSnek) FilterActivePlayers(setup *entity.GameSetup) []entity.GamePlayer {
	return teamMembers(setup)
}

func (that teamSnek) Validate(setup *entity.GameSetup) error {
	return validateSnakeBoard(setup, len(that.FilterActivePlayers(setup)))
}

func (that teamSnek) FirstTurn(setup *entity.GameSetup) (*entity.Turn, error) {
	return snakeFirstTurn(setup, that.FilterActivePlayers(setup)), nil
}

func (teamSnek) DefaultMove(setup *entity.GameSetup, current *entity.Turn, playerID string) int {
	return snakeDefaultMove(setup.Board(), current.PlayerPieces[playerID])
}

func (teamSnek) ApplyMoves(setup *entity.GameSetup, current *entity.Turn, moves []entity.Move) (*entity.Turn, error) {
	return teamSnakeApply(setup, current, moves, nil)
}

// kingSnek is teamSnek where each team has one king. When a king dies its
// whole team is removed in the same turn.
type kingSnek struct {
	teamSnek
}

func (kingSnek) Kind() entity.GameKind {
	return entity.KingSnek
}

func (that kingSnek) Validate(setup *entity.GameSetup) error {
	if err := that.teamSnek.Validate(setup); err != nil {
		return err
	}

	kings := make(map[string]int)
	for _, player := range teamMembers(setup) {
		if player.IsKing {
			kings[player.TeamID]++
		}
	}

	for _, team := range activeTeams(setup) {
		if kings[team] != 1 {
			return fmt.Errorf("%w: team %s needs exactly one king, has %d", apperror.ErrInvalidRoster, team, kings[team])
		}
	}

	return nil
}

func (kingSnek) ApplyMoves(setup *entity.GameSetup, current *entity.Turn, moves []entity.Move) (*entity.Turn, error) {
	return teamSnakeApply(setup, current, moves, regicide)
}

// regicide adds every member of a team whose king died to dead.
func regicide(setup *entity.GameSetup, turn *entity.Turn, dead map[string]bool) {
	for _, player := range setup.GamePlayers {
		if !player.IsKing || player.TeamID == "" {
			continue
		}

		if !dead[player.ID] && turn.IsAlive(player.ID) {
			continue
		}

		for _, member := range setup.GamePlayers {
			if member.TeamID == player.TeamID && turn.IsAlive(member.ID) {
				dead[member.ID] = true
			}
		}
	}
}

func teamSnakeApply(
	setup *entity.GameSetup,
	current *entity.Turn,
	moves []entity.Move,
	extra func(setup *entity.GameSetup, turn *entity.Turn, dead map[string]bool),
) (*entity.Turn, error) {
	if current.GameOver {
		return nil, apperror.ErrGameFinished
	}

	next, dead := snakeStep(setup, current, moves)
	if extra != nil {
		extra(setup, next, dead)
	}

	eliminate(next, dead)
	spawnFood(setup, next, current.TurnNumber+1)

	standing := survivingTeams(setup, next)
	solo := len(activeTeams(setup)) == 1
	if len(standing) == 0 || (!solo && len(standing) == 1) {
		next.GameOver = true
		next.Winners = teamWinners(setup, next, standing)
	}

	return next, nil
}

func teamMembers(setup *entity.GameSetup) []entity.GamePlayer {
	return slices.DeleteFunc(slices.Clone(setup.GamePlayers), func(player entity.GamePlayer) bool {
		return player.TeamID == ""
	})
}

// activeTeams lists teams with at least one member, in roster order.
func activeTeams(setup *entity.GameSetup) []string {
	var out []string
	for _, player := range teamMembers(setup) {
		if !slices.Contains(out, player.TeamID) {
			out = append(out, player.TeamID)
		}
	}

	return out
}

func survivingTeams(setup *entity.GameSetup, turn *entity.Turn) []string {
	var out []string
	for _, player := range teamMembers(setup) {
		if turn.IsAlive(player.ID) && !slices.Contains(out, player.TeamID) {
			out = append(out, player.TeamID)
		}
	}

	return out
}

// teamWinners lists the surviving members of the last team standing.
func teamWinners(setup *entity.GameSetup, turn *entity.Turn, standing []string) []entity.Winner {
	if len(standing) != 1 {
		return nil
	}

	var out []entity.Winner
	for _, player := range setup.GamePlayers {
		if player.TeamID == standing[0] && turn.IsAlive(player.ID) {
			out = append(out, entity.Winner{PlayerID: player.ID, Score: len(turn.PlayerPieces[player.ID])})
		}
	}

	return out
}
