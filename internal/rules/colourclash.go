package rules

import (
	"fmt"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/board"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

// colourClash is territory capture. Each player grows from a seed cell by
// taking one cell next to their territory per turn, flipping it from any
// owner. Empty pockets bordered by a single player flood to that player.
// Illegal targets are no-ops.
type colourClash struct {
	allPlayersActive
	passByDefault
}

func (colourClash) Kind() entity.GameKind {
	return entity.ColourClash
}

func (that colourClash) Validate(setup *entity.GameSetup) error {
	if players := len(that.FilterActivePlayers(setup)); players > setup.BoardWidth*setup.BoardHeight {
		return fmt.Errorf("%w: %d players do not fit the board", apperror.ErrInvalidBoard, players)
	}

	return nil
}

func (that colourClash) FirstTurn(setup *entity.GameSetup) (*entity.Turn, error) {
	players := that.FilterActivePlayers(setup)
	turn := blankTurn(players)
	starts := spreadCells(setup.Board(), 0, 0, len(players))

	for i, player := range players {
		turn.PlayerPieces[player.ID] = []int{starts[i]}
	}

	return turn, nil
}

func (that colourClash) ApplyMoves(setup *entity.GameSetup, current *entity.Turn, moves []entity.Move) (*entity.Turn, error) {
	if current.GameOver {
		return nil, apperror.ErrGameFinished
	}

	b := setup.Board()
	before := occupancy(current)
	owners := occupancy(current)
	byPlayer := movesByPlayer(moves)
	claimed := make(map[int]bool)

	for _, id := range orderedAlive(setup, current) {
		target, ok := byPlayer[id]
		if !ok || !b.Contains(target) || before[target] == id || claimed[target] {
			continue
		}

		if !bordersOwner(b, before, target, id) {
			continue
		}

		claimed[target] = true
		owners[target] = id
	}

	flood(b, owners)

	next := newTurn(current)
	next.PlayerPieces = piecesFromOwners(owners, current.AlivePlayers)

	dead := make(map[string]bool)
	for _, id := range current.AlivePlayers {
		if len(next.PlayerPieces[id]) == 0 {
			dead[id] = true
		}
	}
	eliminate(next, dead)

	solo := len(that.FilterActivePlayers(setup)) == 1
	if boardFull(b, owners) || len(next.AlivePlayers) == 0 || (!solo && len(next.AlivePlayers) == 1) {
		order := orderedAlive(setup, next)
		next.GameOver = true
		next.Winners = winnersByScore(order, pieceCounts(next, order))
	}

	return next, nil
}

func bordersOwner(b board.Board, owners map[int]string, cell int, id string) bool {
	for _, n := range b.Neighbors(cell) {
		if owners[n] == id {
			return true
		}
	}

	return false
}

// flood fills each connected empty region whose owned border belongs to a
// single player.
func flood(b board.Board, owners map[int]string) {
	visited := make(map[int]bool)

	for cell := 0; cell < b.Size(); cell++ {
		if _, taken := owners[cell]; taken || visited[cell] {
			continue
		}

		region := []int{cell}
		visited[cell] = true
		borders := make(map[string]bool)

		for i := 0; i < len(region); i++ {
			for _, n := range b.Neighbors(region[i]) {
				if id, taken := owners[n]; taken {
					borders[id] = true
					continue
				}

				if !visited[n] {
					visited[n] = true
					region = append(region, n)
				}
			}
		}

		if len(borders) != 1 {
			continue
		}

		for id := range borders {
			for _, c := range region {
				owners[c] = id
			}
		}
	}
}
