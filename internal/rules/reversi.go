package rules

import (
	"fmt"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/board"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

// reversi is Othello for any number of players. Placements are resolved in
// roster order against the board as updated by earlier placements of the
// same turn. A placement that flips nothing is a no-op.
type reversi struct {
	allPlayersActive
	passByDefault
}

func (reversi) Kind() entity.GameKind {
	return entity.Reversi
}

func (that reversi) Validate(setup *entity.GameSetup) error {
	side := reversiBlockSide(len(that.FilterActivePlayers(setup)))
	if setup.BoardWidth < side+2 || setup.BoardHeight < side+2 {
		return fmt.Errorf("%w: reversi needs at least %dx%d", apperror.ErrInvalidBoard, side+2, side+2)
	}

	return nil
}

// reversiBlockSide is the side of the centre block seeded with discs.
func reversiBlockSide(players int) int {
	if players <= 2 {
		return 2
	}

	return 4
}

// FirstTurn seeds a centre block where cell (x, y) belongs to player
// (x+y) mod n. Two players get the classic diagonal start.
func (that reversi) FirstTurn(setup *entity.GameSetup) (*entity.Turn, error) {
	players := that.FilterActivePlayers(setup)
	b := setup.Board()
	turn := blankTurn(players)

	side := reversiBlockSide(len(players))
	x0, y0 := (b.Width-side)/2, (b.Height-side)/2
	for dy := 0; dy < side; dy++ {
		for dx := 0; dx < side; dx++ {
			id := players[(dx+dy)%len(players)].ID
			turn.PlayerPieces[id] = append(turn.PlayerPieces[id], b.Index(x0+dx, y0+dy))
		}
	}

	return turn, nil
}

func (that reversi) ApplyMoves(setup *entity.GameSetup, current *entity.Turn, moves []entity.Move) (*entity.Turn, error) {
	if current.GameOver {
		return nil, apperror.ErrGameFinished
	}

	b := setup.Board()
	owners := occupancy(current)
	byPlayer := movesByPlayer(moves)

	for _, id := range orderedAlive(setup, current) {
		cell, ok := byPlayer[id]
		if !ok || !b.Contains(cell) {
			continue
		}

		if _, taken := owners[cell]; taken {
			continue
		}

		flips := reversiFlips(b, owners, cell, id)
		if len(flips) == 0 {
			continue
		}

		owners[cell] = id
		for _, f := range flips {
			owners[f] = id
		}
	}

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
	stuck := true
	for _, id := range next.AlivePlayers {
		if reversiHasMove(b, owners, id) {
			stuck = false
			break
		}
	}

	if boardFull(b, owners) || stuck || (!solo && len(next.AlivePlayers) <= 1) {
		order := orderedAlive(setup, next)
		next.GameOver = true
		next.Winners = winnersByScore(order, pieceCounts(next, order))
	}

	return next, nil
}

// reversiFlips lists the discs of other players bracketed by a disc of id
// placed on cell.
func reversiFlips(b board.Board, owners map[int]string, cell int, id string) []int {
	var flips []int
	for _, d := range board.AllDirections {
		var line []int
		cur := cell
		for {
			next, ok := b.Step(cur, d[0], d[1])
			if !ok {
				line = nil
				break
			}

			owner, taken := owners[next]
			if !taken {
				line = nil
				break
			}

			if owner == id {
				break
			}

			line = append(line, next)
			cur = next
		}

		flips = append(flips, line...)
	}

	return flips
}

func reversiHasMove(b board.Board, owners map[int]string, id string) bool {
	for cell := 0; cell < b.Size(); cell++ {
		if _, taken := owners[cell]; taken {
			continue
		}

		if len(reversiFlips(b, owners, cell, id)) > 0 {
			return true
		}
	}

	return false
}
