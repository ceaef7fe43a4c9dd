package rules

import (
	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/board"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

// placeFunc resolves a requested cell to the cell actually taken.
type placeFunc func(b board.Board, owners map[int]string, cell int) (int, bool)

// placeAll applies one placement per alive player in roster order, so a
// lower index wins a contended cell. Rejected placements are no-ops.
func placeAll(setup *entity.GameSetup, current *entity.Turn, moves []entity.Move, place placeFunc) (*entity.Turn, error) {
	if current.GameOver {
		return nil, apperror.ErrGameFinished
	}

	b := setup.Board()
	next := newTurn(current)
	owners := occupancy(current)
	byPlayer := movesByPlayer(moves)

	for _, id := range orderedAlive(setup, current) {
		cell, ok := byPlayer[id]
		if !ok || cell == entity.PassMove {
			continue
		}

		target, ok := place(b, owners, cell)
		if !ok {
			continue
		}

		owners[target] = id
		next.PlayerPieces[id] = append(next.PlayerPieces[id], target)
	}

	return next, nil
}

func placeOnEmpty(b board.Board, owners map[int]string, cell int) (int, bool) {
	if !b.Contains(cell) {
		return 0, false
	}

	if _, taken := owners[cell]; taken {
		return 0, false
	}

	return cell, true
}

func boardFull(b board.Board, owners map[int]string) bool {
	return len(owners) >= b.Size()
}

// runWinners lists every alive player owning a run of at least length.
func runWinners(setup *entity.GameSetup, turn *entity.Turn, length int) []entity.Winner {
	b := setup.Board()

	var winners []entity.Winner
	for _, id := range orderedAlive(setup, turn) {
		run := longestRun(b, turn.PlayerPieces[id])
		if len(run) >= length {
			winners = append(winners, entity.Winner{PlayerID: id, Score: len(run), WinningCells: run})
		}
	}

	return winners
}
