package rules

import (
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

// longboi fills the board one cell per player per turn. When the board is
// full the longest straight run wins.
type longboi struct {
	allPlayersActive
	passByDefault
}

func (longboi) Kind() entity.GameKind {
	return entity.Longboi
}

func (longboi) Validate(*entity.GameSetup) error {
	return nil
}

func (that longboi) FirstTurn(setup *entity.GameSetup) (*entity.Turn, error) {
	return blankTurn(that.FilterActivePlayers(setup)), nil
}

func (longboi) ApplyMoves(setup *entity.GameSetup, current *entity.Turn, moves []entity.Move) (*entity.Turn, error) {
	next, err := placeAll(setup, current, moves, placeOnEmpty)
	if err != nil {
		return nil, err
	}

	if !boardFull(setup.Board(), occupancy(next)) {
		return next, nil
	}

	b := setup.Board()
	order := orderedAlive(setup, next)
	scores := make(map[string]int, len(order))
	runs := make(map[string][]int, len(order))
	for _, id := range order {
		runs[id] = longestRun(b, next.PlayerPieces[id])
		scores[id] = len(runs[id])
	}

	next.GameOver = true
	next.Winners = winnersByScore(order, scores)
	for i := range next.Winners {
		next.Winners[i].WinningCells = runs[next.Winners[i].PlayerID]
	}

	return next, nil
}
