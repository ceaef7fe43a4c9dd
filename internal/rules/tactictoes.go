package rules

import (
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

const tacticToesMaxWinLength = 4

// tacticToes is tic-tac-toe for any number of symbols. Players claim empty
// cells anywhere and the first run of winLength ends the game.
type tacticToes struct {
	allPlayersActive
	passByDefault
}

func (tacticToes) Kind() entity.GameKind {
	return entity.TacticToes
}

func (tacticToes) Validate(*entity.GameSetup) error {
	return nil
}

func (that tacticToes) FirstTurn(setup *entity.GameSetup) (*entity.Turn, error) {
	return blankTurn(that.FilterActivePlayers(setup)), nil
}

func (tacticToes) ApplyMoves(setup *entity.GameSetup, current *entity.Turn, moves []entity.Move) (*entity.Turn, error) {
	next, err := placeAll(setup, current, moves, placeOnEmpty)
	if err != nil {
		return nil, err
	}

	if winners := runWinners(setup, next, tacticToesWinLength(setup)); len(winners) > 0 {
		next.GameOver = true
		next.Winners = winners

		return next, nil
	}

	if boardFull(setup.Board(), occupancy(next)) {
		next.GameOver = true
	}

	return next, nil
}

func tacticToesWinLength(setup *entity.GameSetup) int {
	return min(tacticToesMaxWinLength, setup.BoardWidth, setup.BoardHeight)
}
