package rules

import (
	"fmt"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/board"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

const connect4WinLength = 4

// connect4 drops a piece into the column of the requested cell. A full
// column or an off-board cell is a no-op.
type connect4 struct {
	allPlayersActive
	passByDefault
}

func (connect4) Kind() entity.GameKind {
	return entity.Connect4
}

func (connect4) Validate(setup *entity.GameSetup) error {
	if setup.BoardWidth < connect4WinLength || setup.BoardHeight < connect4WinLength {
		return fmt.Errorf("%w: connect4 needs at least %dx%d", apperror.ErrInvalidBoard, connect4WinLength, connect4WinLength)
	}

	return nil
}

func (that connect4) FirstTurn(setup *entity.GameSetup) (*entity.Turn, error) {
	return blankTurn(that.FilterActivePlayers(setup)), nil
}

func (connect4) ApplyMoves(setup *entity.GameSetup, current *entity.Turn, moves []entity.Move) (*entity.Turn, error) {
	next, err := placeAll(setup, current, moves, dropInColumn)
	if err != nil {
		return nil, err
	}

	if winners := runWinners(setup, next, connect4WinLength); len(winners) > 0 {
		next.GameOver = true
		next.Winners = winners

		return next, nil
	}

	if boardFull(setup.Board(), occupancy(next)) {
		next.GameOver = true
	}

	return next, nil
}

// dropInColumn returns the lowest free cell of the column.
func dropInColumn(b board.Board, owners map[int]string, cell int) (int, bool) {
	if !b.Contains(cell) {
		return 0, false
	}

	x, _ := b.XY(cell)
	for y := b.Height - 1; y >= 0; y-- {
		index := b.Index(x, y)
		if _, taken := owners[index]; !taken {
			return index, true
		}
	}

	return 0, false
}
