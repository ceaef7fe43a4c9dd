package rules

import (
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/board"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

// Snake boards carry a one-cell wall on the perimeter. Entering it kills.
const (
	snakeStartLength    = 3
	snakeMaxHealth      = 100
	snakeHazardDamage   = 14
	snakeFoodChance     = 15
	snakeMinimumFood    = 1
	snakeMinBoardLength = 5
)

func validateSnakeBoard(setup *entity.GameSetup, players int) error {
	if setup.BoardWidth < snakeMinBoardLength || setup.BoardHeight < snakeMinBoardLength {
		return fmt.Errorf("%w: snake boards need at least %dx%d", apperror.ErrInvalidBoard, snakeMinBoardLength, snakeMinBoardLength)
	}

	if interior := (setup.BoardWidth - 2) * (setup.BoardHeight - 2); players > interior {
		return fmt.Errorf("%w: %d snakes do not fit on %d cells", apperror.ErrInvalidBoard, players, interior)
	}

	return nil
}

// snakeFirstTurn stacks each snake on a spread out start cell and puts one
// food diagonal to each snake plus one in the centre.
func snakeFirstTurn(setup *entity.GameSetup, players []entity.GamePlayer) *entity.Turn {
	b := setup.Board()
	turn := blankTurn(players)
	starts := spreadCells(b, 2, 1, len(players))

	taken := make(map[int]bool)
	for i, player := range players {
		start := starts[i]
		taken[start] = true
		turn.PlayerPieces[player.ID] = slices.Repeat([]int{start}, snakeStartLength)
		turn.PlayerHealth[player.ID] = snakeMaxHealth
	}

	for _, start := range starts {
		for _, d := range [][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
			cell, ok := b.Step(start, d[0], d[1])
			if ok && !b.IsPerimeter(cell) && !taken[cell] {
				taken[cell] = true
				turn.Food = append(turn.Food, cell)
				break
			}
		}
	}

	if centre := b.Index(b.Width/2, b.Height/2); !taken[centre] {
		turn.Food = append(turn.Food, centre)
	}

	return turn
}

// snakeDefaultMove keeps going in the current direction, or up when the
// snake has not moved yet.
func snakeDefaultMove(b board.Board, body []int) int {
	if len(body) == 0 {
		return entity.PassMove
	}

	head := body[0]
	dx, dy := 0, -1
	if len(body) > 1 && body[1] != head {
		hx, hy := b.XY(head)
		nx, ny := b.XY(body[1])
		dx, dy = hx-nx, hy-ny
	}

	if next, ok := b.Step(head, dx, dy); ok {
		return next
	}

	next, _ := b.Step(head, 0, -1)

	return next
}

// snakeStep moves every alive snake and returns the players eliminated by
// walls, starvation, body collisions and head-to-head losses. Moves that are
// not adjacent to the head are replaced by the default move.
func snakeStep(setup *entity.GameSetup, current *entity.Turn, moves []entity.Move) (*entity.Turn, map[string]bool) {
	b := setup.Board()
	next := newTurn(current)
	alive := orderedAlive(setup, current)
	byPlayer := movesByPlayer(moves)
	food := toSet(current.Food)
	hazards := toSet(current.Hazards)
	eaten := make(map[int]bool)

	for _, id := range alive {
		body := current.PlayerPieces[id]
		if len(body) == 0 {
			continue
		}

		target, ok := byPlayer[id]
		if !ok || !b.Contains(target) || !b.IsAdjacent(body[0], target) {
			target = snakeDefaultMove(b, body)
		}

		moved := append([]int{target}, body...)
		health := next.PlayerHealth[id] - 1
		if food[target] {
			eaten[target] = true
			health = snakeMaxHealth
		} else {
			moved = moved[:len(moved)-1]
		}

		if hazards[target] {
			health -= snakeHazardDamage
		}

		next.PlayerPieces[id] = moved
		next.PlayerHealth[id] = health
	}

	next.Food = removeCells(current.Food, eaten)

	// Starvation and walls are resolved first. Snakes removed by them take
	// no part in collisions.
	dead := make(map[string]bool)
	for _, id := range alive {
		body := next.PlayerPieces[id]
		if len(body) == 0 || next.PlayerHealth[id] <= 0 || b.IsPerimeter(body[0]) {
			dead[id] = true
		}
	}

	survivors := slices.DeleteFunc(slices.Clone(alive), func(id string) bool { return dead[id] })

	collided := make(map[string]bool)
	for _, id := range survivors {
		body := next.PlayerPieces[id]
		head := body[0]

		for _, other := range survivors {
			otherBody := next.PlayerPieces[other]

			if slices.Contains(otherBody[1:], head) {
				collided[id] = true
				break
			}

			if other != id && otherBody[0] == head && len(body) <= len(otherBody) {
				collided[id] = true
				break
			}
		}
	}

	maps.Copy(dead, collided)

	return next, dead
}

// eliminate removes players from the alive set and clears their bodies.
func eliminate(turn *entity.Turn, dead map[string]bool) {
	turn.AlivePlayers = slices.DeleteFunc(turn.AlivePlayers, func(id string) bool {
		return dead[id]
	})

	for id := range dead {
		delete(turn.PlayerPieces, id)
		turn.PlayerHealth[id] = 0
	}
}

// spawnFood tops food up to the minimum and then adds one more with a fixed
// chance. The generator is seeded from the game seed and the turn number so
// a replay produces the same board.
func spawnFood(setup *entity.GameSetup, turn *entity.Turn, turnNumber int) {
	b := setup.Board()
	rng := rand.New(rand.NewPCG(uint64(setup.Seed), uint64(turnNumber)))

	occupied := toSet(turn.Food)
	for _, body := range turn.PlayerPieces {
		for _, cell := range body {
			occupied[cell] = true
		}
	}

	free := make([]int, 0, b.Size())
	for cell := 0; cell < b.Size(); cell++ {
		if !b.IsPerimeter(cell) && !occupied[cell] {
			free = append(free, cell)
		}
	}

	spawn := max(snakeMinimumFood-len(turn.Food), 0)
	if spawn == 0 && rng.IntN(100) < snakeFoodChance {
		spawn = 1
	}

	for ; spawn > 0 && len(free) > 0; spawn-- {
		i := rng.IntN(len(free))
		turn.Food = append(turn.Food, free[i])
		free = slices.Delete(free, i, i+1)
	}
}

func pieceCounts(turn *entity.Turn, ids []string) map[string]int {
	out := make(map[string]int, len(ids))
	for _, id := range ids {
		out[id] = len(turn.PlayerPieces[id])
	}

	return out
}

// snek is free-for-all Battlesnake. The last snake alive wins.
type snek struct {
	allPlayersActive
}

func (snek) Kind() entity.GameKind {
	return entity.Snek
}

func (that snek) Validate(setup *entity.GameSetup) error {
	return validateSnakeBoard(setup, len(that.FilterActivePlayers(setup)))
}

func (that snek) FirstTurn(setup *entity.GameSetup) (*entity.Turn, error) {
	return snakeFirstTurn(setup, that.FilterActivePlayers(setup)), nil
}

func (snek) DefaultMove(setup *entity.GameSetup, current *entity.Turn, playerID string) int {
	return snakeDefaultMove(setup.Board(), current.PlayerPieces[playerID])
}

func (that snek) ApplyMoves(setup *entity.GameSetup, current *entity.Turn, moves []entity.Move) (*entity.Turn, error) {
	if current.GameOver {
		return nil, apperror.ErrGameFinished
	}

	next, dead := snakeStep(setup, current, moves)
	eliminate(next, dead)
	spawnFood(setup, next, current.TurnNumber+1)

	solo := len(that.FilterActivePlayers(setup)) == 1
	if len(next.AlivePlayers) == 0 || (!solo && len(next.AlivePlayers) == 1) {
		next.GameOver = true
		next.Winners = winnersByScore(next.AlivePlayers, pieceCounts(next, next.AlivePlayers))
	}

	return next, nil
}
