package rules

import (
	"slices"

	"github.com/rocketscienceinc/gridgames-backend/internal/board"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

// newTurn starts the successor of current. The turn engine stamps the
// number and times.
func newTurn(current *entity.Turn) *entity.Turn {
	next := current.Clone()
	next.Winners = nil

	return next
}

// blankTurn is turn 0 with empty piece lists for every active player.
func blankTurn(players []entity.GamePlayer) *entity.Turn {
	turn := &entity.Turn{
		PlayerPieces: make(map[string][]int, len(players)),
		PlayerHealth: make(map[string]int, len(players)),
		AlivePlayers: make([]string, 0, len(players)),
	}

	for _, player := range players {
		turn.PlayerPieces[player.ID] = []int{}
		turn.AlivePlayers = append(turn.AlivePlayers, player.ID)
	}

	return turn
}

func movesByPlayer(moves []entity.Move) map[string]int {
	out := make(map[string]int, len(moves))
	for _, move := range moves {
		out[move.PlayerID] = move.Move
	}

	return out
}

// orderedAlive returns the alive players in roster order, which is the
// tie-break order for contended cells.
func orderedAlive(setup *entity.GameSetup, turn *entity.Turn) []string {
	out := make([]string, 0, len(turn.AlivePlayers))
	for _, player := range setup.GamePlayers {
		if turn.IsAlive(player.ID) {
			out = append(out, player.ID)
		}
	}

	return out
}

// occupancy maps every occupied cell to its owner.
func occupancy(turn *entity.Turn) map[int]string {
	out := make(map[int]string)
	for id, pieces := range turn.PlayerPieces {
		for _, cell := range pieces {
			out[cell] = id
		}
	}

	return out
}

// piecesFromOwners rebuilds sorted piece lists for the given players.
func piecesFromOwners(owners map[int]string, players []string) map[string][]int {
	out := make(map[string][]int, len(players))
	for _, id := range players {
		out[id] = []int{}
	}

	for cell, id := range owners {
		if _, ok := out[id]; ok {
			out[id] = append(out[id], cell)
		}
	}

	for id := range out {
		slices.Sort(out[id])
	}

	return out
}

func toSet(cells []int) map[int]bool {
	out := make(map[int]bool, len(cells))
	for _, cell := range cells {
		out[cell] = true
	}

	return out
}

// longestRun returns the longest straight line inside cells, scanning the
// four line directions from each run start.
func longestRun(b board.Board, cells []int) []int {
	set := toSet(cells)

	var best []int
	for _, start := range cells {
		for _, d := range board.Lines {
			if prev, ok := b.Step(start, -d[0], -d[1]); ok && set[prev] {
				continue
			}

			run := []int{start}
			for cur := start; ; {
				next, ok := b.Step(cur, d[0], d[1])
				if !ok || !set[next] {
					break
				}
				run = append(run, next)
				cur = next
			}

			if len(run) > len(best) {
				best = run
			}
		}
	}

	return best
}

// winnersByScore returns the players sharing the highest score, in roster
// order.
func winnersByScore(order []string, scores map[string]int) []entity.Winner {
	best := 0
	for _, id := range order {
		best = max(best, scores[id])
	}

	if best == 0 {
		return nil
	}

	var out []entity.Winner
	for _, id := range order {
		if scores[id] == best {
			out = append(out, entity.Winner{PlayerID: id, Score: best})
		}
	}

	return out
}

// spreadCells picks n distinct start cells: corners and edge midpoints of
// the rectangle inset from the board edge, then every other cell inside
// margin, then any cell inside margin.
func spreadCells(b board.Board, inset, margin, n int) []int {
	lo, hiX, hiY := margin, b.Width-1-margin, b.Height-1-margin
	clampX := func(v int) int { return min(max(v, lo), hiX) }
	clampY := func(v int) int { return min(max(v, lo), hiY) }

	minX, maxX := clampX(inset), clampX(b.Width-1-inset)
	minY, maxY := clampY(inset), clampY(b.Height-1-inset)
	midX, midY := (minX+maxX)/2, (minY+maxY)/2

	candidates := [][2]int{
		{minX, minY}, {maxX, maxY}, {maxX, minY}, {minX, maxY},
		{midX, minY}, {midX, maxY}, {minX, midY}, {maxX, midY},
	}

	for step := 2; step >= 1; step-- {
		for y := lo; y <= hiY; y += step {
			for x := lo; x <= hiX; x += step {
				candidates = append(candidates, [2]int{x, y})
			}
		}
	}

	out := make([]int, 0, n)
	seen := make(map[int]bool)
	for _, c := range candidates {
		if len(out) == n {
			break
		}

		index := b.Index(c[0], c[1])
		if seen[index] {
			continue
		}
		seen[index] = true
		out = append(out, index)
	}

	return out
}

func removeCells(cells []int, drop map[int]bool) []int {
	out := make([]int, 0, len(cells))
	for _, cell := range cells {
		if !drop[cell] {
			out = append(out, cell)
		}
	}

	return out
}
