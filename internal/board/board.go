// Package board maps between flattened cell indices and (x, y) coordinates
// of a rectangular board. Index 0 is the top-left cell and y grows downward.
package board

// FlattenedToXY returns the column and row of a flattened index.
func FlattenedToXY(index, width int) (int, int) {
	return index % width, index / width
}

// XYToFlattened returns the flattened index of a column and row.
func XYToFlattened(x, y, width int) int {
	return y*width + x
}

type Board struct {
	Width  int
	Height int
}

func New(width, height int) Board {
	return Board{Width: width, Height: height}
}

func (that Board) Size() int {
	return that.Width * that.Height
}

func (that Board) InBounds(x, y int) bool {
	return x >= 0 && x < that.Width && y >= 0 && y < that.Height
}

func (that Board) Contains(index int) bool {
	return index >= 0 && index < that.Size()
}

func (that Board) XY(index int) (int, int) {
	return FlattenedToXY(index, that.Width)
}

func (that Board) Index(x, y int) int {
	return XYToFlattened(x, y, that.Width)
}

// Step moves from index by (dx, dy). The second result is false when the
// target lies outside the board.
func (that Board) Step(index, dx, dy int) (int, bool) {
	x, y := that.XY(index)
	x, y = x+dx, y+dy
	if !that.InBounds(x, y) {
		return index, false
	}

	return that.Index(x, y), true
}

// Neighbors returns the in-bounds orthogonal neighbours in up, down, left,
// right order.
func (that Board) Neighbors(index int) []int {
	out := make([]int, 0, 4)
	for _, d := range Orthogonal {
		if next, ok := that.Step(index, d[0], d[1]); ok {
			out = append(out, next)
		}
	}

	return out
}

// IsAdjacent reports whether a and b share an edge.
func (that Board) IsAdjacent(a, b int) bool {
	ax, ay := that.XY(a)
	bx, by := that.XY(b)
	dx, dy := ax-bx, ay-by

	return dx*dx+dy*dy == 1
}

// IsPerimeter reports whether the index lies on the outer ring.
func (that Board) IsPerimeter(index int) bool {
	x, y := that.XY(index)
	return x == 0 || y == 0 || x == that.Width-1 || y == that.Height-1
}

// Orthogonal holds unit steps: up, down, left, right.
var Orthogonal = [][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

// Lines holds the four line directions used for run checks.
var Lines = [][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// AllDirections holds the eight compass steps.
var AllDirections = [][2]int{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}
