package minesweeper

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/vancomm/minesweeper-ai/internal/knowledge"
)

type Cell = knowledge.Cell

// Board holds the real mine layout of a game.
type Board struct {
	GameParams
	grid []bool
}

/*
NewBoard places params.MineCount mines uniformly at random.
*/
func NewBoard(params GameParams, r *rand.Rand) (*Board, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	b := &Board{GameParams: params, grid: make([]bool, params.Cells())}

	/*
	 * Write down the list of possible mine locations, then pick n off
	 * the list at random.
	 */
	candidates := make([]int, params.Cells())
	for i := range candidates {
		candidates[i] = i
	}
	k := len(candidates)
	for range params.MineCount {
		i := r.IntN(k)
		b.grid[candidates[i]] = true
		k--
		candidates[i] = candidates[k]
	}

	return b, nil
}

// NewBoardWithMines builds a board with a fixed layout.
func NewBoardWithMines(height, width int, mines []Cell) (*Board, error) {
	b := &Board{
		GameParams: GameParams{Width: width, Height: height, MineCount: len(mines)},
		grid:       make([]bool, width*height),
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	for _, c := range mines {
		if !b.InBounds(c) {
			return nil, fmt.Errorf("%w: mine %s off the board", ErrInvalidParams, c)
		}
		if b.IsMine(c) {
			return nil, fmt.Errorf("%w: mine %s listed twice", ErrInvalidParams, c)
		}
		b.grid[b.index(c)] = true
	}
	return b, nil
}

func (b *Board) index(c Cell) int {
	return c.Row*b.Width + c.Col
}

func (b *Board) InBounds(c Cell) bool {
	return c.InBounds(b.Height, b.Width)
}

func (b *Board) IsMine(c Cell) bool {
	return b.InBounds(c) && b.grid[b.index(c)]
}

// NearbyMines counts the mines among the neighbours of c, not including c.
func (b *Board) NearbyMines(c Cell) (n int) {
	for _, nb := range knowledge.Neighbors(c, b.Height, b.Width) {
		if b.IsMine(nb) {
			n++
		}
	}
	return
}

// Mines returns the mine cells in row-major order.
func (b *Board) Mines() []Cell {
	ret := make([]Cell, 0, b.MineCount)
	for i, mine := range b.grid {
		if mine {
			ret = append(ret, Cell{Row: i / b.Width, Col: i % b.Width})
		}
	}
	return ret
}

// Found reports whether found is exactly the set of mines.
func (b *Board) Found(found []Cell) bool {
	if len(found) != b.MineCount {
		return false
	}
	seen := make(map[Cell]struct{}, len(found))
	for _, c := range found {
		if !b.IsMine(c) {
			return false
		}
		seen[c] = struct{}{}
	}
	return len(seen) == b.MineCount
}

// Board implements [fmt.Stringer]
func (b *Board) String() string {
	var sb strings.Builder
	sep := strings.Repeat("--", b.Width) + "-\n"
	for row := range b.Height {
		sb.WriteString(sep)
		for col := range b.Width {
			if b.grid[row*b.Width+col] {
				sb.WriteString("|X")
			} else {
				sb.WriteString("| ")
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(sep)
	return sb.String()
}
