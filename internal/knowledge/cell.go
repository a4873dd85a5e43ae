package knowledge

import (
	"cmp"
	"fmt"
	"slices"
)

// Cell is a board coordinate, 0-indexed from the top left corner.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Cell implements [fmt.Stringer]
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

func (c Cell) InBounds(height, width int) bool {
	return 0 <= c.Row && c.Row < height && 0 <= c.Col && c.Col < width
}

func compareCells(a, b Cell) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return cmp.Compare(a.Col, b.Col)
}

/*
Neighbors returns every cell within one row and column of c, not including c
itself. Candidates outside [0,height) x [0,width) are dropped, so corners and
edges need no special casing.
*/
func Neighbors(c Cell, height, width int) []Cell {
	ret := make([]Cell, 0, 8)
	for dr := -1; dr <= +1; dr++ {
		for dc := -1; dc <= +1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Cell{c.Row + dr, c.Col + dc}
			if n.InBounds(height, width) {
				ret = append(ret, n)
			}
		}
	}
	return ret
}

type cellSet map[Cell]struct{}

func newCellSet(cells ...Cell) cellSet {
	s := make(cellSet, len(cells))
	for _, c := range cells {
		s[c] = struct{}{}
	}
	return s
}

func (s cellSet) has(c Cell) bool {
	_, ok := s[c]
	return ok
}

func (s cellSet) add(c Cell) {
	s[c] = struct{}{}
}

func (s cellSet) clone() cellSet {
	ret := make(cellSet, len(s))
	for c := range s {
		ret[c] = struct{}{}
	}
	return ret
}

// sorted returns the members in row-major order.
func (s cellSet) sorted() []Cell {
	ret := make([]Cell, 0, len(s))
	for c := range s {
		ret = append(ret, c)
	}
	slices.SortFunc(ret, compareCells)
	return ret
}

func (s cellSet) equal(o cellSet) bool {
	if len(s) != len(o) {
		return false
	}
	for c := range s {
		if !o.has(c) {
			return false
		}
	}
	return true
}

func (s cellSet) subsetOf(o cellSet) bool {
	if len(s) > len(o) {
		return false
	}
	for c := range s {
		if !o.has(c) {
			return false
		}
	}
	return true
}
