package tictactoe

import (
	"fmt"
	"strings"
)

type Mark int8

const (
	Empty Mark = iota
	X
	O
)

// Mark implements [fmt.Stringer]
func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return "."
	}
}

// Board is a 3x3 grid. It is a value: assigning a board copies it.
type Board [3][3]Mark

type Action struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Action implements [fmt.Stringer]
func (a Action) String() string {
	return fmt.Sprintf("(%d,%d)", a.Row, a.Col)
}

func (a Action) inBounds() bool {
	return 0 <= a.Row && a.Row < 3 && 0 <= a.Col && a.Col < 3
}

type IllegalMoveError struct {
	Action Action
	Reason string
}

// [IllegalMoveError] implements [error]
func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s: %s", e.Action, e.Reason)
}

func InitialState() Board {
	return Board{}
}

/*
ParseBoard reads a board from nine marks in row-major order. X and O are
case-insensitive; '.', '_', '-' and ' ' are empty cells. Newlines and '|'
separators are ignored.
*/
func ParseBoard(s string) (Board, error) {
	var (
		b Board
		i int
	)
	for _, r := range s {
		var m Mark
		switch r {
		case '\n', '\r', '|':
			continue
		case 'x', 'X':
			m = X
		case 'o', 'O':
			m = O
		case '.', '_', '-', ' ':
			m = Empty
		default:
			return Board{}, fmt.Errorf("invalid mark %q", r)
		}
		if i >= 9 {
			return Board{}, fmt.Errorf("too many cells")
		}
		b[i/3][i%3] = m
		i++
	}
	if i != 9 {
		return Board{}, fmt.Errorf("expected 9 cells, got %d", i)
	}
	return b, nil
}

// Board implements [fmt.Stringer]
func (b Board) String() string {
	var sb strings.Builder
	for i, row := range b {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, m := range row {
			sb.WriteString(m.String())
		}
	}
	return sb.String()
}

func (b Board) count(m Mark) (n int) {
	for _, row := range b {
		for _, c := range row {
			if c == m {
				n++
			}
		}
	}
	return
}
