package tictactoe

// CurrentPlayer returns who moves next. X opens and moves whenever the counts
// are tied.
func CurrentPlayer(b Board) Mark {
	if b.count(O) >= b.count(X) {
		return X
	}
	return O
}

// Actions returns the empty cells in row-major order.
func Actions(b Board) []Action {
	ret := make([]Action, 0, 9)
	for row := range 3 {
		for col := range 3 {
			if b[row][col] == Empty {
				ret = append(ret, Action{row, col})
			}
		}
	}
	return ret
}

// Result returns the board after the current player takes a. b is not
// modified.
func Result(b Board, a Action) (Board, error) {
	if !a.inBounds() {
		return b, &IllegalMoveError{Action: a, Reason: "out of range"}
	}
	if b[a.Row][a.Col] != Empty {
		return b, &IllegalMoveError{Action: a, Reason: "cell is taken"}
	}
	next := b
	next[a.Row][a.Col] = CurrentPlayer(b)
	return next, nil
}

var lines = [8][3]Action{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Winner returns the player with three in a row, or Empty.
func Winner(b Board) Mark {
	for _, l := range lines {
		m := b[l[0].Row][l[0].Col]
		if m != Empty &&
			m == b[l[1].Row][l[1].Col] &&
			m == b[l[2].Row][l[2].Col] {
			return m
		}
	}
	return Empty
}

func Terminal(b Board) bool {
	return Winner(b) != Empty || b.count(Empty) == 0
}

// Utility is 1 if X has won, -1 if O has won and 0 otherwise. Only
// meaningful on a terminal board.
func Utility(b Board) int {
	switch Winner(b) {
	case X:
		return 1
	case O:
		return -1
	default:
		return 0
	}
}

/*
Minimax returns the optimal action for the current player. X maximises the
utility, O minimises it. The search is exhaustive; among equally good
actions the first in row-major order wins. Returns false on a terminal
board.
*/
func Minimax(b Board) (Action, bool) {
	if Terminal(b) {
		return Action{}, false
	}
	a, _ := search(b)
	return a, true
}

// Value is the utility of b when both sides play optimally from here.
func Value(b Board) int {
	_, v := search(b)
	return v
}

// Evaluate combines [Minimax] and [Value] in a single search.
func Evaluate(b Board) (a Action, value int, ok bool) {
	a, value = search(b)
	return a, value, !Terminal(b)
}

func search(b Board) (best Action, value int) {
	if Terminal(b) {
		return Action{}, Utility(b)
	}

	maximize := CurrentPlayer(b) == X
	if maximize {
		value = -2
	} else {
		value = +2
	}

	for _, a := range Actions(b) {
		next, err := Result(b, a)
		if err != nil {
			panic(err) /* Actions only yields empty cells */
		}
		_, v := search(next)
		if maximize && v > value || !maximize && v < value {
			best, value = a, v
		}
	}
	return
}
