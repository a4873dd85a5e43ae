package tictactoe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) Board {
	t.Helper()
	b, err := ParseBoard(s)
	require.NoError(t, err)
	return b
}

func TestCurrentPlayer(t *testing.T) {
	tests := []struct {
		board string
		want  Mark
	}{
		{".........", X},
		{"X........", O},
		{"XO.......", X},
		{"XOX......", O},
		{"XOXOXOOXO", X},
	}
	for _, test := range tests {
		t.Run(test.board, func(t *testing.T) {
			assert.Equal(t, test.want, CurrentPlayer(mustParse(t, test.board)))
		})
	}
}

func TestActions(t *testing.T) {
	assert.Len(t, Actions(InitialState()), 9)
	assert.Equal(t,
		[]Action{{0, 2}, {2, 1}},
		Actions(mustParse(t, "XO.OXXO.O")),
	)
	assert.Empty(t, Actions(mustParse(t, "XOXXOOOXX")))
}

func TestResult(t *testing.T) {
	b := InitialState()
	next, err := Result(b, Action{1, 1})
	require.NoError(t, err)
	assert.Equal(t, X, next[1][1])
	assert.Equal(t, Empty, b[1][1], "original board must not change")

	next, err = Result(next, Action{0, 0})
	require.NoError(t, err)
	assert.Equal(t, O, next[0][0])
}

func TestResultIllegal(t *testing.T) {
	b := mustParse(t, "X........")
	tests := []struct {
		name   string
		action Action
	}{
		{"taken", Action{0, 0}},
		{"row out of range", Action{3, 0}},
		{"negative column", Action{0, -1}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Result(b, test.action)
			var ime *IllegalMoveError
			require.True(t, errors.As(err, &ime))
			assert.Equal(t, test.action, ime.Action)
		})
	}
}

func TestWinner(t *testing.T) {
	tests := []struct {
		name  string
		board string
		want  Mark
	}{
		{"empty", ".........", Empty},
		{"top row", "XXXOO....", X},
		{"middle column", "XO..OX.OX", O},
		{"main diagonal", "XO.OX...X", X},
		{"anti diagonal", "XXO.O.OX.", O},
		{"draw", "XOXXOOOXX", Empty},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, Winner(mustParse(t, test.board)))
		})
	}
}

func TestTerminalAndUtility(t *testing.T) {
	tests := []struct {
		board    string
		terminal bool
		utility  int
	}{
		{".........", false, 0},
		{"XXXOO....", true, 1},
		{"XO..OX.OX", true, -1},
		{"XOXXOOOXX", true, 0},
		{"XOXXOO.X.", false, 0},
	}
	for _, test := range tests {
		t.Run(test.board, func(t *testing.T) {
			b := mustParse(t, test.board)
			assert.Equal(t, test.terminal, Terminal(b))
			if test.terminal {
				assert.Equal(t, test.utility, Utility(b))
			}
		})
	}
}

func TestMinimaxTakesWin(t *testing.T) {
	b := mustParse(t, "XX.OO....")
	a, ok := Minimax(b)
	require.True(t, ok)
	assert.Equal(t, Action{0, 2}, a)
}

func TestMinimaxBlocks(t *testing.T) {
	/* O to move, X threatens the top row; O has no win of its own. */
	b := mustParse(t, "XX..O....")
	a, ok := Minimax(b)
	require.True(t, ok)
	assert.Equal(t, Action{0, 2}, a)
}

func TestMinimaxTerminal(t *testing.T) {
	_, ok := Minimax(mustParse(t, "XXXOO...."))
	assert.False(t, ok)
	_, ok = Minimax(mustParse(t, "XOXXOOOXX"))
	assert.False(t, ok)
}

func TestPerfectPlayDraws(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	b := InitialState()
	assert.Equal(t, 0, Value(b))

	for !Terminal(b) {
		a, ok := Minimax(b)
		require.True(t, ok)
		next, err := Result(b, a)
		require.NoError(t, err)
		assert.Equal(t, 0, Value(next), "move %s on\n%s", a, b)
		b = next
	}
	assert.Equal(t, Empty, Winner(b))
	assert.Equal(t, 0, Utility(b))
}

func TestParseBoard(t *testing.T) {
	b, err := ParseBoard("XX.\nOO.\n...")
	require.NoError(t, err)
	assert.Equal(t, "XX.\nOO.\n...", b.String())

	b, err = ParseBoard("x|o|_\n-|x|o\n  x")
	require.NoError(t, err)
	assert.Equal(t, X, b[2][2])

	_, err = ParseBoard("XX")
	assert.Error(t, err)
	_, err = ParseBoard("XXXXXXXXXX")
	assert.Error(t, err)
	_, err = ParseBoard("XX.OO...Z")
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	a, v, ok := Evaluate(mustParse(t, "XX.OO...."))
	require.True(t, ok)
	assert.Equal(t, Action{0, 2}, a)
	assert.Equal(t, 1, v)

	_, v, ok = Evaluate(mustParse(t, "XO..OX.OX"))
	assert.False(t, ok)
	assert.Equal(t, -1, v)
}
