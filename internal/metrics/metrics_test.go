package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-ai/internal/minesweeper"
)

func TestObserveResult(t *testing.T) {
	m := New()
	res := &minesweeper.Result{
		GameParams: minesweeper.Beginner,
		Outcome:    minesweeper.Won,
		Moves:      make([]minesweeper.Move, 5),
		SafeMoves:  4,
		Guesses:    1,
		Duration:   time.Millisecond,
	}
	m.ObserveResult(res)
	m.ObserveResult(res)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.games.WithLabelValues("8x8(8)", "won")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.moves.WithLabelValues("safe")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.moves.WithLabelValues("guess")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveTicTacToe("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `sweeper_tictactoe_queries_total{status="ok"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
