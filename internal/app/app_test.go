package app

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-ai/internal/config"
	"github.com/vancomm/minesweeper-ai/internal/minesweeper"
	"github.com/vancomm/minesweeper-ai/internal/repository"
)

// stubRuns stores nothing and echoes created runs back.
type stubRuns struct {
	operators []*string
}

func (s *stubRuns) CreateRun(
	_ context.Context, res *minesweeper.Result, operator *string,
) (*repository.Run, error) {
	s.operators = append(s.operators, operator)
	return &repository.Run{
		RunId:     pgtype.UUID{Bytes: uuid.New(), Valid: true},
		Seed:      int64(res.Seed),
		Width:     res.Width,
		Height:    res.Height,
		MineCount: res.MineCount,
		Outcome:   res.Outcome.String(),
		Moves:     res.Moves,
		Operator:  operator,
	}, nil
}

func (s *stubRuns) FetchRun(context.Context, uuid.UUID) (*repository.Run, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubRuns) FetchRunBySeed(context.Context, minesweeper.GameParams, uint64) (*repository.Run, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubRuns) ListRuns(context.Context, repository.RunFilter, int, int) ([]repository.Run, error) {
	return nil, nil
}

func (s *stubRuns) GetStats(context.Context, repository.RunFilter) ([]repository.Stats, error) {
	return nil, nil
}

func newApp() *App {
	return New(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestAnonymousApp(t *testing.T) {
	t.Setenv("APP_BASE_PATH", "")
	runs := &stubRuns{}
	h := newApp().Handler(runs, nil)

	w := serve(h, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(h, httptest.NewRequest("POST", "/minesweeper/runs?width=4&height=4&mine_count=2", nil))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, runs.operators, 1)
	assert.Nil(t, runs.operators[0])

	w = serve(h, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sweeper_minesweeper_games_total")
}

func TestOperatorApp(t *testing.T) {
	t.Setenv("APP_BASE_PATH", "/api")
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	j := config.NewJWTFromKeys(key, &key.PublicKey)
	token, err := j.IssueOperatorToken("alice", time.Now())
	require.NoError(t, err)

	runs := &stubRuns{}
	h := newApp().Handler(runs, j)

	w := serve(h, httptest.NewRequest("POST", "/api/minesweeper/runs?width=4&height=4&mine_count=2", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r := httptest.NewRequest("POST", "/api/minesweeper/runs?width=4&height=4&mine_count=2", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w = serve(h, r)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, runs.operators, 1)
	assert.Equal(t, "alice", *runs.operators[0])

	w = serve(h, httptest.NewRequest("POST", "/api/tictactoe/best-move", strings.NewReader(`{"board":"........."}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"value":0`)
}
