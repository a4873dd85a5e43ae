package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-ai/internal/config"
	"github.com/vancomm/minesweeper-ai/internal/metrics"
	"github.com/vancomm/minesweeper-ai/internal/minesweeper"
	"github.com/vancomm/minesweeper-ai/internal/repository"
)

// memRuns is an in-memory RunStore.
type memRuns struct {
	mu   sync.Mutex
	runs []*repository.Run
}

func (m *memRuns) CreateRun(
	_ context.Context, res *minesweeper.Result, operator *string,
) (*repository.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, run := range m.runs {
		if run.GameParams() == res.GameParams && uint64(run.Seed) == res.Seed {
			return nil, repository.ErrDuplicateRun
		}
	}
	run := &repository.Run{
		RunId:      pgtype.UUID{Bytes: uuid.New(), Valid: true},
		Seed:       int64(res.Seed),
		Width:      res.Width,
		Height:     res.Height,
		MineCount:  res.MineCount,
		Outcome:    res.Outcome.String(),
		Moves:      res.Moves,
		MoveCount:  len(res.Moves),
		SafeMoves:  res.SafeMoves,
		Guesses:    res.Guesses,
		MinesFound: res.MinesFound,
		DurationUs: res.Duration.Microseconds(),
		Operator:   operator,
		CreatedAt:  pgtype.Timestamptz{Time: time.Now(), Valid: true},
	}
	m.runs = append(m.runs, run)
	return run, nil
}

func (m *memRuns) FetchRun(_ context.Context, id uuid.UUID) (*repository.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, run := range m.runs {
		if run.ID() == id {
			return run, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memRuns) FetchRunBySeed(
	_ context.Context, params minesweeper.GameParams, seed uint64,
) (*repository.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, run := range m.runs {
		if run.GameParams() == params && uint64(run.Seed) == seed {
			return run, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memRuns) matches(f repository.RunFilter, run *repository.Run) bool {
	if f.GameParams != nil && *f.GameParams != run.GameParams() {
		return false
	}
	if f.Outcome != nil && f.Outcome.String() != run.Outcome {
		return false
	}
	if f.Operator != nil && (run.Operator == nil || *run.Operator != *f.Operator) {
		return false
	}
	return true
}

func (m *memRuns) ListRuns(
	_ context.Context, f repository.RunFilter, limit, offset int,
) ([]repository.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := make([]repository.Run, 0)
	for _, run := range m.runs {
		if m.matches(f, run) {
			ret = append(ret, *run)
		}
	}
	ret = ret[min(offset, len(ret)):]
	return ret[:min(limit, len(ret))], nil
}

func (m *memRuns) GetStats(_ context.Context, f repository.RunFilter) ([]repository.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s repository.Stats
	for _, run := range m.runs {
		if !m.matches(f, run) {
			continue
		}
		s.Width, s.Height, s.MineCount = run.Width, run.Height, run.MineCount
		s.Games++
		if run.Outcome == "won" {
			s.Wins++
		}
	}
	if s.Games == 0 {
		return []repository.Stats{}, nil
	}
	return []repository.Stats{s}, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newTestMux(runs RunStore) *http.ServeMux {
	m := metrics.New()
	ms := NewMinesweeperHandler(
		discard(), runs, m, config.NewWebSocket(), rand.New(rand.NewPCG(1, 2)),
	)
	ttt := NewTicTacToeHandler(discard(), m)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /minesweeper/runs", ms.PlayRun)
	mux.HandleFunc("GET /minesweeper/runs", ms.ListRuns)
	mux.HandleFunc("GET /minesweeper/runs/{id}", ms.FetchRun)
	mux.HandleFunc("GET /minesweeper/stats", ms.Stats)
	mux.HandleFunc("GET /minesweeper/watch", ms.Watch)
	mux.HandleFunc("POST /tictactoe/best-move", ttt.BestMove)
	return mux
}

func do(t *testing.T, h http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, strings.NewReader(body)))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestPlayRun(t *testing.T) {
	mux := newTestMux(&memRuns{})

	w := do(t, mux, "POST", "/minesweeper/runs?width=8&height=8&mine_count=8&seed=42", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[RunDTO](t, w)
	assert.Equal(t, uint64(42), created.Seed)
	assert.Equal(t, 8, created.MineCount)
	assert.Len(t, created.Mines, 8)
	assert.Equal(t, created.MoveCount, len(created.Moves))

	w = do(t, mux, "POST", "/minesweeper/runs?width=8&height=8&mine_count=8&seed=42", "")
	require.Equal(t, http.StatusOK, w.Code)
	again := decode[RunDTO](t, w)
	assert.Equal(t, created.RunId, again.RunId)

	w = do(t, mux, "GET", "/minesweeper/runs/"+created.RunId, "")
	require.Equal(t, http.StatusOK, w.Code)
	fetched := decode[RunDTO](t, w)
	assert.Equal(t, created.Moves, fetched.Moves)
	assert.Empty(t, fetched.Mines)
}

func TestPlayRunRandomSeed(t *testing.T) {
	mux := newTestMux(&memRuns{})
	a := decode[RunDTO](t, do(t, mux, "POST", "/minesweeper/runs?width=5&height=5&mine_count=3", ""))
	b := decode[RunDTO](t, do(t, mux, "POST", "/minesweeper/runs?width=5&height=5&mine_count=3", ""))
	assert.NotEqual(t, a.Seed, b.Seed)
	assert.NotEqual(t, a.RunId, b.RunId)
}

func TestBadRequests(t *testing.T) {
	mux := newTestMux(&memRuns{})
	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{"missing params", "POST", "/minesweeper/runs?width=8", "", http.StatusBadRequest},
		{"too many mines", "POST", "/minesweeper/runs?width=2&height=2&mine_count=4", "", http.StatusBadRequest},
		{"bad seed", "POST", "/minesweeper/runs?width=2&height=2&mine_count=1&seed=-1", "", http.StatusBadRequest},
		{"bad id", "GET", "/minesweeper/runs/nope", "", http.StatusBadRequest},
		{"unknown id", "GET", "/minesweeper/runs/" + uuid.NewString(), "", http.StatusNotFound},
		{"partial params", "GET", "/minesweeper/runs?width=8", "", http.StatusBadRequest},
		{"bad outcome", "GET", "/minesweeper/stats?outcome=draw", "", http.StatusBadRequest},
		{"limit too big", "GET", "/minesweeper/runs?limit=1000", "", http.StatusBadRequest},
		{"watch bad params", "GET", "/minesweeper/watch?width=0&height=1&mine_count=0", "", http.StatusBadRequest},
		{"ttt not json", "POST", "/tictactoe/best-move", "XX.OO....", http.StatusBadRequest},
		{"ttt unknown field", "POST", "/tictactoe/best-move", `{"board":".........","x":1}`, http.StatusBadRequest},
		{"ttt short board", "POST", "/tictactoe/best-move", `{"board":"XX"}`, http.StatusBadRequest},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := do(t, mux, test.method, test.target, test.body)
			assert.Equal(t, test.status, w.Code, w.Body.String())
			assert.Contains(t, decode[map[string]string](t, w), "error")
		})
	}
}

func TestListRunsAndStats(t *testing.T) {
	mux := newTestMux(&memRuns{})
	for _, seed := range []string{"1", "2", "3"} {
		w := do(t, mux, "POST", "/minesweeper/runs?width=4&height=4&mine_count=2&seed="+seed, "")
		require.Equal(t, http.StatusCreated, w.Code)
	}
	do(t, mux, "POST", "/minesweeper/runs?width=5&height=4&mine_count=2&seed=1", "")

	w := do(t, mux, "GET", "/minesweeper/runs?width=4&height=4&mine_count=2&limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	runs := decode[[]RunDTO](t, w)
	assert.Len(t, runs, 2)
	for _, run := range runs {
		assert.Empty(t, run.Moves)
	}

	w = do(t, mux, "GET", "/minesweeper/stats?width=4&height=4&mine_count=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[[]repository.Stats](t, w)
	require.Len(t, stats, 1)
	assert.Equal(t, 3, stats[0].Games)
}

func TestBestMove(t *testing.T) {
	mux := newTestMux(&memRuns{})

	w := do(t, mux, "POST", "/tictactoe/best-move", `{"board":"XX.OO...."}`)
	require.Equal(t, http.StatusOK, w.Code)
	dto := decode[BestMoveDTO](t, w)
	assert.Equal(t, "X", dto.Player)
	require.NotNil(t, dto.Action)
	assert.Equal(t, 0, dto.Action.Row)
	assert.Equal(t, 2, dto.Action.Col)
	assert.Equal(t, 1, dto.Value)
	assert.False(t, dto.Terminal)
	assert.Nil(t, dto.Winner)

	w = do(t, mux, "POST", "/tictactoe/best-move", `{"board":"XXXOO...."}`)
	require.Equal(t, http.StatusOK, w.Code)
	dto = decode[BestMoveDTO](t, w)
	assert.True(t, dto.Terminal)
	assert.Nil(t, dto.Action)
	require.NotNil(t, dto.Winner)
	assert.Equal(t, "X", *dto.Winner)
}

func TestWatch(t *testing.T) {
	server := httptest.NewServer(newTestMux(&memRuns{}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") +
		"/minesweeper/watch?width=6&height=6&mine_count=5&seed=9"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	var start WatchMessage
	require.NoError(t, c.ReadJSON(&start))
	assert.Equal(t, "start", start.Type)
	require.NotNil(t, start.Seed)
	assert.Equal(t, uint64(9), *start.Seed)

	var moves []minesweeper.Move
	for {
		var m WatchMessage
		require.NoError(t, c.ReadJSON(&m))
		if m.Type == "result" {
			require.NotNil(t, m.Result)
			assert.Equal(t, len(moves), m.Result.MoveCount)
			break
		}
		require.Equal(t, "move", m.Type)
		moves = append(moves, *m.Move)
	}

	expected, err := minesweeper.Autoplay(
		context.Background(), minesweeper.GameParams{Width: 6, Height: 6, MineCount: 5}, 9, nil,
	)
	require.NoError(t, err)
	assert.Equal(t, expected.Moves, moves)

	_, _, err = c.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err)
}
