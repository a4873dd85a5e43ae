package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"

	"github.com/vancomm/minesweeper-ai/internal/config"
	"github.com/vancomm/minesweeper-ai/internal/metrics"
	"github.com/vancomm/minesweeper-ai/internal/middleware"
	"github.com/vancomm/minesweeper-ai/internal/minesweeper"
	"github.com/vancomm/minesweeper-ai/internal/repository"
)

// RunStore persists autoplay runs. [*repository.Queries] implements it.
type RunStore interface {
	CreateRun(ctx context.Context, res *minesweeper.Result, operator *string) (*repository.Run, error)
	FetchRun(ctx context.Context, id uuid.UUID) (*repository.Run, error)
	FetchRunBySeed(ctx context.Context, params minesweeper.GameParams, seed uint64) (*repository.Run, error)
	ListRuns(ctx context.Context, filter repository.RunFilter, limit, offset int) ([]repository.Run, error)
	GetStats(ctx context.Context, filter repository.RunFilter) ([]repository.Stats, error)
}

type MinesweeperHandler struct {
	logger  *slog.Logger
	runs    RunStore
	metrics *metrics.Metrics
	ws      *config.WebSocket

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewMinesweeperHandler(
	logger *slog.Logger,
	runs RunStore,
	metrics *metrics.Metrics,
	ws *config.WebSocket,
	rnd *rand.Rand,
) *MinesweeperHandler {
	return &MinesweeperHandler{
		logger:  logger,
		runs:    runs,
		metrics: metrics,
		ws:      ws,
		rnd:     rnd,
	}
}

func (h *MinesweeperHandler) seed(dto PlayRunDTO) uint64 {
	if dto.Seed != nil {
		return *dto.Seed
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rnd.Uint64()
}

func (h *MinesweeperHandler) sendRun(w http.ResponseWriter, status int, run *repository.Run, withMoves bool) {
	dto, err := NewRunDTO(run, withMoves)
	if err != nil {
		sendInternalError(w, h.logger, "unable to restore run", err)
		return
	}
	sendJSONOrLog(w, h.logger, status, dto)
}

/*
PlayRun plays a game and stores it. Replaying a stored seed returns the
stored run with status 200 instead of playing again.
*/
func (h *MinesweeperHandler) PlayRun(w http.ResponseWriter, r *http.Request) {
	dto, err := ParsePlayRunDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}
	params := dto.GameParams()
	seed := h.seed(dto)

	if dto.Seed != nil {
		run, err := h.runs.FetchRunBySeed(r.Context(), params, seed)
		if err == nil {
			h.sendRun(w, http.StatusOK, run, true)
			return
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			sendInternalError(w, h.logger, "unable to look up run", err)
			return
		}
	}

	res, err := minesweeper.Autoplay(r.Context(), params, seed, nil)
	if err != nil {
		sendInternalError(w, h.logger, "autoplay failed", err)
		return
	}
	h.metrics.ObserveResult(res)

	var operator *string
	if claims, ok := middleware.OperatorClaims(r.Context()); ok {
		operator = &claims.Operator
	}

	run, err := h.runs.CreateRun(r.Context(), res, operator)
	if errors.Is(err, repository.ErrDuplicateRun) {
		// lost a race against an identical request
		run, err = h.runs.FetchRunBySeed(r.Context(), params, seed)
		if err != nil {
			sendInternalError(w, h.logger, "unable to fetch duplicate run", err)
			return
		}
		h.sendRun(w, http.StatusOK, run, true)
		return
	}
	if err != nil {
		sendInternalError(w, h.logger, "unable to store run", err)
		return
	}

	h.logger.Info(
		"played run",
		slog.String("runId", run.ID().String()),
		slog.String("params", params.String()),
		slog.Uint64("seed", seed),
		slog.String("outcome", res.Outcome.String()),
	)

	out, err := NewRunDTO(run, true)
	if err != nil {
		sendInternalError(w, h.logger, "unable to restore run", err)
		return
	}
	out.Mines = res.Mines
	sendJSONOrLog(w, h.logger, http.StatusCreated, out)
}

func (h *MinesweeperHandler) FetchRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid run id"))
		return
	}

	run, err := h.runs.FetchRun(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		sendErrorOrLog(w, h.logger, http.StatusNotFound, fmt.Errorf("run not found"))
		return
	}
	if err != nil {
		sendInternalError(w, h.logger, "unable to fetch run", err)
		return
	}
	h.sendRun(w, http.StatusOK, run, true)
}

func (h *MinesweeperHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseRunFilterDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}
	filter, err := dto.Filter()
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}

	runs, err := h.runs.ListRuns(r.Context(), filter, dto.Limit, dto.Offset)
	if err != nil {
		sendInternalError(w, h.logger, "unable to list runs", err)
		return
	}

	out := make([]*RunDTO, 0, len(runs))
	for i := range runs {
		run, err := NewRunDTO(&runs[i], false)
		if err != nil {
			sendInternalError(w, h.logger, "unable to restore run", err)
			return
		}
		out = append(out, run)
	}
	sendJSONOrLog(w, h.logger, http.StatusOK, out)
}

func (h *MinesweeperHandler) Stats(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseRunFilterDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}
	filter, err := dto.Filter()
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}

	stats, err := h.runs.GetStats(r.Context(), filter)
	if err != nil {
		sendInternalError(w, h.logger, "unable to compute stats", err)
		return
	}
	sendJSONOrLog(w, h.logger, http.StatusOK, stats)
}

type WatchMessage struct {
	Type   string                  `json:"type"`
	Params *minesweeper.GameParams `json:"params,omitempty"`
	Seed   *uint64                 `json:"seed,omitempty,string"`
	Move   *minesweeper.Move       `json:"move,omitempty"`
	Result *ResultDTO              `json:"result,omitempty"`
	Error  string                  `json:"error,omitempty"`
}

/*
Watch streams a game over a websocket: a "start" message, one "move"
message per probe and a final "result" message. Watched games are not
stored.
*/
func (h *MinesweeperHandler) Watch(w http.ResponseWriter, r *http.Request) {
	dto, err := ParsePlayRunDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}
	params := dto.GameParams()
	seed := h.seed(dto)

	c, err := h.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// the client only ever closes; reading surfaces that
	go func() {
		defer cancel()
		for {
			if _, _, err := c.NextReader(); err != nil {
				return
			}
		}
	}()

	send := func(m WatchMessage) error {
		c.SetWriteDeadline(time.Now().Add(h.ws.WriteTimeout))
		return c.WriteJSON(m)
	}

	if err := send(WatchMessage{Type: "start", Params: &params, Seed: &seed}); err != nil {
		h.logger.Warn("unable to write json", slog.Any("error", err))
		return
	}

	res, err := minesweeper.Autoplay(ctx, params, seed, func(m minesweeper.Move) {
		if ctx.Err() != nil {
			return
		}
		if err := send(WatchMessage{Type: "move", Move: &m}); err != nil {
			h.logger.Warn("unable to write json", slog.Any("error", err))
			cancel()
			return
		}
		if h.ws.MoveDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(h.ws.MoveDelay):
			}
		}
	})
	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		h.logger.Error("autoplay failed", slog.Any("error", err))
		send(WatchMessage{Type: "error", Error: "autoplay failed"})
		return
	}
	h.metrics.ObserveResult(res)

	out := NewResultDTO(res, false)
	if err := send(WatchMessage{Type: "result", Result: &out}); err != nil {
		h.logger.Warn("unable to write json", slog.Any("error", err))
		return
	}
	c.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, res.Outcome.String()),
		time.Now().Add(h.ws.WriteTimeout),
	)
}
