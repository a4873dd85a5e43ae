package app

import (
	"hash/maphash"
	"log/slog"
	"math/rand/v2"
	"net/http"

	"github.com/vancomm/minesweeper-ai/internal/handlers"
	"github.com/vancomm/minesweeper-ai/internal/middleware"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) loadRoutes() {
	ms := handlers.NewMinesweeperHandler(
		a.logger, a.runs, a.metrics, a.ws, createRand(),
	)
	ttt := handlers.NewTicTacToeHandler(a.logger, a.metrics)

	playRun := ms.PlayRun
	if a.jwt != nil {
		playRun = middleware.RequireOperator(playRun)
	}

	a.router.HandleFunc("POST /minesweeper/runs", playRun)
	a.router.HandleFunc("GET /minesweeper/runs", ms.ListRuns)
	a.router.HandleFunc("GET /minesweeper/runs/{id}", ms.FetchRun)
	a.router.HandleFunc("GET /minesweeper/stats", ms.Stats)
	a.router.HandleFunc("GET /minesweeper/watch", ms.Watch)
	a.router.HandleFunc("POST /tictactoe/best-move", ttt.BestMove)
	a.router.Handle("GET /metrics", a.metrics.Handler())
	a.router.HandleFunc("GET /healthz", a.health)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		if err := a.db.Ping(r.Context()); err != nil {
			a.logger.Error("health check failed", slog.Any("error", err))
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Write([]byte("ok"))
}
