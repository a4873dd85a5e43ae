package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-ai/internal/config"
	"github.com/vancomm/minesweeper-ai/internal/database"
	"github.com/vancomm/minesweeper-ai/internal/handlers"
	"github.com/vancomm/minesweeper-ai/internal/metrics"
	"github.com/vancomm/minesweeper-ai/internal/middleware"
	"github.com/vancomm/minesweeper-ai/internal/repository"
)

type App struct {
	logger  *slog.Logger
	router  *http.ServeMux
	db      *pgxpool.Pool
	runs    handlers.RunStore
	jwt     *config.JWT
	ws      *config.WebSocket
	metrics *metrics.Metrics
}

func New(logger *slog.Logger) *App {
	return &App{
		logger:  logger,
		router:  http.NewServeMux(),
		ws:      config.NewWebSocket(),
		metrics: metrics.New(),
	}
}

// Handler builds the routes around runs. It is used directly by tests.
func (a *App) Handler(runs handlers.RunStore, j *config.JWT) http.Handler {
	a.runs = runs
	a.jwt = j
	a.loadRoutes()

	mws := []middleware.Middleware{middleware.Recover(a.logger)}
	if j != nil {
		mws = append(mws, middleware.Auth(a.logger, j))
	}
	mws = append(mws, middleware.Cors(), middleware.Logging(a.logger))

	var h http.Handler = a.router
	if base := config.BasePath(); base != "" {
		h = http.StripPrefix(base, h)
	}
	return middleware.Wrap(h, mws...)
}

func (a *App) Start(ctx context.Context) error {
	db, err := database.ConnectAndMigrate(ctx)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	a.db = db
	defer db.Close()

	var j *config.JWT
	if config.JWTEnabled() {
		if j, err = config.NewVerifier(); err != nil {
			return err
		}
	} else {
		a.logger.Warn("no JWT public key configured, runs can be created anonymously")
	}

	addr := ":" + config.Port()
	server := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(repository.New(db), j),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening", slog.String("addr", addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
