package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-ai/internal/config"
	"github.com/vancomm/minesweeper-ai/internal/minesweeper"
	"github.com/vancomm/minesweeper-ai/internal/store"
)

type Summary struct {
	Params  minesweeper.GameParams
	Games   int
	Wins    int
	Losses  int
	Stalls  int
	Moves   int
	Guesses int
	Cached  int
	Elapsed time.Duration
}

func (s *Summary) Add(res *minesweeper.Result) {
	s.Games++
	switch res.Outcome {
	case minesweeper.Won:
		s.Wins++
	case minesweeper.Lost:
		s.Losses++
	default:
		s.Stalls++
	}
	s.Moves += len(res.Moves)
	s.Guesses += res.Guesses
	s.Elapsed += res.Duration
}

func (s Summary) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

func (s Summary) AvgGuesses() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Guesses) / float64(s.Games)
}

type ResultCache = store.Store[minesweeper.Result]

func cacheKey(params minesweeper.GameParams, seed uint64) string {
	return fmt.Sprintf("%s/%d", params, seed)
}

// play returns the cached result for params and seed or plays the game.
func play(
	ctx context.Context, cache *ResultCache, params minesweeper.GameParams, seed uint64,
) (res *minesweeper.Result, cached bool, err error) {
	key := cacheKey(params, seed)
	if cache != nil {
		stored, err := cache.Get(ctx, key)
		if err == nil {
			return &stored, true, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, false, fmt.Errorf("cache lookup %s: %w", key, err)
		}
	}

	res, err = minesweeper.Autoplay(ctx, params, seed, nil)
	if err != nil {
		return nil, false, err
	}
	if cache != nil {
		if err := cache.Set(ctx, key, *res); err != nil {
			return nil, false, fmt.Errorf("cache store %s: %w", key, err)
		}
	}
	return res, false, nil
}

/*
runBench plays b.Games games for every params of b on b.Workers goroutines.
Summaries come back in the order of b.Params.
*/
func runBench(ctx context.Context, b config.Bench, cache *ResultCache) ([]Summary, error) {
	allParams, err := b.GameParams()
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	summaries := make([]Summary, len(allParams))
	for i, params := range allParams {
		summaries[i].Params = params
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.Workers)
	for i, params := range allParams {
		for n := range b.Games {
			seed := b.Seed + uint64(n)
			g.Go(func() error {
				res, cached, err := play(ctx, cache, params, seed)
				if err != nil {
					return err
				}
				mu.Lock()
				defer mu.Unlock()
				summaries[i].Add(res)
				if cached {
					summaries[i].Cached++
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func printSummaries(w io.Writer, summaries []Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "params\tgames\twon\tlost\tstalled\twin rate\tguesses/game\tcached\t")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.1f%%\t%.2f\t%d\t\n",
			s.Params, s.Games, s.Wins, s.Losses, s.Stalls,
			100*s.WinRate(), s.AvgGuesses(), s.Cached,
		)
	}
	return tw.Flush()
}

func newBenchCmd() *cobra.Command {
	var (
		configPath string
		flags      config.Bench
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Play many seeded games and report win rates",
		Example: `  sweeper bench --games 1000 --params beginner,intermediate,expert
  sweeper bench --config bench.yaml --cache results.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := config.LoadBench(configPath)
			if err != nil {
				return err
			}
			changed := cmd.Flags().Changed
			if changed("games") {
				b.Games = flags.Games
			}
			if changed("workers") {
				b.Workers = flags.Workers
			}
			if changed("seed") {
				b.Seed = flags.Seed
			}
			if changed("params") {
				b.Params = flags.Params
			}
			if changed("cache") {
				b.Cache = flags.Cache
			}
			if err := b.Validate(); err != nil {
				return err
			}

			var cache *ResultCache
			if b.Cache != "" {
				db, err := store.Open(b.Cache)
				if err != nil {
					return err
				}
				defer db.Close()
				if cache, err = store.New[minesweeper.Result](cmd.Context(), db, "results"); err != nil {
					return err
				}
			}

			batch := uuid.New()
			logger := log.WithFields(logrus.Fields{
				"batch":   batch.String(),
				"games":   b.Games,
				"workers": b.Workers,
				"params":  b.Params,
			})
			logger.Info("starting bench")

			start := time.Now()
			summaries, err := runBench(cmd.Context(), b, cache)
			if err != nil {
				return err
			}
			logger.WithField("elapsed", time.Since(start)).Info("bench done")

			return printSummaries(cmd.OutOrStdout(), summaries)
		},
	}
	defaults := config.DefaultBench()
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML bench config")
	cmd.Flags().IntVarP(&flags.Games, "games", "n", defaults.Games, "games per params")
	cmd.Flags().IntVarP(&flags.Workers, "workers", "w", defaults.Workers, "concurrent games")
	cmd.Flags().Uint64Var(&flags.Seed, "seed", defaults.Seed, "seed of the first game")
	cmd.Flags().StringSliceVarP(&flags.Params, "params", "p", defaults.Params, "presets or WxH(mines)")
	cmd.Flags().StringVar(&flags.Cache, "cache", "", "sqlite file caching finished games")
	return cmd
}
