package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-ai/internal/config"
	"github.com/vancomm/minesweeper-ai/internal/minesweeper"
)

func newPlayCmd() *cobra.Command {
	var (
		preset    string
		seed      uint64
		showMoves bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Let the knowledge base play one game",
		Example: `  sweeper play --params expert --seed 7
  sweeper play --params "10x10(12)" --moves`,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := config.ParsePreset(preset)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = rand.Uint64()
			}

			out := cmd.OutOrStdout()
			var onMove minesweeper.OnMove
			if showMoves {
				onMove = func(m minesweeper.Move) { printMove(out, m) }
			}

			res, err := minesweeper.Autoplay(cmd.Context(), params, seed, onMove)
			if err != nil {
				return err
			}

			b, err := minesweeper.NewBoardWithMines(params.Height, params.Width, res.Mines)
			if err != nil {
				return err
			}
			fmt.Fprint(out, b)
			printResult(out, res)

			log.WithFields(logrus.Fields{
				"params":  params.String(),
				"seed":    seed,
				"outcome": res.Outcome,
			}).Debug("played")
			return nil
		},
	}
	cmd.Flags().StringVarP(&preset, "params", "p", "beginner", "beginner, intermediate, expert or WxH(mines)")
	cmd.Flags().Uint64VarP(&seed, "seed", "s", 0, "seed for the layout and the guesses (random if unset)")
	cmd.Flags().BoolVarP(&showMoves, "moves", "m", false, "print every probe")
	return cmd
}

func printMove(w io.Writer, m minesweeper.Move) {
	kind := "safe "
	if m.Guess {
		kind = "guess"
	}
	if m.Mine() {
		fmt.Fprintf(w, "%s %s -> mine\n", kind, m.Cell)
		return
	}
	fmt.Fprintf(w, "%s %s -> %d\n", kind, m.Cell, m.Count)
}

func printResult(w io.Writer, res *minesweeper.Result) {
	fmt.Fprintf(w,
		"%s seed=%d: %s after %d moves (%d safe, %d guesses), %d/%d mines found in %s\n",
		res.GameParams, res.Seed, res.Outcome,
		len(res.Moves), res.SafeMoves, res.Guesses,
		res.MinesFound, res.MineCount, res.Duration,
	)
}
