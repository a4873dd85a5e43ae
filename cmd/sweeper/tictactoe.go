package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-ai/internal/tictactoe"
)

func newTicTacToeCmd() *cobra.Command {
	var playOut bool
	cmd := &cobra.Command{
		Use:     "tictactoe [BOARD]",
		Aliases: []string{"ttt"},
		Short:   "Find the optimal tic-tac-toe move",
		Long: `BOARD lists nine cells in row-major order: X, O, or '.' for empty.
Without BOARD the empty board is used.`,
		Example: `  sweeper tictactoe XX.OO....
  sweeper tictactoe --play`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := tictactoe.InitialState()
			if len(args) == 1 {
				var err error
				if b, err = tictactoe.ParseBoard(args[0]); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if !playOut {
				describe(out, b)
				return nil
			}
			for {
				fmt.Fprintf(out, "%s\n\n", b)
				a, ok := tictactoe.Minimax(b)
				if !ok {
					break
				}
				next, err := tictactoe.Result(b, a)
				if err != nil {
					return err
				}
				b = next
			}
			describe(out, b)
			return nil
		},
	}
	cmd.Flags().BoolVar(&playOut, "play", false, "play the game out with optimal moves")
	return cmd
}

func describe(w io.Writer, b tictactoe.Board) {
	a, value, ok := tictactoe.Evaluate(b)
	if !ok {
		winner := tictactoe.Winner(b)
		if winner == tictactoe.Empty {
			fmt.Fprintln(w, "game over: draw")
		} else {
			fmt.Fprintf(w, "game over: %s wins\n", winner)
		}
		return
	}
	fmt.Fprintf(w, "%s\n%s to move, best move %s, value %+d\n",
		b, tictactoe.CurrentPlayer(b), a, value)
}
