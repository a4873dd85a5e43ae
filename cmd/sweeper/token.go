package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-ai/internal/config"
)

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token OPERATOR",
		Short: "Issue an operator token for creating runs on the server",
		Long:  "Reads JWT_PRIVATE_KEY[_FILE] and JWT_PUBLIC_KEY[_FILE].",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := config.NewJWT()
			if err != nil {
				return err
			}
			token, err := j.IssueOperatorToken(args[0], time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
