package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-ai/internal/config"
	"github.com/vancomm/minesweeper-ai/internal/knowledge"
	"github.com/vancomm/minesweeper-ai/internal/minesweeper"
)

var log = logrus.New()

type logOptions struct {
	verbose bool
	// trace enables per-move and per-derivation engine logs
	trace   bool
	logFile string
}

func setupLogging(opts logOptions) error {
	level := logrus.InfoLevel
	if opts.verbose || config.Development() {
		level = logrus.DebugLevel
	}
	engineLevel := logrus.InfoLevel
	if opts.trace {
		engineLevel = logrus.DebugLevel
	}

	log.SetLevel(level)
	minesweeper.Log.SetLevel(engineLevel)
	knowledge.Log.SetLevel(engineLevel)

	loggers := []*logrus.Logger{log, minesweeper.Log, knowledge.Log}
	for _, l := range loggers {
		l.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	}

	if opts.logFile == "" {
		return nil
	}
	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   opts.logFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Level:      logrus.DebugLevel,
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		return err
	}
	for _, l := range loggers {
		l.AddHook(hook)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	var opts logOptions
	root := &cobra.Command{
		Use:           "sweeper",
		Short:         "Minesweeper playing knowledge base and tic-tac-toe solver",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(opts)
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&opts.trace, "trace", false, "log every move and derivation")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "also log to a rotated file")

	root.AddCommand(
		newPlayCmd(),
		newBenchCmd(),
		newTicTacToeCmd(),
		newMigrateCmd(),
		newTokenCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error(err)
		stop()
		os.Exit(1)
	}
}
