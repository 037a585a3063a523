package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/lesingerouge/crawler/pkg/config"
)

// options carries process-wide collaborators so tests can isolate them.
type options struct {
	out        io.Writer
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
}

// NewRootCmd creates the crawler command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(options{
		out:        os.Stdout,
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
	})
}

func newRootCmd(opts options) *cobra.Command {
	var seedsFile string

	cmd := &cobra.Command{
		Use:   "crawler [seed-url...]",
		Short: "Depth-bounded breadth-first web crawler",
		Long: `crawler fetches each seed URL, then follows in-scope links level by level
up to the configured depth. Links are in scope when they start with the seed URL.
Visited URLs are remembered in Redis or SQLite across runs, so a URL is fetched
at most once per seed.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := loadSeed(args, seedsFile)
			if err != nil {
				return err
			}
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, seed, opts)
		},
	}

	cmd.Flags().StringVar(&seedsFile, "seeds-file", "", "file with one seed URL per line")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newFailedCmd())

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
