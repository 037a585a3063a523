package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lesingerouge/crawler/internal/adapter/postgres"
	"github.com/lesingerouge/crawler/pkg/config"
)

var errNoPostgres = errors.New("the failed URL ledger needs POSTGRES_URL or --postgres-url")

// newFailedCmd lists the failed URL ledger of one crawl scope as JSON lines.
func newFailedCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "failed <seed-url>",
		Short: "List URLs that could not be fetched under a seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.PostgresURL == "" {
				return errNoPostgres
			}

			pool, err := connectPostgres(cmd.Context(), cfg.PostgresURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			entries, err := postgres.NewFailedURLRepo(pool).FindByBaseURL(cmd.Context(), args[0], limit)
			if err != nil {
				return fmt.Errorf("list failed urls: %w", err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, e := range entries {
				if err := enc.Encode(e); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of entries")
	return cmd
}
