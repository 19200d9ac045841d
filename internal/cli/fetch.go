//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/foodwh/foodwh-etl/internal/datagen"
	"github.com/foodwh/foodwh-etl/internal/fetch"
)

var (
	fetchTimeout time.Duration
	fetchRetries int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [source...]",
	Short: "Download raw sources into the raw zone",
	Long: `Download every source that has a url configured (or only the named
ones) and store it in the raw zone under its configured key.

Sources: production_value, food_balance, trade, population, prices

Example:
  foodwh-etl fetch
  foodwh-etl fetch population prices --storage s3 --bucket food-dw`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 0,
		"per-download timeout (default: 5m)")
	fetchCmd.Flags().IntVar(&fetchRetries, "retries", 0,
		"retries per download on transient errors (default: 3, negative disables)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateFetch(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	client := fetch.NewClient(fetch.Config{Timeout: fetchTimeout, MaxRetries: fetchRetries})
	results, err := fetch.Sources(ctx, client, store, cfg, args...)
	for _, r := range results {
		cmd.Printf("  %-17s %10s  %s\n", r.Dataset, datagen.FormatSize(r.Size), r.Key)
	}
	return err
}
