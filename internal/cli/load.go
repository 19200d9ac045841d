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
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foodwh/foodwh-etl/internal/db"
	"github.com/foodwh/foodwh-etl/internal/pipeline"
	"github.com/foodwh/foodwh-etl/internal/storage"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Replace the warehouse contents with the transformed tables",
	Long: `Validate every table in the transformed zone, then load them into
the warehouse in one transaction: all tables are truncated and each file
is copied in foreign key order. Row counts and checksums are recorded in
etl_metadata. On failure the previous contents are kept.

Example:
  foodwh-etl load --connection "postgres://etl@localhost/food_dw"`,
	RunE: runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	return loadWarehouse(ctx, cmd, pipeline.New(cfg, store), store)
}

// loadWarehouse validates the transformed tables and loads them.
func loadWarehouse(ctx context.Context, cmd *cobra.Command, p *pipeline.Pipeline, store storage.Store) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	files, err := db.ReadFiles(ctx, store, cfg.Storage)
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	exists, err := db.SchemaExists(ctx, pool)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("warehouse schema not found; run 'foodwh-etl init' first")
	}

	result, err := db.Load(ctx, pool, files)
	if err != nil {
		return err
	}

	cmd.Println("Tables loaded:")
	for _, t := range result.Tables {
		cmd.Printf("  %-13s %8d rows  xxh3:%s\n", t.Table, t.Rows, t.Checksum)
	}
	return nil
}
