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
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last warehouse load",
	Long: `Show the version, time, row counts and xxh3 checksums recorded in
etl_metadata by the last committed load.

Example:
  foodwh-etl status --connection "postgres://etl@localhost/food_dw"`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	status, err := db.ReadStatus(ctx, pool)
	if err != nil {
		return err
	}
	printStatus(cmd, status)
	return nil
}

func printStatus(cmd *cobra.Command, status *db.Status) {
	if status == nil {
		cmd.Println("Warehouse has not been loaded")
		return
	}
	cmd.Printf("Last load: %s (foodwh-etl %s)\n", status.LoadedAt, status.Version)
	for _, t := range status.Tables {
		cmd.Printf("  %-13s %8d rows  xxh3:%s\n", t.Table, t.Rows, t.Checksum)
	}
}
