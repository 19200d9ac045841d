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
	"github.com/foodwh/foodwh-etl/internal/logging"
)

var initDropExisting bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the warehouse schema",
	Long: `Create the star schema (dimension and fact tables, indexes and the
etl_metadata table) in the warehouse database. Existing tables are kept
unless --drop-existing is given.

Example:
  foodwh-etl init --connection "postgres://etl@localhost/food_dw"`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing warehouse tables before creating them")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if initDropExisting {
		cfg.Init.DropExisting = true
	}

	// Validate configuration
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.Init.DropExisting {
		logging.Warn().Msg("Dropping existing schema")
	}
	if err := db.CreateSchema(ctx, pool, cfg.Init.DropExisting); err != nil {
		return err
	}

	logging.Info().Msg("Database initialization complete")
	return nil
}
