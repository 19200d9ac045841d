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
	"github.com/spf13/cobra"

	"github.com/foodwh/foodwh-etl/internal/pipeline"
)

var validateCmd = &cobra.Command{
	Use:   "validate [table...]",
	Short: "Validate tables in the transformed zone",
	Long: `Run the schema, null, uniqueness, range, enumeration and date checks
against the tables stored in the transformed zone. With no arguments
every warehouse table is checked and all failures are reported.

Example:
  foodwh-etl validate
  foodwh-etl validate dim_country fact_prices`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := pipeline.New(cfg, store).Validate(ctx, args...); err != nil {
		return err
	}
	cmd.Println("All tables passed validation")
	return nil
}
