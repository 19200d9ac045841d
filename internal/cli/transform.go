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
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/foodwh/foodwh-etl/internal/pipeline"
)

var (
	transformStage   string
	transformEndYear int
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Build the warehouse tables from the raw zone",
	Long: `Build the dimension and fact tables from the raw extracts and write
them to the transformed zone. Every table is validated before it is
written; a failing table aborts the run and nothing is written for it.

Stages:
  dimensions - dim_country, dim_product, dim_date
  facts      - per-metric fact files and fact_prices (needs dimensions)
  merge      - fact_metrics from the per-metric files (needs facts)
  all        - every stage in order (default)

Example:
  foodwh-etl transform
  foodwh-etl transform --stage facts --end-year 2026`,
	RunE: runTransform,
}

func init() {
	transformCmd.Flags().StringVar(&transformStage, "stage", pipeline.StageAll,
		"stage to run: dimensions, facts, merge, all")
	transformCmd.Flags().IntVar(&transformEndYear, "end-year", 0,
		"last year of the date dimension (default: next year)")
}

func runTransform(cmd *cobra.Command, args []string) error {
	if !slices.Contains(pipeline.Stages, transformStage) {
		return fmt.Errorf("invalid stage '%s': must be one of %v", transformStage, pipeline.Stages)
	}
	if transformEndYear > 0 {
		cfg.Dates.EndYear = transformEndYear
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	p := pipeline.New(cfg, store)
	if err := p.Run(ctx, transformStage); err != nil {
		return err
	}

	cmd.Println("Tables written:")
	printOutputs(cmd, p)
	return nil
}
