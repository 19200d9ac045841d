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

	"github.com/foodwh/foodwh-etl/internal/config"
	"github.com/foodwh/foodwh-etl/internal/datagen"
	"github.com/foodwh/foodwh-etl/internal/logging"
	"github.com/foodwh/foodwh-etl/internal/pipeline"
)

var (
	runSeedData bool
	runSkipLoad bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Transform and load in one step",
	Long: `Run every transform stage and then load the warehouse. With
--seed-data synthetic extracts are written first, which together with
--storage memory gives a self-contained dry run. The seed flags of the
seed command apply.

Example:
  foodwh-etl run --connection "postgres://etl@localhost/food_dw"
  foodwh-etl run --storage memory --seed-data --skip-load`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runSeedData, "seed-data", false,
		"write synthetic raw extracts before transforming")
	runCmd.Flags().BoolVar(&runSkipLoad, "skip-load", false,
		"stop after the transform")
	addSeedFlags(runCmd.Flags())
}

func runRun(cmd *cobra.Command, args []string) error {
	if !runSkipLoad {
		if err := cfg.ValidateLoad(); err != nil {
			return err
		}
	}
	if cfg.Storage.Kind == config.StorageMem && !runSeedData {
		logging.Warn().Msg("Memory storage starts empty; use --seed-data")
	}

	ctx, cancel := signalContext()
	defer cancel()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if runSeedData {
		if _, err := datagen.Seed(ctx, store, cfg, seedOptions()); err != nil {
			return err
		}
	}

	p := pipeline.New(cfg, store)
	if err := p.Run(ctx, pipeline.StageAll); err != nil {
		return err
	}
	cmd.Println("Tables written:")
	printOutputs(cmd, p)

	if runSkipLoad {
		return nil
	}
	return loadWarehouse(ctx, cmd, p, store)
}
