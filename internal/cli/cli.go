//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for foodwh-etl.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/foodwh/foodwh-etl/internal/config"
	"github.com/foodwh/foodwh-etl/internal/logging"
	"github.com/foodwh/foodwh-etl/internal/pipeline"
	"github.com/foodwh/foodwh-etl/internal/storage"
	"github.com/foodwh/foodwh-etl/internal/warehouse"
	"github.com/foodwh/foodwh-etl/pkg/version"
)

var (
	// Global flags
	cfgFile     string
	connection  string
	logLevel    string
	storageKind string
	storagePath string
	bucket      string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "foodwh-etl",
		Short: "Food and agriculture data warehouse ETL",
		Long: `foodwh-etl builds a star-schema data warehouse from FAOSTAT and
World Bank extracts. Raw files are read from an object store (local
directory or S3), transformed into dimension and fact tables, validated,
and bulk-loaded into PostgreSQL.

Typical workflow:
  foodwh-etl fetch        download raw sources into the raw zone
  foodwh-etl transform    build and validate the warehouse tables
  foodwh-etl init         create the warehouse schema
  foodwh-etl load         replace the warehouse contents
  foodwh-etl status       show the last load`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./foodwh-etl.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string of the warehouse")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&storageKind, "storage", "",
		"storage kind (fs, s3, memory)")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage-path", "",
		"base directory for fs storage")
	rootCmd.PersistentFlags().StringVar(&bucket, "bucket", "",
		"S3 bucket for s3 storage")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if storageKind != "" {
		cfg.Storage.Kind = storageKind
	}
	if storagePath != "" {
		cfg.Storage.LocalPath = storagePath
	}
	if bucket != "" {
		cfg.Storage.Bucket = bucket
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return cfg.Validate()
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

// openStore opens the configured object store.
func openStore(ctx context.Context) (storage.Store, error) {
	return storage.Open(ctx, cfg.Storage)
}

// printOutputs reports the tables written by a pipeline run.
func printOutputs(cmd *cobra.Command, p *pipeline.Pipeline) {
	for _, o := range p.Outputs() {
		cmd.Printf("  %-28s %8d rows  %s\n", o.Table, o.Rows, o.Key)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the warehouse tables",
	Long: `List the warehouse tables in load order with their columns and the
object keys they are written to in the transformed zone.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Warehouse tables (load order):")
		cmd.Println()
		for _, t := range warehouse.Tables() {
			cmd.Printf("  %-13s %s\n", t.Name, cfg.Storage.TransformedKey(t.File()))
			for _, c := range t.Columns {
				cmd.Printf("    - %s\n", c)
			}
		}
	},
}
