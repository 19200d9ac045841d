//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for foodwh-etl.
// Configuration is loaded from config files and CLI flags. The only
// environment variables consulted are FOODWH_CONNECTION and
// FOODWH_STORAGE_BUCKET, bound once in Load. CLI flags take precedence over
// config file values.
package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Storage kinds.
const (
	StorageFS  = "fs"
	StorageS3  = "s3"
	StorageMem = "memory"
)

// Country code normalization modes.
const (
	CodeModePad = "pad"
	CodeModeInt = "int"
)

// Unresolved-key policies.
const (
	UnresolvedDrop = "drop"
	UnresolvedKeep = "keep"
)

// Duplicate-grain policies for metric facts.
const (
	DuplicateKeep  = "keep"
	DuplicateFirst = "first"
	DuplicateSum   = "sum"
	DuplicateFail  = "fail"
)

// Config holds all configuration for foodwh-etl.
type Config struct {
	// Connection is the PostgreSQL connection string for the warehouse.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Storage selects where raw extracts are read and tables are written.
	Storage StorageConfig `mapstructure:"storage"`

	// Sources locates each raw dataset inside the raw/resources zones.
	Sources SourcesConfig `mapstructure:"sources"`

	// Dates bounds the generated date dimension.
	Dates DatesConfig `mapstructure:"dates"`

	// Country controls area-code normalization for the country dimension.
	Country CountryConfig `mapstructure:"country"`

	// Policy makes row-dropping and duplicate handling explicit.
	Policy PolicyConfig `mapstructure:"policy"`

	// Runtime controls fan-out of the fact builders.
	Runtime RuntimeConfig `mapstructure:"runtime"`

	// Init holds configuration for the init subcommand.
	Init InitConfig `mapstructure:"init"`
}

// StorageConfig describes the object store holding the raw, resources and
// transformed zones.
type StorageConfig struct {
	// Kind is one of fs, s3 or memory.
	Kind string `mapstructure:"kind"`

	// LocalPath is the base directory for the fs kind.
	LocalPath string `mapstructure:"local_path"`

	// Bucket is the S3 bucket name.
	Bucket string `mapstructure:"bucket"`

	// Region is the AWS region of the bucket.
	Region string `mapstructure:"region"`

	// Endpoint optionally overrides the S3 endpoint (MinIO, localstack).
	Endpoint string `mapstructure:"endpoint"`

	// UsePathStyle forces path-style S3 addressing.
	UsePathStyle bool `mapstructure:"use_path_style"`

	RawPrefix         string `mapstructure:"raw_prefix"`
	TransformedPrefix string `mapstructure:"transformed_prefix"`
	ResourcesPrefix   string `mapstructure:"resources_prefix"`
}

// SourceConfig locates one raw dataset.
type SourceConfig struct {
	// Key is the object key relative to the zone prefix.
	Key string `mapstructure:"key"`

	// Entry is the CSV member inside a ZIP archive. Empty selects the first
	// CSV entry that is not a metadata file.
	Entry string `mapstructure:"entry"`

	// Sheet is the worksheet name for spreadsheet sources.
	Sheet string `mapstructure:"sheet"`

	// SkipRows is the number of metadata rows before the header.
	SkipRows int `mapstructure:"skip_rows"`

	// URL is where the fetch command downloads the dataset from.
	URL string `mapstructure:"url"`
}

// SourcesConfig lists every raw input of the pipeline.
type SourcesConfig struct {
	ProductionValue SourceConfig `mapstructure:"production_value"`
	FoodBalance     SourceConfig `mapstructure:"food_balance"`
	Trade           SourceConfig `mapstructure:"trade"`
	Population      SourceConfig `mapstructure:"population"`
	Prices          SourceConfig `mapstructure:"prices"`
	Continents      SourceConfig `mapstructure:"continents"`
}

// DatesConfig bounds the date dimension.
type DatesConfig struct {
	StartYear int `mapstructure:"start_year"`

	// EndYear is the last generated year; 0 means current year + 1.
	EndYear int `mapstructure:"end_year"`
}

// CountryConfig controls the country dimension.
type CountryConfig struct {
	// CodeMode is pad (zero-padded 3-digit string join) or int.
	CodeMode string `mapstructure:"code_mode"`
}

// PolicyConfig holds the explicit data-quality policies.
type PolicyConfig struct {
	MetricsUnresolved string `mapstructure:"metrics_on_unresolved_key"`
	PricesUnresolved  string `mapstructure:"prices_on_unresolved_key"`
	DuplicateGrain    string `mapstructure:"duplicate_grain"`
}

// RuntimeConfig controls pipeline concurrency.
type RuntimeConfig struct {
	// Parallelism bounds how many fact builders run at once.
	Parallelism int `mapstructure:"parallelism"`
}

// InitConfig holds configuration for schema initialization.
type InitConfig struct {
	// DropExisting drops existing warehouse tables before creating them.
	DropExisting bool `mapstructure:"drop_existing"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Storage: StorageConfig{
			Kind:              StorageFS,
			LocalPath:         "data",
			Region:            "us-east-1",
			RawPrefix:         "raw/",
			TransformedPrefix: "transformed/",
			ResourcesPrefix:   "resources/",
		},
		Sources: SourcesConfig{
			ProductionValue: SourceConfig{
				Key:   "faostat_production.zip",
				Entry: "Value_of_Production_E_All_Data.csv",
				URL:   "https://bulks-faostat.fao.org/production/Value_of_Production_E_All_Data.zip",
			},
			FoodBalance: SourceConfig{
				Key:   "FAO/FoodBalance/faostat_consumption.zip",
				Entry: "FoodBalanceSheets_E_All_Data.csv",
				URL:   "https://bulks-faostat.fao.org/production/FoodBalanceSheets_E_All_Data.zip",
			},
			Trade: SourceConfig{
				Key:   "FAO/Trade/faostat_trade.zip",
				Entry: "Trade_CropsLivestock_E_All_Data_NOFLAG.csv",
				URL:   "https://bulks-faostat.fao.org/production/Trade_CropsLivestock_E_All_Data.zip",
			},
			Population: SourceConfig{
				Key:      "WB/wb_population.zip",
				SkipRows: 4,
				URL:      "https://api.worldbank.org/v2/en/indicator/SP.POP.TOTL?downloadformat=csv",
			},
			Prices: SourceConfig{
				Key:      "WB/CMO-Historical-Data-Monthly.xlsx",
				Sheet:    "Monthly Prices",
				SkipRows: 4,
				URL:      "https://thedocs.worldbank.org/en/doc/18675f1d1639c7a34d463f59263ba0a2-0050012025/related/CMO-Historical-Data-Monthly.xlsx",
			},
			Continents: SourceConfig{
				Key: "m49_continents.csv",
			},
		},
		Dates: DatesConfig{
			StartYear: 1960,
		},
		Country: CountryConfig{
			CodeMode: CodeModePad,
		},
		Policy: PolicyConfig{
			MetricsUnresolved: UnresolvedDrop,
			PricesUnresolved:  UnresolvedDrop,
			DuplicateGrain:    DuplicateKeep,
		},
		Runtime: RuntimeConfig{
			Parallelism: 4,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./foodwh-etl.yaml
// 3. ~/.config/foodwh-etl/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("foodwh-etl")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "foodwh-etl"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Secrets stay out of config files.
	_ = v.BindEnv("connection", "FOODWH_CONNECTION")
	_ = v.BindEnv("storage.bucket", "FOODWH_STORAGE_BUCKET")

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	switch c.Storage.Kind {
	case StorageFS:
		if c.Storage.LocalPath == "" {
			return fmt.Errorf("storage.local_path is required for fs storage")
		}
	case StorageS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for s3 storage")
		}
		if c.Storage.Region == "" {
			return fmt.Errorf("storage.region is required for s3 storage")
		}
	case StorageMem:
	default:
		return fmt.Errorf("storage.kind must be 'fs', 's3' or 'memory', got '%s'", c.Storage.Kind)
	}
	if c.Dates.StartYear < 1 {
		return fmt.Errorf("dates.start_year must be positive")
	}
	if c.Dates.EndYear != 0 && c.Dates.EndYear < c.Dates.StartYear {
		return fmt.Errorf("dates.end_year must be >= dates.start_year")
	}
	if c.Country.CodeMode != CodeModePad && c.Country.CodeMode != CodeModeInt {
		return fmt.Errorf("country.code_mode must be 'pad' or 'int'")
	}
	for name, p := range map[string]string{
		"policy.metrics_on_unresolved_key": c.Policy.MetricsUnresolved,
		"policy.prices_on_unresolved_key":  c.Policy.PricesUnresolved,
	} {
		if p != UnresolvedDrop && p != UnresolvedKeep {
			return fmt.Errorf("%s must be 'drop' or 'keep'", name)
		}
	}
	switch c.Policy.DuplicateGrain {
	case DuplicateKeep, DuplicateFirst, DuplicateSum, DuplicateFail:
	default:
		return fmt.Errorf("policy.duplicate_grain must be one of keep, first, sum, fail")
	}
	if c.Runtime.Parallelism < 1 {
		return fmt.Errorf("runtime.parallelism must be at least 1")
	}
	return nil
}

// ValidateLoad checks configuration required for commands touching the
// warehouse database.
func (c *Config) ValidateLoad() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateFetch checks that at least one source can be downloaded.
func (c *Config) ValidateFetch() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Sources.Downloadable()) == 0 {
		return fmt.Errorf("no source has a url configured")
	}
	return nil
}

// Downloadable returns the raw sources that have a download URL configured,
// keyed by their config name.
func (s SourcesConfig) Downloadable() map[string]SourceConfig {
	out := make(map[string]SourceConfig)
	for name, src := range map[string]SourceConfig{
		"production_value": s.ProductionValue,
		"food_balance":     s.FoodBalance,
		"trade":            s.Trade,
		"population":       s.Population,
		"prices":           s.Prices,
	} {
		if src.URL != "" {
			out[name] = src
		}
	}
	return out
}

// ResolveEndYear returns the configured end year, or now's year + 1 when
// unset.
func (d DatesConfig) ResolveEndYear(now time.Time) int {
	if d.EndYear != 0 {
		return d.EndYear
	}
	return now.Year() + 1
}

// RawKey returns the object key of a raw source.
func (s StorageConfig) RawKey(key string) string {
	return path.Join(s.RawPrefix, key)
}

// ResourceKey returns the object key of a static resource.
func (s StorageConfig) ResourceKey(key string) string {
	return path.Join(s.ResourcesPrefix, key)
}

// TransformedKey returns the object key of a transformed table file.
func (s StorageConfig) TransformedKey(file string) string {
	return path.Join(s.TransformedPrefix, file)
}
