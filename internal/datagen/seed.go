//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"context"
	"fmt"

	"github.com/foodwh/foodwh-etl/internal/config"
	"github.com/foodwh/foodwh-etl/internal/logging"
	"github.com/foodwh/foodwh-etl/internal/storage"
)

// Object is one generated file written to the store.
type Object struct {
	Dataset string
	Key     string
	Size    int64
}

// Seed generates a full set of raw extracts and writes them to the raw and
// resources zones at the keys the configuration expects, so that a
// transform can run without downloading anything.
func Seed(ctx context.Context, store storage.Store, cfg *config.Config, opts Options) ([]Object, error) {
	src := cfg.Sources
	if opts.ProductionEntry == "" {
		opts.ProductionEntry = src.ProductionValue.Entry
	}
	if opts.FoodBalanceEntry == "" {
		opts.FoodBalanceEntry = src.FoodBalance.Entry
	}
	if opts.TradeEntry == "" {
		opts.TradeEntry = src.Trade.Entry
	}
	if opts.PricesSheet == "" {
		opts.PricesSheet = src.Prices.Sheet
	}

	gen, err := NewGenerator(opts)
	if err != nil {
		return nil, err
	}
	ex, err := gen.Generate()
	if err != nil {
		return nil, err
	}

	targets := []struct {
		dataset string
		key     string
		data    []byte
	}{
		{"production_value", cfg.Storage.RawKey(src.ProductionValue.Key), ex.ProductionValue},
		{"food_balance", cfg.Storage.RawKey(src.FoodBalance.Key), ex.FoodBalance},
		{"trade", cfg.Storage.RawKey(src.Trade.Key), ex.Trade},
		{"population", cfg.Storage.RawKey(src.Population.Key), ex.Population},
		{"prices", cfg.Storage.RawKey(src.Prices.Key), ex.Prices},
		{"continents", cfg.Storage.ResourceKey(src.Continents.Key), ex.Continents},
	}

	objects := make([]Object, 0, len(targets))
	for _, t := range targets {
		if err := store.Put(ctx, t.key, t.data); err != nil {
			return objects, fmt.Errorf("write %s: %w", t.dataset, err)
		}
		obj := Object{Dataset: t.dataset, Key: t.key, Size: int64(len(t.data))}
		objects = append(objects, obj)

		logging.Info().
			Str("dataset", obj.Dataset).
			Str("key", obj.Key).
			Str("size", FormatSize(obj.Size)).
			Msg("Extract seeded")
	}
	return objects, nil
}
