//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodwh/foodwh-etl/internal/config"
	"github.com/foodwh/foodwh-etl/internal/datagen"
	"github.com/foodwh/foodwh-etl/internal/extract"
	"github.com/foodwh/foodwh-etl/internal/storage"
	"github.com/foodwh/foodwh-etl/internal/validate"
	"github.com/foodwh/foodwh-etl/internal/warehouse"
)

func fixedClock() time.Time {
	return time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)
}

// seeded returns a config and a memory store holding synthetic extracts.
func seeded(t *testing.T) (*config.Config, *storage.MemStore) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Kind = config.StorageMem
	store := storage.NewMemStore()

	_, err := datagen.Seed(context.Background(), store, cfg, datagen.Options{
		Seed:      2024,
		FirstYear: 2019,
		LastYear:  2020,
		Countries: 3,
	})
	require.NoError(t, err)
	return cfg, store
}

func readTable(t *testing.T, store storage.Store, cfg *config.Config, table warehouse.Table) []byte {
	t.Helper()
	data, err := store.Get(context.Background(), cfg.Storage.TransformedKey(table.File()))
	require.NoError(t, err, table.Name)
	return data
}

func TestRunAll(t *testing.T) {
	ctx := context.Background()
	cfg, store := seeded(t)

	p := New(cfg, store).WithClock(fixedClock)
	require.NoError(t, p.Run(ctx, StageAll))

	cf, err := warehouse.DecodeCSV(readTable(t, store, cfg, warehouse.DimCountry))
	require.NoError(t, err)
	countries, err := warehouse.DecodeCountries(cf)
	require.NoError(t, err)
	require.Len(t, countries, 3, "World has no continent")
	assert.Equal(t, "Afghanistan", countries[0].Name)
	assert.Equal(t, "Asia", countries[0].Continent.String)
	assert.Equal(t, 3, countries[2].ID)

	pf, err := warehouse.DecodeCSV(readTable(t, store, cfg, warehouse.DimProduct))
	require.NoError(t, err)
	products, err := warehouse.DecodeProducts(pf)
	require.NoError(t, err)
	names := make([]string, len(products))
	for i, pr := range products {
		names[i] = pr.Name
	}
	assert.Equal(t, []string{"N/A", "Wheat", "Maize", "Rice", "Soya", "Potatoes"}, names)

	df, err := warehouse.DecodeCSV(readTable(t, store, cfg, warehouse.DimDate))
	require.NoError(t, err)
	assert.Equal(t, (2027-1960+1)*12, df.Len())

	mf, err := warehouse.DecodeCSV(readTable(t, store, cfg, warehouse.FactMetrics))
	require.NoError(t, err)
	metrics, err := warehouse.DecodeMetrics(mf)
	require.NoError(t, err)
	require.NotEmpty(t, metrics)

	types := map[string]int{}
	for i, m := range metrics {
		assert.Equal(t, i+1, m.ID)
		assert.True(t, m.Resolved())
		assert.True(t, m.Value.Valid)
		types[m.MetricType]++
	}
	for _, mt := range warehouse.MetricTypes {
		assert.Positive(t, types[mt], mt)
	}
	// three countries over two years, World dropped
	assert.Equal(t, 6, types[warehouse.MetricPopulation])
	assert.Equal(t, warehouse.MetricProduction, metrics[0].MetricType, "production merges first")
	assert.Equal(t, warehouse.MetricPopulation, metrics[len(metrics)-1].MetricType)

	xf, err := warehouse.DecodeCSV(readTable(t, store, cfg, warehouse.FactPrices))
	require.NoError(t, err)
	prices, err := warehouse.DecodePrices(xf)
	require.NoError(t, err)
	// four products over 24 months, at most one missing observation
	assert.GreaterOrEqual(t, len(prices), 95)
	assert.LessOrEqual(t, len(prices), 96)
	assert.False(t, prices[0].MonthChange.Valid, "first row of a product has no change")

	outputs := p.Outputs()
	tables := make([]string, len(outputs))
	for i, o := range outputs {
		tables[i] = o.Table
	}
	assert.Contains(t, tables, "fact_metrics_trade")
	assert.Contains(t, tables, warehouse.FactMetrics.Name)
	assert.Len(t, outputs, 9)

	assert.NoError(t, p.Validate(ctx))
}

func TestRunStages(t *testing.T) {
	ctx := context.Background()
	cfg, store := seeded(t)
	p := New(cfg, store).WithClock(fixedClock)

	err := p.Run(ctx, StageFacts)
	require.Error(t, err, "facts need the dimensions")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, p.Run(ctx, StageDimensions))
	require.NoError(t, p.Run(ctx, StageFacts))
	require.NoError(t, p.Run(ctx, StageMerge))

	assert.NoError(t, p.Validate(ctx, warehouse.FactMetrics.Name, warehouse.FactPrices.Name))
}

func TestRunUnknownStage(t *testing.T) {
	cfg, store := seeded(t)
	err := New(cfg, store).Run(context.Background(), "load")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stage")
}

func TestRunIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg, store := seeded(t)
	p := New(cfg, store).WithClock(fixedClock)

	require.NoError(t, p.Run(ctx, StageAll))
	first := map[string][]byte{}
	for _, table := range warehouse.Tables() {
		first[table.Name] = readTable(t, store, cfg, table)
	}

	require.NoError(t, New(cfg, store).WithClock(fixedClock).Run(ctx, StageAll))
	for _, table := range warehouse.Tables() {
		assert.Equal(t, first[table.Name], readTable(t, store, cfg, table), table.Name)
	}

	cfg2, store2 := seeded(t)
	require.NoError(t, New(cfg2, store2).WithClock(fixedClock).Run(ctx, StageAll))
	for _, table := range warehouse.Tables() {
		assert.Equal(t, first[table.Name], readTable(t, store2, cfg2, table), table.Name)
	}
}

func TestRunSerial(t *testing.T) {
	cfg, store := seeded(t)
	cfg.Runtime.Parallelism = 1
	require.NoError(t, New(cfg, store).WithClock(fixedClock).Run(context.Background(), StageAll))
}

func TestRunUnvalidatedParallelism(t *testing.T) {
	for _, n := range []int{0, -2} {
		cfg, store := seeded(t)
		cfg.Runtime.Parallelism = n

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := New(cfg, store).WithClock(fixedClock).Run(ctx, StageAll)
		cancel()
		assert.NoError(t, err, "parallelism %d", n)
	}
}

func TestBuildDimensionsMissingSource(t *testing.T) {
	cfg := config.DefaultConfig()
	store := storage.NewMemStore()

	err := New(cfg, store).BuildDimensions(context.Background())
	require.Error(t, err)

	var sfe *extract.SourceFormatError
	require.True(t, errors.As(err, &sfe))
	assert.Equal(t, "production_value", sfe.Dataset)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Empty(t, store.Keys())
}

func TestBuildFactsCorruptPrices(t *testing.T) {
	ctx := context.Background()
	cfg, store := seeded(t)
	p := New(cfg, store).WithClock(fixedClock)
	require.NoError(t, p.BuildDimensions(ctx))

	require.NoError(t, store.Put(ctx, cfg.Storage.RawKey(cfg.Sources.Prices.Key), []byte("not a workbook")))

	err := p.BuildFacts(ctx)
	var sfe *extract.SourceFormatError
	require.True(t, errors.As(err, &sfe))
	assert.Equal(t, "prices", sfe.Dataset)

	_, err = store.Get(ctx, cfg.Storage.TransformedKey(warehouse.FactPrices.File()))
	assert.ErrorIs(t, err, storage.ErrNotFound, "no partial output")
}

func TestRunCancelled(t *testing.T) {
	cfg, store := seeded(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(cfg, store).WithClock(fixedClock).Run(ctx, StageAll)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	cfg, store := seeded(t)
	p := New(cfg, store).WithClock(fixedClock)
	require.NoError(t, p.Run(ctx, StageDimensions))

	assert.NoError(t, p.Validate(ctx, warehouse.DimCountry.Name, warehouse.DimDate.Name))

	err := p.Validate(ctx)
	require.Error(t, err, "facts not built yet")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = p.Validate(ctx, "dim_weather")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown table")

	require.NoError(t, store.Put(ctx, cfg.Storage.TransformedKey(warehouse.DimCountry.File()),
		[]byte("country_id,country_name,continent_name\n1,Afghanistan,Asia\n1,Albania,Europe\n")))
	err = p.Validate(ctx, warehouse.DimCountry.Name)
	var verr *validate.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, validate.CheckUnique, verr.Check)
}

func TestValidationOptionsFollowEndYear(t *testing.T) {
	cfg := config.DefaultConfig()
	p := New(cfg, storage.NewMemStore()).WithClock(fixedClock)

	opts := p.ValidationOptions()
	assert.Equal(t, 1960, opts.MinDate.Year())
	assert.Equal(t, 2027, opts.MaxDate.Year())
}
