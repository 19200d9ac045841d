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
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodwh/foodwh-etl/internal/config"
	"github.com/foodwh/foodwh-etl/internal/extract"
	"github.com/foodwh/foodwh-etl/internal/storage"
)

func testOptions() Options {
	return Options{Seed: 42, FirstYear: 2019, LastYear: 2020, Countries: 3}
}

func generate(t *testing.T, opts Options) *Extracts {
	t.Helper()
	g, err := NewGenerator(opts)
	require.NoError(t, err)
	ex, err := g.Generate()
	require.NoError(t, err)
	return ex
}

func TestNewGeneratorOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "defaults", opts: DefaultOptions()},
		{name: "single year", opts: Options{FirstYear: 2020, LastYear: 2020}},
		{name: "reversed years", opts: Options{FirstYear: 2021, LastYear: 2020}, wantErr: true},
		{name: "missing years", opts: Options{}, wantErr: true},
		{name: "too many countries", opts: Options{FirstYear: 2020, LastYear: 2020, Countries: len(Countries) + 1}, wantErr: true},
		{name: "negative countries", opts: Options{FirstYear: 2020, LastYear: 2020, Countries: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := generate(t, testOptions())
	b := generate(t, testOptions())

	assert.Equal(t, a.ProductionValue, b.ProductionValue)
	assert.Equal(t, a.FoodBalance, b.FoodBalance)
	assert.Equal(t, a.Trade, b.Trade)
	assert.Equal(t, a.Population, b.Population)
	assert.Equal(t, a.Continents, b.Continents)

	pa, err := extract.ReadSheet("prices", a.Prices, PricesSheet, 4)
	require.NoError(t, err)
	pb, err := extract.ReadSheet("prices", b.Prices, PricesSheet, 4)
	require.NoError(t, err)
	assert.Equal(t, pa.Rows, pb.Rows)

	other := testOptions()
	other.Seed = 7
	c := generate(t, other)
	assert.NotEqual(t, a.FoodBalance, c.FoodBalance)
}

func TestGenerateProductionValue(t *testing.T) {
	ex := generate(t, testOptions())

	f, err := extract.ReadZipCSV("production_value", ex.ProductionValue, ProductionEntry, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"Area Code", "Area Code (M49)", "Area", "Item Code", "Item", "Element Code", "Element", "Unit",
		"Y2019", "Y2019F", "Y2020", "Y2020F"}, f.Header)
	// three countries plus the World aggregate
	assert.Equal(t, 4*len(productionItems)*len(productionElements), f.Len())
	assert.Equal(t, "'004", f.Get(0, "Area Code (M49)"))
	assert.Equal(t, "Afghanistan", f.Get(0, "Area"))
	assert.Equal(t, "World", f.Get(f.Len()-1, "Area"))
}

func TestGenerateFoodBalance(t *testing.T) {
	ex := generate(t, testOptions())

	f, err := extract.ReadZipCSV("food_balance", ex.FoodBalance, "", 0)
	require.NoError(t, err)

	assert.True(t, f.Has("Y2020N"))
	assert.Equal(t, 4*len(foodBalanceItems)*len(foodBalanceElements), f.Len())

	elements := map[string]bool{}
	for i := range f.Rows {
		elements[f.Get(i, "Element Code")] = true
	}
	assert.Equal(t, map[string]bool{"5510": true, "5142": true, "5611": true}, elements)
}

func TestGenerateTrade(t *testing.T) {
	ex := generate(t, testOptions())

	f, err := extract.ReadZipCSV("trade", ex.Trade, TradeEntry, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"Y2019", "Y2020"}, f.Header[8:], "no flag columns")
	assert.Equal(t, 4*len(tradeItems)*len(tradeElements), f.Len())

	codes, err := extract.ReadZipCSV("trade", ex.Trade, tradeItemCodesEntry, 0)
	require.NoError(t, err)
	assert.Equal(t, len(tradeItems), codes.Len())
}

func TestGeneratePopulation(t *testing.T) {
	opts := testOptions()
	opts.Countries = 0
	ex := generate(t, opts)

	f, err := extract.ReadZipCSV("population", ex.Population, "", 4)
	require.NoError(t, err)

	assert.Equal(t, []string{"Country Name", "Country Code", "Indicator Name", "Indicator Code", "2019", "2020", ""}, f.Header)
	assert.Equal(t, len(Countries)+1, f.Len())

	names := map[string]bool{}
	for i := range f.Rows {
		names[f.Get(i, "Country Name")] = true
		assert.NotEmpty(t, f.Get(i, "2019"))
	}
	assert.True(t, names["United States"])
	assert.False(t, names["United States of America"])
	assert.True(t, names["World"])
}

func TestGeneratePrices(t *testing.T) {
	ex := generate(t, testOptions())

	f, err := extract.ReadSheet("prices", ex.Prices, PricesSheet, 4)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Crude oil, average", "Maize", "Soybeans", "Rice, Thai 5%", "Wheat, US HRW"}, f.Header)
	// units row plus 24 months
	require.Equal(t, 25, f.Len())
	assert.Equal(t, "($/mt)", f.Get(0, "Maize"))
	assert.Equal(t, "2019M01", f.Rows[1][0])
	assert.Equal(t, "2020M12", f.Rows[24][0])

	missing := 0
	for _, r := range f.Rows[1:] {
		for _, v := range r[1:] {
			if v == missingValueMarker {
				missing++
			}
		}
	}
	assert.Equal(t, 1, missing)
}

func TestGenerateContinents(t *testing.T) {
	ex := generate(t, testOptions())

	f, err := extract.ReadCSV("continents", bytes.NewReader(ex.Continents), 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"m49_code", "continent_name"}, f.Header)
	assert.Equal(t, len(Countries), f.Len())
	assert.Equal(t, "004", f.Get(0, "m49_code"))
	assert.Equal(t, "Asia", f.Get(0, "continent_name"))
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	store := storage.NewMemStore()

	objects, err := Seed(ctx, store, cfg, testOptions())
	require.NoError(t, err)
	require.Len(t, objects, 6)

	assert.Equal(t, []string{
		"raw/FAO/FoodBalance/faostat_consumption.zip",
		"raw/FAO/Trade/faostat_trade.zip",
		"raw/WB/CMO-Historical-Data-Monthly.xlsx",
		"raw/WB/wb_population.zip",
		"raw/faostat_production.zip",
		"resources/m49_continents.csv",
	}, store.Keys())

	for _, obj := range objects {
		data, err := store.Get(ctx, obj.Key)
		require.NoError(t, err)
		assert.Equal(t, obj.Size, int64(len(data)), obj.Dataset)
	}

	src := cfg.Sources.Prices
	f, err := extract.Load(ctx, store, "prices", cfg.Storage.RawKey(src.Key), src)
	require.NoError(t, err)
	assert.True(t, f.Has("Maize"))
}
