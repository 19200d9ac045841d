//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package fact

import (
	"testing"

	"github.com/guregu/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodwh/foodwh-etl/internal/config"
	"github.com/foodwh/foodwh-etl/internal/extract"
	"github.com/foodwh/foodwh-etl/internal/frame"
)

var priceHeader = []string{"", "Crude oil, average", "Maize ", "Soybeans", "Rice, Thai 5%", " Wheat, US HRW"}

func priceSheet(rows ...[]string) *frame.Frame {
	all := append([][]string{{"", "($/bbl)", "($/mt)", "($/mt)", "($/mt)", "($/mt)"}}, rows...)
	return frame.New(priceHeader, all)
}

func TestParsePeriod(t *testing.T) {
	y, m, ok := ParsePeriod("2020M01")
	require.True(t, ok)
	assert.Equal(t, 2020, y)
	assert.Equal(t, 1, m)

	for _, bad := range []string{"2020M13", "2020-01", "2020M1", "", "Jan 2020"} {
		_, _, ok := ParsePeriod(bad)
		assert.False(t, ok, bad)
	}
}

func TestBuildPricesMaizeScenario(t *testing.T) {
	sheet := priceSheet(
		[]string{"2000M01", "25", "180", "", "", ""},
		[]string{"2000M02", "26", "185", "", "", ""},
		[]string{"2000M03", "27", "190", "", "", ""},
	)

	got, err := BuildPrices(sheet, testDims(t), PricesPolicy(config.DefaultConfig().Policy))
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, p := range got {
		assert.Equal(t, i+1, p.ID)
		assert.Equal(t, int64(2), p.ProductID.Int64, "maize")
		assert.Equal(t, int64(i+1), p.DateID.Int64)
		assert.Equal(t, 185.0, p.AvgAnnual)
	}
	assert.Equal(t, []float64{180, 185, 190}, []float64{got[0].PriceUSD, got[1].PriceUSD, got[2].PriceUSD})

	assert.False(t, got[0].MonthChange.Valid)
	assert.False(t, got[0].AnnualChange.Valid)
	assert.Equal(t, null.FloatFrom(2.78), got[1].MonthChange)
	assert.Equal(t, null.FloatFrom(2.70), got[2].MonthChange)
	assert.Equal(t, null.FloatFrom(0), got[1].AnnualChange)
}

func TestBuildPricesOrderingAndChanges(t *testing.T) {
	sheet := priceSheet(
		[]string{"2000M12", "", "100", "200", "", "50"},
		[]string{"2001M01", "", "110", "..", "", "0"},
		[]string{"2001M02", "", "121", "210", "", "10"},
	)

	got, err := BuildPrices(sheet, testDims(t), Policy{Unresolved: config.UnresolvedDrop})
	require.NoError(t, err)

	// Sorted by product: Maize (2), Soya (5), Wheat (1).
	var products []int64
	for _, p := range got {
		products = append(products, p.ProductID.Int64)
	}
	assert.Equal(t, []int64{2, 2, 2, 5, 5, 1, 1, 1}, products)

	maize := got[:3]
	assert.False(t, maize[0].MonthChange.Valid)
	assert.Equal(t, 10.0, maize[1].MonthChange.Float64)
	assert.Equal(t, 10.0, maize[2].MonthChange.Float64)
	assert.Equal(t, 100.0, maize[0].AvgAnnual)
	assert.Equal(t, 115.5, maize[1].AvgAnnual)
	assert.Equal(t, 15.5, maize[1].AnnualChange.Float64)
	assert.Equal(t, 0.0, maize[2].AnnualChange.Float64)

	soya := got[3:5]
	assert.False(t, soya[0].MonthChange.Valid, "first soya row")
	assert.Equal(t, 5.0, soya[1].MonthChange.Float64, "non-numeric row skipped")

	wheat := got[5:]
	assert.Equal(t, -100.0, wheat[1].MonthChange.Float64)
	assert.False(t, wheat[2].MonthChange.Valid, "previous price is zero")
}

func TestBuildPricesUnresolvedPolicy(t *testing.T) {
	sheet := priceSheet(
		[]string{"1999M12", "", "90", "", "", ""},
		[]string{"2000M01", "", "100", "", "", ""},
	)
	dims := testDims(t)

	got, err := BuildPrices(sheet, dims, Policy{Unresolved: config.UnresolvedDrop})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 11.11, got[0].MonthChange.Float64, "change computed before unresolved rows are dropped")

	got, err = BuildPrices(sheet, dims, Policy{Unresolved: config.UnresolvedKeep})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[0].DateID.Valid)
	assert.True(t, got[1].Resolved())
}

func TestBuildPricesMissingColumn(t *testing.T) {
	sheet := frame.New([]string{"", "Maize", "Soybeans"}, [][]string{{"", "($/mt)", "($/mt)"}})
	_, err := BuildPrices(sheet, testDims(t), Policy{Unresolved: config.UnresolvedDrop})
	var sfe *extract.SourceFormatError
	require.ErrorAs(t, err, &sfe)
	assert.Equal(t, "prices", sfe.Dataset)
	assert.Contains(t, sfe.Error(), "Wheat, US HRW")

	_, err = BuildPrices(frame.New(priceHeader, nil), testDims(t), Policy{})
	assert.ErrorAs(t, err, &sfe)
}
