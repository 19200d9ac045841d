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
	"github.com/foodwh/foodwh-etl/internal/dimension"
	"github.com/foodwh/foodwh-etl/internal/extract"
	"github.com/foodwh/foodwh-etl/internal/frame"
	"github.com/foodwh/foodwh-etl/internal/warehouse"
)

var defaultPolicy = Policy{Unresolved: config.UnresolvedDrop, Duplicate: config.DuplicateKeep}

func testDims(t *testing.T) *Dimensions {
	t.Helper()
	dates, err := dimension.BuildDates(2000, 2002)
	require.NoError(t, err)
	return NewDimensions(
		[]warehouse.Country{
			{ID: 1, Name: "Afghanistan", Continent: null.StringFrom("Asia")},
			{ID: 2, Name: "Albania", Continent: null.StringFrom("Europe")},
		},
		[]warehouse.Product{
			{ID: 0, Name: "N/A"}, {ID: 1, Name: "Wheat"}, {ID: 2, Name: "Maize"},
			{ID: 3, Name: "Potatoes"}, {ID: 4, Name: "Rice"}, {ID: 5, Name: "Soya"},
		},
		dates,
	)
}

func foodBalance() *frame.Frame {
	return frame.New(
		[]string{"Area Code", "Area", "Item", "Element Code", "Element", "Unit", "Y2000", "Y2000F", "Y2001", "Y2001N", "Y1999"},
		[][]string{
			{"2", "Afghanistan", "Wheat and products", "5510", "Production", "1000 t", "1200", "E", "1300", "", "1100"},
			{"2", "Afghanistan", "Wheat and products", "5142", "Food", "1000 t", "900", "", "950", "", ""},
			{"2", "Afghanistan", "Sweet potatoes", "5510", "Production", "1000 t", "5", "", "", "", ""},
			{"2", "Afghanistan", "Cereals", "5510", "Production", "1000 t", "9999", "", "9999", "", ""},
			{"3", "Albania", "Soyabeans", "5510", "Production", "1000 t", "1", "", "2", "", ""},
			{"3", "Albania", "Soyabeans", "5510", "Stock Variation", "1000 t", "7", "", "7", "", ""},
			{"9", "Atlantis", "Rice and products", "5510", "Production", "1000 t", "3", "", "4", "", ""},
		},
	)
}

func TestBuildMetricsProduction(t *testing.T) {
	got, err := BuildMetrics(ProductionSpec(), foodBalance(), testDims(t), defaultPolicy)
	require.NoError(t, err)

	// Jan 2000 is date 1, Jan 2001 is date 13; Y1999 is outside the date
	// dimension and Atlantis is not a known country.
	want := []warehouse.Metric{
		{ID: 1, DateID: null.IntFrom(1), ProductID: null.IntFrom(1), CountryID: null.IntFrom(1), MetricType: "production", Value: null.FloatFrom(1200)},
		{ID: 2, DateID: null.IntFrom(1), ProductID: null.IntFrom(3), CountryID: null.IntFrom(1), MetricType: "production", Value: null.FloatFrom(5)},
		{ID: 3, DateID: null.IntFrom(1), ProductID: null.IntFrom(5), CountryID: null.IntFrom(2), MetricType: "production", Value: null.FloatFrom(1)},
		{ID: 4, DateID: null.IntFrom(13), ProductID: null.IntFrom(1), CountryID: null.IntFrom(1), MetricType: "production", Value: null.FloatFrom(1300)},
		{ID: 5, DateID: null.IntFrom(13), ProductID: null.IntFrom(5), CountryID: null.IntFrom(2), MetricType: "production", Value: null.FloatFrom(2)},
	}
	assert.Equal(t, want, got)
}

func TestBuildMetricsConsumption(t *testing.T) {
	got, err := BuildMetrics(ConsumptionSpec(), foodBalance(), testDims(t), defaultPolicy)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, m := range got {
		assert.Equal(t, warehouse.MetricConsumption, m.MetricType)
		assert.Equal(t, int64(1), m.ProductID.Int64)
	}
}

func TestBuildMetricsTrade(t *testing.T) {
	raw := frame.New(
		[]string{"Area", "Item", "Element Code", "Element", "Y2000", "Y2001"},
		[][]string{
			{"Afghanistan", "Maize (corn)", "5610", "Import quantity", "10", "11"},
			{"Afghanistan", "Green corn (maize)", "5910", "Export quantity", "1", ""},
			{"Afghanistan", "Maize (corn)", "5622", "Import value", "500", "600"},
			{"Albania", "Potatoes", "5910", "Export quantity", "4", "5"},
		},
	)
	got, err := BuildMetrics(TradeSpec(), raw, testDims(t), defaultPolicy)
	require.NoError(t, err)
	require.Len(t, got, 5)

	types := map[string]int{}
	for i, m := range got {
		assert.Equal(t, i+1, m.ID)
		types[m.MetricType]++
		assert.True(t, m.Resolved())
	}
	assert.Equal(t, map[string]int{"import": 2, "export": 3}, types)
	assert.Equal(t, int64(2), got[0].ProductID.Int64, "maize")
}

func TestBuildMetricsPopulation(t *testing.T) {
	raw := frame.New(
		[]string{"Country Name", "Country Code", "1999", "2000", "2001", ""},
		[][]string{
			{"Afghanistan", "AFG", "19000000", "19542982.7", "19688632", ""},
			{"Albania", "ALB", "", "3089027", "", ""},
			{"World", "WLD", "6000000000", "6100000000", "6200000000", ""},
		},
	)
	got, err := BuildMetrics(PopulationSpec(), raw, testDims(t), defaultPolicy)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, warehouse.Metric{
		ID: 1, DateID: null.IntFrom(1), ProductID: null.IntFrom(0), CountryID: null.IntFrom(1),
		MetricType: "population", Value: null.FloatFrom(19542982),
	}, got[0])
	assert.Equal(t, int64(2), got[1].CountryID.Int64)
	assert.Equal(t, float64(19688632), got[2].Value.Float64)
}

func TestBuildMetricsIgnoresYearsOutsideDateWindow(t *testing.T) {
	raw := frame.New(
		[]string{"Country Name", "Country Code", "1850", "2001", "9999", ""},
		[][]string{
			{"Afghanistan", "AFG", "5000000", "19688632", "1", ""},
			{"Albania", "ALB", "800000", "3060173", "2", ""},
		},
	)
	policy := Policy{Unresolved: config.UnresolvedKeep, Duplicate: config.DuplicateKeep}
	got, err := BuildMetrics(PopulationSpec(), raw, testDims(t), policy)
	require.NoError(t, err)

	require.Len(t, got, 2)
	for _, m := range got {
		assert.True(t, m.Resolved(), "only 2001 lies in the date dimension")
	}
	assert.Equal(t, float64(3060173), got[1].Value.Float64)
}

func TestDimensionsCoversYear(t *testing.T) {
	d := testDims(t)
	assert.True(t, d.CoversYear(2000))
	assert.True(t, d.CoversYear(2002))
	assert.False(t, d.CoversYear(1999))
	assert.False(t, d.CoversYear(2003))
	assert.False(t, NewDimensions(nil, nil, nil).CoversYear(2000))
}

func TestBuildMetricsDuplicateCountryNames(t *testing.T) {
	dates, err := dimension.BuildDates(2000, 2000)
	require.NoError(t, err)
	dims := NewDimensions(
		[]warehouse.Country{
			{ID: 1, Name: "Sudan", Continent: null.StringFrom("Africa")},
			{ID: 2, Name: "Sudan", Continent: null.StringFrom("Africa")},
		},
		[]warehouse.Product{{ID: 0, Name: "N/A"}},
		dates,
	)
	raw := frame.New([]string{"Country Name", "2000"}, [][]string{{"Sudan", "100"}})

	got, err := BuildMetrics(PopulationSpec(), raw, dims, defaultPolicy)
	require.NoError(t, err)
	require.Len(t, got, 2, "one row per matching country")
	assert.Equal(t, int64(1), got[0].CountryID.Int64)
	assert.Equal(t, int64(2), got[1].CountryID.Int64)
}

func TestBuildMetricsKeepUnresolved(t *testing.T) {
	policy := Policy{Unresolved: config.UnresolvedKeep, Duplicate: config.DuplicateKeep}
	got, err := BuildMetrics(ProductionSpec(), foodBalance(), testDims(t), policy)
	require.NoError(t, err)

	unresolved := 0
	for _, m := range got {
		if !m.Resolved() {
			unresolved++
		}
	}
	// Atlantis 2000 and 2001. Y1999 is outside the date dimension.
	assert.Equal(t, 2, unresolved)

	merged := Merge(got)
	assert.Len(t, merged, len(got)-unresolved)
}

func TestBuildMetricsMissingColumns(t *testing.T) {
	raw := frame.New([]string{"Area", "Item", "Y2000"}, [][]string{{"Afghanistan", "Wheat and products", "1"}})
	_, err := BuildMetrics(ProductionSpec(), raw, testDims(t), defaultPolicy)
	var sfe *extract.SourceFormatError
	require.ErrorAs(t, err, &sfe)
	assert.Equal(t, "food_balance", sfe.Dataset)
	assert.Contains(t, sfe.Error(), "Element Code")

	raw = frame.New([]string{"Area", "Item", "Element Code", "Element", "Year"}, nil)
	_, err = BuildMetrics(ProductionSpec(), raw, testDims(t), defaultPolicy)
	require.ErrorAs(t, err, &sfe)
}

func duplicated() *frame.Frame {
	return frame.New(
		[]string{"Area", "Item", "Element Code", "Element", "Y2000"},
		[][]string{
			{"Afghanistan", "Potatoes and products", "5510", "Production", "10"},
			{"Afghanistan", "Sweet potatoes", "5510", "Production", "5"},
			{"Albania", "Potatoes and products", "5510", "Production", "7"},
		},
	)
}

func TestDuplicateGrainPolicies(t *testing.T) {
	dims := testDims(t)

	tests := []struct {
		policy string
		values []float64
	}{
		{config.DuplicateKeep, []float64{10, 5, 7}},
		{config.DuplicateFirst, []float64{10, 7}},
		{config.DuplicateSum, []float64{15, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			got, err := BuildMetrics(ProductionSpec(), duplicated(), dims, Policy{Unresolved: config.UnresolvedDrop, Duplicate: tt.policy})
			require.NoError(t, err)
			values := make([]float64, len(got))
			for i, m := range got {
				values[i] = m.Value.Float64
				assert.Equal(t, i+1, m.ID)
			}
			assert.Equal(t, tt.values, values)
		})
	}

	_, err := BuildMetrics(ProductionSpec(), duplicated(), dims, Policy{Unresolved: config.UnresolvedDrop, Duplicate: config.DuplicateFail})
	var dge *DuplicateGrainError
	require.ErrorAs(t, err, &dge)
	assert.Equal(t, 2, dge.Count)
	assert.Equal(t, "fact_metrics_production", dge.Table)
}

func metric(id int, metricType string, country null.Int) warehouse.Metric {
	return warehouse.Metric{
		ID: id, DateID: null.IntFrom(1), ProductID: null.IntFrom(1), CountryID: country,
		MetricType: metricType, Value: null.FloatFrom(1),
	}
}

func TestMerge(t *testing.T) {
	production := []warehouse.Metric{metric(1, "production", null.IntFrom(1)), metric(2, "production", null.IntFrom(2))}
	consumption := []warehouse.Metric{metric(1, "consumption", null.IntFrom(1))}
	trade := []warehouse.Metric{metric(1, "import", null.Int{}), metric(2, "export", null.IntFrom(2))}
	population := []warehouse.Metric{metric(1, "", null.IntFrom(1)), metric(2, "population", null.IntFrom(1))}

	got := Merge(production, consumption, trade, population)
	require.Len(t, got, 5)
	assert.LessOrEqual(t, len(got), len(production)+len(consumption)+len(trade)+len(population))

	var types []string
	for i, m := range got {
		assert.Equal(t, i+1, m.ID)
		types = append(types, m.MetricType)
	}
	assert.Equal(t, []string{"production", "production", "consumption", "export", "population"}, types)

	assert.Empty(t, Merge())
}

func TestMergeKeepsNullValues(t *testing.T) {
	m := metric(1, "production", null.IntFrom(1))
	m.Value = null.Float{}
	got := Merge([]warehouse.Metric{m})
	require.Len(t, got, 1)
	assert.False(t, got[0].Value.Valid)
}

func TestSpecFor(t *testing.T) {
	for _, family := range Families {
		spec, ok := SpecFor(family)
		require.True(t, ok)
		assert.Equal(t, family, spec.Family)
	}
	_, ok := SpecFor("emissions")
	assert.False(t, ok)
}
