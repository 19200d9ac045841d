//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse defines the star schema: its tables, row types and the
// CSV interchange format shared by the transformed zone and the loader.
package warehouse

// Table describes one warehouse table and its exact column order.
type Table struct {
	Name    string
	Columns []string
}

// File returns the object name of the table in the transformed zone.
func (t Table) File() string {
	return t.Name + ".csv"
}

// Warehouse tables.
var (
	DimCountry = Table{
		Name:    "dim_country",
		Columns: []string{"country_id", "country_name", "continent_name"},
	}
	DimProduct = Table{
		Name:    "dim_product",
		Columns: []string{"product_id", "product_name"},
	}
	DimDate = Table{
		Name:    "dim_date",
		Columns: []string{"date_id", "all_date", "year", "month", "month_name", "quarter"},
	}
	FactMetrics = Table{
		Name:    "fact_metrics",
		Columns: []string{"fact_id", "date_id", "product_id", "country_id", "metric_type", "value"},
	}
	FactPrices = Table{
		Name: "fact_prices",
		Columns: []string{
			"price_id", "date_id", "product_id", "price_usd_per_ton",
			"avg_annual_price", "price_annual_change_pct", "price_month_change_pct",
		},
	}
)

// Tables returns every warehouse table in foreign key order: dimensions
// before the facts referencing them.
func Tables() []Table {
	return []Table{DimCountry, DimProduct, DimDate, FactMetrics, FactPrices}
}

// Lookup returns the table with the given name.
func Lookup(name string) (Table, bool) {
	for _, t := range Tables() {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// IntermediateMetrics returns the per-metric fact file written before the
// merge, e.g. fact_metrics_trade.csv.
func IntermediateMetrics(family string) Table {
	return Table{Name: FactMetrics.Name + "_" + family, Columns: FactMetrics.Columns}
}
