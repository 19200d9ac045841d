//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"time"

	"github.com/guregu/null"
)

// Metric types of fact_metrics.
const (
	MetricProduction  = "production"
	MetricConsumption = "consumption"
	MetricImport      = "import"
	MetricExport      = "export"
	MetricPopulation  = "population"
)

// MetricTypes is the closed set of metric_type values.
var MetricTypes = []string{
	MetricProduction, MetricConsumption, MetricImport, MetricExport, MetricPopulation,
}

// The sentinel product referenced by product-less facts.
const (
	NoProductID   = 0
	NoProductName = "N/A"
)

// ProductNames is the closed set of canonical product names, sentinel
// first and the rest alphabetical.
var ProductNames = []string{NoProductName, "Maize", "Potatoes", "Rice", "Soya", "Wheat"}

// Country is a row of dim_country.
type Country struct {
	ID        int
	Name      string
	Continent null.String
}

// Product is a row of dim_product.
type Product struct {
	ID   int
	Name string
}

// Date is a row of dim_date, one per month.
type Date struct {
	ID        int
	Date      time.Time
	Year      int
	Month     int
	MonthName string
	Quarter   int
}

// Metric is a row of fact_metrics. Keys are nullable only so unresolved
// rows can be kept for diagnostics.
type Metric struct {
	ID         int
	DateID     null.Int
	ProductID  null.Int
	CountryID  null.Int
	MetricType string
	Value      null.Float
}

// Resolved reports whether every foreign key and the metric type are set.
func (m Metric) Resolved() bool {
	return m.DateID.Valid && m.ProductID.Valid && m.CountryID.Valid && m.MetricType != ""
}

// Price is a row of fact_prices.
type Price struct {
	ID           int
	DateID       null.Int
	ProductID    null.Int
	PriceUSD     float64
	AvgAnnual    float64
	AnnualChange null.Float
	MonthChange  null.Float
}

// Resolved reports whether both foreign keys are set.
func (p Price) Resolved() bool {
	return p.DateID.Valid && p.ProductID.Valid
}
