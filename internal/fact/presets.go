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
	"regexp"

	"github.com/foodwh/foodwh-etl/internal/warehouse"
)

// Metric families, in merge order.
const (
	FamilyProduction  = "production"
	FamilyConsumption = "consumption"
	FamilyTrade       = "trade"
	FamilyPopulation  = "population"
)

// Families lists the metric families in the order they are merged.
var Families = []string{FamilyProduction, FamilyConsumption, FamilyTrade, FamilyPopulation}

// Actual-value year columns: Y2001 but not the Y2001F/Y2001N flag columns.
var (
	faoYearColumn = regexp.MustCompile(`^Y(\d{4})$`)
	wbYearColumn  = regexp.MustCompile(`^(\d{4})$`)
)

// foodBalanceItems maps Food Balance Sheet items to canonical products.
var foodBalanceItems = map[string]string{
	"Wheat and products":    "Wheat",
	"Rice and products":     "Rice",
	"Maize and products":    "Maize",
	"Potatoes and products": "Potatoes",
	"Sweet potatoes":        "Potatoes",
	"Soyabeans":             "Soya",
}

// tradeItems maps crop and livestock trade items to canonical products.
var tradeItems = map[string]string{
	"Wheat":              "Wheat",
	"Maize (corn)":       "Maize",
	"Green corn (maize)": "Maize",
	"Rice":               "Rice",
	"Soya beans":         "Soya",
	"Potatoes":           "Potatoes",
}

// ProductionSpec builds production facts from the Food Balance Sheets.
func ProductionSpec() MetricSpec {
	return MetricSpec{
		Family:        FamilyProduction,
		Dataset:       "food_balance",
		CountryColumn: "Area",
		Filters: []Predicate{
			{Column: "Element Code", Values: []string{"5510"}},
			{Column: "Element", Values: []string{"Production"}},
		},
		ItemColumn:    "Item",
		Items:         foodBalanceItems,
		MetricType:    warehouse.MetricProduction,
		PeriodPattern: faoYearColumn,
	}
}

// ConsumptionSpec builds food consumption facts from the Food Balance
// Sheets.
func ConsumptionSpec() MetricSpec {
	return MetricSpec{
		Family:        FamilyConsumption,
		Dataset:       "food_balance",
		CountryColumn: "Area",
		Filters: []Predicate{
			{Column: "Element Code", Values: []string{"5142"}},
			{Column: "Element", Values: []string{"Food"}},
		},
		ItemColumn:    "Item",
		Items:         foodBalanceItems,
		MetricType:    warehouse.MetricConsumption,
		PeriodPattern: faoYearColumn,
	}
}

// TradeSpec builds import and export facts; the element code selects the
// metric type.
func TradeSpec() MetricSpec {
	return MetricSpec{
		Family:        FamilyTrade,
		Dataset:       "trade",
		CountryColumn: "Area",
		ItemColumn:    "Item",
		Items:         tradeItems,
		TagColumn:     "Element Code",
		Tags: map[string]string{
			"5610": warehouse.MetricImport,
			"5910": warehouse.MetricExport,
		},
		PeriodPattern: faoYearColumn,
	}
}

// PopulationSpec builds product-less population facts from the World Bank
// total population indicator.
func PopulationSpec() MetricSpec {
	return MetricSpec{
		Family:        FamilyPopulation,
		Dataset:       "population",
		CountryColumn: "Country Name",
		MetricType:    warehouse.MetricPopulation,
		PeriodPattern: wbYearColumn,
		NoProduct:     true,
		Integer:       true,
	}
}

// SpecFor returns the preset of a metric family.
func SpecFor(family string) (MetricSpec, bool) {
	switch family {
	case FamilyProduction:
		return ProductionSpec(), true
	case FamilyConsumption:
		return ConsumptionSpec(), true
	case FamilyTrade:
		return TradeSpec(), true
	case FamilyPopulation:
		return PopulationSpec(), true
	}
	return MetricSpec{}, false
}
