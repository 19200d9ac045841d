//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package dimension

import (
	"github.com/foodwh/foodwh-etl/internal/extract"
	"github.com/foodwh/foodwh-etl/internal/frame"
	"github.com/foodwh/foodwh-etl/internal/logging"
	"github.com/foodwh/foodwh-etl/internal/warehouse"
)

// Item columns of the production extract.
const (
	ColItemCode = "Item Code"
	ColItem     = "Item"
)

// ProductItems maps production item names to canonical product names.
var ProductItems = map[string]string{
	"Wheat":        "Wheat",
	"Maize (corn)": "Maize",
	"Rice":         "Rice",
	"Soya beans":   "Soya",
	"Potatoes":     "Potatoes",
}

// BuildProducts derives dim_product: the N/A sentinel with id 0, then the
// canonical products in first-seen order with ids from 1. Canonical
// products absent from the extract are appended in alphabetical order so
// the dimension is always the full enumeration.
func BuildProducts(raw *frame.Frame) ([]warehouse.Product, error) {
	if err := raw.Require(ColItemCode, ColItem); err != nil {
		return nil, &extract.SourceFormatError{Dataset: "production_value", Reason: "item columns", Err: err}
	}

	out := []warehouse.Product{{ID: warehouse.NoProductID, Name: warehouse.NoProductName}}
	have := map[string]bool{warehouse.NoProductName: true}
	add := func(name string) {
		if have[name] {
			return
		}
		have[name] = true
		out = append(out, warehouse.Product{ID: len(out), Name: name})
	}

	itemCol := raw.Col(ColItem)
	for _, r := range raw.Rows {
		if name, ok := ProductItems[r[itemCol]]; ok {
			add(name)
		}
	}

	log := logging.Table(warehouse.DimProduct.Name)
	for _, name := range warehouse.ProductNames {
		if !have[name] {
			log.Warn().Str("product", name).Msg("Product not found in extract, appending")
			add(name)
		}
	}

	log.Info().
		Int("input_rows", raw.Len()).
		Int("output_rows", len(out)).
		Msg("Built product dimension")
	return out, nil
}
