//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package fact builds the metric and price fact tables from raw extracts
// and the previously built dimensions.
package fact

import (
	"github.com/guregu/null"

	"github.com/foodwh/foodwh-etl/internal/warehouse"
)

type yearMonth struct {
	year  int
	month int
}

// Dimensions indexes the dimension tables for key resolution.
type Dimensions struct {
	countries map[string][]int
	products  map[string]int
	dates     map[yearMonth]int

	// firstYear and lastYear bound the date dimension.
	firstYear int
	lastYear  int
}

// NewDimensions builds lookup indexes over the given dimension rows.
// Country names may repeat; every id carrying a name is kept in order.
func NewDimensions(countries []warehouse.Country, products []warehouse.Product, dates []warehouse.Date) *Dimensions {
	d := &Dimensions{
		countries: make(map[string][]int, len(countries)),
		products:  make(map[string]int, len(products)),
		dates:     make(map[yearMonth]int, len(dates)),
	}
	for _, c := range countries {
		d.countries[c.Name] = append(d.countries[c.Name], c.ID)
	}
	for _, p := range products {
		if _, ok := d.products[p.Name]; !ok {
			d.products[p.Name] = p.ID
		}
	}
	for _, dt := range dates {
		k := yearMonth{dt.Year, dt.Month}
		if _, ok := d.dates[k]; !ok {
			d.dates[k] = dt.ID
		}
		if d.firstYear == 0 || dt.Year < d.firstYear {
			d.firstYear = dt.Year
		}
		if dt.Year > d.lastYear {
			d.lastYear = dt.Year
		}
	}
	return d
}

// CoversYear reports whether year lies within the date dimension.
func (d *Dimensions) CoversYear(year int) bool {
	return len(d.dates) > 0 && year >= d.firstYear && year <= d.lastYear
}

// CountryIDs returns every country id with the given name. An unknown name
// yields a single null id so the row survives a left join.
func (d *Dimensions) CountryIDs(name string) []null.Int {
	ids := d.countries[name]
	if len(ids) == 0 {
		return []null.Int{{}}
	}
	out := make([]null.Int, len(ids))
	for i, id := range ids {
		out[i] = null.IntFrom(int64(id))
	}
	return out
}

// ProductID resolves a canonical product name.
func (d *Dimensions) ProductID(name string) null.Int {
	id, ok := d.products[name]
	return null.NewInt(int64(id), ok)
}

// DateID resolves the first-of-month date of (year, month).
func (d *Dimensions) DateID(year, month int) null.Int {
	id, ok := d.dates[yearMonth{year, month}]
	return null.NewInt(int64(id), ok)
}
