//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package validate gates promotion of warehouse tables with schema, null,
// uniqueness, range and enumeration checks.
package validate

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/foodwh/foodwh-etl/internal/config"
	"github.com/foodwh/foodwh-etl/internal/frame"
	"github.com/foodwh/foodwh-etl/internal/warehouse"
)

// Check names.
const (
	CheckSchema     = "schema"
	CheckNulls      = "nulls"
	CheckUnique     = "unique"
	CheckRowCount   = "row_count"
	CheckDuplicates = "duplicates"
	CheckRange      = "range"
	CheckAllowed    = "allowed_values"
	CheckDateRange  = "date_range"
)

// Error is a failed check on one table.
type Error struct {
	Table  string
	Check  string
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("validation failed for %s (%s): %s", e.Table, e.Check, e.Detail)
}

// Options bounds the date dimension.
type Options struct {
	MinDate time.Time
	MaxDate time.Time
}

// OptionsFor derives the accepted date window from the configured years.
func OptionsFor(dates config.DatesConfig, now time.Time) Options {
	return Options{
		MinDate: time.Date(dates.StartYear, time.January, 1, 0, 0, 0, 0, time.UTC),
		MaxDate: time.Date(dates.ResolveEndYear(now), time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

type checker struct {
	table string
	f     *frame.Frame
}

func (c checker) fail(check, format string, args ...any) error {
	return &Error{Table: c.table, Check: check, Detail: fmt.Sprintf(format, args...)}
}

func (c checker) schema(cols []string) error {
	if !slices.Equal(c.f.Header, cols) {
		return c.fail(CheckSchema, "expected %v, got %v", cols, c.f.Header)
	}
	return nil
}

func (c checker) nulls(cols ...string) error {
	counts := make(map[string]int)
	for _, col := range cols {
		i := c.f.Col(col)
		for _, r := range c.f.Rows {
			if strings.TrimSpace(r[i]) == "" {
				counts[col]++
			}
		}
	}
	if len(counts) > 0 {
		return c.fail(CheckNulls, "missing values in columns %v", counts)
	}
	return nil
}

func (c checker) unique(col string) error {
	i := c.f.Col(col)
	seen := make(map[string]bool, c.f.Len())
	for _, r := range c.f.Rows {
		if seen[r[i]] {
			return c.fail(CheckUnique, "duplicate value %q in column %s", r[i], col)
		}
		seen[r[i]] = true
	}
	return nil
}

func (c checker) rowCount() error {
	if c.f.Len() == 0 {
		return c.fail(CheckRowCount, "table is empty")
	}
	return nil
}

func (c checker) duplicates() error {
	seen := make(map[string]int, c.f.Len())
	for n, r := range c.f.Rows {
		k := strings.Join(r, "\x1f")
		if first, ok := seen[k]; ok {
			return c.fail(CheckDuplicates, "rows %d and %d are identical", first+1, n+1)
		}
		seen[k] = n
	}
	return nil
}

func (c checker) nonNegative(cols ...string) error {
	for _, col := range cols {
		i := c.f.Col(col)
		for n, r := range c.f.Rows {
			v, err := strconv.ParseFloat(strings.TrimSpace(r[i]), 64)
			if err != nil || v < 0 {
				return c.fail(CheckRange, "column %s row %d value %q is not in [0, inf)", col, n+1, r[i])
			}
		}
	}
	return nil
}

func (c checker) allowed(col string, values []string) error {
	i := c.f.Col(col)
	var bad []string
	for _, r := range c.f.Rows {
		if !slices.Contains(values, r[i]) && !slices.Contains(bad, r[i]) {
			bad = append(bad, r[i])
		}
	}
	if len(bad) > 0 {
		return c.fail(CheckAllowed, "column %s contains unexpected values %q", col, bad)
	}
	return nil
}

func (c checker) dateRange(col string, min, max time.Time) error {
	i := c.f.Col(col)
	for n, r := range c.f.Rows {
		d, err := time.Parse(warehouse.DateLayout, r[i])
		if err != nil || d.Before(min) || d.After(max) {
			return c.fail(CheckDateRange, "column %s row %d value %q is outside [%s, %s]",
				col, n+1, r[i], min.Format(warehouse.DateLayout), max.Format(warehouse.DateLayout))
		}
	}
	return nil
}

func run(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// Table validates a table rendered as a frame. Unknown tables fail.
func Table(name string, f *frame.Frame, opts Options) error {
	t, ok := warehouse.Lookup(name)
	if !ok {
		return &Error{Table: name, Check: CheckSchema, Detail: "no validator defined"}
	}
	c := checker{table: name, f: f}

	if err := c.schema(t.Columns); err != nil {
		return err
	}

	switch name {
	case warehouse.DimCountry.Name:
		return run(
			func() error { return c.nulls("country_id", "country_name") },
			func() error { return c.unique("country_id") },
			c.rowCount,
			c.duplicates,
		)
	case warehouse.DimDate.Name:
		return run(
			func() error { return c.nulls("date_id", "all_date", "year", "month") },
			func() error { return c.unique("date_id") },
			func() error { return c.unique("all_date") },
			c.rowCount,
			c.duplicates,
			func() error { return c.dateRange("all_date", opts.MinDate, opts.MaxDate) },
		)
	case warehouse.DimProduct.Name:
		return run(
			func() error { return c.nulls("product_id") },
			func() error { return c.unique("product_id") },
			c.rowCount,
			c.duplicates,
			c.productNames,
		)
	case warehouse.FactPrices.Name:
		return run(
			func() error {
				return c.nulls("price_id", "date_id", "product_id", "price_usd_per_ton", "avg_annual_price")
			},
			func() error { return c.unique("price_id") },
			c.rowCount,
			c.duplicates,
			func() error { return c.nonNegative("price_usd_per_ton", "avg_annual_price") },
		)
	case warehouse.FactMetrics.Name:
		return run(
			func() error { return c.nulls("fact_id", "date_id", "product_id", "country_id", "metric_type") },
			func() error { return c.unique("fact_id") },
			c.rowCount,
			c.duplicates,
			func() error { return c.allowed("metric_type", warehouse.MetricTypes) },
			func() error { return c.nonNegative("value") },
		)
	}
	return nil
}

// productNames allows an empty name only on the sentinel id, where it is
// read as N/A, and otherwise requires the closed enumeration.
func (c checker) productNames() error {
	idCol, nameCol := c.f.Col("product_id"), c.f.Col("product_name")
	names := make([][]string, 0, c.f.Len())
	var missing []string
	for _, r := range c.f.Rows {
		name := r[nameCol]
		if name == "" {
			if r[idCol] != strconv.Itoa(warehouse.NoProductID) {
				missing = append(missing, r[idCol])
				continue
			}
			name = warehouse.NoProductName
		}
		names = append(names, []string{name})
	}
	if len(missing) > 0 {
		return c.fail(CheckNulls, "missing product_name for product_id(s) %v", missing)
	}
	normalized := frame.New([]string{"product_name"}, names)
	return checker{table: c.table, f: normalized}.allowed("product_name", warehouse.ProductNames)
}

// Data decodes a CSV table file and validates it.
func Data(name string, data []byte, opts Options) error {
	f, err := warehouse.DecodeCSV(data)
	if err != nil {
		return &Error{Table: name, Check: CheckSchema, Detail: err.Error()}
	}
	return Table(name, f, opts)
}
