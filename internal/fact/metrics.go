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
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/guregu/null"

	"github.com/foodwh/foodwh-etl/internal/extract"
	"github.com/foodwh/foodwh-etl/internal/frame"
	"github.com/foodwh/foodwh-etl/internal/logging"
	"github.com/foodwh/foodwh-etl/internal/warehouse"
)

// Predicate keeps rows whose Column holds one of Values.
type Predicate struct {
	Column string
	Values []string
}

func (p Predicate) match(v string) bool {
	v = strings.TrimSpace(v)
	for _, want := range p.Values {
		if v == want {
			return true
		}
	}
	return false
}

// MetricSpec parameterizes the metric fact builder for one source.
type MetricSpec struct {
	// Family names the intermediate table, e.g. "trade".
	Family string

	// Dataset is the source name used in errors.
	Dataset string

	// CountryColumn holds the country display name.
	CountryColumn string

	// Filters are ANDed discriminator predicates.
	Filters []Predicate

	// ItemColumn and Items map source items to canonical products. Rows
	// with an unmapped item are filtered out. Unused when NoProduct is set.
	ItemColumn string
	Items      map[string]string

	// MetricType tags every row, unless TagColumn is set, in which case
	// the tag is looked up per row in Tags.
	MetricType string
	TagColumn  string
	Tags       map[string]string

	// PeriodPattern selects the period columns; its first submatch is the
	// four digit year.
	PeriodPattern *regexp.Regexp

	// NoProduct assigns the N/A product instead of joining on items.
	NoProduct bool

	// Integer truncates values toward zero.
	Integer bool
}

func (s MetricSpec) table() string {
	return warehouse.IntermediateMetrics(s.Family).Name
}

func (s MetricSpec) requiredColumns() []string {
	cols := []string{s.CountryColumn}
	for _, p := range s.Filters {
		cols = append(cols, p.Column)
	}
	if !s.NoProduct {
		cols = append(cols, s.ItemColumn)
	}
	if s.TagColumn != "" {
		cols = append(cols, s.TagColumn)
	}
	return cols
}

// parseValue reads a measure cell. Empty and non-numeric cells are null.
func parseValue(s string) null.Float {
	s = strings.TrimSpace(s)
	if s == "" {
		return null.Float{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

// BuildMetrics turns a wide raw extract into fact_metrics rows: filter,
// unpivot the period columns, tag, resolve country, product and January of
// the year, drop nulls, apply the duplicate policy and number rows from 1.
func BuildMetrics(spec MetricSpec, raw *frame.Frame, dims *Dimensions, policy Policy) ([]warehouse.Metric, error) {
	table := spec.table()
	if err := raw.Require(spec.requiredColumns()...); err != nil {
		return nil, &extract.SourceFormatError{Dataset: spec.Dataset, Reason: "metric columns", Err: err}
	}

	itemCol := raw.Col(spec.ItemColumn)
	tagCol := raw.Col(spec.TagColumn)
	filterCols := make([]int, len(spec.Filters))
	for i, p := range spec.Filters {
		filterCols[i] = raw.Col(p.Column)
	}

	filtered := raw.Filter(func(r []string) bool {
		for i, p := range spec.Filters {
			if !p.match(r[filterCols[i]]) {
				return false
			}
		}
		if !spec.NoProduct {
			if _, ok := spec.Items[r[itemCol]]; !ok {
				return false
			}
		}
		if spec.TagColumn != "" {
			if _, ok := spec.Tags[strings.TrimSpace(r[tagCol])]; !ok {
				return false
			}
		}
		return true
	})

	periods := filtered.MatchColumns(spec.PeriodPattern)
	if len(periods) == 0 {
		return nil, extract.Errorf(spec.Dataset, "no period columns match %s", spec.PeriodPattern)
	}
	years := make(map[string]int, len(periods))
	inWindow := make([]string, 0, len(periods))
	for _, p := range periods {
		m := spec.PeriodPattern.FindStringSubmatch(p)
		if len(m) < 2 {
			return nil, extract.Errorf(spec.Dataset, "period pattern %s has no year group", spec.PeriodPattern)
		}
		y, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, extract.Errorf(spec.Dataset, "period column %q has no year", p)
		}
		if !dims.CoversYear(y) {
			continue
		}
		years[p] = y
		inWindow = append(inWindow, p)
	}
	if skipped := len(periods) - len(inWindow); skipped > 0 {
		l := logging.Table(table)
		l.Debug().
			Int("columns", skipped).
			Msg("Skipped period columns outside the date dimension")
	}
	periods = inWindow

	countryCol := filtered.Col(spec.CountryColumn)
	cells := filtered.Melt(periods)

	var (
		out        []warehouse.Metric
		nullValues int
		unresolved int
	)
	for _, c := range cells {
		row := filtered.Rows[c.Row]

		value := parseValue(c.Value)
		if !value.Valid {
			nullValues++
			continue
		}
		if spec.Integer {
			value = null.FloatFrom(math.Trunc(value.Float64))
		}

		metricType := spec.MetricType
		if spec.TagColumn != "" {
			metricType = spec.Tags[strings.TrimSpace(row[tagCol])]
		}

		productID := null.IntFrom(warehouse.NoProductID)
		if !spec.NoProduct {
			productID = dims.ProductID(spec.Items[row[itemCol]])
		}
		dateID := dims.DateID(years[c.Variable], 1)

		for _, countryID := range dims.CountryIDs(row[countryCol]) {
			m := warehouse.Metric{
				DateID:     dateID,
				ProductID:  productID,
				CountryID:  countryID,
				MetricType: metricType,
				Value:      value,
			}
			if !m.Resolved() {
				unresolved++
				if !policy.keepUnresolved() {
					continue
				}
			}
			out = append(out, m)
		}
	}

	out, collapsed, err := applyDuplicatePolicy(table, out, policy.Duplicate)
	if err != nil {
		return nil, err
	}

	for i := range out {
		out[i].ID = i + 1
	}

	log := logging.Table(table)
	log.Debug().
		Int("null_values", nullValues).
		Int("unresolved", unresolved).
		Int("collapsed", collapsed).
		Msg("Dropped metric rows")
	log.Info().
		Int("input_rows", raw.Len()).
		Int("filtered_rows", filtered.Len()).
		Int("output_rows", len(out)).
		Msg("Built metric facts")

	if len(out) == 0 {
		log.Warn().Msg("No metric rows after filtering and key resolution")
	}
	return out, nil
}
