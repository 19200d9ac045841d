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
	"fmt"

	"github.com/guregu/null"

	"github.com/foodwh/foodwh-etl/internal/config"
	"github.com/foodwh/foodwh-etl/internal/warehouse"
)

// Policy controls how builders treat unresolved keys and repeated grains.
type Policy struct {
	// Unresolved is drop or keep.
	Unresolved string

	// Duplicate is keep, first, sum or fail. Only metric builders use it.
	Duplicate string
}

// MetricsPolicy returns the policy of the metric builders.
func MetricsPolicy(p config.PolicyConfig) Policy {
	return Policy{Unresolved: p.MetricsUnresolved, Duplicate: p.DuplicateGrain}
}

// PricesPolicy returns the policy of the prices builder.
func PricesPolicy(p config.PolicyConfig) Policy {
	return Policy{Unresolved: p.PricesUnresolved}
}

func (p Policy) keepUnresolved() bool {
	return p.Unresolved == config.UnresolvedKeep
}

// DuplicateGrainError reports a repeated (date, product, country,
// metric_type) grain under the fail policy.
type DuplicateGrainError struct {
	Table string
	Grain string
	Count int
}

func (e *DuplicateGrainError) Error() string {
	return fmt.Sprintf("%s: grain %s appears %d times", e.Table, e.Grain, e.Count)
}

type grain struct {
	date, product, country null.Int
	metricType             string
}

func (g grain) String() string {
	return fmt.Sprintf("(date_id=%s, product_id=%s, country_id=%s, metric_type=%s)",
		nullString(g.date), nullString(g.product), nullString(g.country), g.metricType)
}

func nullString(v null.Int) string {
	if !v.Valid {
		return "null"
	}
	return fmt.Sprint(v.Int64)
}

func grainOf(m warehouse.Metric) grain {
	return grain{date: m.DateID, product: m.ProductID, country: m.CountryID, metricType: m.MetricType}
}

// applyDuplicatePolicy collapses rows sharing a grain. first keeps the
// first row, sum adds later values into the first row, fail returns a
// DuplicateGrainError and keep returns rows untouched.
func applyDuplicatePolicy(table string, rows []warehouse.Metric, policy string) ([]warehouse.Metric, int, error) {
	if policy == "" || policy == config.DuplicateKeep {
		return rows, 0, nil
	}

	pos := make(map[grain]int, len(rows))
	out := make([]warehouse.Metric, 0, len(rows))
	for _, m := range rows {
		g := grainOf(m)
		i, seen := pos[g]
		if !seen {
			pos[g] = len(out)
			out = append(out, m)
			continue
		}
		switch policy {
		case config.DuplicateFail:
			count := 0
			for _, r := range rows {
				if grainOf(r) == g {
					count++
				}
			}
			return nil, 0, &DuplicateGrainError{Table: table, Grain: g.String(), Count: count}
		case config.DuplicateSum:
			out[i].Value = null.FloatFrom(out[i].Value.Float64 + m.Value.Float64)
		}
	}
	return out, len(rows) - len(out), nil
}
