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
	"github.com/foodwh/foodwh-etl/internal/logging"
	"github.com/foodwh/foodwh-etl/internal/warehouse"
)

// Merge concatenates per-family metric facts in argument order, drops rows
// missing a key or metric type and renumbers fact_id from 1.
func Merge(parts ...[]warehouse.Metric) []warehouse.Metric {
	total := 0
	for _, p := range parts {
		total += len(p)
	}

	out := make([]warehouse.Metric, 0, total)
	for _, p := range parts {
		for _, m := range p {
			if !m.Resolved() {
				continue
			}
			m.ID = len(out) + 1
			out = append(out, m)
		}
	}

	log := logging.Table(warehouse.FactMetrics.Name)
	log.Info().
		Int("parts", len(parts)).
		Int("input_rows", total).
		Int("output_rows", len(out)).
		Int("dropped", total-len(out)).
		Msg("Merged metric facts")
	return out
}
