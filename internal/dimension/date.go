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
	"fmt"
	"time"

	"github.com/foodwh/foodwh-etl/internal/logging"
	"github.com/foodwh/foodwh-etl/internal/warehouse"
)

// BuildDates generates one dim_date row per month start from January of
// startYear through December of endYear, with ids from 1.
func BuildDates(startYear, endYear int) ([]warehouse.Date, error) {
	if startYear < 1 || endYear < startYear {
		return nil, fmt.Errorf("%s: invalid year range %d-%d", warehouse.DimDate.Name, startYear, endYear)
	}

	out := make([]warehouse.Date, 0, (endYear-startYear+1)*12)
	for y := startYear; y <= endYear; y++ {
		for m := time.January; m <= time.December; m++ {
			out = append(out, warehouse.Date{
				ID:        len(out) + 1,
				Date:      time.Date(y, m, 1, 0, 0, 0, 0, time.UTC),
				Year:      y,
				Month:     int(m),
				MonthName: m.String(),
				Quarter:   (int(m)-1)/3 + 1,
			})
		}
	}

	log := logging.Table(warehouse.DimDate.Name)
	log.Info().
		Int("start_year", startYear).
		Int("end_year", endYear).
		Int("output_rows", len(out)).
		Msg("Built date dimension")
	return out, nil
}
