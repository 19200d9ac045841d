//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package dimension builds the country, product and date dimensions.
package dimension

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/guregu/null"

	"github.com/foodwh/foodwh-etl/internal/config"
	"github.com/foodwh/foodwh-etl/internal/extract"
	"github.com/foodwh/foodwh-etl/internal/frame"
	"github.com/foodwh/foodwh-etl/internal/logging"
	"github.com/foodwh/foodwh-etl/internal/warehouse"
)

// Raw extract and mapping column names.
const (
	ColAreaCode      = "Area Code (M49)"
	ColArea          = "Area"
	ColM49Code       = "m49_code"
	ColContinentName = "continent_name"
)

// NormalizeCode returns the join key of an M49 area code. In pad mode the
// quotes are stripped and the code is left-padded with zeros to width 3.
// In int mode the code is parsed as an integer; ok is false when it is not
// numeric.
func NormalizeCode(code, mode string) (key string, ok bool) {
	code = strings.TrimSpace(strings.ReplaceAll(code, "'", ""))
	if code == "" {
		return "", false
	}
	if mode == config.CodeModeInt {
		n, err := strconv.Atoi(code)
		if err != nil {
			return "", false
		}
		return strconv.Itoa(n), true
	}
	if len(code) < 3 {
		code = strings.Repeat("0", 3-len(code)) + code
	}
	return code, true
}

// BuildCountries derives dim_country from the distinct (code, name) pairs of
// the production extract, enriched with continents from mapping. Countries
// whose code has no continent are excluded. Ids are dense from 1 in
// first-seen order.
func BuildCountries(raw, mapping *frame.Frame, mode string) ([]warehouse.Country, error) {
	if err := raw.Require(ColAreaCode, ColArea); err != nil {
		return nil, &extract.SourceFormatError{Dataset: "production_value", Reason: "country columns", Err: err}
	}
	if err := mapping.Require(ColM49Code, ColContinentName); err != nil {
		return nil, &extract.SourceFormatError{Dataset: "continents", Reason: "mapping columns", Err: err}
	}

	continents := make(map[string]string, mapping.Len())
	codeCol, contCol := mapping.Col(ColM49Code), mapping.Col(ColContinentName)
	for _, r := range mapping.Rows {
		key, ok := NormalizeCode(r[codeCol], mode)
		if !ok || r[contCol] == "" {
			continue
		}
		if _, seen := continents[key]; !seen {
			continents[key] = r[contCol]
		}
	}

	type pair struct{ code, name string }
	seen := make(map[pair]bool)
	areaCodeCol, areaCol := raw.Col(ColAreaCode), raw.Col(ColArea)

	var (
		out      []warehouse.Country
		distinct int
	)
	for _, r := range raw.Rows {
		p := pair{r[areaCodeCol], r[areaCol]}
		if seen[p] {
			continue
		}
		seen[p] = true
		distinct++

		key, ok := NormalizeCode(p.code, mode)
		if !ok {
			continue
		}
		continent, ok := continents[key]
		if !ok {
			continue
		}
		out = append(out, warehouse.Country{
			ID:        len(out) + 1,
			Name:      p.name,
			Continent: null.StringFrom(continent),
		})
	}

	log := logging.Table(warehouse.DimCountry.Name)
	log.Info().
		Int("input_rows", raw.Len()).
		Int("distinct", distinct).
		Int("output_rows", len(out)).
		Int("dropped", distinct-len(out)).
		Msg("Built country dimension")

	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no country resolved to a continent", warehouse.DimCountry.Name)
	}
	return out, nil
}
