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
	"math"

	"github.com/cockroachdb/apd/v3"
	"github.com/guregu/null"
)

var roundCtx = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(34)
	c.Rounding = apd.RoundHalfEven
	return c
}()

// Round2 rounds v to two decimal places, half to even, on its shortest
// decimal representation. Non-finite values are returned unchanged.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	var d apd.Decimal
	if _, err := d.SetFloat64(v); err != nil {
		return v
	}
	if _, err := roundCtx.Quantize(&d, &d, -2); err != nil {
		return v
	}
	f, err := d.Float64()
	if err != nil {
		return v
	}
	if f == 0 {
		// Avoid writing "-0".
		return 0
	}
	return f
}

// RoundNull rounds a nullable value, keeping null as null.
func RoundNull(v null.Float) null.Float {
	if !v.Valid {
		return v
	}
	return null.FloatFrom(Round2(v.Float64))
}
