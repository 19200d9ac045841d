//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen generates synthetic raw extracts shaped like the FAOSTAT
// and World Bank downloads, for local runs and tests.
package datagen

import (
	"math"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker provides fake data generation using gofakeit.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a new Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a new Faker with a specific seed for reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// Int generates a random integer between min and max (inclusive).
func (f *Faker) Int(min, max int) int {
	return f.faker.IntRange(min, max)
}

// Float64 generates a random float64 between min and max.
func (f *Faker) Float64(min, max float64) float64 {
	return f.faker.Float64Range(min, max)
}

// Drift moves v by a random factor within ±pct percent, never below zero,
// rounded to two decimals.
func (f *Faker) Drift(v, pct float64) float64 {
	next := v * (1 + f.Float64(-pct, pct)/100)
	if next < 0 {
		next = 0
	}
	return math.Round(next*100) / 100
}

// ChooseWeighted returns a random element based on weights.
func ChooseWeighted[T any](f *Faker, items []T, weights []int) T {
	if len(items) == 0 || len(weights) == 0 {
		var zero T
		return zero
	}

	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}

	r := f.Int(1, totalWeight)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return items[i]
		}
	}

	return items[len(items)-1]
}

// FAO observation flags: official, estimated, imputed.
var (
	observationFlags   = []string{"A", "E", "I"}
	observationWeights = []int{8, 1, 1}
)

// Flag returns an FAO observation flag, mostly "A".
func (f *Faker) Flag() string {
	return ChooseWeighted(f, observationFlags, observationWeights)
}

// Observation formats v with two decimals, or returns "" (a missing
// observation) with the given probability.
func (f *Faker) Observation(v float64, missingProbability float64) string {
	if f.Float64(0, 1) < missingProbability {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
