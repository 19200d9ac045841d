//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline runs the transformation DAG: dimensions first, then the
// fact builders in parallel, then the metric merge. Every table is
// validated before it is written to the transformed zone.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/foodwh/foodwh-etl/internal/config"
	"github.com/foodwh/foodwh-etl/internal/dimension"
	"github.com/foodwh/foodwh-etl/internal/extract"
	"github.com/foodwh/foodwh-etl/internal/fact"
	"github.com/foodwh/foodwh-etl/internal/frame"
	"github.com/foodwh/foodwh-etl/internal/logging"
	"github.com/foodwh/foodwh-etl/internal/storage"
	"github.com/foodwh/foodwh-etl/internal/validate"
	"github.com/foodwh/foodwh-etl/internal/warehouse"
)

// Stages of a transform run.
const (
	StageDimensions = "dimensions"
	StageFacts      = "facts"
	StageMerge      = "merge"
	StageAll        = "all"
)

// Stages lists the valid stage names.
var Stages = []string{StageDimensions, StageFacts, StageMerge, StageAll}

// Output describes one table file written by a run.
type Output struct {
	Table string
	Key   string
	Rows  int
	Bytes int
}

// Pipeline transforms raw extracts in a store into warehouse tables.
type Pipeline struct {
	cfg   *config.Config
	store storage.Store
	now   func() time.Time

	mu      sync.Mutex
	outputs []Output
}

// New creates a pipeline over store.
func New(cfg *config.Config, store storage.Store) *Pipeline {
	return &Pipeline{cfg: cfg, store: store, now: time.Now}
}

// WithClock overrides the clock used to resolve the default end year.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Outputs returns the tables written so far, sorted by table name.
func (p *Pipeline) Outputs() []Output {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := append([]Output(nil), p.outputs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Table < out[j].Table })
	return out
}

// ValidationOptions returns the validator settings for this run.
func (p *Pipeline) ValidationOptions() validate.Options {
	return validate.OptionsFor(p.cfg.Dates, p.now())
}

// Run executes one stage, or every stage in order for StageAll.
func (p *Pipeline) Run(ctx context.Context, stage string) error {
	start := time.Now()
	var err error
	switch stage {
	case StageDimensions:
		err = p.BuildDimensions(ctx)
	case StageFacts:
		err = p.BuildFacts(ctx)
	case StageMerge:
		err = p.MergeMetrics(ctx)
	case StageAll:
		if err = p.BuildDimensions(ctx); err != nil {
			break
		}
		if err = p.BuildFacts(ctx); err != nil {
			break
		}
		err = p.MergeMetrics(ctx)
	default:
		return fmt.Errorf("unknown stage %q (valid: %v)", stage, Stages)
	}
	if err != nil {
		return err
	}

	logging.Info().
		Str("stage", stage).
		Dur("elapsed", time.Since(start)).
		Msg("Transform stage completed")
	return nil
}

// BuildDimensions builds and writes dim_country, dim_product and dim_date.
func (p *Pipeline) BuildDimensions(ctx context.Context) error {
	src := p.cfg.Sources.ProductionValue
	raw, err := extract.Load(ctx, p.store, "production_value", p.cfg.Storage.RawKey(src.Key), src)
	if err != nil {
		return err
	}
	cont := p.cfg.Sources.Continents
	mapping, err := extract.Load(ctx, p.store, "continents", p.cfg.Storage.ResourceKey(cont.Key), cont)
	if err != nil {
		return err
	}

	countries, err := dimension.BuildCountries(raw, mapping, p.cfg.Country.CodeMode)
	if err != nil {
		return err
	}
	products, err := dimension.BuildProducts(raw)
	if err != nil {
		return err
	}
	dates, err := dimension.BuildDates(p.cfg.Dates.StartYear, p.cfg.Dates.ResolveEndYear(p.now()))
	if err != nil {
		return err
	}

	if err := p.writeTable(ctx, warehouse.DimCountry, warehouse.CountriesFrame(countries), true); err != nil {
		return err
	}
	if err := p.writeTable(ctx, warehouse.DimProduct, warehouse.ProductsFrame(products), true); err != nil {
		return err
	}
	return p.writeTable(ctx, warehouse.DimDate, warehouse.DatesFrame(dates), true)
}

// LoadDimensions reads the dimensions back from the transformed zone.
func (p *Pipeline) LoadDimensions(ctx context.Context) (*fact.Dimensions, error) {
	cf, err := p.readTable(ctx, warehouse.DimCountry)
	if err != nil {
		return nil, err
	}
	countries, err := warehouse.DecodeCountries(cf)
	if err != nil {
		return nil, err
	}

	pf, err := p.readTable(ctx, warehouse.DimProduct)
	if err != nil {
		return nil, err
	}
	products, err := warehouse.DecodeProducts(pf)
	if err != nil {
		return nil, err
	}

	df, err := p.readTable(ctx, warehouse.DimDate)
	if err != nil {
		return nil, err
	}
	dates, err := warehouse.DecodeDates(df)
	if err != nil {
		return nil, err
	}

	return fact.NewDimensions(countries, products, dates), nil
}

// metricSource returns the raw source feeding a metric family.
func (p *Pipeline) metricSource(family string) (string, config.SourceConfig) {
	switch family {
	case fact.FamilyTrade:
		return "trade", p.cfg.Sources.Trade
	case fact.FamilyPopulation:
		return "population", p.cfg.Sources.Population
	default:
		return "food_balance", p.cfg.Sources.FoodBalance
	}
}

// BuildFacts runs the four metric builders and the prices builder
// concurrently, bounded by runtime.parallelism. The first failure cancels
// the remaining builders.
func (p *Pipeline) BuildFacts(ctx context.Context) error {
	dims, err := p.LoadDimensions(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.cfg.Runtime.Parallelism, 1))

	metricsPolicy := fact.MetricsPolicy(p.cfg.Policy)
	for _, family := range fact.Families {
		spec, _ := fact.SpecFor(family)
		g.Go(func() error {
			dataset, src := p.metricSource(family)
			raw, err := extract.Load(gctx, p.store, dataset, p.cfg.Storage.RawKey(src.Key), src)
			if err != nil {
				return err
			}
			rows, err := fact.BuildMetrics(spec, raw, dims, metricsPolicy)
			if err != nil {
				return err
			}
			return p.writeTable(gctx, warehouse.IntermediateMetrics(family), warehouse.MetricsFrame(rows), false)
		})
	}

	g.Go(func() error {
		src := p.cfg.Sources.Prices
		sheet, err := extract.Load(gctx, p.store, "prices", p.cfg.Storage.RawKey(src.Key), src)
		if err != nil {
			return err
		}
		rows, err := fact.BuildPrices(sheet, dims, fact.PricesPolicy(p.cfg.Policy))
		if err != nil {
			return err
		}
		return p.writeTable(gctx, warehouse.FactPrices, warehouse.PricesFrame(rows), true)
	})

	return g.Wait()
}

// MergeMetrics unions the per-family metric files into fact_metrics.
func (p *Pipeline) MergeMetrics(ctx context.Context) error {
	parts := make([][]warehouse.Metric, 0, len(fact.Families))
	for _, family := range fact.Families {
		f, err := p.readTable(ctx, warehouse.IntermediateMetrics(family))
		if err != nil {
			return err
		}
		rows, err := warehouse.DecodeMetrics(f)
		if err != nil {
			return err
		}
		parts = append(parts, rows)
	}

	merged := fact.Merge(parts...)
	return p.writeTable(ctx, warehouse.FactMetrics, warehouse.MetricsFrame(merged), true)
}

// Validate checks the named tables (all warehouse tables when none are
// given) as currently stored in the transformed zone. Every table is
// checked; the failures are joined.
func (p *Pipeline) Validate(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		for _, t := range warehouse.Tables() {
			tables = append(tables, t.Name)
		}
	}

	opts := p.ValidationOptions()
	var errs []error
	for _, name := range tables {
		t, ok := warehouse.Lookup(name)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown table %q", name))
			continue
		}
		data, err := p.store.Get(ctx, p.cfg.Storage.TransformedKey(t.File()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := validate.Data(name, data, opts); err != nil {
			errs = append(errs, err)
			continue
		}
		logging.Info().Str("table", name).Msg("Validation passed")
	}
	return errors.Join(errs...)
}

func (p *Pipeline) readTable(ctx context.Context, t warehouse.Table) (*frame.Frame, error) {
	key := p.cfg.Storage.TransformedKey(t.File())
	data, err := p.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.Name, err)
	}
	f, err := warehouse.DecodeCSV(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", t.Name, err)
	}
	return f, nil
}

// writeTable encodes f, optionally validates it, and writes it to the
// transformed zone. Nothing is written when validation fails or ctx is
// done.
func (p *Pipeline) writeTable(ctx context.Context, t warehouse.Table, f *frame.Frame, check bool) error {
	data, err := warehouse.EncodeCSV(f)
	if err != nil {
		return fmt.Errorf("encode %s: %w", t.Name, err)
	}

	if check {
		if err := validate.Table(t.Name, f, p.ValidationOptions()); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	key := p.cfg.Storage.TransformedKey(t.File())
	if err := p.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", t.Name, err)
	}

	p.mu.Lock()
	p.outputs = append(p.outputs, Output{Table: t.Name, Key: key, Rows: f.Len(), Bytes: len(data)})
	p.mu.Unlock()

	logging.Info().
		Str("table", t.Name).
		Str("key", key).
		Int("rows", f.Len()).
		Msg("Table written")
	return nil
}
