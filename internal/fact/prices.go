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
	"regexp"
	"sort"
	"strconv"

	"github.com/guregu/null"

	"github.com/foodwh/foodwh-etl/internal/extract"
	"github.com/foodwh/foodwh-etl/internal/frame"
	"github.com/foodwh/foodwh-etl/internal/logging"
	"github.com/foodwh/foodwh-etl/internal/warehouse"
)

const pricesDataset = "prices"

// PriceColumn pairs a commodity column of the price sheet with its
// canonical product.
type PriceColumn struct {
	Column  string
	Product string
}

// PriceColumns are the tracked commodities, in sheet selection order.
var PriceColumns = []PriceColumn{
	{Column: "Soybeans", Product: "Soya"},
	{Column: "Maize", Product: "Maize"},
	{Column: "Rice, Thai 5%", Product: "Rice"},
	{Column: "Wheat, US HRW", Product: "Wheat"},
}

var periodLabel = regexp.MustCompile(`^(\d{4})M(\d{2})$`)

// ParsePeriod parses a "YYYYMmm" label such as 2020M01.
func ParsePeriod(label string) (year, month int, ok bool) {
	m := periodLabel.FindStringSubmatch(label)
	if m == nil {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	month, _ = strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

type pricePoint struct {
	product     string
	year, month int
	price       float64
	avg         float64
	monthChange null.Float
	annChange   null.Float
}

// pctChange returns (cur/prev - 1) * 100, or null when prev is zero.
func pctChange(prev, cur float64) null.Float {
	if prev == 0 {
		return null.Float{}
	}
	return null.FloatFrom((cur/prev - 1) * 100)
}

// BuildPrices turns the monthly price sheet into fact_prices rows. sheet
// is the worksheet read with its metadata rows already skipped: the header
// row names the commodities and the first data row holds units.
func BuildPrices(sheet *frame.Frame, dims *Dimensions, policy Policy) ([]warehouse.Price, error) {
	table := warehouse.FactPrices.Name
	if len(sheet.Header) == 0 || sheet.Len() == 0 {
		return nil, extract.Errorf(pricesDataset, "price sheet has no data rows")
	}

	header := append([]string(nil), sheet.Header...)
	header[0] = "year_month"
	data := frame.New(header, sheet.Rows[1:]).TrimHeader()

	cols := make([]string, len(PriceColumns))
	products := make(map[string]string, len(PriceColumns))
	for i, pc := range PriceColumns {
		cols[i] = pc.Column
		products[pc.Column] = pc.Product
	}
	if err := data.Require(cols...); err != nil {
		return nil, &extract.SourceFormatError{Dataset: pricesDataset, Reason: "commodity columns", Err: err}
	}

	periodCol := data.Col("year_month")
	var (
		points  []pricePoint
		skipped int
	)
	for _, c := range data.Melt(cols) {
		year, month, ok := ParsePeriod(data.Rows[c.Row][periodCol])
		price := parseValue(c.Value)
		if !ok || !price.Valid {
			skipped++
			continue
		}
		points = append(points, pricePoint{
			product: products[c.Variable],
			year:    year,
			month:   month,
			price:   price.Float64,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		a, b := points[i], points[j]
		if a.product != b.product {
			return a.product < b.product
		}
		if a.year != b.year {
			return a.year < b.year
		}
		return a.month < b.month
	})

	type productYear struct {
		product string
		year    int
	}
	sums := make(map[productYear]float64)
	counts := make(map[productYear]int)
	for _, p := range points {
		k := productYear{p.product, p.year}
		sums[k] += p.price
		counts[k]++
	}
	for i := range points {
		k := productYear{points[i].product, points[i].year}
		points[i].avg = sums[k] / float64(counts[k])
		if i > 0 && points[i-1].product == points[i].product {
			points[i].monthChange = pctChange(points[i-1].price, points[i].price)
			points[i].annChange = pctChange(points[i-1].avg, points[i].avg)
		}
	}

	out := make([]warehouse.Price, 0, len(points))
	unresolved := 0
	for _, p := range points {
		row := warehouse.Price{
			DateID:       dims.DateID(p.year, p.month),
			ProductID:    dims.ProductID(p.product),
			PriceUSD:     p.price,
			AvgAnnual:    warehouse.Round2(p.avg),
			AnnualChange: warehouse.RoundNull(p.annChange),
			MonthChange:  warehouse.RoundNull(p.monthChange),
		}
		if !row.Resolved() {
			unresolved++
			if !policy.keepUnresolved() {
				continue
			}
		}
		row.ID = len(out) + 1
		out = append(out, row)
	}

	log := logging.Table(table)
	log.Debug().
		Int("unparsable", skipped).
		Int("unresolved", unresolved).
		Msg("Dropped price rows")
	log.Info().
		Int("input_rows", data.Len()).
		Int("observations", len(points)).
		Int("output_rows", len(out)).
		Msg("Built price facts")
	return out, nil
}
