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
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/guregu/null"

	"github.com/foodwh/foodwh-etl/internal/frame"
)

// DateLayout is the ISO date format of all_date.
const DateLayout = "2006-01-02"

// EncodeCSV renders a frame as CSV with a header row.
func EncodeCSV(f *frame.Frame) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(f.Header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(f.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeCSV parses CSV with a header row into a frame.
func DecodeCSV(data []byte) (*frame.Frame, error) {
	r := csv.NewReader(bytes.NewReader(data))
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty table file")
	}
	if err != nil {
		return nil, err
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return frame.New(header, rows), nil
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}

func formatNullInt(v null.Int) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatNullFloat(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return formatFloat(v.Float64)
}

func formatNullString(v null.String) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

// rowDecoder reads typed cells of one frame, remembering the first error.
type rowDecoder struct {
	f     *frame.Frame
	table string
	row   int
	err   error
}

func newRowDecoder(f *frame.Frame, t Table) (*rowDecoder, error) {
	if err := f.Require(t.Columns...); err != nil {
		return nil, fmt.Errorf("%s: %w", t.Name, err)
	}
	return &rowDecoder{f: f, table: t.Name}, nil
}

func (d *rowDecoder) fail(col string, err error) {
	if d.err == nil {
		d.err = fmt.Errorf("%s row %d column %s: %w", d.table, d.row+1, col, err)
	}
}

func (d *rowDecoder) str(col string) string {
	return d.f.Get(d.row, col)
}

func (d *rowDecoder) nullStr(col string) null.String {
	s := d.str(col)
	return null.NewString(s, s != "")
}

func (d *rowDecoder) int(col string) int {
	v, err := strconv.Atoi(d.str(col))
	if err != nil {
		d.fail(col, err)
	}
	return v
}

func (d *rowDecoder) nullInt(col string) null.Int {
	s := d.str(col)
	if s == "" {
		return null.Int{}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		d.fail(col, err)
		return null.Int{}
	}
	return null.IntFrom(v)
}

func (d *rowDecoder) float(col string) float64 {
	v, err := strconv.ParseFloat(d.str(col), 64)
	if err != nil {
		d.fail(col, err)
	}
	return v
}

func (d *rowDecoder) nullFloat(col string) null.Float {
	s := d.str(col)
	if s == "" {
		return null.Float{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		d.fail(col, err)
		return null.Float{}
	}
	return null.FloatFrom(v)
}

func (d *rowDecoder) date(col string) time.Time {
	v, err := time.Parse(DateLayout, d.str(col))
	if err != nil {
		d.fail(col, err)
	}
	return v
}

// CountriesFrame renders dim_country rows.
func CountriesFrame(rows []Country) *frame.Frame {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{formatInt(r.ID), r.Name, formatNullString(r.Continent)}
	}
	return frame.New(DimCountry.Columns, out)
}

// DecodeCountries reads dim_country rows from a frame.
func DecodeCountries(f *frame.Frame) ([]Country, error) {
	d, err := newRowDecoder(f, DimCountry)
	if err != nil {
		return nil, err
	}
	rows := make([]Country, f.Len())
	for d.row = range f.Rows {
		rows[d.row] = Country{
			ID:        d.int("country_id"),
			Name:      d.str("country_name"),
			Continent: d.nullStr("continent_name"),
		}
	}
	return rows, d.err
}

// ProductsFrame renders dim_product rows.
func ProductsFrame(rows []Product) *frame.Frame {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{formatInt(r.ID), r.Name}
	}
	return frame.New(DimProduct.Columns, out)
}

// DecodeProducts reads dim_product rows from a frame. An empty name on the
// sentinel id is normalized to "N/A".
func DecodeProducts(f *frame.Frame) ([]Product, error) {
	d, err := newRowDecoder(f, DimProduct)
	if err != nil {
		return nil, err
	}
	rows := make([]Product, f.Len())
	for d.row = range f.Rows {
		p := Product{ID: d.int("product_id"), Name: d.str("product_name")}
		if p.ID == NoProductID && p.Name == "" {
			p.Name = NoProductName
		}
		rows[d.row] = p
	}
	return rows, d.err
}

// DatesFrame renders dim_date rows.
func DatesFrame(rows []Date) *frame.Frame {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			formatInt(r.ID),
			r.Date.Format(DateLayout),
			formatInt(r.Year),
			formatInt(r.Month),
			r.MonthName,
			formatInt(r.Quarter),
		}
	}
	return frame.New(DimDate.Columns, out)
}

// DecodeDates reads dim_date rows from a frame.
func DecodeDates(f *frame.Frame) ([]Date, error) {
	d, err := newRowDecoder(f, DimDate)
	if err != nil {
		return nil, err
	}
	rows := make([]Date, f.Len())
	for d.row = range f.Rows {
		rows[d.row] = Date{
			ID:        d.int("date_id"),
			Date:      d.date("all_date"),
			Year:      d.int("year"),
			Month:     d.int("month"),
			MonthName: d.str("month_name"),
			Quarter:   d.int("quarter"),
		}
	}
	return rows, d.err
}

// MetricsFrame renders fact_metrics rows.
func MetricsFrame(rows []Metric) *frame.Frame {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			formatInt(r.ID),
			formatNullInt(r.DateID),
			formatNullInt(r.ProductID),
			formatNullInt(r.CountryID),
			r.MetricType,
			formatNullFloat(r.Value),
		}
	}
	return frame.New(FactMetrics.Columns, out)
}

// DecodeMetrics reads fact_metrics rows from a frame. A missing value
// column decodes as null values.
func DecodeMetrics(f *frame.Frame) ([]Metric, error) {
	required := []string{"fact_id", "date_id", "product_id", "country_id", "metric_type"}
	if err := f.Require(required...); err != nil {
		return nil, fmt.Errorf("%s: %w", FactMetrics.Name, err)
	}
	d := &rowDecoder{f: f, table: FactMetrics.Name}
	rows := make([]Metric, f.Len())
	for d.row = range f.Rows {
		rows[d.row] = Metric{
			ID:         d.int("fact_id"),
			DateID:     d.nullInt("date_id"),
			ProductID:  d.nullInt("product_id"),
			CountryID:  d.nullInt("country_id"),
			MetricType: d.str("metric_type"),
			Value:      d.nullFloat("value"),
		}
	}
	return rows, d.err
}

// PricesFrame renders fact_prices rows.
func PricesFrame(rows []Price) *frame.Frame {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			formatInt(r.ID),
			formatNullInt(r.DateID),
			formatNullInt(r.ProductID),
			formatFloat(r.PriceUSD),
			formatFloat(r.AvgAnnual),
			formatNullFloat(r.AnnualChange),
			formatNullFloat(r.MonthChange),
		}
	}
	return frame.New(FactPrices.Columns, out)
}

// DecodePrices reads fact_prices rows from a frame.
func DecodePrices(f *frame.Frame) ([]Price, error) {
	d, err := newRowDecoder(f, FactPrices)
	if err != nil {
		return nil, err
	}
	rows := make([]Price, f.Len())
	for d.row = range f.Rows {
		rows[d.row] = Price{
			ID:           d.int("price_id"),
			DateID:       d.nullInt("date_id"),
			ProductID:    d.nullInt("product_id"),
			PriceUSD:     d.float("price_usd_per_ton"),
			AvgAnnual:    d.float("avg_annual_price"),
			AnnualChange: d.nullFloat("price_annual_change_pct"),
			MonthChange:  d.nullFloat("price_month_change_pct"),
		}
	}
	return rows, d.err
}
