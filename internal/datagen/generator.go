//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// Default archive entry and sheet names, matching the published downloads.
const (
	ProductionEntry      = "Value_of_Production_E_All_Data.csv"
	FoodBalanceEntry     = "FoodBalanceSheets_E_All_Data.csv"
	TradeEntry           = "Trade_CropsLivestock_E_All_Data_NOFLAG.csv"
	tradeItemCodesEntry  = "Trade_CropsLivestock_E_ItemCodes.csv"
	PopulationEntry      = "API_SP.POP.TOTL_DS2_en_csv_v2.csv"
	PopulationMetaEntry  = "Metadata_Country_API_SP.POP.TOTL_DS2_en_csv_v2.csv"
	PricesSheet          = "Monthly Prices"
	pricesIndicesSheet   = "Monthly Indices"
	pricesMetadataRows   = 4
	missingValueMarker   = ".."
	archiveTimestampYear = 2025
)

// Options configures a Generator.
type Options struct {
	// Seed makes the output reproducible. Zero picks a random seed.
	Seed uint64

	// FirstYear and LastYear bound the annual columns and the monthly
	// price rows.
	FirstYear int
	LastYear  int

	// Countries limits the catalogue to its first n entries. Zero means
	// all of them.
	Countries int

	// Entry and sheet names override the defaults.
	ProductionEntry  string
	FoodBalanceEntry string
	TradeEntry       string
	PricesSheet      string
}

// DefaultOptions returns options covering the last decade.
func DefaultOptions() Options {
	return Options{
		FirstYear: 2015,
		LastYear:  2024,
	}
}

// Extracts holds the generated raw files.
type Extracts struct {
	ProductionValue []byte
	FoodBalance     []byte
	Trade           []byte
	Population      []byte
	Prices          []byte
	Continents      []byte
}

// Generator builds synthetic raw extracts.
type Generator struct {
	opts      Options
	faker     *Faker
	countries []Country
	scale     map[string]float64
}

// NewGenerator validates opts and creates a generator.
func NewGenerator(opts Options) (*Generator, error) {
	if opts.FirstYear <= 0 || opts.LastYear < opts.FirstYear {
		return nil, fmt.Errorf("invalid year range %d-%d", opts.FirstYear, opts.LastYear)
	}
	if opts.Countries < 0 || opts.Countries > len(Countries) {
		return nil, fmt.Errorf("countries must be between 0 and %d", len(Countries))
	}
	if opts.ProductionEntry == "" {
		opts.ProductionEntry = ProductionEntry
	}
	if opts.FoodBalanceEntry == "" {
		opts.FoodBalanceEntry = FoodBalanceEntry
	}
	if opts.TradeEntry == "" {
		opts.TradeEntry = TradeEntry
	}
	if opts.PricesSheet == "" {
		opts.PricesSheet = PricesSheet
	}

	f := NewFaker()
	if opts.Seed != 0 {
		f = NewFakerWithSeed(opts.Seed)
	}

	countries := Countries
	if opts.Countries > 0 {
		countries = Countries[:opts.Countries]
	}

	g := &Generator{
		opts:      opts,
		faker:     f,
		countries: countries,
		scale:     make(map[string]float64, len(countries)+1),
	}
	for _, c := range countries {
		g.scale[c.M49] = f.Float64(0.05, 1.5)
	}
	g.scale[aggregateArea.M49] = float64(len(countries))
	return g, nil
}

// Generate builds every extract. Files are produced in a fixed order so
// that a seeded generator always yields the same content.
func (g *Generator) Generate() (*Extracts, error) {
	var (
		out Extracts
		err error
	)
	steps := []struct {
		name string
		dst  *[]byte
		fn   func() ([]byte, error)
	}{
		{"production_value", &out.ProductionValue, g.productionValue},
		{"food_balance", &out.FoodBalance, g.foodBalance},
		{"trade", &out.Trade, g.trade},
		{"population", &out.Population, g.population},
		{"prices", &out.Prices, g.prices},
		{"continents", &out.Continents, g.continents},
	}
	for _, s := range steps {
		if *s.dst, err = s.fn(); err != nil {
			return nil, fmt.Errorf("generate %s: %w", s.name, err)
		}
	}
	return &out, nil
}

func (g *Generator) years() []int {
	years := make([]int, 0, g.opts.LastYear-g.opts.FirstYear+1)
	for y := g.opts.FirstYear; y <= g.opts.LastYear; y++ {
		years = append(years, y)
	}
	return years
}

// areas returns the catalogue followed by the World aggregate.
func (g *Generator) areas() []Country {
	return append(append([]Country(nil), g.countries...), aggregateArea)
}

// faoHeader returns the FAOSTAT bulk header. flags lists the suffixes of
// the per-year flag columns.
func (g *Generator) faoHeader(flags ...string) []string {
	header := []string{"Area Code", "Area Code (M49)", "Area", "Item Code", "Item", "Element Code", "Element", "Unit"}
	for _, y := range g.years() {
		header = append(header, fmt.Sprintf("Y%d", y))
		for _, f := range flags {
			header = append(header, fmt.Sprintf("Y%d%s", y, f))
		}
	}
	return header
}

// faoRows renders one row per area, item and element with a drifting
// annual series. Roughly one cell in twenty is left empty.
func (g *Generator) faoRows(items []Item, elements []Element, flags ...string) [][]string {
	var rows [][]string
	for _, a := range g.areas() {
		for _, it := range items {
			for _, el := range elements {
				row := []string{
					strconv.Itoa(a.FAOCode),
					"'" + a.M49,
					a.Name,
					strconv.Itoa(it.Code),
					it.Name,
					strconv.Itoa(el.Code),
					el.Name,
					el.Unit,
				}
				v := it.Base * g.scale[a.M49]
				for range g.years() {
					v = g.faker.Drift(v, 8)
					row = append(row, g.faker.Observation(v, 0.05))
					for range flags {
						row = append(row, g.faker.Flag())
					}
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func (g *Generator) productionValue() ([]byte, error) {
	data, err := encodeCSV(g.faoHeader("F"), g.faoRows(productionItems, productionElements, "F"))
	if err != nil {
		return nil, err
	}
	return zipEntries(zipEntry{g.opts.ProductionEntry, data})
}

func (g *Generator) foodBalance() ([]byte, error) {
	data, err := encodeCSV(g.faoHeader("F", "N"), g.faoRows(foodBalanceItems, foodBalanceElements, "F", "N"))
	if err != nil {
		return nil, err
	}
	return zipEntries(zipEntry{g.opts.FoodBalanceEntry, data})
}

// trade renders the bulk download without flag columns. The archive also
// carries the item code list, as the real one does.
func (g *Generator) trade() ([]byte, error) {
	codes := [][]string{{"Item Code", "Item"}}
	for _, it := range tradeItems {
		codes = append(codes, []string{strconv.Itoa(it.Code), it.Name})
	}
	codeData, err := encodeCSV(codes[0], codes[1:])
	if err != nil {
		return nil, err
	}
	data, err := encodeCSV(g.faoHeader(), g.faoRows(tradeItems, tradeElements))
	if err != nil {
		return nil, err
	}
	return zipEntries(zipEntry{tradeItemCodesEntry, codeData}, zipEntry{g.opts.TradeEntry, data})
}

// population renders the World Bank indicator download: a metadata entry
// followed by the data entry, whose first lines precede the header.
func (g *Generator) population() ([]byte, error) {
	var meta [][]string
	for _, c := range g.countries {
		meta = append(meta, []string{c.ISO3, c.Continent, "Upper middle income", ""})
	}
	metaData, err := encodeCSV([]string{"Country Code", "Region", "IncomeGroup", "SpecialNotes"}, meta)
	if err != nil {
		return nil, err
	}

	header := []string{"Country Name", "Country Code", "Indicator Name", "Indicator Code"}
	for _, y := range g.years() {
		header = append(header, strconv.Itoa(y))
	}
	header = append(header, "")

	var rows [][]string
	for _, a := range g.areas() {
		row := []string{a.PopulationName(), a.ISO3, "Population, total", "SP.POP.TOTL"}
		v := a.Population
		for range g.years() {
			v = g.faker.Drift(v, 2)
			row = append(row, strconv.FormatInt(int64(v), 10))
		}
		rows = append(rows, append(row, ""))
	}

	var buf bytes.Buffer
	buf.WriteString("\"Data Source\",\"World Development Indicators\",\n\n")
	fmt.Fprintf(&buf, "\"Last Updated Date\",\"%d-07-01\",\n\n", archiveTimestampYear)
	body, err := encodeCSV(header, rows)
	if err != nil {
		return nil, err
	}
	buf.Write(body)

	return zipEntries(
		zipEntry{PopulationMetaEntry, metaData},
		zipEntry{PopulationEntry, buf.Bytes()},
	)
}

// prices renders the commodity workbook: metadata rows, the commodity
// header, a units row, then one row per month. One random cell is marked
// as missing.
func (g *Generator) prices() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := g.opts.PricesSheet
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(pricesIndicesSheet); err != nil {
		return nil, err
	}

	metadata := []string{
		"World Bank Commodity Price Data (The Pink Sheet)",
		"Monthly prices in nominal US dollars",
		fmt.Sprintf("Updated on %d-07-02", archiveTimestampYear),
		"Source: synthetic",
	}
	for i, m := range metadata {
		if err := f.SetCellStr(sheet, fmt.Sprintf("A%d", i+1), m); err != nil {
			return nil, err
		}
	}

	header := []any{""}
	units := []any{""}
	level := make([]float64, len(commodities))
	for i, c := range commodities {
		header = append(header, c.Name)
		units = append(units, c.Unit)
		level[i] = c.Base
	}
	row := pricesMetadataRows + 1
	for _, r := range [][]any{header, units} {
		if err := setRow(f, sheet, row, r); err != nil {
			return nil, err
		}
		row++
	}

	months := (g.opts.LastYear - g.opts.FirstYear + 1) * 12
	missingRow := g.faker.Int(0, months-1)
	missingCol := g.faker.Int(1, len(commodities))
	for i := range months {
		year := g.opts.FirstYear + i/12
		month := i%12 + 1
		r := []any{fmt.Sprintf("%dM%02d", year, month)}
		for j := range commodities {
			level[j] = g.faker.Drift(level[j], 4)
			r = append(r, level[j])
		}
		if i == missingRow {
			r[missingCol] = missingValueMarker
		}
		if err := setRow(f, sheet, row, r); err != nil {
			return nil, err
		}
		row++
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// continents renders the M49 mapping resource. The World aggregate has no
// continent and is left out.
func (g *Generator) continents() ([]byte, error) {
	var rows [][]string
	for _, c := range Countries {
		rows = append(rows, []string{c.M49, c.Continent})
	}
	return encodeCSV([]string{"m49_code", "continent_name"}, rows)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func encodeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type zipEntry struct {
	name string
	data []byte
}

func zipEntries(entries ...zipEntry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := time.Date(archiveTimestampYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(e.data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatSize formats a byte count as a human-readable string.
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
