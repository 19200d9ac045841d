//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/foodwh/foodwh-etl/internal/config"
	"github.com/foodwh/foodwh-etl/internal/logging"
	"github.com/foodwh/foodwh-etl/internal/storage"
)

const populationCSV = `"Data Source","World Development Indicators",

"Last Updated Date","2025-07-01",

"Country Name","Country Code","Indicator Name","Indicator Code","1960","1961",
"Afghanistan","AFG","Population, total","SP.POP.TOTL","8622466","8790140",
"Albania","ALB","Population, total","SP.POP.TOTL","1608800","",
`

func TestReadCSVSkipsMetadataLines(t *testing.T) {
	f, err := ReadCSV("population", strings.NewReader(populationCSV), 4)
	require.NoError(t, err)

	require.Equal(t, 2, f.Len())
	assert.Equal(t, "Country Name", f.Header[0])
	assert.Equal(t, "8622466", f.Get(0, "1960"))
	assert.Equal(t, "", f.Get(1, "1961"))
}

func TestReadCSVStripsBOM(t *testing.T) {
	f, err := ReadCSV("trade", strings.NewReader("\ufeffArea Code,Area\n4,Afghanistan\n"), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Col("Area Code"))
	assert.Equal(t, "Afghanistan", f.Get(0, "Area"))
}

func TestReadCSVReportsInvalidUTF8(t *testing.T) {
	var logs bytes.Buffer
	logging.Init(logging.Config{Level: "warn", Output: &logs})
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })

	data := "skip me\nArea,Y2000\nAfghanistan,1\nC\xf4te d'Ivoire,2\nBenin,\xff3\n"
	f, err := ReadCSV("trade", strings.NewReader(data), 1)
	require.NoError(t, err)

	require.Equal(t, 3, f.Len())
	assert.Equal(t, "C\uFFFDte d'Ivoire", f.Get(1, "Area"))
	assert.Contains(t, logs.String(), "Replaced invalid UTF-8 in extract")
	assert.Contains(t, logs.String(), `"rows":2`)
	assert.Contains(t, logs.String(), `"first_line":4`)
	assert.Contains(t, logs.String(), `"dataset":"trade"`)
}

func TestReadCSVValidUTF8IsQuiet(t *testing.T) {
	var logs bytes.Buffer
	logging.Init(logging.Config{Level: "warn", Output: &logs})
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })

	_, err := ReadCSV("trade", strings.NewReader("Area,Y2000\nCôte d'Ivoire,2\n"), 0)
	require.NoError(t, err)
	assert.Empty(t, logs.String())
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV("empty", strings.NewReader(""), 0)
	var sfe *SourceFormatError
	require.ErrorAs(t, err, &sfe)
	assert.Equal(t, "empty", sfe.Dataset)

	_, err = ReadCSV("short", strings.NewReader("one line\n"), 4)
	require.ErrorAs(t, err, &sfe)
}

func buildZip(t *testing.T, files map[string]string, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestReadZipCSVFirstDataEntry(t *testing.T) {
	files := map[string]string{
		"Metadata_Country_API_SP.POP.TOTL.csv": "Country Code,Region\nAFG,South Asia\n",
		"API_SP.POP.TOTL_DS2_en_csv_v2.csv":    populationCSV,
	}
	data := buildZip(t, files, []string{"Metadata_Country_API_SP.POP.TOTL.csv", "API_SP.POP.TOTL_DS2_en_csv_v2.csv"})

	f, err := ReadZipCSV("population", data, "", 4)
	require.NoError(t, err)
	assert.Equal(t, "Country Name", f.Header[0])
}

func TestReadZipCSVNamedEntry(t *testing.T) {
	files := map[string]string{
		"FoodBalanceSheets_E_All_Data.csv": "Area,Item\nAfghanistan,Wheat and products\n",
		"FoodBalanceSheets_E_Flags.csv":    "Flag,Description\nA,Official\n",
	}
	data := buildZip(t, files, []string{"FoodBalanceSheets_E_Flags.csv", "FoodBalanceSheets_E_All_Data.csv"})

	f, err := ReadZipCSV("food_balance", data, "FoodBalanceSheets_E_All_Data.csv", 0)
	require.NoError(t, err)
	assert.Equal(t, "Wheat and products", f.Get(0, "Item"))

	_, err = ReadZipCSV("food_balance", data, "Missing.csv", 0)
	var sfe *SourceFormatError
	assert.ErrorAs(t, err, &sfe)

	_, err = ReadZipCSV("food_balance", []byte("not a zip"), "", 0)
	assert.ErrorAs(t, err, &sfe)
}

func buildWorkbook(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadSheet(t *testing.T) {
	data := buildWorkbook(t, "Monthly Prices", [][]any{
		{"World Bank Commodity Price Data"},
		{"Monthly prices in nominal US dollars"},
		{"Updated"},
		{""},
		{"", "Maize", "Soybeans"},
		{"", "($/mt)", "($/mt)"},
		{"1960M01", 45.5, 94.3},
	})

	f, err := ReadSheet("prices", data, "Monthly Prices", 4)
	require.NoError(t, err)
	require.Equal(t, 2, f.Len())
	assert.Equal(t, "Maize", f.Header[1])
	assert.Equal(t, "($/mt)", f.Get(0, "Maize"))
	assert.Equal(t, "1960M01", f.Rows[1][0])
	assert.Equal(t, "45.5", f.Get(1, "Maize"))

	_, err = ReadSheet("prices", data, "Annual Prices", 4)
	var sfe *SourceFormatError
	require.ErrorAs(t, err, &sfe)
	assert.Contains(t, sfe.Error(), "Annual Prices")
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	require.NoError(t, store.Put(ctx, "raw/t.csv", []byte("a,b\n1,2\n")))

	f, err := Load(ctx, store, "trade", "raw/t.csv", config.SourceConfig{})
	require.NoError(t, err)
	assert.Equal(t, "2", f.Get(0, "b"))

	_, err = Load(ctx, store, "trade", "raw/missing.csv", config.SourceConfig{})
	var sfe *SourceFormatError
	require.ErrorAs(t, err, &sfe)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
