//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

// Country is a catalogue entry used for every generated extract.
type Country struct {
	FAOCode   int
	M49       string
	Name      string
	ISO3      string
	Continent string

	// WBName is the World Bank spelling when it differs from Name.
	WBName string

	// Population is the rough starting population used for drift.
	Population float64
}

// Countries is the fixed country catalogue, in extract order.
var Countries = []Country{
	{FAOCode: 2, M49: "004", Name: "Afghanistan", ISO3: "AFG", Continent: "Asia", Population: 28e6},
	{FAOCode: 3, M49: "008", Name: "Albania", ISO3: "ALB", Continent: "Europe", Population: 2.9e6},
	{FAOCode: 4, M49: "012", Name: "Algeria", ISO3: "DZA", Continent: "Africa", Population: 36e6},
	{FAOCode: 9, M49: "032", Name: "Argentina", ISO3: "ARG", Continent: "Americas", Population: 41e6},
	{FAOCode: 10, M49: "036", Name: "Australia", ISO3: "AUS", Continent: "Oceania", Population: 22e6},
	{FAOCode: 21, M49: "076", Name: "Brazil", ISO3: "BRA", Continent: "Americas", Population: 196e6},
	{FAOCode: 33, M49: "124", Name: "Canada", ISO3: "CAN", Continent: "Americas", Population: 34e6},
	{FAOCode: 351, M49: "156", Name: "China", ISO3: "CHN", Continent: "Asia", Population: 1.34e9},
	{FAOCode: 68, M49: "250", Name: "France", ISO3: "FRA", Continent: "Europe", Population: 65e6},
	{FAOCode: 79, M49: "276", Name: "Germany", ISO3: "DEU", Continent: "Europe", Population: 81e6},
	{FAOCode: 100, M49: "356", Name: "India", ISO3: "IND", Continent: "Asia", Population: 1.23e9},
	{FAOCode: 110, M49: "392", Name: "Japan", ISO3: "JPN", Continent: "Asia", Population: 128e6},
	{FAOCode: 138, M49: "484", Name: "Mexico", ISO3: "MEX", Continent: "Americas", Population: 114e6},
	{FAOCode: 159, M49: "566", Name: "Nigeria", ISO3: "NGA", Continent: "Africa", Population: 160e6},
	{FAOCode: 202, M49: "710", Name: "South Africa", ISO3: "ZAF", Continent: "Africa", Population: 51e6},
	{FAOCode: 231, M49: "840", Name: "United States of America", ISO3: "USA", Continent: "Americas", WBName: "United States", Population: 309e6},
}

// PopulationName returns the name the population extract uses.
func (c Country) PopulationName() string {
	if c.WBName != "" {
		return c.WBName
	}
	return c.Name
}

// aggregateArea is a regional total present in every FAOSTAT extract. Its
// code has no continent, so the country dimension excludes it.
var aggregateArea = Country{FAOCode: 5000, M49: "001", Name: "World", ISO3: "WLD", Population: 7e9}

// Item is a FAOSTAT item with its typical magnitude in tonnes.
type Item struct {
	Code int
	Name string
	Base float64
}

// productionItems appear in the value-of-production extract.
var productionItems = []Item{
	{Code: 15, Name: "Wheat", Base: 20e6},
	{Code: 56, Name: "Maize (corn)", Base: 30e6},
	{Code: 27, Name: "Rice", Base: 25e6},
	{Code: 236, Name: "Soya beans", Base: 10e6},
	{Code: 116, Name: "Potatoes", Base: 8e6},
	{Code: 44, Name: "Barley", Base: 5e6},
}

// foodBalanceItems appear in the food balance sheets extract.
var foodBalanceItems = []Item{
	{Code: 2511, Name: "Wheat and products", Base: 20e3},
	{Code: 2514, Name: "Maize and products", Base: 30e3},
	{Code: 2807, Name: "Rice and products", Base: 25e3},
	{Code: 2555, Name: "Soyabeans", Base: 10e3},
	{Code: 2531, Name: "Potatoes and products", Base: 8e3},
	{Code: 2533, Name: "Sweet potatoes", Base: 2e3},
	{Code: 2513, Name: "Barley and products", Base: 5e3},
}

// tradeItems appear in the crops and livestock trade extract.
var tradeItems = []Item{
	{Code: 15, Name: "Wheat", Base: 2e6},
	{Code: 56, Name: "Maize (corn)", Base: 3e6},
	{Code: 446, Name: "Green corn (maize)", Base: 50e3},
	{Code: 27, Name: "Rice", Base: 1e6},
	{Code: 236, Name: "Soya beans", Base: 2e6},
	{Code: 116, Name: "Potatoes", Base: 500e3},
	{Code: 44, Name: "Barley", Base: 400e3},
}

// Element is a FAOSTAT element (measure) with its unit.
type Element struct {
	Code int
	Name string
	Unit string
}

var (
	productionElements  = []Element{{Code: 152, Name: "Gross Production Value (constant 2014-2016 thousand I$)", Unit: "1000 Int$"}}
	foodBalanceElements = []Element{
		{Code: 5510, Name: "Production", Unit: "1000 t"},
		{Code: 5142, Name: "Food", Unit: "1000 t"},
		{Code: 5611, Name: "Import quantity", Unit: "1000 t"},
	}
	tradeElements = []Element{
		{Code: 5610, Name: "Import quantity", Unit: "t"},
		{Code: 5910, Name: "Export quantity", Unit: "t"},
		{Code: 5622, Name: "Import value", Unit: "1000 USD"},
	}
)

// Commodity is a column of the monthly price sheet.
type Commodity struct {
	Name string
	Unit string
	Base float64
}

var commodities = []Commodity{
	{Name: "Crude oil, average", Unit: "($/bbl)", Base: 60},
	{Name: "Maize", Unit: "($/mt)", Base: 180},
	{Name: "Soybeans", Unit: "($/mt)", Base: 400},
	{Name: "Rice, Thai 5%", Unit: "($/mt)", Base: 420},
	{Name: "Wheat, US HRW", Unit: "($/mt)", Base: 250},
}
