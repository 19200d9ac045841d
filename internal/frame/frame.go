//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package frame holds raw extracts as row-oriented string tables.
package frame

import (
	"fmt"
	"regexp"
	"strings"
)

// Frame is a header plus rows of string cells. Every row has exactly
// len(Header) cells.
type Frame struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// New builds a frame, padding short rows and truncating long ones to the
// header width. The first occurrence of a duplicated header name wins.
func New(header []string, rows [][]string) *Frame {
	f := &Frame{
		Header: header,
		Rows:   make([][]string, 0, len(rows)),
		index:  make(map[string]int, len(header)),
	}
	for i, h := range header {
		if _, ok := f.index[h]; !ok {
			f.index[h] = i
		}
	}
	for _, r := range rows {
		f.Rows = append(f.Rows, fit(r, len(header)))
	}
	return f
}

func fit(row []string, width int) []string {
	switch {
	case len(row) == width:
		return row
	case len(row) > width:
		return row[:width]
	default:
		out := make([]string, width)
		copy(out, row)
		return out
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Col returns the index of a column, or -1 if absent.
func (f *Frame) Col(name string) int {
	if i, ok := f.index[name]; ok {
		return i
	}
	return -1
}

// Has reports whether every named column is present.
func (f *Frame) Has(names ...string) bool {
	return len(f.Missing(names...)) == 0
}

// Missing returns the named columns that are absent, in argument order.
func (f *Frame) Missing(names ...string) []string {
	var missing []string
	for _, n := range names {
		if f.Col(n) < 0 {
			missing = append(missing, n)
		}
	}
	return missing
}

// Require returns an error naming every absent column.
func (f *Frame) Require(names ...string) error {
	if missing := f.Missing(names...); len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Get returns the cell of row i in the named column, or "" if the column
// is absent.
func (f *Frame) Get(i int, name string) string {
	c := f.Col(name)
	if c < 0 {
		return ""
	}
	return f.Rows[i][c]
}

// Filter returns a frame holding the rows for which keep returns true.
func (f *Frame) Filter(keep func(row []string) bool) *Frame {
	rows := make([][]string, 0, len(f.Rows))
	for _, r := range f.Rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return &Frame{Header: f.Header, Rows: rows, index: f.index}
}

// MatchColumns returns the columns whose name matches re, in header order.
func (f *Frame) MatchColumns(re *regexp.Regexp) []string {
	var cols []string
	for _, h := range f.Header {
		if re.MatchString(h) {
			cols = append(cols, h)
		}
	}
	return cols
}

// Cell is one unpivoted value.
type Cell struct {
	// Row is the index of the source row.
	Row int

	// Variable is the name of the source column.
	Variable string

	Value string
}

// Melt unpivots the given value columns into one Cell per (column, row).
// Cells are grouped by column in argument order, rows in source order
// within each column. Absent columns are skipped.
func (f *Frame) Melt(valueCols []string) []Cell {
	cells := make([]Cell, 0, len(f.Rows)*len(valueCols))
	for _, name := range valueCols {
		c := f.Col(name)
		if c < 0 {
			continue
		}
		for r, row := range f.Rows {
			cells = append(cells, Cell{Row: r, Variable: name, Value: row[c]})
		}
	}
	return cells
}

// TrimHeader strips surrounding whitespace from every header name.
func (f *Frame) TrimHeader() *Frame {
	header := make([]string, len(f.Header))
	for i, h := range f.Header {
		header[i] = strings.TrimSpace(h)
	}
	return New(header, f.Rows)
}
