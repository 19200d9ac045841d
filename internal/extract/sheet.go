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
	"bytes"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/foodwh/foodwh-etl/internal/frame"
)

// ReadSheet parses one worksheet of an xlsx workbook. The first skipRows
// sheet rows are discarded and the next row is the header. Cells are read
// unformatted so numbers keep full precision.
func ReadSheet(dataset string, data []byte, sheet string, skipRows int) (*frame.Frame, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &SourceFormatError{Dataset: dataset, Reason: "not an xlsx workbook", Err: err}
	}
	defer f.Close()

	if !slices.Contains(f.GetSheetList(), sheet) {
		return nil, Errorf(dataset, "sheet %q not found", sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &SourceFormatError{Dataset: dataset, Reason: "read sheet " + sheet, Err: err}
	}
	if len(rows) <= skipRows {
		return nil, Errorf(dataset, "sheet %q has no header after %d rows", sheet, skipRows)
	}

	return frame.New(rows[skipRows], rows[skipRows+1:]), nil
}
