//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package extract parses raw government extracts (CSV, zipped CSV and
// spreadsheets) into frames.
package extract

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/foodwh/foodwh-etl/internal/frame"
	"github.com/foodwh/foodwh-etl/internal/logging"
)

// ReadCSV parses delimited text into a frame. The first skipRows physical
// lines are discarded before the header row. A leading byte-order mark is
// removed. Invalid UTF-8 is replaced with U+FFFD and reported as a warning.
func ReadCSV(dataset string, r io.Reader, skipRows int) (*frame.Frame, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	br := bufio.NewReader(decoded)

	for i := 0; i < skipRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, Errorf(dataset, "fewer than %d metadata rows", skipRows)
			}
			return nil, &SourceFormatError{Dataset: dataset, Reason: "read failed", Err: err}
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, Errorf(dataset, "no header row")
	}
	if err != nil {
		return nil, &SourceFormatError{Dataset: dataset, Reason: "malformed header", Err: err}
	}

	var (
		rows         [][]string
		invalid      int
		firstInvalid int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &SourceFormatError{Dataset: dataset, Reason: "malformed row", Err: err}
		}
		if hasReplacement(rec) {
			if invalid == 0 {
				line, _ := cr.FieldPos(0)
				firstInvalid = skipRows + line
			}
			invalid++
		}
		rows = append(rows, rec)
	}

	if invalid > 0 {
		logging.Warn().
			Str("dataset", dataset).
			Int("rows", invalid).
			Int("first_line", firstInvalid).
			Msg("Replaced invalid UTF-8 in extract")
	}
	return frame.New(header, rows), nil
}

func hasReplacement(rec []string) bool {
	for _, v := range rec {
		if strings.ContainsRune(v, '\uFFFD') {
			return true
		}
	}
	return false
}

// ReadZipCSV parses a CSV member of a ZIP archive. An empty entry selects
// the first .csv member whose name does not contain "Metadata".
func ReadZipCSV(dataset string, data []byte, entry string, skipRows int) (*frame.Frame, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &SourceFormatError{Dataset: dataset, Reason: "not a zip archive", Err: err}
	}

	f, err := findEntry(zr, entry)
	if err != nil {
		return nil, &SourceFormatError{Dataset: dataset, Reason: "archive entry", Err: err}
	}

	rc, err := f.Open()
	if err != nil {
		return nil, &SourceFormatError{Dataset: dataset, Reason: "open " + f.Name, Err: err}
	}
	defer rc.Close()

	return ReadCSV(dataset, rc, skipRows)
}

func findEntry(zr *zip.Reader, entry string) (*zip.File, error) {
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if entry != "" {
			if f.Name == entry || path.Base(f.Name) == entry {
				return f, nil
			}
			continue
		}
		if strings.EqualFold(path.Ext(f.Name), ".csv") && !strings.Contains(path.Base(f.Name), "Metadata") {
			return f, nil
		}
	}
	if entry != "" {
		return nil, fmt.Errorf("%s not found", entry)
	}
	return nil, fmt.Errorf("no data csv found")
}
