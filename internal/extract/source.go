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
	"context"
	"path"
	"strings"

	"github.com/foodwh/foodwh-etl/internal/config"
	"github.com/foodwh/foodwh-etl/internal/frame"
	"github.com/foodwh/foodwh-etl/internal/logging"
	"github.com/foodwh/foodwh-etl/internal/storage"
)

// Load fetches the object at key and parses it according to its extension
// and src: .zip archives yield src.Entry, .xlsx workbooks yield src.Sheet,
// anything else is read as CSV.
func Load(ctx context.Context, store storage.Store, dataset, key string, src config.SourceConfig) (*frame.Frame, error) {
	data, err := store.Get(ctx, key)
	if err != nil {
		return nil, &SourceFormatError{Dataset: dataset, Reason: "fetch " + key, Err: err}
	}

	var f *frame.Frame
	switch strings.ToLower(path.Ext(key)) {
	case ".zip":
		f, err = ReadZipCSV(dataset, data, src.Entry, src.SkipRows)
	case ".xlsx":
		f, err = ReadSheet(dataset, data, src.Sheet, src.SkipRows)
	default:
		f, err = ReadCSV(dataset, bytes.NewReader(data), src.SkipRows)
	}
	if err != nil {
		return nil, err
	}

	logging.Debug().
		Str("dataset", dataset).
		Str("key", key).
		Int("rows", f.Len()).
		Int("columns", len(f.Header)).
		Msg("Extract parsed")
	return f, nil
}
