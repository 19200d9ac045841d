//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/foodwh/foodwh-etl/internal/warehouse"
)

// Status describes the last committed load.
type Status struct {
	Version  string
	LoadedAt string
	Tables   []TableResult
}

// ReadStatus returns the last load recorded in the metadata table, or nil
// if the warehouse has never been loaded.
func ReadStatus(ctx context.Context, db DB) (*Status, error) {
	exists, err := MetadataExists(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to check metadata table: %w", err)
	}
	if !exists {
		return nil, nil
	}

	metadata, err := GetAllMetadata(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	return statusFromMetadata(metadata)
}

// statusFromMetadata rebuilds a Status from metadata entries, listing
// tables in load order.
func statusFromMetadata(metadata map[string]string) (*Status, error) {
	loadedAt, ok := metadata[MetaLoadedAt]
	if !ok {
		return nil, nil
	}

	s := &Status{Version: metadata[MetaVersion], LoadedAt: loadedAt}
	for _, t := range warehouse.Tables() {
		raw, ok := metadata[RowsKey(t.Name)]
		if !ok {
			continue
		}
		rows, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid row count for %s: %q", t.Name, raw)
		}
		s.Tables = append(s.Tables, TableResult{
			Table:    t.Name,
			Rows:     rows,
			Checksum: metadata[ChecksumKey(t.Name)],
		})
	}
	return s, nil
}

// previousLoadedAt returns the loaded_at of the last load, or "" if there
// is none.
func previousLoadedAt(ctx context.Context, db DB) (string, error) {
	exists, err := MetadataExists(ctx, db)
	if err != nil || !exists {
		return "", err
	}
	value, err := GetMetadataValue(ctx, db, MetaLoadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return value, err
}
