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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zeebo/xxh3"

	"github.com/foodwh/foodwh-etl/internal/config"
	"github.com/foodwh/foodwh-etl/internal/logging"
	"github.com/foodwh/foodwh-etl/internal/storage"
	"github.com/foodwh/foodwh-etl/internal/warehouse"
	"github.com/foodwh/foodwh-etl/pkg/version"
)

// File is a transformed table file ready to be loaded.
type File struct {
	Table warehouse.Table
	Data  []byte
}

// Checksum returns the xxh3 hash of the file contents as hex.
func (f File) Checksum() string {
	return fmt.Sprintf("%016x", xxh3.Hash(f.Data))
}

// TableResult is the outcome of loading one table.
type TableResult struct {
	Table    string
	Rows     int64
	Checksum string
}

// Result summarizes a completed load.
type Result struct {
	Tables   []TableResult
	LoadedAt time.Time
	Elapsed  time.Duration
}

// ReadFiles fetches every warehouse table file from the transformed zone,
// in foreign key order.
func ReadFiles(ctx context.Context, store storage.Store, cfg config.StorageConfig) ([]File, error) {
	tables := warehouse.Tables()
	files := make([]File, 0, len(tables))
	for _, t := range tables {
		data, err := store.Get(ctx, cfg.TransformedKey(t.File()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", t.Name, err)
		}
		files = append(files, File{Table: t, Data: data})
	}
	return files, nil
}

// orderFiles checks that files hold exactly the warehouse tables with the
// expected headers and returns them in foreign key order.
func orderFiles(files []File) ([]File, error) {
	byName := make(map[string]File, len(files))
	for _, f := range files {
		if _, ok := warehouse.Lookup(f.Table.Name); !ok {
			return nil, fmt.Errorf("%s is not a warehouse table", f.Table.Name)
		}
		if _, dup := byName[f.Table.Name]; dup {
			return nil, fmt.Errorf("%s given more than once", f.Table.Name)
		}
		if err := checkHeader(f); err != nil {
			return nil, err
		}
		byName[f.Table.Name] = f
	}

	ordered := make([]File, 0, len(files))
	var missing []string
	for _, t := range warehouse.Tables() {
		f, ok := byName[t.Name]
		if !ok {
			missing = append(missing, t.Name)
			continue
		}
		ordered = append(ordered, f)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing table files: %s", strings.Join(missing, ", "))
	}
	return ordered, nil
}

// checkHeader requires the first line of the file to name the table columns
// in order, since COPY maps fields by position.
func checkHeader(f File) error {
	line, err := bufio.NewReader(bytes.NewReader(f.Data)).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("%s: file is empty", f.Table.Name)
	}
	got := strings.Split(strings.TrimRight(line, "\r\n"), ",")
	if !slices.Equal(got, f.Table.Columns) {
		return fmt.Errorf("%s: header %v does not match columns %v", f.Table.Name, got, f.Table.Columns)
	}
	return nil
}

// truncateSQL empties every warehouse table in one statement so foreign
// keys between them do not block it.
func truncateSQL(tables []warehouse.Table) string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = pgx.Identifier{t.Name}.Sanitize()
	}
	return "TRUNCATE TABLE " + strings.Join(names, ", ") + " RESTART IDENTITY"
}

// copySQL returns the COPY statement for a table file with a header row.
func copySQL(t warehouse.Table) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = pgx.Identifier{c}.Sanitize()
	}
	return fmt.Sprintf("COPY %s (%s) FROM STDIN WITH (FORMAT csv, HEADER true)",
		pgx.Identifier{t.Name}.Sanitize(), strings.Join(cols, ", "))
}

// Load replaces the warehouse contents with files in a single transaction:
// every table is truncated, then each file is copied in foreign key order
// and the load is recorded in the metadata table. On any error the
// transaction is rolled back and the previous contents remain.
func Load(ctx context.Context, pool *pgxpool.Pool, files []File) (*Result, error) {
	start := time.Now()

	ordered, err := orderFiles(files)
	if err != nil {
		return nil, err
	}
	tables := make([]warehouse.Table, len(ordered))
	for i, f := range ordered {
		tables[i] = f.Table
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin load transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	previous, err := previousLoadedAt(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to read previous load: %w", err)
	}
	if previous != "" {
		logging.Info().
			Str("previous_loaded_at", previous).
			Msg("Replacing previous load")
	}

	if _, err := tx.Exec(ctx, truncateSQL(tables)); err != nil {
		return nil, fmt.Errorf("failed to truncate warehouse tables: %w", err)
	}

	result := &Result{LoadedAt: start.UTC()}
	metadata := map[string]string{
		MetaVersion:  version.Short(),
		MetaLoadedAt: result.LoadedAt.Format(time.RFC3339),
	}

	for _, f := range ordered {
		tag, err := tx.Conn().PgConn().CopyFrom(ctx, bytes.NewReader(f.Data), copySQL(f.Table))
		if err != nil {
			return nil, fmt.Errorf("failed to copy %s: %w", f.Table.Name, err)
		}

		tr := TableResult{Table: f.Table.Name, Rows: tag.RowsAffected(), Checksum: f.Checksum()}
		result.Tables = append(result.Tables, tr)
		metadata[RowsKey(tr.Table)] = fmt.Sprintf("%d", tr.Rows)
		metadata[ChecksumKey(tr.Table)] = tr.Checksum

		logging.Info().
			Str("table", tr.Table).
			Int64("rows", tr.Rows).
			Str("checksum", tr.Checksum).
			Msg("Table loaded")
	}

	if err := SaveMetadata(ctx, tx, metadata); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit load: %w", err)
	}

	result.Elapsed = time.Since(start)
	logging.Info().
		Int("tables", len(result.Tables)).
		Dur("elapsed", result.Elapsed).
		Msg("Load committed")
	return result, nil
}
