//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodwh/foodwh-etl/internal/config"
)

func TestFSStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()

	s, err := NewFSStore(base)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(ctx, "transformed/dim_date.csv", []byte("date_id\n1\n")))

	got, err := s.Get(ctx, "transformed/dim_date.csv")
	require.NoError(t, err)
	assert.Equal(t, "date_id\n1\n", string(got))

	onDisk, err := os.ReadFile(filepath.Join(base, "transformed", "dim_date.csv"))
	require.NoError(t, err)
	assert.Equal(t, got, onDisk)

	entries, err := os.ReadDir(filepath.Join(base, "transformed"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestFSStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "a.csv", []byte("old")))
	require.NoError(t, s.Put(ctx, "a.csv", []byte("new")))

	got, err := s.Get(ctx, "a.csv")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestFSStoreNotFound(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "raw/missing.zip")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFSStoreRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	tests := []string{
		"../outside.csv",
		"raw/../../outside.csv",
		"/etc/passwd",
		".",
	}
	for _, key := range tests {
		t.Run(key, func(t *testing.T) {
			assert.Error(t, s.Put(ctx, key, []byte("x")))
			_, err := s.Get(ctx, key)
			assert.Error(t, err)
		})
	}
}

func TestMemStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	data := []byte("abc")
	require.NoError(t, s.Put(ctx, "b", data))
	require.NoError(t, s.Put(ctx, "a", []byte("1")))
	data[0] = 'z'

	got, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got), "stored bytes are copied")

	assert.Equal(t, []string{"a", "b"}, s.Keys())

	_, err = s.Get(ctx, "c")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StorageConfig{Kind: config.StorageMem})
	require.NoError(t, err)
	assert.IsType(t, &MemStore{}, s)

	s, err = Open(ctx, config.StorageConfig{Kind: config.StorageFS, LocalPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FSStore{}, s)

	_, err = Open(ctx, config.StorageConfig{Kind: "gcs"})
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", contentType("transformed/fact_prices.csv"))
	assert.Equal(t, "application/zip", contentType("raw/WB/wb_population.zip"))
	assert.Equal(t, "application/octet-stream", contentType("raw/blob"))
}
