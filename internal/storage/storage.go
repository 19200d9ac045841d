//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package storage provides the object stores holding the raw, resources
// and transformed zones of the warehouse.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/foodwh/foodwh-etl/internal/config"
)

// ErrNotFound is returned when a key does not exist in a store.
var ErrNotFound = errors.New("object not found")

// Store reads and writes whole objects by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

// Open creates the store selected by cfg.Kind.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Kind {
	case config.StorageFS:
		return NewFSStore(cfg.LocalPath)
	case config.StorageS3:
		return NewS3Store(ctx, cfg)
	case config.StorageMem:
		return NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage kind: %s", cfg.Kind)
	}
}
