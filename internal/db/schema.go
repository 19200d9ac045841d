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
	"fmt"

	"github.com/foodwh/foodwh-etl/internal/logging"
	"github.com/foodwh/foodwh-etl/internal/warehouse"
)

// Schema SQL for the star schema. Column order matches the transformed
// files so COPY can use them unchanged.
const createSchemaSQL = `
-- Country dimension
CREATE TABLE IF NOT EXISTS dim_country (
    country_id     INTEGER PRIMARY KEY,
    country_name   VARCHAR(100) NOT NULL,
    continent_name VARCHAR(50)
);

-- Product dimension; product_id 0 is the N/A sentinel
CREATE TABLE IF NOT EXISTS dim_product (
    product_id   INTEGER PRIMARY KEY,
    product_name VARCHAR(50) NOT NULL UNIQUE
);

-- Date dimension, one row per month
CREATE TABLE IF NOT EXISTS dim_date (
    date_id    INTEGER PRIMARY KEY,
    all_date   DATE NOT NULL UNIQUE,
    year       INTEGER NOT NULL,
    month      INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
    month_name VARCHAR(20),
    quarter    INTEGER CHECK (quarter BETWEEN 1 AND 4)
);

-- Annual metrics per country and product
CREATE TABLE IF NOT EXISTS fact_metrics (
    fact_id     INTEGER PRIMARY KEY,
    date_id     INTEGER NOT NULL REFERENCES dim_date(date_id),
    product_id  INTEGER NOT NULL REFERENCES dim_product(product_id),
    country_id  INTEGER NOT NULL REFERENCES dim_country(country_id),
    metric_type VARCHAR(20) NOT NULL
        CHECK (metric_type IN ('production', 'consumption', 'import', 'export', 'population')),
    value       DECIMAL(14,2) CHECK (value >= 0)
);

-- Monthly commodity prices
CREATE TABLE IF NOT EXISTS fact_prices (
    price_id                INTEGER PRIMARY KEY,
    date_id                 INTEGER NOT NULL REFERENCES dim_date(date_id),
    product_id              INTEGER NOT NULL REFERENCES dim_product(product_id),
    price_usd_per_ton       DECIMAL(12,2) NOT NULL CHECK (price_usd_per_ton >= 0),
    avg_annual_price        DECIMAL(12,2) NOT NULL CHECK (avg_annual_price >= 0),
    price_annual_change_pct DECIMAL(10,2),
    price_month_change_pct  DECIMAL(10,2)
);

-- Indexes for the usual slice-and-dice joins
CREATE INDEX IF NOT EXISTS idx_fact_metrics_date ON fact_metrics(date_id);
CREATE INDEX IF NOT EXISTS idx_fact_metrics_country ON fact_metrics(country_id);
CREATE INDEX IF NOT EXISTS idx_fact_metrics_product_type ON fact_metrics(product_id, metric_type);
CREATE INDEX IF NOT EXISTS idx_fact_prices_date ON fact_prices(date_id);
CREATE INDEX IF NOT EXISTS idx_fact_prices_product ON fact_prices(product_id);
`

// Drop schema SQL
const dropSchemaSQL = `
DROP TABLE IF EXISTS fact_prices CASCADE;
DROP TABLE IF EXISTS fact_metrics CASCADE;
DROP TABLE IF EXISTS dim_date CASCADE;
DROP TABLE IF EXISTS dim_product CASCADE;
DROP TABLE IF EXISTS dim_country CASCADE;
`

// CreateSchema creates the star schema and the metadata table. With
// dropExisting the warehouse tables are dropped first.
func CreateSchema(ctx context.Context, db DB, dropExisting bool) error {
	if dropExisting {
		if err := DropSchema(ctx, db); err != nil {
			return err
		}
	}
	if _, err := db.Exec(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Exec(ctx, createMetadataTableSQL); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	logging.Info().
		Int("tables", len(warehouse.Tables())).
		Bool("drop_existing", dropExisting).
		Msg("Schema created")
	return nil
}

// DropSchema drops the warehouse tables and the metadata table.
func DropSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, dropSchemaSQL); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return DropMetadata(ctx, db)
}

// SchemaExists reports whether every warehouse table exists.
func SchemaExists(ctx context.Context, db DB) (bool, error) {
	names := make([]string, 0, len(warehouse.Tables()))
	for _, t := range warehouse.Tables() {
		names = append(names, t.Name)
	}

	var count int
	err := db.QueryRow(ctx, `
        SELECT count(*) FROM information_schema.tables
        WHERE table_schema = current_schema() AND table_name = ANY($1)
    `, names).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == len(names), nil
}
