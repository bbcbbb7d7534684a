package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements create the tables read by the store source and the sales
// data provider. Every statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS stores (
		store_id      text PRIMARY KEY,
		name          text NOT NULL,
		chain         text NOT NULL,
		latitude      double precision NOT NULL CHECK (latitude BETWEEN -90 AND 90),
		longitude     double precision NOT NULL CHECK (longitude BETWEEN -180 AND 180),
		address       text,
		city          text,
		state         text,
		pincode       text,
		size_sqft     integer NOT NULL DEFAULT 0,
		opening_hours text,
		is_active     boolean NOT NULL DEFAULT true,
		updated_at    timestamptz NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS stores_chain_idx ON stores (chain)`,
	`CREATE TABLE IF NOT EXISTS sales_records (
		id        bigserial PRIMARY KEY,
		store_id  text NOT NULL REFERENCES stores(store_id) ON DELETE CASCADE,
		sold_at   timestamptz NOT NULL,
		category  text NOT NULL,
		amount    double precision NOT NULL,
		units     integer NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS sales_records_store_time_idx ON sales_records (store_id, sold_at)`,
	`CREATE TABLE IF NOT EXISTS inventory_levels (
		store_id      text NOT NULL REFERENCES stores(store_id) ON DELETE CASCADE,
		category      text NOT NULL,
		current_stock integer NOT NULL,
		updated_at    timestamptz NOT NULL DEFAULT NOW(),
		PRIMARY KEY (store_id, category)
	)`,
}

// EnsureSchema creates the service tables if they do not exist.
func EnsureSchema(ctx context.Context, p *pgxpool.Pool) error {
	if p == nil {
		return ErrNotConnected
	}
	for _, stmt := range schemaStatements {
		if _, err := p.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
