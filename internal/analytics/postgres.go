package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProvider reads sales_records and inventory_levels.
type PostgresProvider struct {
	pool *pgxpool.Pool
}

// NewPostgresProvider creates a provider backed by the given pool.
func NewPostgresProvider(pool *pgxpool.Pool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

// SalesHistory returns sale lines for the store between start and end inclusive.
func (p *PostgresProvider) SalesHistory(ctx context.Context, storeID string, start, end time.Time) ([]SalesRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT sold_at, category, amount, units
		FROM sales_records
		WHERE store_id = $1 AND sold_at >= $2 AND sold_at < $3
		ORDER BY sold_at
	`, storeID, dayOf(start), dayOf(end).AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to query sales for %s: %w", storeID, err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SalesRecord, error) {
		var r SalesRecord
		err := row.Scan(&r.Date, &r.Category, &r.Amount, &r.Units)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan sales for %s: %w", storeID, err)
	}
	return records, nil
}

// StockLevels returns current stock per category ordered by category.
func (p *PostgresProvider) StockLevels(ctx context.Context, storeID string) ([]StockLevel, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT category, current_stock
		FROM inventory_levels
		WHERE store_id = $1
		ORDER BY category
	`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock for %s: %w", storeID, err)
	}

	levels, err := pgx.CollectRows(rows, pgx.RowToStructByPos[StockLevel])
	if err != nil {
		return nil, fmt.Errorf("failed to scan stock for %s: %w", storeID, err)
	}
	return levels, nil
}

// InsertSales writes sale lines with COPY and returns the row count.
func (p *PostgresProvider) InsertSales(ctx context.Context, storeID string, records []SalesRecord) (int64, error) {
	n, err := p.pool.CopyFrom(ctx,
		pgx.Identifier{"sales_records"},
		[]string{"store_id", "sold_at", "category", "amount", "units"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{storeID, r.Date, r.Category, r.Amount, r.Units}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy sales for %s: %w", storeID, err)
	}
	return n, nil
}

// UpsertStock writes current stock levels for a store.
func (p *PostgresProvider) UpsertStock(ctx context.Context, storeID string, levels []StockLevel) error {
	batch := &pgx.Batch{}
	for _, l := range levels {
		batch.Queue(`
			INSERT INTO inventory_levels (store_id, category, current_stock, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (store_id, category) DO UPDATE SET
				current_stock = EXCLUDED.current_stock,
				updated_at = NOW()
		`, storeID, l.Category, l.CurrentStock)
	}
	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert stock for %s: %w", storeID, err)
	}
	return nil
}
