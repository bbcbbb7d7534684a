package stores

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSource loads and persists the store catalogue in the stores table.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a source backed by the given pool.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// LoadStores returns every store ordered by store_id.
func (p *PostgresSource) LoadStores(ctx context.Context) ([]Store, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT store_id, name, chain, latitude, longitude,
		       COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(pincode, ''),
		       size_sqft, COALESCE(opening_hours, ''), is_active, updated_at
		FROM stores
		ORDER BY store_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	var out []Store
	for rows.Next() {
		var s Store
		if err := rows.Scan(
			&s.StoreID, &s.Name, &s.Chain,
			&s.Location.Latitude, &s.Location.Longitude,
			&s.Location.Address, &s.Location.City, &s.Location.State, &s.Location.Pincode,
			&s.SizeSqft, &s.OpeningHours, &s.IsActive, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stores: %w", err)
	}
	return out, nil
}

// Upsert inserts or updates stores in one batch and returns the number written.
func (p *PostgresSource) Upsert(ctx context.Context, list []Store) (int, error) {
	batch := &pgx.Batch{}
	for _, s := range list {
		if err := s.Validate(); err != nil {
			return 0, err
		}
		batch.Queue(`
			INSERT INTO stores (store_id, name, chain, latitude, longitude, address, city, state, pincode,
			                    size_sqft, opening_hours, is_active, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
			ON CONFLICT (store_id) DO UPDATE SET
				name = EXCLUDED.name,
				chain = EXCLUDED.chain,
				latitude = EXCLUDED.latitude,
				longitude = EXCLUDED.longitude,
				address = EXCLUDED.address,
				city = EXCLUDED.city,
				state = EXCLUDED.state,
				pincode = EXCLUDED.pincode,
				size_sqft = EXCLUDED.size_sqft,
				opening_hours = EXCLUDED.opening_hours,
				is_active = EXCLUDED.is_active,
				updated_at = NOW()
		`, s.StoreID, s.Name, s.Chain, s.Location.Latitude, s.Location.Longitude,
			s.Location.Address, s.Location.City, s.Location.State, s.Location.Pincode,
			s.SizeSqft, s.OpeningHours, s.IsActive)
	}

	br := p.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range list {
		if _, err := br.Exec(); err != nil {
			return i, fmt.Errorf("failed to upsert store %s: %w", list[i].StoreID, err)
		}
	}
	return len(list), nil
}

// SetActive updates the active flag of one store.
func (p *PostgresSource) SetActive(ctx context.Context, storeID string, active bool) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE stores SET is_active = $2, updated_at = NOW() WHERE store_id = $1
	`, storeID, active)
	if err != nil {
		return fmt.Errorf("failed to update store %s: %w", storeID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrStoreNotFound, storeID)
	}
	return nil
}

// Relocate replaces the stored location of one store.
func (p *PostgresSource) Relocate(ctx context.Context, storeID string, loc GeoLocation) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE stores
		SET latitude = $2, longitude = $3, address = $4, city = $5, state = $6, pincode = $7, updated_at = NOW()
		WHERE store_id = $1
	`, storeID, loc.Latitude, loc.Longitude, loc.Address, loc.City, loc.State, loc.Pincode)
	if err != nil {
		return fmt.Errorf("failed to relocate store %s: %w", storeID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrStoreNotFound, storeID)
	}
	return nil
}
