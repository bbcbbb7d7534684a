// Package database owns the shared Postgres pool and the service schema.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// ErrNotConnected is returned when the pool has not been opened.
var ErrNotConnected = errors.New("database not initialized")

var (
	pool   *pgxpool.Pool
	poolMu sync.RWMutex
)

// PoolConfig sizes the connection pool and bounds the initial connect.
type PoolConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	// ConnectAttempts is how many pings are tried before giving up. Zero means one.
	ConnectAttempts int
	// RetryDelay is the wait after the first failed ping; it doubles per attempt.
	RetryDelay time.Duration
}

func (c PoolConfig) poolConfig() (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(c.URL)
	if err != nil {
		return nil, fmt.Errorf("error parsing database config: %w", err)
	}
	if c.MaxConns > 0 {
		pc.MaxConns = int32(c.MaxConns)
	}
	if c.MinConns > 0 {
		pc.MinConns = int32(c.MinConns)
	}
	if c.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = c.MaxConnLifetime
	}
	if c.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = c.MaxConnIdleTime
	}
	pc.HealthCheckPeriod = time.Minute
	return pc, nil
}

// Connect opens the shared pool and pings it, retrying while the server comes
// up. Calling Connect with a pool already open is a no-op.
func Connect(ctx context.Context, cfg PoolConfig) error {
	poolMu.Lock()
	defer poolMu.Unlock()
	if pool != nil {
		return nil
	}

	pc, err := cfg.poolConfig()
	if err != nil {
		return err
	}
	newPool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return fmt.Errorf("error creating connection pool: %w", err)
	}

	attempts := max(1, cfg.ConnectAttempts)
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	for attempt := 1; ; attempt++ {
		err = newPool.Ping(ctx)
		if err == nil {
			break
		}
		if attempt >= attempts {
			newPool.Close()
			return fmt.Errorf("error connecting to database after %d attempts: %w", attempt, err)
		}
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("Database not ready")
		select {
		case <-ctx.Done():
			newPool.Close()
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	pool = newPool
	log.Debug().Int32("max_conns", pc.MaxConns).Msg("Database pool opened")
	return nil
}

// Close closes the pool. Connect may be called again afterwards.
func Close() {
	poolMu.Lock()
	defer poolMu.Unlock()
	if pool != nil {
		pool.Close()
		pool = nil
	}
}

// Pool returns the shared pool, or nil before Connect.
func Pool() *pgxpool.Pool {
	poolMu.RLock()
	defer poolMu.RUnlock()
	return pool
}

// Status pings the pool.
func Status(ctx context.Context) error {
	p := Pool()
	if p == nil {
		return ErrNotConnected
	}
	return p.Ping(ctx)
}
