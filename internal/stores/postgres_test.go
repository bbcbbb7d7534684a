package stores

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kosarica/insight-service/internal/database"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() || os.Getenv("TESTCONTAINERS_ENABLED") == "false" {
		t.Skip("skipping Postgres integration test")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.Connect(ctx, database.PoolConfig{URL: connStr, MaxConns: 4, ConnectAttempts: 3}))
	t.Cleanup(database.Close)
	pool := database.Pool()

	require.NoError(t, database.EnsureSchema(ctx, pool))
	return pool
}

func TestPostgresSourceRoundTrip(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	src := NewPostgresSource(pool)

	n, err := src.Upsert(ctx, SeedStores())
	require.NoError(t, err)
	assert.Equal(t, len(SeedStores()), n)

	loaded, err := src.LoadStores(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, len(SeedStores()))
	for i := 1; i < len(loaded); i++ {
		assert.Less(t, loaded[i-1].StoreID, loaded[i].StoreID)
	}

	require.NoError(t, src.SetActive(ctx, "CP-ZUD-ROH", false))
	require.NoError(t, src.Relocate(ctx, "HS-ROH-01", GeoLocation{Latitude: 28.74, Longitude: 77.12, City: "New Delhi"}))

	repo := NewMemoryRepository()
	require.NoError(t, repo.Refresh(ctx, src))

	zudio, err := repo.Get("CP-ZUD-ROH")
	require.NoError(t, err)
	assert.False(t, zudio.IsActive)

	home, err := repo.Get("HS-ROH-01")
	require.NoError(t, err)
	assert.Equal(t, 28.74, home.Location.Latitude)

	assert.ErrorIs(t, src.SetActive(ctx, "missing", true), ErrStoreNotFound)
}

func TestWriteThroughPostgres(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	src := NewPostgresSource(pool)
	_, err := src.Upsert(ctx, SeedStores())
	require.NoError(t, err)

	repo := NewMemoryRepository()
	require.NoError(t, repo.Refresh(ctx, src))
	wt := NewWriteThrough(repo, src, 0)

	_, err = wt.SetActive("CP-WST-ROH", false)
	require.NoError(t, err)

	reloaded := NewMemoryRepository()
	require.NoError(t, reloaded.Refresh(ctx, src))
	s, err := reloaded.Get("CP-WST-ROH")
	require.NoError(t, err)
	assert.False(t, s.IsActive)
}
