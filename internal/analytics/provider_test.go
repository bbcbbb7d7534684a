package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureProviderWindow(t *testing.T) {
	p := NewFixtureProvider()
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	p.AddSales("S1",
		SalesRecord{Date: start.Add(-time.Hour), Category: "Footwear", Amount: 1},
		SalesRecord{Date: start, Category: "Footwear", Amount: 2},
		SalesRecord{Date: start.AddDate(0, 0, 2).Add(23 * time.Hour), Category: "Footwear", Amount: 3},
		SalesRecord{Date: start.AddDate(0, 0, 3), Category: "Footwear", Amount: 4},
	)
	p.SetStock("S1", StockLevel{Category: "Footwear", CurrentStock: 12})

	got, err := p.SalesHistory(context.Background(), "S1", start, start.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].Amount)
	assert.Equal(t, 3.0, got[1].Amount)

	stock, err := p.StockLevels(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, []StockLevel{{Category: "Footwear", CurrentStock: 12}}, stock)

	none, err := p.SalesHistory(context.Background(), "missing", start, start)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSyntheticProviderDeterministic(t *testing.T) {
	fixed := func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }
	p := &SyntheticProvider{Categories: DefaultCategories, Now: fixed}
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 29)

	a, err := p.SalesHistory(context.Background(), "HS-ROH-01", start, end)
	require.NoError(t, err)
	b, err := p.SalesHistory(context.Background(), "HS-ROH-01", start, end)
	require.NoError(t, err)
	assert.NotEmpty(t, a)
	assert.Equal(t, a, b)

	other, err := p.SalesHistory(context.Background(), "HS-CP-01", start, end)
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	for _, rec := range a {
		assert.False(t, rec.Date.Before(start))
		assert.True(t, rec.Date.Before(end.AddDate(0, 0, 1)))
		assert.Greater(t, rec.Units, 0)
		assert.Greater(t, rec.Amount, 0.0)
	}

	s1, err := p.StockLevels(context.Background(), "HS-ROH-01")
	require.NoError(t, err)
	s2, err := p.StockLevels(context.Background(), "HS-ROH-01")
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
	assert.Len(t, s1, len(DefaultCategories))
}

func TestSyntheticProviderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := NewSyntheticProvider().SalesHistory(ctx, "S1", start, start)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyntheticFeedsEstimators(t *testing.T) {
	p := NewSyntheticProvider()
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 29)
	series, err := p.SalesHistory(context.Background(), "HS-LJN-01", start, end)
	require.NoError(t, err)

	trend := NewTrendEstimator().Estimate("HS-LJN-01", series, start, end)
	assert.True(t, trend.HasData())
	assert.Equal(t, 30, trend.Days)
	assert.NotEmpty(t, trend.PeakSalesDay)

	velocity := VelocityByCategory(series, start, end)
	assert.Len(t, velocity, len(DefaultCategories))
}
