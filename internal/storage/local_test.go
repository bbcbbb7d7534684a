package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportKey(t *testing.T) {
	at := time.Date(2026, 10, 16, 9, 5, 7, 0, time.FixedZone("IST", 5*3600+1800))
	assert.Equal(t, "reports/2026-10-16/insights-033507.json", ReportKey(at))
	assert.Equal(t, "reports/2026-10-16/", ReportDayPrefix(at))
}

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key := ReportKey(time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC))
	md := &Metadata{ContentType: "application/json", StoreCount: 5, InsightCount: 12}
	require.NoError(t, s.Put(ctx, key, []byte(`{"ok":true}`), md))

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(got))

	info, err := s.GetInfo(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(11), info.Size)
	assert.Equal(t, Checksum([]byte(`{"ok":true}`)), info.Checksum)
	require.NotNil(t, info.Metadata)
	assert.Equal(t, 12, info.Metadata.InsightCount)

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetInfo(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(ctx, key), "deleting twice is fine")
}

func TestLocalStorageList(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	keys := []string{
		"reports/2026-10-16/insights-120000.json",
		"reports/2026-10-15/insights-230000.json",
		"reports/2026-10-16/insights-060000.json",
		"other/readme.txt",
	}
	for _, k := range keys {
		require.NoError(t, s.Put(ctx, k, []byte("x"), &Metadata{}))
	}

	all, err := s.List(ctx, "reports/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"reports/2026-10-15/insights-230000.json",
		"reports/2026-10-16/insights-060000.json",
		"reports/2026-10-16/insights-120000.json",
	}, all)

	day, err := s.List(ctx, "reports/2026-10-16/")
	require.NoError(t, err)
	assert.Len(t, day, 2)

	none, err := s.List(ctx, "missing/")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLocalStorageKeyCannotEscape(t *testing.T) {
	base := t.TempDir()
	s, err := NewLocalStorage(filepath.Join(base, "root"))
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), "../../escape.json", []byte("x"), nil))
	_, err = os.Stat(filepath.Join(base, "escape.json"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "root", "escape.json"))
	assert.NoError(t, err)
}
