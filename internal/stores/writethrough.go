package stores

import (
	"context"
	"fmt"
	"time"
)

// Writer persists single-store edits.
type Writer interface {
	SetActive(ctx context.Context, storeID string, active bool) error
	Relocate(ctx context.Context, storeID string, loc GeoLocation) error
}

// WriteThrough applies admin edits to the in-memory catalogue and then to a
// Writer. A failed write rolls the memory change back.
type WriteThrough struct {
	repo    *MemoryRepository
	writer  Writer
	timeout time.Duration
}

// NewWriteThrough wraps repo. timeout bounds each write; zero means 5s.
func NewWriteThrough(repo *MemoryRepository, writer Writer, timeout time.Duration) *WriteThrough {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WriteThrough{repo: repo, writer: writer, timeout: timeout}
}

// SetActive toggles the active flag in memory and storage.
func (w *WriteThrough) SetActive(storeID string, active bool) (Store, error) {
	prev, err := w.repo.Get(storeID)
	if err != nil {
		return Store{}, err
	}
	updated, err := w.repo.SetActive(storeID, active)
	if err != nil {
		return Store{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.writer.SetActive(ctx, storeID, active); err != nil {
		_, _ = w.repo.SetActive(storeID, prev.IsActive)
		return Store{}, fmt.Errorf("failed to persist store %s: %w", storeID, err)
	}
	return updated, nil
}

// Relocate replaces the location in memory and storage.
func (w *WriteThrough) Relocate(storeID string, loc GeoLocation) (Store, error) {
	prev, err := w.repo.Get(storeID)
	if err != nil {
		return Store{}, err
	}
	updated, err := w.repo.Relocate(storeID, loc)
	if err != nil {
		return Store{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.writer.Relocate(ctx, storeID, loc); err != nil {
		_, _ = w.repo.Relocate(storeID, prev.Location)
		return Store{}, fmt.Errorf("failed to persist store %s: %w", storeID, err)
	}
	return updated, nil
}
