package stores

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Repository is the read side of the store catalogue used by analyzers.
type Repository interface {
	// Get returns the store with the given ID or ErrStoreNotFound.
	Get(storeID string) (Store, error)

	// HomeStores returns active home-network stores sorted by store ID.
	HomeStores() []Store

	// Competitors returns every competitor store, active or not, in load order.
	Competitors() []Store

	// All returns every store in load order.
	All() []Store

	// Version increases on every write. Caches use it to detect stale results.
	Version() uint64
}

// Source loads a full store catalogue from somewhere: seed data, Postgres or a file.
type Source interface {
	LoadStores(ctx context.Context) ([]Store, error)
}

// catalogue is an immutable view of the repository. Writers build a new one
// off the read path and swap it atomically.
type catalogue struct {
	byID    map[string]Store
	order   []string
	version uint64
}

func (c *catalogue) clone() *catalogue {
	next := &catalogue{
		byID:    make(map[string]Store, len(c.byID)+1),
		order:   make([]string, len(c.order), len(c.order)+1),
		version: c.version + 1,
	}
	for id, s := range c.byID {
		next.byID[id] = s
	}
	copy(next.order, c.order)
	return next
}

// MemoryRepository is an in-memory copy-on-write store catalogue. Reads never
// block; writes are serialised and publish a new snapshot.
type MemoryRepository struct {
	writeMu  sync.Mutex
	snapshot atomic.Value // *catalogue
	now      func() time.Time
	logger   zerolog.Logger
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	r := &MemoryRepository{
		now:    time.Now,
		logger: log.With().Str("component", "store_repository").Logger(),
	}
	r.snapshot.Store(&catalogue{byID: map[string]Store{}})
	return r
}

// NewMemoryRepositoryFrom creates a repository preloaded with stores.
func NewMemoryRepositoryFrom(stores []Store) (*MemoryRepository, error) {
	r := NewMemoryRepository()
	if err := r.Replace(stores); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MemoryRepository) load() *catalogue {
	return r.snapshot.Load().(*catalogue)
}

// Get returns a store by ID.
func (r *MemoryRepository) Get(storeID string) (Store, error) {
	s, ok := r.load().byID[storeID]
	if !ok {
		return Store{}, fmt.Errorf("%w: %s", ErrStoreNotFound, storeID)
	}
	return s, nil
}

// HomeStores returns active home stores sorted by ID.
func (r *MemoryRepository) HomeStores() []Store {
	c := r.load()
	out := make([]Store, 0)
	for _, id := range c.order {
		s := c.byID[id]
		if s.IsHome() && s.IsActive {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StoreID < out[j].StoreID
	})
	return out
}

// Competitors returns all non-home stores in load order.
func (r *MemoryRepository) Competitors() []Store {
	c := r.load()
	out := make([]Store, 0, len(c.order))
	for _, id := range c.order {
		if s := c.byID[id]; !s.IsHome() {
			out = append(out, s)
		}
	}
	return out
}

// All returns every store in load order.
func (r *MemoryRepository) All() []Store {
	c := r.load()
	out := make([]Store, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Version returns the snapshot version.
func (r *MemoryRepository) Version() uint64 {
	return r.load().version
}

// Len returns the number of stores.
func (r *MemoryRepository) Len() int {
	return len(r.load().order)
}

// Add inserts a new store.
func (r *MemoryRepository) Add(s Store) error {
	if err := s.Validate(); err != nil {
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	cur := r.load()
	if _, exists := cur.byID[s.StoreID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateStore, s.StoreID)
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = r.now()
	}

	next := cur.clone()
	next.byID[s.StoreID] = s
	next.order = append(next.order, s.StoreID)
	r.snapshot.Store(next)

	r.logger.Debug().Str("store_id", s.StoreID).Str("chain", s.Chain).Msg("Store added")
	return nil
}

// Relocate replaces a store's location.
func (r *MemoryRepository) Relocate(storeID string, loc GeoLocation) (Store, error) {
	if err := loc.Validate(); err != nil {
		return Store{}, fmt.Errorf("%w: %s: %w", ErrInvalidStore, storeID, err)
	}
	return r.update(storeID, func(s *Store) {
		s.Location = loc
	})
}

// SetActive toggles a store's active flag. Inactive competitors are ignored by
// proximity analysis; inactive home stores are skipped by batch runs.
func (r *MemoryRepository) SetActive(storeID string, active bool) (Store, error) {
	return r.update(storeID, func(s *Store) {
		s.IsActive = active
	})
}

func (r *MemoryRepository) update(storeID string, fn func(*Store)) (Store, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	cur := r.load()
	s, ok := cur.byID[storeID]
	if !ok {
		return Store{}, fmt.Errorf("%w: %s", ErrStoreNotFound, storeID)
	}
	fn(&s)
	s.UpdatedAt = r.now()

	next := cur.clone()
	next.byID[storeID] = s
	r.snapshot.Store(next)

	r.logger.Info().Str("store_id", storeID).Bool("active", s.IsActive).Msg("Store updated")
	return s, nil
}

// Replace swaps the whole catalogue. Invalid stores abort the swap.
func (r *MemoryRepository) Replace(list []Store) error {
	next := &catalogue{
		byID:  make(map[string]Store, len(list)),
		order: make([]string, 0, len(list)),
	}
	now := r.now()
	for _, s := range list {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, dup := next.byID[s.StoreID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateStore, s.StoreID)
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
		next.byID[s.StoreID] = s
		next.order = append(next.order, s.StoreID)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	next.version = r.load().version + 1
	r.snapshot.Store(next)

	r.logger.Info().Int("stores", len(list)).Uint64("version", next.version).Msg("Store catalogue replaced")
	return nil
}

// Refresh reloads the catalogue from a source.
func (r *MemoryRepository) Refresh(ctx context.Context, src Source) error {
	start := time.Now()
	list, err := src.LoadStores(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stores: %w", err)
	}
	if err := r.Replace(list); err != nil {
		return err
	}
	r.logger.Info().Dur("duration", time.Since(start)).Msg("Store catalogue refreshed")
	return nil
}
