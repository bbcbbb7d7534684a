// Package stores holds the store catalogue shared by every analysis: home
// network stores and competitor stores with their locations.
package stores

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kosarica/insight-service/internal/chains"
	"github.com/kosarica/insight-service/internal/geo"
)

var (
	// ErrStoreNotFound is returned when a store ID is not in the repository.
	ErrStoreNotFound = errors.New("store not found")
	// ErrDuplicateStore is returned when adding a store whose ID already exists.
	ErrDuplicateStore = errors.New("store already exists")
	// ErrInvalidStore is returned when a store fails validation.
	ErrInvalidStore = errors.New("invalid store")
)

// GeoLocation is a point with its postal address. Values are replaced, never mutated.
type GeoLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Pincode   string  `json:"pincode"`
}

// Validate checks the coordinates are in range.
func (l GeoLocation) Validate() error {
	return geo.ValidateCoordinate(l.Latitude, l.Longitude)
}

// DistanceKm returns the great-circle distance to another location.
func (l GeoLocation) DistanceKm(other GeoLocation) float64 {
	return geo.HaversineKm(l.Latitude, l.Longitude, other.Latitude, other.Longitude)
}

// Store is a physical retail location.
type Store struct {
	StoreID      string      `json:"store_id"`
	Name         string      `json:"name"`
	Chain        string      `json:"chain"`
	Location     GeoLocation `json:"location"`
	SizeSqft     int         `json:"size_sqft"`
	OpeningHours string      `json:"opening_hours"`
	IsActive     bool        `json:"is_active"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// IsHome reports whether the store belongs to the home network.
func (s Store) IsHome() bool {
	return chains.IsHome(s.Chain)
}

// Validate checks required fields and coordinate ranges.
func (s Store) Validate() error {
	if strings.TrimSpace(s.StoreID) == "" {
		return fmt.Errorf("%w: store_id is required", ErrInvalidStore)
	}
	if strings.TrimSpace(s.Chain) == "" {
		return fmt.Errorf("%w: chain is required for %s", ErrInvalidStore, s.StoreID)
	}
	if s.SizeSqft < 0 {
		return fmt.Errorf("%w: size_sqft must be non-negative for %s", ErrInvalidStore, s.StoreID)
	}
	if err := s.Location.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidStore, s.StoreID, err)
	}
	return nil
}
