package proximity

import (
	"errors"
	"sort"
	"time"

	"github.com/kosarica/insight-service/internal/stores"
)

// ErrInvalidRadius is returned by request-facing entry points for radius_km <= 0.
var ErrInvalidRadius = errors.New("radius must be positive")

// CompetitorDistance is a competitor store with its distance from a home store.
type CompetitorDistance struct {
	Store      stores.Store `json:"store"`
	DistanceKm float64      `json:"distance_km"`
}

// Result is the competitive landscape around one home store.
type Result struct {
	HomeStoreID        string                          `json:"home_store_id"`
	RadiusKm           float64                         `json:"radius_km"`
	Competitors        []CompetitorDistance            `json:"competitors"`
	CompetitorsByChain map[string][]CompetitorDistance `json:"competitors_by_chain"`
	ClosestCompetitor  *CompetitorDistance             `json:"closest_competitor"`
	ComputedAt         time.Time                       `json:"computed_at"`
}

// Count returns the number of competitors within the radius.
func (r Result) Count() int {
	return len(r.Competitors)
}

// ChainSummary aggregates competitors of one chain.
type ChainSummary struct {
	Chain     string  `json:"chain"`
	Count     int     `json:"count"`
	NearestKm float64 `json:"nearest_km"`
}

// ChainSummaries returns one entry per chain sorted by count descending, then chain name.
func (r Result) ChainSummaries() []ChainSummary {
	out := make([]ChainSummary, 0, len(r.CompetitorsByChain))
	for chain, list := range r.CompetitorsByChain {
		if len(list) == 0 {
			continue
		}
		// lists preserve distance order, so the first entry is the nearest
		out = append(out, ChainSummary{Chain: chain, Count: len(list), NearestKm: list[0].DistanceKm})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Chain < out[j].Chain
	})
	return out
}

func emptyResult(homeID string, radiusKm float64, at time.Time) Result {
	return Result{
		HomeStoreID:        homeID,
		RadiusKm:           radiusKm,
		Competitors:        []CompetitorDistance{},
		CompetitorsByChain: map[string][]CompetitorDistance{},
		ComputedAt:         at,
	}
}
