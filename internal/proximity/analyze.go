// Package proximity finds competitor stores around home stores.
package proximity

import (
	"context"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kosarica/insight-service/internal/geo"
	"github.com/kosarica/insight-service/internal/stores"
)

// Analyze returns the active competitors within radiusKm of home, sorted by
// distance ascending. Ties keep the order of the competitors slice. A
// non-positive radius yields an empty result.
func Analyze(home stores.Store, competitors []stores.Store, radiusKm float64) Result {
	return analyzeAt(home, competitors, radiusKm, time.Now())
}

func analyzeAt(home stores.Store, competitors []stores.Store, radiusKm float64, at time.Time) Result {
	result := emptyResult(home.StoreID, radiusKm, at)
	if !(radiusKm > 0) {
		return result
	}

	hLat, hLon := home.Location.Latitude, home.Location.Longitude
	bounds := geo.BoundingRect(hLat, hLon, radiusKm)

	for _, c := range competitors {
		if !c.IsActive || c.StoreID == home.StoreID {
			continue
		}
		cLat, cLon := c.Location.Latitude, c.Location.Longitude
		if !geo.InRect(bounds, cLat, cLon) {
			continue
		}
		d := geo.HaversineKm(hLat, hLon, cLat, cLon)
		if d <= radiusKm {
			result.Competitors = append(result.Competitors, CompetitorDistance{Store: c, DistanceKm: d})
		}
	}

	sort.SliceStable(result.Competitors, func(i, j int) bool {
		return result.Competitors[i].DistanceKm < result.Competitors[j].DistanceKm
	})

	for _, cd := range result.Competitors {
		result.CompetitorsByChain[cd.Store.Chain] = append(result.CompetitorsByChain[cd.Store.Chain], cd)
	}
	if len(result.Competitors) > 0 {
		closest := result.Competitors[0]
		result.ClosestCompetitor = &closest
	}
	return result
}

// AnalyzeAll runs Analyze for every home store concurrently and returns the
// results sorted by home store ID. concurrency <= 0 uses GOMAXPROCS.
func AnalyzeAll(ctx context.Context, homes, competitors []stores.Store, radiusKm float64, concurrency int) ([]Result, error) {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	at := time.Now()
	results := make([]Result, len(homes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range homes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = analyzeAt(homes[i], competitors, radiusKm, at)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].HomeStoreID < results[j].HomeStoreID
	})
	return results, nil
}
