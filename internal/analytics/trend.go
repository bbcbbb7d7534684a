package analytics

import (
	"sort"
	"time"

	"github.com/kosarica/insight-service/internal/weather"
)

// TrendEstimator computes sales trends over a window.
type TrendEstimator struct{}

// NewTrendEstimator creates a trend estimator.
func NewTrendEstimator() *TrendEstimator {
	return &TrendEstimator{}
}

// weekdays in reporting order, Monday first.
var weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// Estimate summarises sales between start and end (both inclusive, day
// granularity). Growth compares the first half of the window with the
// second; with an odd number of days the middle day counts in neither half.
// Empty input yields a zeroed trend.
func (e *TrendEstimator) Estimate(storeID string, series []SalesRecord, start, end time.Time) SalesTrend {
	start, end = dayOf(start), dayOf(end)
	trend := SalesTrend{
		StoreID:                   storeID,
		PeriodStart:               start,
		PeriodEnd:                 end,
		TrendingCategories:        []CategoryGrowth{},
		UnderperformingCategories: []CategoryGrowth{},
	}
	if end.Before(start) {
		return trend
	}

	days := daysBetween(start, end) + 1
	trend.Days = days
	half := days / 2
	secondFrom := days - half

	daily := make([]float64, days)
	type halves struct{ first, second float64 }
	byCategory := map[string]*halves{}
	buckets := map[time.Weekday]map[weather.Period]float64{}

	for _, rec := range series {
		local := rec.Date.In(start.Location())
		idx := daysBetween(start, local)
		if idx < 0 || idx >= days {
			continue
		}
		daily[idx] += rec.Amount
		trend.TotalSales += rec.Amount

		h := byCategory[rec.Category]
		if h == nil {
			h = &halves{}
			byCategory[rec.Category] = h
		}
		switch {
		case idx < half:
			h.first += rec.Amount
		case idx >= secondFrom:
			h.second += rec.Amount
		}

		wd := local.Weekday()
		if buckets[wd] == nil {
			buckets[wd] = map[weather.Period]float64{}
		}
		buckets[wd][weather.PeriodAt(local)] += rec.Amount
	}

	if len(byCategory) == 0 {
		return trend
	}

	var first, second float64
	for i := 0; i < half; i++ {
		first += daily[i]
		second += daily[secondFrom+i]
	}
	trend.SalesGrowth = growthPct(first, second)
	trend.AverageDailySales = trend.TotalSales / float64(days)

	best := -1.0
	for _, wd := range weekdays {
		for _, p := range weather.Periods {
			if v, ok := buckets[wd][p]; ok && v > best {
				best = v
				trend.PeakSalesDay = wd.String()
				trend.PeakSalesPeriod = p
			}
		}
	}

	for category, h := range byCategory {
		if h.first == 0 && h.second == 0 {
			continue
		}
		g := growthPct(h.first, h.second)
		switch {
		case g > 0:
			trend.TrendingCategories = append(trend.TrendingCategories, CategoryGrowth{Category: category, GrowthPct: g})
		case g < 0:
			trend.UnderperformingCategories = append(trend.UnderperformingCategories, CategoryGrowth{Category: category, GrowthPct: g})
		}
	}
	sort.Slice(trend.TrendingCategories, func(i, j int) bool {
		a, b := trend.TrendingCategories[i], trend.TrendingCategories[j]
		if a.GrowthPct != b.GrowthPct {
			return a.GrowthPct > b.GrowthPct
		}
		return a.Category < b.Category
	})
	sort.Slice(trend.UnderperformingCategories, func(i, j int) bool {
		a, b := trend.UnderperformingCategories[i], trend.UnderperformingCategories[j]
		if a.GrowthPct != b.GrowthPct {
			return a.GrowthPct < b.GrowthPct
		}
		return a.Category < b.Category
	})

	return trend
}

// growthPct is the percentage change from first to second. Growth from
// nothing counts as +100%.
func growthPct(first, second float64) float64 {
	if first == 0 {
		if second > 0 {
			return 100
		}
		return 0
	}
	return (second - first) / first * 100
}

func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
