package analytics

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"
)

// DataProvider supplies sales history and stock levels for a store.
type DataProvider interface {
	// SalesHistory returns sale lines between start and end inclusive.
	SalesHistory(ctx context.Context, storeID string, start, end time.Time) ([]SalesRecord, error)

	// StockLevels returns current stock per category.
	StockLevels(ctx context.Context, storeID string) ([]StockLevel, error)
}

// DefaultCategories is the apparel category list used by generated data.
var DefaultCategories = []string{
	"Ethnic Wear", "Western Wear", "Kids Wear", "Footwear", "Accessories", "Winter Wear", "Rainwear", "Home Decor",
}

// FixtureProvider serves fixed in-memory data. Safe for concurrent use.
type FixtureProvider struct {
	mu    sync.RWMutex
	sales map[string][]SalesRecord
	stock map[string][]StockLevel
}

// NewFixtureProvider creates an empty fixture provider.
func NewFixtureProvider() *FixtureProvider {
	return &FixtureProvider{
		sales: map[string][]SalesRecord{},
		stock: map[string][]StockLevel{},
	}
}

// AddSales appends sale lines for a store.
func (p *FixtureProvider) AddSales(storeID string, records ...SalesRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sales[storeID] = append(p.sales[storeID], records...)
}

// SetStock replaces the stock levels for a store.
func (p *FixtureProvider) SetStock(storeID string, levels ...StockLevel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stock[storeID] = append([]StockLevel(nil), levels...)
}

// SalesHistory returns the stored lines inside the window.
func (p *FixtureProvider) SalesHistory(ctx context.Context, storeID string, start, end time.Time) ([]SalesRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	from, until := dayOf(start), dayOf(end).AddDate(0, 0, 1)
	var out []SalesRecord
	for _, r := range p.sales[storeID] {
		if !r.Date.Before(from) && r.Date.Before(until) {
			out = append(out, r)
		}
	}
	return out, nil
}

// StockLevels returns the stored levels.
func (p *FixtureProvider) StockLevels(ctx context.Context, storeID string) ([]StockLevel, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]StockLevel(nil), p.stock[storeID]...), nil
}

// SyntheticProvider generates plausible sales and stock data. The output is a
// pure function of store ID and dates, so repeated calls agree.
type SyntheticProvider struct {
	Categories []string
	// Now anchors stock generation; defaults to time.Now truncated to the day.
	Now func() time.Time
}

// NewSyntheticProvider creates a generator over DefaultCategories.
func NewSyntheticProvider() *SyntheticProvider {
	return &SyntheticProvider{Categories: DefaultCategories, Now: time.Now}
}

func seedFor(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// weekday demand shape, Sunday first.
var weekdayShape = [7]float64{1.35, 0.85, 0.8, 0.85, 0.9, 1.1, 1.4}

// hours at which generated sales land, one per period.
var saleHours = []int{11, 15, 19, 22}

// hourShape weights sales per saleHours slot.
var hourShape = []float64{0.2, 0.3, 0.4, 0.1}

// SalesHistory generates daily sale lines per category.
func (p *SyntheticProvider) SalesHistory(ctx context.Context, storeID string, start, end time.Time) ([]SalesRecord, error) {
	storeRng := rand.New(rand.NewPCG(seedFor(storeID), 7))
	drift := storeRng.Float64()*0.6 - 0.3 // per-store trend over a 30 day window
	calendar := DefaultCalendar()

	var out []SalesRecord
	for day := dayOf(start); !day.After(dayOf(end)); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dayKey := day.Format("2006-01-02")
		progress := float64(day.YearDay()%30) / 30
		for ci, category := range p.Categories {
			rng := rand.New(rand.NewPCG(seedFor(storeID, category, dayKey), uint64(ci)))
			base := 8 + float64(seedFor(storeID, category)%12)
			units := base * weekdayShape[day.Weekday()] * calendar.MultiplierFor(day, category) *
				(1 + drift*progress) * (0.8 + 0.4*rng.Float64())
			unitPrice := 400 + float64(seedFor(category)%1200)
			for hi, hour := range saleHours {
				u := int(math.Round(units * hourShape[hi]))
				if u <= 0 {
					continue
				}
				out = append(out, SalesRecord{
					Date:     day.Add(time.Duration(hour) * time.Hour),
					Category: category,
					Amount:   float64(u) * unitPrice,
					Units:    u,
				})
			}
		}
	}
	return out, nil
}

// StockLevels generates stock that ranges from short to overstocked.
func (p *SyntheticProvider) StockLevels(ctx context.Context, storeID string) ([]StockLevel, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	year, week := now().ISOWeek()
	weekKey := fmt.Sprintf("%d-W%02d", year, week)
	out := make([]StockLevel, 0, len(p.Categories))
	for _, category := range p.Categories {
		rng := rand.New(rand.NewPCG(seedFor(storeID, category, weekKey), 11))
		base := 8 + float64(seedFor(storeID, category)%12)
		cover := 2 + rng.Float64()*22 // days of cover on hand
		out = append(out, StockLevel{Category: category, CurrentStock: int(base * cover)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}
