package insights

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kosarica/insight-service/internal/analytics"
	"github.com/kosarica/insight-service/internal/geo"
	"github.com/kosarica/insight-service/internal/proximity"
	"github.com/kosarica/insight-service/internal/weather"
)

// Config holds the insight rule thresholds and expiry policy.
type Config struct {
	DensityThreshold     int                 `mapstructure:"density_threshold"`
	SalesDeclinePct      float64             `mapstructure:"sales_decline_pct"`
	CategoryDeclinePct   float64             `mapstructure:"category_decline_pct"`
	StrongGrowthPct      float64             `mapstructure:"strong_growth_pct"`
	HotTemperatureC      float64             `mapstructure:"hot_temperature_c"`
	ColdTemperatureC     float64             `mapstructure:"cold_temperature_c"`
	SurgeFactor          float64             `mapstructure:"surge_factor"`
	HighImpactConditions []weather.Condition `mapstructure:"high_impact_conditions"`
	CriticalTTL          time.Duration       `mapstructure:"critical_ttl"`
	HighTTL              time.Duration       `mapstructure:"high_ttl"`
	MediumTTL            time.Duration       `mapstructure:"medium_ttl"`
}

// DefaultConfig returns the default rule set.
func DefaultConfig() Config {
	return Config{
		DensityThreshold:   5,
		SalesDeclinePct:    -10,
		CategoryDeclinePct: -20,
		StrongGrowthPct:    15,
		HotTemperatureC:    38,
		ColdTemperatureC:   8,
		SurgeFactor:        1.25,
		HighImpactConditions: []weather.Condition{
			weather.ConditionRain, weather.ConditionThunderstorm, weather.ConditionSnow,
			weather.ConditionDust, weather.ConditionFog,
		},
		CriticalTTL: 48 * time.Hour,
		HighTTL:     7 * 24 * time.Hour,
		MediumTTL:   14 * 24 * time.Hour,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c Config) Validate() error {
	if c.DensityThreshold < 1 {
		return ErrInvalidConfig{Field: "density_threshold", Reason: "must be at least 1"}
	}
	if c.SalesDeclinePct >= 0 {
		return ErrInvalidConfig{Field: "sales_decline_pct", Reason: "must be negative"}
	}
	if c.CategoryDeclinePct >= 0 {
		return ErrInvalidConfig{Field: "category_decline_pct", Reason: "must be negative"}
	}
	if c.ColdTemperatureC >= c.HotTemperatureC {
		return ErrInvalidConfig{Field: "cold_temperature_c", Reason: "must be below hot_temperature_c"}
	}
	if c.SurgeFactor <= 1 {
		return ErrInvalidConfig{Field: "surge_factor", Reason: "must be greater than 1"}
	}
	if c.CriticalTTL <= 0 || c.HighTTL <= 0 || c.MediumTTL <= 0 {
		return ErrInvalidConfig{Field: "ttl", Reason: "must be positive"}
	}
	return nil
}

// TTL returns how long insights of priority p stay active. Low priority
// insights never expire.
func (c Config) TTL(p Priority) (time.Duration, bool) {
	switch p {
	case PriorityCritical:
		return c.CriticalTTL, true
	case PriorityHigh:
		return c.HighTTL, true
	case PriorityMedium:
		return c.MediumTTL, true
	default:
		return 0, false
	}
}

// ErrInvalidConfig is returned when the configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}

// Input is everything one synthesis pass looks at. Nil parts are skipped.
type Input struct {
	StoreID   string
	Trend     *analytics.SalesTrend
	Inventory []analytics.InventoryRecommendation
	Proximity *proximity.Result
	Weather   *weather.Snapshot
	Forecasts []analytics.DemandForecast
	// AsOf stamps created_at; zero means the synthesizer clock.
	AsOf time.Time
}

// Pass is the outcome of one synthesis: the ordered insights plus the
// candidates that a later rule output replaced.
type Pass struct {
	Insights   []Insight
	Superseded []Insight
}

// StateOf returns StateSuperseded for a candidate replaced in this pass and
// the time-based state otherwise.
func (p Pass) StateOf(in Insight, now time.Time) State {
	for _, old := range p.Superseded {
		if old.ID == in.ID && old.Description == in.Description && old.Title == in.Title {
			return StateSuperseded
		}
	}
	return in.State(now)
}

// Synthesizer applies the insight rules. It keeps no state between passes.
type Synthesizer struct {
	config Config
	now    func() time.Time
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(config Config) *Synthesizer {
	return &Synthesizer{config: config, now: time.Now}
}

// Synthesize returns the insights for one pass ordered by priority, then
// confidence, then ID.
func (s *Synthesizer) Synthesize(in Input) []Insight {
	return s.Run(in).Insights
}

// Run performs a synthesis pass and reports superseded candidates too.
func (s *Synthesizer) Run(in Input) Pass {
	at := in.AsOf
	if at.IsZero() {
		at = s.now()
	}
	b := &builder{storeID: in.StoreID, at: at, config: s.config}

	s.inventoryRules(b, in.Inventory)
	s.salesRules(b, in.Trend)
	s.competitionRule(b, in.Proximity)
	s.weatherRules(b, in.Weather)
	s.forecastRule(b, in.Forecasts)

	kept, superseded := dedupe(b.out)
	sort.SliceStable(kept, func(i, j int) bool { return less(kept[i], kept[j]) })
	return Pass{Insights: kept, Superseded: superseded}
}

func less(a, b Insight) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if a.ConfidenceScore != b.ConfidenceScore {
		return a.ConfidenceScore > b.ConfidenceScore
	}
	return a.ID < b.ID
}

// dedupe keeps the last candidate for every ID at the position of the first.
func dedupe(cands []Insight) (kept, superseded []Insight) {
	index := map[string]int{}
	kept = make([]Insight, 0, len(cands))
	superseded = []Insight{}
	for _, c := range cands {
		if i, ok := index[c.ID]; ok {
			superseded = append(superseded, kept[i])
			kept[i] = c
			continue
		}
		index[c.ID] = len(kept)
		kept = append(kept, c)
	}
	return kept, superseded
}

type builder struct {
	storeID string
	at      time.Time
	config  Config
	out     []Insight
}

func (b *builder) add(p Priority, c Category, topic string, confidence float64, in Insight) {
	in.ID = ID(b.storeID, c, topic, b.at)
	in.StoreID = b.storeID
	in.Priority = p
	in.Category = c
	in.ConfidenceScore = math.Round(clamp(confidence, 0, 100)*10) / 10
	in.CreatedAt = b.at
	if ttl, ok := b.config.TTL(p); ok {
		exp := b.at.Add(ttl)
		in.ExpiresAt = &exp
	}
	if in.RecommendedActions == nil {
		in.RecommendedActions = []string{}
	}
	if in.DataSources == nil {
		in.DataSources = []string{}
	}
	b.out = append(b.out, in)
}

func (s *Synthesizer) inventoryRules(b *builder, recs []analytics.InventoryRecommendation) {
	var critical, high, overstock []analytics.InventoryRecommendation
	for _, r := range recs {
		switch r.Urgency {
		case analytics.UrgencyCritical:
			critical = append(critical, r)
		case analytics.UrgencyHigh:
			high = append(high, r)
		}
		if r.OverstockCost > 0 {
			overstock = append(overstock, r)
		}
	}
	sources := []string{"inventory_levels", "sales_history"}

	if len(critical) > 0 {
		b.add(PriorityCritical, CategoryInventory, "stock-critical", 90, Insight{
			Title:              shortageTitle("Critical Stock Shortage", critical),
			Description:        fmt.Sprintf("%s at critical stockout risk.", stockList(critical)),
			Impact:             fmt.Sprintf("Likely lost sales in %d %s within days unless restocked.", len(critical), plural(len(critical), "category", "categories")),
			RecommendedActions: append(reorderActions(critical), "Expedite replenishment from the nearest distribution centre"),
			DataSources:        sources,
		})
	}
	if len(high) > 0 {
		b.add(PriorityHigh, CategoryInventory, "stock-high", 80, Insight{
			Title:              shortageTitle("Low Stock Warning", high),
			Description:        fmt.Sprintf("%s running low.", stockList(high)),
			Impact:             "Stock will not cover the target period at the current sell-through rate.",
			RecommendedActions: append(reorderActions(high), "Include these categories in the next scheduled order"),
			DataSources:        sources,
		})
	}
	if len(overstock) > 0 {
		var total float64
		names := make([]string, 0, len(overstock))
		for _, r := range overstock {
			total += r.OverstockCost
			names = append(names, fmt.Sprintf("%s (%d excess units)", r.Category, r.CurrentStock-r.RecommendedStock))
		}
		b.add(PriorityLow, CategoryOperations, "overstock", 70, Insight{
			Title:       fmt.Sprintf("Overstock Holding Cost: %.2f", total),
			Description: fmt.Sprintf("Stock exceeds demand for %s.", strings.Join(names, ", ")),
			Impact:      fmt.Sprintf("Estimated holding cost of %.2f for the excess units.", total),
			RecommendedActions: []string{
				"Run a targeted promotion on the overstocked categories",
				"Transfer excess units to stores with higher sell-through",
				"Reduce the next order quantity",
			},
			DataSources: sources,
		})
	}
}

func shortageTitle(prefix string, recs []analytics.InventoryRecommendation) string {
	if len(recs) == 1 {
		return prefix + ": " + recs[0].Category
	}
	return fmt.Sprintf("%s: %d Categories", prefix, len(recs))
}

func stockList(recs []analytics.InventoryRecommendation) string {
	parts := make([]string, 0, len(recs))
	for _, r := range recs {
		parts = append(parts, fmt.Sprintf("%s (%d on hand, %d needed, risk %.0f%%)", r.Category, r.CurrentStock, r.RecommendedStock, r.StockoutRisk))
	}
	verb := "is"
	if len(recs) > 1 {
		verb = "are"
	}
	return strings.Join(parts, ", ") + " " + verb
}

func reorderActions(recs []analytics.InventoryRecommendation) []string {
	out := make([]string, 0, len(recs)+1)
	for _, r := range recs {
		out = append(out, fmt.Sprintf("Reorder %d units of %s", r.ReorderQuantity, r.Category))
	}
	return out
}

func (s *Synthesizer) salesRules(b *builder, trend *analytics.SalesTrend) {
	if trend == nil || !trend.HasData() {
		return
	}
	sources := []string{"sales_history"}

	switch {
	case trend.SalesGrowth < s.config.SalesDeclinePct:
		b.add(PriorityHigh, CategorySales, "sales-decline", 60+math.Abs(trend.SalesGrowth), Insight{
			Title: fmt.Sprintf("Sales Declining %.1f%%", math.Abs(trend.SalesGrowth)),
			Description: fmt.Sprintf("Sales fell %.1f%% between the first and second half of the last %d days (total %.2f, %.2f per day).",
				math.Abs(trend.SalesGrowth), trend.Days, trend.TotalSales, trend.AverageDailySales),
			Impact: "Continued decline erodes monthly revenue and margin.",
			RecommendedActions: []string{
				"Review pricing against nearby competitors",
				"Launch a footfall promotion for the coming weekend",
				"Check staffing and display freshness in the weakest categories",
			},
			DataSources: sources,
		})
	case trend.SalesGrowth > s.config.StrongGrowthPct:
		b.add(PriorityLow, CategorySales, "sales-growth", 70, Insight{
			Title:       fmt.Sprintf("Sales Growing %.1f%%", trend.SalesGrowth),
			Description: fmt.Sprintf("Sales rose %.1f%% between the first and second half of the last %d days.", trend.SalesGrowth, trend.Days),
			Impact:      "Momentum can be extended with adequate stock on the growing categories.",
			RecommendedActions: []string{
				"Increase stock depth on trending categories",
				"Feature trending categories in window displays",
			},
			DataSources: sources,
		})
	}

	var weak []analytics.CategoryGrowth
	for _, c := range trend.UnderperformingCategories {
		if c.GrowthPct <= s.config.CategoryDeclinePct {
			weak = append(weak, c)
		}
	}
	if len(weak) > 0 {
		names := make([]string, 0, len(weak))
		details := make([]string, 0, len(weak))
		for _, c := range weak {
			names = append(names, c.Category)
			details = append(details, fmt.Sprintf("%s %.1f%%", c.Category, c.GrowthPct))
		}
		b.add(PriorityMedium, CategorySales, "category-decline", 75, Insight{
			Title:       "Underperforming Categories: " + strings.Join(names, ", "),
			Description: "Category sales changed by " + strings.Join(details, ", ") + " over the period.",
			Impact:      "Slow categories tie up shelf space and working capital.",
			RecommendedActions: []string{
				"Refresh the assortment or visual merchandising for these categories",
				"Bundle slow categories with trending ones",
			},
			DataSources: sources,
		})
	}

	if trend.PeakSalesDay != "" {
		b.add(PriorityLow, CategoryCustomer, "peak-window", 65, Insight{
			Title:       fmt.Sprintf("Peak Traffic: %s %s", trend.PeakSalesDay, trend.PeakSalesPeriod),
			Description: fmt.Sprintf("Sales concentrate on %s in the %s.", trend.PeakSalesDay, strings.ToLower(string(trend.PeakSalesPeriod))),
			Impact:      "Understaffed peaks lengthen queues and lose conversions.",
			RecommendedActions: []string{
				fmt.Sprintf("Schedule additional floor and billing staff for %s %s", trend.PeakSalesDay, strings.ToLower(string(trend.PeakSalesPeriod))),
				"Plan replenishment before the peak window",
			},
			DataSources: sources,
		})
	}
}

func (s *Synthesizer) competitionRule(b *builder, result *proximity.Result) {
	if result == nil {
		return
	}
	count := result.Count()
	if count < s.config.DensityThreshold {
		return
	}
	priority := PriorityMedium
	if count >= 2*s.config.DensityThreshold {
		priority = PriorityHigh
	}

	summaries := result.ChainSummaries()
	parts := make([]string, 0, len(summaries))
	for _, cs := range summaries {
		parts = append(parts, fmt.Sprintf("%s %d", cs.Chain, cs.Count))
	}
	desc := fmt.Sprintf("%d competitor stores within %.1f km (%s).", count, result.RadiusKm, strings.Join(parts, ", "))
	if c := result.ClosestCompetitor; c != nil {
		desc += fmt.Sprintf(" Nearest is %s at %.1f km.", c.Store.Name, geo.RoundKm(c.DistanceKm, 1))
	}

	b.add(priority, CategoryCompetition, "competition-density", 70+3*float64(count), Insight{
		Title:       fmt.Sprintf("High Competitor Density: %d Stores Within %.1f km", count, result.RadiusKm),
		Description: desc,
		Impact:      "Dense competition splits footfall and pressures prices.",
		RecommendedActions: []string{
			"Benchmark prices on overlapping categories",
			"Differentiate with exclusive ranges and loyalty offers",
			"Monitor competitor promotions weekly",
		},
		DataSources: []string{"store_locations"},
	})
}

var weatherActions = map[weather.Condition][]string{
	weather.ConditionRain: {
		"Move rainwear and umbrellas to the entrance display",
		"Place anti-slip mats at the entrance",
		"Promote home delivery for footwear",
	},
	weather.ConditionThunderstorm: {
		"Move rainwear to the entrance display",
		"Check the power backup and storm shutters",
		"Promote home delivery while footfall is low",
	},
	weather.ConditionSnow: {
		"Feature winter wear at the entrance",
		"Keep walkways clear",
	},
	weather.ConditionDust: {
		"Cover exposed displays",
		"Promote masks and scarves at the billing counter",
	},
	weather.ConditionFog: {
		"Feature winter wear and accessories",
		"Expect a later morning footfall peak",
	},
}

func (s *Synthesizer) weatherRules(b *builder, snap *weather.Snapshot) {
	if snap == nil {
		return
	}
	sources := []string{"weather_api"}

	if s.highImpact(snap.Condition) {
		actions, ok := weatherActions[snap.Condition]
		if !ok {
			actions = []string{"Adjust displays and staffing for the weather"}
		}
		b.add(PriorityMedium, CategoryWeather, "weather-"+strings.ToLower(string(snap.Condition)), 75, Insight{
			Title:              "Weather Alert: " + string(snap.Condition),
			Description:        fmt.Sprintf("%s in %s (%s, %.1f°C, humidity %d%%).", snap.Condition, snap.Location, snap.Description, snap.TemperatureC, snap.Humidity),
			Impact:             "Footfall and category mix shift for the next day or two.",
			RecommendedActions: append([]string(nil), actions...),
			DataSources:        sources,
		})
	}

	switch {
	case snap.TemperatureC >= s.config.HotTemperatureC:
		b.add(PriorityMedium, CategoryWeather, "temperature", 70, Insight{
			Title:       fmt.Sprintf("Extreme Heat: %.0f°C", snap.TemperatureC),
			Description: fmt.Sprintf("Temperature of %.1f°C in %s.", snap.TemperatureC, snap.Location),
			Impact:      "Daytime footfall drops and shifts to the evening.",
			RecommendedActions: []string{
				"Feature light cotton and summer ranges",
				"Shift staff to evening shifts",
			},
			DataSources: sources,
		})
	case snap.TemperatureC <= s.config.ColdTemperatureC:
		b.add(PriorityMedium, CategoryWeather, "temperature", 70, Insight{
			Title:       fmt.Sprintf("Cold Snap: %.0f°C", snap.TemperatureC),
			Description: fmt.Sprintf("Temperature of %.1f°C in %s.", snap.TemperatureC, snap.Location),
			Impact:      "Winter wear demand rises sharply.",
			RecommendedActions: []string{
				"Move winter wear to the front of the store",
				"Check winter wear stock depth",
			},
			DataSources: sources,
		})
	}
}

func (s *Synthesizer) highImpact(c weather.Condition) bool {
	for _, h := range s.config.HighImpactConditions {
		if h == c {
			return true
		}
	}
	return false
}

// forecastRule flags categories whose forecast combined factor reaches the
// surge threshold. Each new peak day for a category emits a candidate under
// the same ID, so the strongest day supersedes the earlier ones.
func (s *Synthesizer) forecastRule(b *builder, forecasts []analytics.DemandForecast) {
	peaks := map[string]float64{}
	for _, f := range forecasts {
		factor := f.CombinedFactor()
		if factor < s.config.SurgeFactor {
			continue
		}
		if prev, ok := peaks[f.Category]; ok && factor <= prev {
			continue
		}
		peaks[f.Category] = factor

		actions := []string{fmt.Sprintf("Raise %s stock ahead of %s", f.Category, f.ForecastDate.Format("2006-01-02"))}
		if len(f.AdjustmentFactors) > 0 {
			actions = append(actions, "Drivers: "+strings.Join(f.AdjustmentFactors, "; "))
		}
		b.add(PriorityMedium, CategoryOperations, "demand-surge:"+f.Category, f.ConfidenceScore, Insight{
			Title:              "Demand Surge Expected: " + f.Category,
			Description:        fmt.Sprintf("Forecast demand of %.1f units on %s (x%.2f baseline).", f.PredictedDemand, f.ForecastDate.Format("2006-01-02"), factor),
			Impact:             "Stockouts during the surge lose high-intent sales.",
			RecommendedActions: actions,
			DataSources:        []string{"demand_forecast", "sales_history"},
		})
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
