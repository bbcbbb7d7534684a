package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// InventoryConfig holds the stock policy.
type InventoryConfig struct {
	TargetDaysOfCover  float64 `mapstructure:"target_days_of_cover"`
	OverstockSlack     float64 `mapstructure:"overstock_slack"`
	HoldingCostPerUnit float64 `mapstructure:"holding_cost_per_unit"`
}

// DefaultInventoryConfig returns the default stock policy.
func DefaultInventoryConfig() InventoryConfig {
	return InventoryConfig{
		TargetDaysOfCover:  14,
		OverstockSlack:     0.2,
		HoldingCostPerUnit: 15,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c InventoryConfig) Validate() error {
	if c.TargetDaysOfCover <= 0 {
		return ErrInvalidConfig{Field: "target_days_of_cover", Reason: "must be positive"}
	}
	if c.OverstockSlack < 0 {
		return ErrInvalidConfig{Field: "overstock_slack", Reason: "must be non-negative"}
	}
	if c.HoldingCostPerUnit < 0 {
		return ErrInvalidConfig{Field: "holding_cost_per_unit", Reason: "must be non-negative"}
	}
	return nil
}

// ErrInvalidConfig is returned when the configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}

// InventoryInput is everything the advisor needs for one category.
type InventoryInput struct {
	Category        string
	CurrentStock    int
	DailyVelocity   float64
	SeasonalFactors []SeasonalFactor
	// SalesGrowthPct is quoted in the reasoning when HasGrowth is set.
	SalesGrowthPct float64
	HasGrowth      bool
}

// InventoryAdvisor recommends stock levels per category.
type InventoryAdvisor struct {
	config InventoryConfig
}

// NewInventoryAdvisor creates an advisor with the given policy.
func NewInventoryAdvisor(config InventoryConfig) *InventoryAdvisor {
	return &InventoryAdvisor{config: config}
}

// Recommend computes the recommendation for one category:
//
//	recommended = ceil(velocity * target days * seasonal multiplier)
//	risk        = clamp(100 * (1 - current/recommended), 0, 100)
//	overstock   = (current - recommended) * holding cost, beyond the slack margin
func (a *InventoryAdvisor) Recommend(in InventoryInput) InventoryRecommendation {
	velocity := in.DailyVelocity
	if math.IsNaN(velocity) || velocity < 0 {
		velocity = 0
	}
	current := in.CurrentStock
	if current < 0 {
		current = 0
	}
	seasonal := compositeMultiplier(in.SeasonalFactors)

	recommended := int(math.Ceil(velocity * a.config.TargetDaysOfCover * seasonal))
	rec := InventoryRecommendation{
		Category:         in.Category,
		CurrentStock:     current,
		RecommendedStock: recommended,
		ReorderQuantity:  max(0, recommended-current),
		DailyVelocity:    velocity,
		SeasonalFactors:  make([]string, 0, len(in.SeasonalFactors)),
	}
	for _, f := range in.SeasonalFactors {
		rec.SeasonalFactors = append(rec.SeasonalFactors, f.Label())
	}

	if recommended > 0 {
		rec.StockoutRisk = clamp(100*(1-float64(current)/float64(recommended)), 0, 100)
	}
	rec.Urgency = UrgencyForRisk(rec.StockoutRisk)

	if float64(current) > float64(recommended)*(1+a.config.OverstockSlack) {
		rec.OverstockCost = float64(current-recommended) * a.config.HoldingCostPerUnit
	}

	rec.Reasoning = a.reasoning(rec, seasonal, in)
	return rec
}

// RecommendAll computes recommendations and orders them by stockout risk
// descending, then category.
func (a *InventoryAdvisor) RecommendAll(inputs []InventoryInput) []InventoryRecommendation {
	out := make([]InventoryRecommendation, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, a.Recommend(in))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StockoutRisk != out[j].StockoutRisk {
			return out[i].StockoutRisk > out[j].StockoutRisk
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func (a *InventoryAdvisor) reasoning(rec InventoryRecommendation, seasonal float64, in InventoryInput) string {
	var b strings.Builder
	if rec.DailyVelocity == 0 {
		fmt.Fprintf(&b, "No recent sales of %s, so no stock is required.", rec.Category)
	} else {
		fmt.Fprintf(&b, "Selling %.1f units/day; %.0f days of cover", rec.DailyVelocity, a.config.TargetDaysOfCover)
		if len(rec.SeasonalFactors) > 0 {
			fmt.Fprintf(&b, " with seasonal multiplier x%.2f (%s)", seasonal, strings.Join(rec.SeasonalFactors, ", "))
		}
		fmt.Fprintf(&b, " needs %d units. Current stock of %d units covers %.1f days.",
			rec.RecommendedStock, rec.CurrentStock, float64(rec.CurrentStock)/rec.DailyVelocity)
	}
	if in.HasGrowth {
		fmt.Fprintf(&b, " Sales growth %+.1f%%.", in.SalesGrowthPct)
	}
	switch {
	case rec.ReorderQuantity > 0:
		fmt.Fprintf(&b, " Reorder %d units (stockout risk %.0f%%).", rec.ReorderQuantity, rec.StockoutRisk)
	case rec.OverstockCost > 0:
		fmt.Fprintf(&b, " Overstocked by %d units, holding cost %.2f.", rec.CurrentStock-rec.RecommendedStock, rec.OverstockCost)
	}
	return b.String()
}

// VelocityByCategory returns average units sold per day for each category
// between start and end inclusive.
func VelocityByCategory(series []SalesRecord, start, end time.Time) map[string]float64 {
	start, end = dayOf(start), dayOf(end)
	out := map[string]float64{}
	if end.Before(start) {
		return out
	}
	days := float64(daysBetween(start, end) + 1)
	for _, rec := range series {
		idx := daysBetween(start, rec.Date.In(start.Location()))
		if idx < 0 || float64(idx) >= days {
			continue
		}
		out[rec.Category] += float64(rec.Units)
	}
	for c, units := range out {
		out[c] = units / days
	}
	return out
}
