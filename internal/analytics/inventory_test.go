package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUrgencyForRisk(t *testing.T) {
	tests := []struct {
		risk     float64
		expected Urgency
	}{
		{100, UrgencyCritical},
		{70, UrgencyCritical},
		{69.9, UrgencyHigh},
		{50, UrgencyHigh},
		{30, UrgencyMedium},
		{29.9, UrgencyLow},
		{0.1, UrgencyLow},
		{0, UrgencyNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, UrgencyForRisk(tt.risk), "risk %v", tt.risk)
	}
}

func TestRecommendCriticalShortage(t *testing.T) {
	advisor := NewInventoryAdvisor(InventoryConfig{TargetDaysOfCover: 20, OverstockSlack: 0.2, HoldingCostPerUnit: 15})

	rec := advisor.Recommend(InventoryInput{Category: "Ethnic Wear", CurrentStock: 50, DailyVelocity: 10})

	assert.Equal(t, 200, rec.RecommendedStock)
	assert.Equal(t, 150, rec.ReorderQuantity)
	assert.InDelta(t, 75.0, rec.StockoutRisk, 1e-9)
	assert.Equal(t, UrgencyCritical, rec.Urgency)
	assert.Equal(t, 0.0, rec.OverstockCost)
	assert.Contains(t, rec.Reasoning, "10.0 units/day")
	assert.Contains(t, rec.Reasoning, "Reorder 150 units")
}

func TestRecommendOverstock(t *testing.T) {
	advisor := NewInventoryAdvisor(InventoryConfig{TargetDaysOfCover: 10, OverstockSlack: 0.2, HoldingCostPerUnit: 15})

	rec := advisor.Recommend(InventoryInput{Category: "Winter Wear", CurrentStock: 130, DailyVelocity: 10})

	assert.Equal(t, 100, rec.RecommendedStock)
	assert.Equal(t, 0, rec.ReorderQuantity)
	assert.Equal(t, 0.0, rec.StockoutRisk)
	assert.Equal(t, UrgencyNone, rec.Urgency)
	assert.Equal(t, 450.0, rec.OverstockCost)
	assert.Contains(t, rec.Reasoning, "Overstocked by 30 units")

	// Within the slack margin there is no overstock cost.
	rec = advisor.Recommend(InventoryInput{Category: "Winter Wear", CurrentStock: 115, DailyVelocity: 10})
	assert.Equal(t, 0.0, rec.OverstockCost)
}

func TestRecommendSeasonalFactors(t *testing.T) {
	advisor := NewInventoryAdvisor(InventoryConfig{TargetDaysOfCover: 10, OverstockSlack: 0.2, HoldingCostPerUnit: 1})

	rec := advisor.Recommend(InventoryInput{
		Category:      "Ethnic Wear",
		CurrentStock:  100,
		DailyVelocity: 10,
		SeasonalFactors: []SeasonalFactor{
			{Name: "Diwali festive season", Multiplier: 1.5},
			{Name: "Ignored", Multiplier: 0},
		},
		SalesGrowthPct: -12.5,
		HasGrowth:      true,
	})

	assert.Equal(t, 150, rec.RecommendedStock)
	assert.Equal(t, 50, rec.ReorderQuantity)
	require.Len(t, rec.SeasonalFactors, 2)
	assert.Equal(t, "Diwali festive season (x1.50)", rec.SeasonalFactors[0])
	assert.Contains(t, rec.Reasoning, "Sales growth -12.5%")
}

func TestRecommendNoDemand(t *testing.T) {
	advisor := NewInventoryAdvisor(DefaultInventoryConfig())

	rec := advisor.Recommend(InventoryInput{Category: "Rainwear", CurrentStock: 0, DailyVelocity: 0})
	assert.Equal(t, 0, rec.RecommendedStock)
	assert.Equal(t, 0.0, rec.StockoutRisk)
	assert.Equal(t, UrgencyNone, rec.Urgency)
	assert.Contains(t, rec.Reasoning, "No recent sales")

	rec = advisor.Recommend(InventoryInput{Category: "Rainwear", CurrentStock: 10, DailyVelocity: -3})
	assert.Equal(t, 0.0, rec.DailyVelocity)
	assert.Equal(t, 150.0, rec.OverstockCost)
}

func TestRecommendInvariants(t *testing.T) {
	advisor := NewInventoryAdvisor(DefaultInventoryConfig())
	for _, stock := range []int{0, 5, 50, 500} {
		for _, v := range []float64{0, 0.5, 3.3, 40} {
			rec := advisor.Recommend(InventoryInput{Category: "X", CurrentStock: stock, DailyVelocity: v})
			assert.Equal(t, max(0, rec.RecommendedStock-rec.CurrentStock), rec.ReorderQuantity)
			assert.GreaterOrEqual(t, rec.StockoutRisk, 0.0)
			assert.LessOrEqual(t, rec.StockoutRisk, 100.0)
			assert.Equal(t, UrgencyForRisk(rec.StockoutRisk), rec.Urgency)
		}
	}
}

func TestRecommendAllOrdersByRisk(t *testing.T) {
	advisor := NewInventoryAdvisor(InventoryConfig{TargetDaysOfCover: 10, OverstockSlack: 0.2, HoldingCostPerUnit: 1})

	recs := advisor.RecommendAll([]InventoryInput{
		{Category: "B", CurrentStock: 100, DailyVelocity: 10},
		{Category: "A", CurrentStock: 10, DailyVelocity: 10},
		{Category: "C", CurrentStock: 100, DailyVelocity: 10},
	})

	require.Len(t, recs, 3)
	assert.Equal(t, "A", recs[0].Category)
	assert.Equal(t, "B", recs[1].Category)
	assert.Equal(t, "C", recs[2].Category)
}

func TestVelocityByCategory(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	series := []SalesRecord{
		{Date: start.Add(10 * time.Hour), Category: "Footwear", Units: 6},
		{Date: start.AddDate(0, 0, 2).Add(15 * time.Hour), Category: "Footwear", Units: 4},
		{Date: start.AddDate(0, 0, 9), Category: "Footwear", Units: 100},
	}
	v := VelocityByCategory(series, start, start.AddDate(0, 0, 4))
	assert.InDelta(t, 2.0, v["Footwear"], 1e-9)
}

func TestInventoryConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultInventoryConfig().Validate())
	err := InventoryConfig{TargetDaysOfCover: 0}.Validate()
	require.Error(t, err)
	assert.Equal(t, "target_days_of_cover: must be positive", err.Error())
}
