// Package analytics turns sales and stock history into trends, stock
// recommendations and demand forecasts. Every estimator is a pure function of
// its inputs; data arrives through a DataProvider.
package analytics

import (
	"time"

	"github.com/kosarica/insight-service/internal/weather"
)

// SalesRecord is one sale line: when, what category, how much and how many units.
type SalesRecord struct {
	Date     time.Time `json:"date"`
	Category string    `json:"category"`
	Amount   float64   `json:"amount"`
	Units    int       `json:"units"`
}

// StockLevel is the current on-hand quantity for one category.
type StockLevel struct {
	Category     string `json:"category"`
	CurrentStock int    `json:"current_stock"`
}

// CategoryGrowth is the growth of one category between window halves.
type CategoryGrowth struct {
	Category  string  `json:"category"`
	GrowthPct float64 `json:"growth_pct"`
}

// SalesTrend summarises a store's sales over a window.
type SalesTrend struct {
	StoreID                   string           `json:"store_id"`
	PeriodStart               time.Time        `json:"period_start"`
	PeriodEnd                 time.Time        `json:"period_end"`
	Days                      int              `json:"days"`
	TotalSales                float64          `json:"total_sales"`
	SalesGrowth               float64          `json:"sales_growth"`
	AverageDailySales         float64          `json:"average_daily_sales"`
	PeakSalesDay              string           `json:"peak_sales_day"`
	PeakSalesPeriod           weather.Period   `json:"peak_sales_period"`
	TrendingCategories        []CategoryGrowth `json:"trending_categories"`
	UnderperformingCategories []CategoryGrowth `json:"underperforming_categories"`
}

// HasData reports whether the trend was computed from any sales.
func (t SalesTrend) HasData() bool {
	return t.TotalSales > 0 || t.PeakSalesDay != ""
}

// Urgency ranks how soon a category needs restocking.
type Urgency string

const (
	UrgencyNone     Urgency = "none"
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// UrgencyForRisk maps a stockout risk in [0,100] onto an urgency level.
func UrgencyForRisk(risk float64) Urgency {
	switch {
	case risk >= 70:
		return UrgencyCritical
	case risk >= 50:
		return UrgencyHigh
	case risk >= 30:
		return UrgencyMedium
	case risk > 0:
		return UrgencyLow
	default:
		return UrgencyNone
	}
}

// Rank orders urgencies; higher is more urgent.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 4
	case UrgencyHigh:
		return 3
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 1
	default:
		return 0
	}
}

// InventoryRecommendation is the stock advice for one category.
type InventoryRecommendation struct {
	Category         string   `json:"category"`
	CurrentStock     int      `json:"current_stock"`
	RecommendedStock int      `json:"recommended_stock"`
	ReorderQuantity  int      `json:"reorder_quantity"`
	DailyVelocity    float64  `json:"daily_velocity"`
	StockoutRisk     float64  `json:"estimated_stockout_risk"`
	OverstockCost    float64  `json:"estimated_overstock_cost"`
	Urgency          Urgency  `json:"reorder_urgency"`
	SeasonalFactors  []string `json:"seasonal_factors"`
	Reasoning        string   `json:"reasoning"`
}

// DemandForecast is the predicted demand for one category on one day.
type DemandForecast struct {
	Category          string    `json:"category"`
	ForecastDate      time.Time `json:"forecast_date"`
	PredictedDemand   float64   `json:"predicted_demand"`
	ConfidenceScore   float64   `json:"confidence_level"`
	TrendFactor       float64   `json:"trend_factor"`
	SeasonalFactor    float64   `json:"seasonal_factor"`
	CompetitionFactor float64   `json:"competition_factor"`
	WeatherFactor     float64   `json:"weather_factor"`
	AdjustmentFactors []string  `json:"adjustment_factors"`
}

// CombinedFactor is the product of all multipliers applied to the baseline.
func (f DemandForecast) CombinedFactor() float64 {
	return f.TrendFactor * f.SeasonalFactor * f.CompetitionFactor * f.WeatherFactor
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
