package llm

import (
	"fmt"
	"strings"

	"github.com/kosarica/insight-service/internal/engine"
	"github.com/kosarica/insight-service/internal/geo"
)

// maxForecastLines caps how many forecast rows go into a prompt.
const maxForecastLines = 14

// BuildContext flattens the report sections selected by caps into plain text
// for prompt context.
func BuildContext(report engine.Report, caps []Capability) string {
	var b strings.Builder
	s := report.Store
	fmt.Fprintf(&b, "Store: %s (%s), %s, %s\n", s.Name, s.StoreID, s.Location.Address, s.Location.City)
	fmt.Fprintf(&b, "As of: %s\n", report.GeneratedAt.Format("2006-01-02 15:04"))

	for _, c := range caps {
		b.WriteString("\n")
		switch c {
		case CapabilityInsights:
			writeInsights(&b, report)
		case CapabilityCompetition:
			writeCompetition(&b, report)
		case CapabilityTrends:
			writeTrends(&b, report)
		case CapabilityInventory:
			writeInventory(&b, report)
		case CapabilityForecast:
			writeForecast(&b, report)
		case CapabilityWeather:
			writeWeather(&b, report)
		}
	}
	return b.String()
}

func writeInsights(b *strings.Builder, r engine.Report) {
	b.WriteString("## Insights\n")
	if len(r.Insights) == 0 {
		b.WriteString("No open insights.\n")
		return
	}
	for _, in := range r.Insights {
		fmt.Fprintf(b, "- [%s/%s] %s: %s\n", in.Priority, in.Category, in.Title, in.Description)
		for _, a := range in.RecommendedActions {
			fmt.Fprintf(b, "  * %s\n", a)
		}
	}
}

func writeCompetition(b *strings.Builder, r engine.Report) {
	p := r.Proximity
	fmt.Fprintf(b, "## Competition within %.1f km\n", p.RadiusKm)
	fmt.Fprintf(b, "Competitors: %d\n", p.Count())
	for _, cs := range p.ChainSummaries() {
		fmt.Fprintf(b, "- %s: %d stores, nearest %.1f km\n", cs.Chain, cs.Count, geo.RoundKm(cs.NearestKm, 1))
	}
	if c := p.ClosestCompetitor; c != nil {
		fmt.Fprintf(b, "Closest: %s at %.1f km\n", c.Store.Name, geo.RoundKm(c.DistanceKm, 1))
	}
}

func writeTrends(b *strings.Builder, r engine.Report) {
	t := r.Trend
	fmt.Fprintf(b, "## Sales, last %d days\n", t.Days)
	if !t.HasData() {
		b.WriteString("No sales data.\n")
		return
	}
	fmt.Fprintf(b, "Total: %.2f, per day: %.2f, growth: %+.1f%%\n", t.TotalSales, t.AverageDailySales, t.SalesGrowth)
	fmt.Fprintf(b, "Peak: %s %s\n", t.PeakSalesDay, t.PeakSalesPeriod)
	for _, c := range t.TrendingCategories {
		fmt.Fprintf(b, "- trending %s %+.1f%%\n", c.Category, c.GrowthPct)
	}
	for _, c := range t.UnderperformingCategories {
		fmt.Fprintf(b, "- declining %s %+.1f%%\n", c.Category, c.GrowthPct)
	}
}

func writeInventory(b *strings.Builder, r engine.Report) {
	b.WriteString("## Inventory\n")
	if len(r.Inventory) == 0 {
		b.WriteString("No stock data.\n")
		return
	}
	for _, rec := range r.Inventory {
		fmt.Fprintf(b, "- %s: stock %d, recommended %d, reorder %d, risk %.0f%% (%s)\n",
			rec.Category, rec.CurrentStock, rec.RecommendedStock, rec.ReorderQuantity, rec.StockoutRisk, rec.Urgency)
	}
}

func writeForecast(b *strings.Builder, r engine.Report) {
	b.WriteString("## Demand forecast\n")
	if len(r.Forecasts) == 0 {
		b.WriteString("No forecast available.\n")
		return
	}
	for i, f := range r.Forecasts {
		if i == maxForecastLines {
			fmt.Fprintf(b, "(%d more rows omitted)\n", len(r.Forecasts)-i)
			break
		}
		fmt.Fprintf(b, "- %s %s: %.1f units (confidence %.0f%%)\n",
			f.ForecastDate.Format("2006-01-02"), f.Category, f.PredictedDemand, f.ConfidenceScore)
	}
}

func writeWeather(b *strings.Builder, r engine.Report) {
	b.WriteString("## Weather\n")
	w := r.Weather
	if w == nil {
		b.WriteString("Weather unavailable.\n")
		return
	}
	fmt.Fprintf(b, "%s, %.1f°C, humidity %d%%, %s (%s)\n", w.Condition, w.TemperatureC, w.Humidity, w.Description, w.Period)
}
