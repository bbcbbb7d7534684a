package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kosarica/insight-service/internal/engine"
)

var (
	analyzeOutput   string
	analyzeRadius   float64
	analyzeDays     int
	analyzeForecast int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <storeId>",
	Short: "Run the full insight analysis for a home store",
	Long: `Runs proximity, sales trend, inventory, demand forecast and insight
synthesis for one home store and prints the prioritised insights. Use
--output json for the complete report.`,
	Example: `  insight-service analyze HS-ROH-01
  insight-service analyze HS-CP-01 --radius 3 --days 14
  insight-service analyze HS-LJN-01 --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "table", "Output format: table or json")
	analyzeCmd.Flags().Float64Var(&analyzeRadius, "radius", 0, "Competition radius in km (default from config)")
	analyzeCmd.Flags().IntVar(&analyzeDays, "days", 0, "Sales window in days (default from config)")
	analyzeCmd.Flags().IntVar(&analyzeForecast, "forecast-days", 0, "Forecast horizon in days (default from config)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeOutput != "table" && analyzeOutput != "json" {
		return fmt.Errorf("invalid output format: %s (use table or json)", analyzeOutput)
	}
	ctx := context.Background()
	e, err := loadEngine(ctx)
	if err != nil {
		return err
	}

	report, err := e.Analyze(ctx, engine.Request{
		StoreID:      args[0],
		RadiusKm:     analyzeRadius,
		WindowDays:   analyzeDays,
		ForecastDays: analyzeForecast,
	})
	if err != nil {
		return err
	}

	if analyzeOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("%s (%s)\n", report.Store.Name, report.Store.StoreID)
	fmt.Printf("Competitors within %.1f km: %d\n", report.Proximity.RadiusKm, report.Proximity.Count())
	if report.Trend.HasData() {
		fmt.Printf("Sales over %d days: %.0f (%+.1f%%)\n", report.Trend.Days, report.Trend.TotalSales, report.Trend.SalesGrowth)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PRIORITY\tCATEGORY\tTITLE\tCONFIDENCE")
	fmt.Fprintln(w, "--------\t--------\t-----\t----------")
	for _, in := range report.Insights {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", in.Priority, in.Category, in.Title, in.ConfidenceScore)
	}
	return w.Flush()
}
