package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kosarica/insight-service/internal/chains"
	"github.com/kosarica/insight-service/internal/geo"
	"github.com/kosarica/insight-service/internal/proximity"
)

var (
	storesChain    string
	storesHomeOnly bool
	proxRadius     float64
	proxAll        bool
)

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List stores in the catalogue",
	Example: `  insight-service stores
  insight-service stores --chain zudio
  insight-service stores --home`,
	Args: cobra.NoArgs,
	RunE: runStores,
}

var proximityCmd = &cobra.Command{
	Use:   "proximity [storeId]",
	Short: "Show active competitors around a home store",
	Long: `Lists active competitor stores within the radius of a home store, nearest
first. With --all, prints a per-chain summary for every active home store.`,
	Example: `  insight-service proximity HS-ROH-01
  insight-service proximity HS-ROH-01 --radius 2.5
  insight-service proximity --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProximity,
}

func init() {
	rootCmd.AddCommand(storesCmd)
	rootCmd.AddCommand(proximityCmd)

	storesCmd.Flags().StringVar(&storesChain, "chain", "", "Only stores of this chain")
	storesCmd.Flags().BoolVar(&storesHomeOnly, "home", false, "Only home stores")

	proximityCmd.Flags().Float64Var(&proxRadius, "radius", 0, "Radius in km (default from config)")
	proximityCmd.Flags().BoolVar(&proxAll, "all", false, "Analyze every home store")
}

func runStores(cmd *cobra.Command, args []string) error {
	e, err := loadEngine(context.Background())
	if err != nil {
		return err
	}

	chain := ""
	if storesChain != "" {
		var ok bool
		if chain, ok = chains.Canonical(storesChain); !ok {
			return fmt.Errorf("unknown chain: %s", storesChain)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "STORE ID\tCHAIN\tNAME\tCITY\tLAT\tLON\tACTIVE")
	fmt.Fprintln(w, "--------\t-----\t----\t----\t---\t---\t------")
	for _, s := range e.Stores().All() {
		if chain != "" && s.Chain != chain {
			continue
		}
		if storesHomeOnly && !s.IsHome() {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4f\t%.4f\t%t\n",
			s.StoreID, s.Chain, s.Name, s.Location.City, s.Location.Latitude, s.Location.Longitude, s.IsActive)
	}
	return w.Flush()
}

func runProximity(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	e, err := loadEngine(ctx)
	if err != nil {
		return err
	}

	if proxAll {
		results, err := e.CompetitorsAll(ctx, proxRadius)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "HOME STORE\tRADIUS KM\tCOMPETITORS\tCLOSEST\tKM\tCHAINS")
		fmt.Fprintln(w, "----------\t---------\t-----------\t-------\t--\t------")
		for _, r := range results {
			closest, km := "-", "-"
			if r.ClosestCompetitor != nil {
				closest = r.ClosestCompetitor.Store.StoreID
				km = fmt.Sprintf("%.1f", geo.RoundKm(r.ClosestCompetitor.DistanceKm, 1))
			}
			fmt.Fprintf(w, "%s\t%.1f\t%d\t%s\t%s\t%s\n", r.HomeStoreID, r.RadiusKm, r.Count(), closest, km, chainList(r))
		}
		return w.Flush()
	}

	if len(args) == 0 {
		return fmt.Errorf("either specify <storeId> or use --all flag")
	}
	r, err := e.Competitors(ctx, args[0], proxRadius)
	if err != nil {
		return err
	}

	fmt.Printf("%d competitors within %.1f km of %s\n\n", r.Count(), r.RadiusKm, r.HomeStoreID)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "STORE ID\tCHAIN\tNAME\tKM")
	fmt.Fprintln(w, "--------\t-----\t----\t--")
	for _, cd := range r.Competitors {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\n", cd.Store.StoreID, cd.Store.Chain, cd.Store.Name, geo.RoundKm(cd.DistanceKm, 1))
	}
	return w.Flush()
}

func chainList(r proximity.Result) string {
	summary := r.ChainSummaries()
	if len(summary) == 0 {
		return "-"
	}
	out := ""
	for i, s := range summary {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s x%d", s.Chain, s.Count)
	}
	return out
}
