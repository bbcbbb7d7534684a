package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kosarica/insight-service/internal/analytics"
	"github.com/kosarica/insight-service/internal/database"
	"github.com/kosarica/insight-service/internal/importer"
	"github.com/kosarica/insight-service/internal/stores"
)

var (
	importDryRun    bool
	importMaxErrors int
)

var importStoresCmd = &cobra.Command{
	Use:   "import-stores <file>",
	Short: "Import a store catalogue file into Postgres",
	Long: `Parses a CSV or XLSX store file and upserts the valid rows into the stores
table. Delimiter and encoding are detected. Rows with an unknown chain,
unparseable coordinates or a repeated store ID are reported and skipped.`,
	Example: `  insight-service import-stores ./data/stores.csv
  insight-service import-stores ./data/stores.xlsx --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImportStores,
}

var importSalesCmd = &cobra.Command{
	Use:   "import-sales <file>",
	Short: "Import a sales history file into Postgres",
	Long: `Parses a CSV or XLSX file of sale lines (store_id, date, category, amount,
units) and appends the valid rows to the sales table.`,
	Example: `  insight-service import-sales ./data/sales-2026-09.csv
  insight-service import-sales ./data/sales.xlsx --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImportSales,
}

func init() {
	rootCmd.AddCommand(importStoresCmd)
	rootCmd.AddCommand(importSalesCmd)

	for _, c := range []*cobra.Command{importStoresCmd, importSalesCmd} {
		c.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and report without writing")
		c.Flags().IntVar(&importMaxErrors, "max-errors", 20, "Row errors to print")
	}
}

func readImportFile(path string) ([]byte, importer.Format, error) {
	format, err := importer.FormatFromFilename(path)
	if err != nil {
		return nil, "", err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return content, format, nil
}

func printRowErrors(errs []importer.RowError) {
	if len(errs) == 0 {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ROW\tFIELD\tERROR\tVALUE")
	fmt.Fprintln(w, "---\t-----\t-----\t-----")
	for i, e := range errs {
		if i == importMaxErrors {
			fmt.Fprintf(w, "...\t\t%d more\t\n", len(errs)-importMaxErrors)
			break
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.Row, e.Field, e.Message, e.Value)
	}
	w.Flush()
}

func runImportStores(cmd *cobra.Command, args []string) error {
	content, format, err := readImportFile(args[0])
	if err != nil {
		return err
	}
	result, err := importer.ParseStores(content, format)
	if err != nil {
		return err
	}

	fmt.Printf("Rows: %d  valid: %d  rejected: %d\n", result.TotalRows, result.ValidRows(), len(result.Errors))
	printRowErrors(result.Errors)

	if importDryRun || result.ValidRows() == 0 {
		return nil
	}
	n, err := stores.NewPostgresSource(database.Pool()).Upsert(context.Background(), result.Rows)
	if err != nil {
		return err
	}
	logger.Info().Int("stores", n).Str("file", args[0]).Msg("Stores imported")
	return nil
}

func runImportSales(cmd *cobra.Command, args []string) error {
	content, format, err := readImportFile(args[0])
	if err != nil {
		return err
	}
	result, err := importer.ParseSales(content, format)
	if err != nil {
		return err
	}

	fmt.Printf("Rows: %d  valid: %d  rejected: %d\n", result.TotalRows, result.ValidRows(), len(result.Errors))
	printRowErrors(result.Errors)

	byStore := importer.GroupByStore(result.Rows)
	ids := make([]string, 0, len(byStore))
	for id := range byStore {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if importDryRun {
		for _, id := range ids {
			fmt.Printf("  %s: %d lines\n", id, len(byStore[id]))
		}
		return nil
	}

	ctx := context.Background()
	provider := analytics.NewPostgresProvider(database.Pool())
	var total int64
	for _, id := range ids {
		n, err := provider.InsertSales(ctx, id, byStore[id])
		if err != nil {
			return fmt.Errorf("store %s: %w", id, err)
		}
		total += n
	}
	logger.Info().Int64("lines", total).Int("stores", len(ids)).Str("file", args[0]).Msg("Sales imported")
	return nil
}
