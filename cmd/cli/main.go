package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kosarica/insight-service/config"
	"github.com/kosarica/insight-service/internal/analytics"
	"github.com/kosarica/insight-service/internal/database"
	"github.com/kosarica/insight-service/internal/engine"
	"github.com/kosarica/insight-service/internal/importer"
	"github.com/kosarica/insight-service/internal/proximity"
	"github.com/kosarica/insight-service/internal/stores"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "insight-service",
	Short: "Insight Service CLI - store proximity and retail insight tool",
	Long: `A CLI tool for the home store network: list stores, find nearby competitors,
run the full insight analysis for a store and import store or sales files
(CSV or XLSX) into Postgres.`,
	PersistentPreRunE: persistentPreRun,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Config is optional for some commands, don't fail here
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
}

// persistentPreRun runs before each command and initializes dependencies
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	logger = initLogger()
	log.Logger = *logger

	if cfg == nil {
		return fmt.Errorf("config required for %s command but not loaded", cmd.Name())
	}

	if needsDatabase(cmd) {
		if err := initDatabase(); err != nil {
			return fmt.Errorf("database initialization failed: %w", err)
		}
		logger.Debug().Msg("Database connected")
	}

	return nil
}

// needsDatabase reports whether cmd reads or writes Postgres under the loaded config.
func needsDatabase(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "import-stores", "import-sales":
		dry, _ := cmd.Flags().GetBool("dry-run")
		return !dry
	}
	return cfg.Data.StoreSource == config.SourcePostgres || cfg.Data.SalesSource == config.SourcePostgres
}

func initLogger() *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if cfg != nil && cfg.Logging.Level != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			level = parsedLevel
		}
	}

	var output io.Writer
	if cfg != nil && cfg.Logging.Format == "json" {
		output = os.Stderr
	} else {
		noColor := false
		if cfg != nil {
			noColor = cfg.Logging.NoColor
		}
		output = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColor}
	}

	l := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &l
}

func initDatabase() error {
	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}

	ctx := context.Background()
	if err := database.Connect(ctx, cfg.PoolConfig()); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return database.EnsureSchema(ctx, database.Pool())
}

// loadEngine builds the analysis engine from the configured sources. Weather
// is left out; the CLI never calls the weather API.
func loadEngine(ctx context.Context) (*engine.Engine, error) {
	repo := stores.NewMemoryRepository()
	var src stores.Source
	switch cfg.Data.StoreSource {
	case config.SourcePostgres:
		src = stores.NewPostgresSource(database.Pool())
	case config.SourceFile:
		src = importer.StoreFile{Path: cfg.Data.StoresFile}
	}
	if src != nil {
		if err := repo.Refresh(ctx, src); err != nil {
			return nil, err
		}
	} else if err := repo.Replace(stores.SeedStores()); err != nil {
		return nil, err
	}

	var data analytics.DataProvider = analytics.NewSyntheticProvider()
	if cfg.Data.SalesSource == config.SourcePostgres {
		data = analytics.NewPostgresProvider(database.Pool())
	}

	analyzer := proximity.NewAnalyzer(repo, cfg.ProximityConfig())
	return engine.New(repo, analyzer, data, nil, cfg.EngineConfig()), nil
}

func main() {
	err := Execute()
	database.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
