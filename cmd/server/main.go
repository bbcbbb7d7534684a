// @title Insight Service API
// @version 1.0
// @description Competitor proximity, sales trends, inventory advice, demand forecasts and prioritised insights for the home store network.
// @BasePath /
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kosarica/insight-service/config"
	_ "github.com/kosarica/insight-service/docs"
	"github.com/kosarica/insight-service/internal/analytics"
	"github.com/kosarica/insight-service/internal/database"
	"github.com/kosarica/insight-service/internal/engine"
	"github.com/kosarica/insight-service/internal/handlers"
	"github.com/kosarica/insight-service/internal/importer"
	"github.com/kosarica/insight-service/internal/llm"
	"github.com/kosarica/insight-service/internal/middleware"
	"github.com/kosarica/insight-service/internal/proximity"
	"github.com/kosarica/insight-service/internal/scheduler"
	"github.com/kosarica/insight-service/internal/storage"
	"github.com/kosarica/insight-service/internal/stores"
	"github.com/kosarica/insight-service/internal/telemetry"
	"github.com/kosarica/insight-service/internal/weather"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)
	log.Logger = *logger

	logger.Info().Msg("Starting insight service")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.TelemetryEnabled(),
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Telemetry.Environment,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	if config.GetDatabaseURL() != "" {
		if err := database.Connect(ctx, cfg.PoolConfig()); err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx, database.Pool()); err != nil {
			logger.Fatal().Err(err).Msg("Failed to apply database schema")
		}
		logger.Info().Msg("Database connected")
	}

	repo, admin, err := buildStores(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("source", cfg.Data.StoreSource).Msg("Failed to load stores")
	}
	logger.Info().Int("stores", repo.Len()).Str("source", cfg.Data.StoreSource).Msg("Store catalogue loaded")

	data := buildDataProvider(cfg)
	wx, cached := buildWeather(cfg, logger)

	analyzer := proximity.NewAnalyzer(repo, cfg.ProximityConfig())
	eng := engine.New(repo, analyzer, data, wx, cfg.EngineConfig())

	var generator llm.Generator
	if cfg.Gemini.APIKey != "" {
		gemini, err := llm.NewGeminiGenerator(ctx, cfg.Gemini)
		if err != nil {
			logger.Warn().Err(err).Msg("Gemini unavailable, chat uses fallback answers")
		} else {
			defer gemini.Close()
			generator = gemini
		}
	}
	assistant := llm.NewAssistant(eng, generator)

	sched, err := buildScheduler(cfg, logger, repo, eng, cached)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up scheduler")
	}
	runCtx, cancelRun := context.WithCancel(ctx)
	if sched != nil {
		sched.Start(runCtx)
	}

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handlers.New(eng, admin, assistant).Register(router, handlers.RouteConfig{
		AdminAPIKey: cfg.Server.AdminAPIKey,
		RateLimit: middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.Server.RequestsPerSecond,
			BurstSize:         cfg.Server.Burst,
			IdleTTL:           middleware.DefaultRateLimiterConfig().IdleTTL,
		},
		ChatPerSecond: cfg.Server.ChatPerSecond,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	cancelRun()
	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Telemetry shutdown failed")
	}

	logger.Info().Msg("Server exited")
}

// buildStores loads the catalogue from the configured source. Admin edits go
// through to Postgres when it is the source.
func buildStores(ctx context.Context, cfg *config.Config) (*stores.MemoryRepository, handlers.StoreAdmin, error) {
	switch cfg.Data.StoreSource {
	case config.SourcePostgres:
		if database.Pool() == nil {
			return nil, nil, fmt.Errorf("store source %q needs DATABASE_URL", cfg.Data.StoreSource)
		}
		pg := stores.NewPostgresSource(database.Pool())
		repo := stores.NewMemoryRepository()
		if err := repo.Refresh(ctx, pg); err != nil {
			return nil, nil, err
		}
		return repo, stores.NewWriteThrough(repo, pg, 0), nil
	case config.SourceFile:
		repo := stores.NewMemoryRepository()
		if err := repo.Refresh(ctx, importer.StoreFile{Path: cfg.Data.StoresFile}); err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	default:
		repo, err := stores.NewMemoryRepositoryFrom(stores.SeedStores())
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	}
}

func buildDataProvider(cfg *config.Config) analytics.DataProvider {
	if cfg.Data.SalesSource == config.SourcePostgres && database.Pool() != nil {
		return analytics.NewPostgresProvider(database.Pool())
	}
	return analytics.NewSyntheticProvider()
}

// buildWeather returns the live provider with a cache when an API key is set,
// and a fixed clear-sky snapshot otherwise.
func buildWeather(cfg *config.Config, logger *zerolog.Logger) (weather.Provider, *weather.CachedProvider) {
	if cfg.Weather.APIKey == "" {
		logger.Warn().Msg("WEATHER_API_KEY not set, using static weather")
		return weather.StaticProvider{Snapshot: weather.Snapshot{
			TemperatureC: 28,
			Humidity:     50,
			Condition:    weather.ConditionClear,
			Description:  "clear sky",
		}}, nil
	}
	client := weather.NewClient(weather.ClientConfig{
		BaseURL: cfg.Weather.BaseURL,
		APIKey:  cfg.Weather.APIKey,
		Limits:  cfg.Weather.Limits,
	}, logger)
	cached := weather.NewCachedProvider(client, cfg.Weather.CacheTTL)
	return cached, cached
}

func buildScheduler(cfg *config.Config, logger *zerolog.Logger, repo stores.Repository, eng *engine.Engine, cached *weather.CachedProvider) (*scheduler.Scheduler, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}
	var jobs []scheduler.Job
	if cached != nil {
		jobs = append(jobs, scheduler.WeatherRefreshJob(repo, cached, cfg.Scheduler.WeatherRefresh))
	}

	reports, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		return nil, err
	}
	jobs = append(jobs, scheduler.InsightArchiveJob(eng, reports, scheduler.ArchiveConfig{
		Interval:      cfg.Scheduler.InsightArchive,
		RetentionDays: cfg.Scheduler.ArchiveRetentionDays,
	}))
	return scheduler.New(logger, jobs...), nil
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "insight-service").Logger()
	return &logger
}
