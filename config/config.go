package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/kosarica/insight-service/internal/analytics"
	"github.com/kosarica/insight-service/internal/database"
	"github.com/kosarica/insight-service/internal/engine"
	"github.com/kosarica/insight-service/internal/http/ratelimit"
	"github.com/kosarica/insight-service/internal/insights"
	"github.com/kosarica/insight-service/internal/llm"
	"github.com/kosarica/insight-service/internal/proximity"
	"github.com/kosarica/insight-service/internal/storage"
	"github.com/kosarica/insight-service/internal/weather"
)

// EnvPrefix prefixes every automatically bound environment variable.
const EnvPrefix = "INSIGHT_SERVICE"

// Store and sales data sources.
const (
	SourceSeed      = "seed"
	SourcePostgres  = "postgres"
	SourceFile      = "file"
	SourceSynthetic = "synthetic"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Database  DatabaseConfig   `mapstructure:"database"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	Analysis  AnalysisConfig   `mapstructure:"analysis"`
	Insights  insights.Config  `mapstructure:"insights"`
	Weather   WeatherConfig    `mapstructure:"weather"`
	Gemini    llm.GeminiConfig `mapstructure:"gemini"`
	Scheduler SchedulerConfig  `mapstructure:"scheduler"`
	Storage   StorageConfig    `mapstructure:"storage"`
	Telemetry TelemetryConfig  `mapstructure:"telemetry"`
	Data      DataConfig       `mapstructure:"data"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	Host              string        `mapstructure:"host"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	AdminAPIKey       string        `mapstructure:"admin_api_key"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	ChatPerSecond     float64       `mapstructure:"chat_per_second"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	ConnectAttempts int           `mapstructure:"connect_attempts"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// AnalysisConfig holds the proximity and analytics settings.
type AnalysisConfig struct {
	DefaultRadiusKm float64                   `mapstructure:"default_radius_km"`
	WindowDays      int                       `mapstructure:"window_days"`
	ForecastDays    int                       `mapstructure:"forecast_days"`
	MaxWindowDays   int                       `mapstructure:"max_window_days"`
	MaxForecastDays int                       `mapstructure:"max_forecast_days"`
	Concurrency     int                       `mapstructure:"concurrency"`
	CacheTTL        time.Duration             `mapstructure:"cache_ttl"`
	Inventory       analytics.InventoryConfig `mapstructure:"inventory"`
	Forecast        analytics.ForecastConfig  `mapstructure:"forecast"`
}

// WeatherConfig holds the weather provider settings. Without an API key a
// static snapshot is served.
type WeatherConfig struct {
	APIKey   string             `mapstructure:"api_key"`
	BaseURL  string             `mapstructure:"base_url"`
	CacheTTL time.Duration      `mapstructure:"cache_ttl"`
	Limits   ratelimit.Config `mapstructure:"limits"`
}

// SchedulerConfig holds the background job settings.
type SchedulerConfig struct {
	Enabled              bool          `mapstructure:"enabled"`
	WeatherRefresh       time.Duration `mapstructure:"weather_refresh"`
	InsightArchive       time.Duration `mapstructure:"insight_archive"`
	ArchiveRetentionDays int           `mapstructure:"archive_retention_days"`
}

// StorageConfig holds report archive storage configuration
type StorageConfig struct {
	Type     string `mapstructure:"type"`
	BasePath string `mapstructure:"base_path"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Environment string `mapstructure:"environment"`
}

// DataConfig selects where stores and sales data come from.
type DataConfig struct {
	StoreSource string `mapstructure:"store_source"`
	StoresFile  string `mapstructure:"stores_file"`
	SalesSource string `mapstructure:"sales_source"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// loadEnvFile loads the first .env found. Variables already set in the
// environment win.
func loadEnvFile() error {
	for _, path := range []string{".env", "config/.env"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return godotenv.Load(path)
	}
	return errors.New("no .env file found")
}

// bindEnvVars binds the conventional unprefixed variable names
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("database.url", "DATABASE_URL", EnvPrefix+"_DATABASE_URL")
	_ = v.BindEnv("server.port", "PORT", EnvPrefix+"_SERVER_PORT")
	_ = v.BindEnv("server.host", "HOST", EnvPrefix+"_SERVER_HOST")
	_ = v.BindEnv("server.admin_api_key", "ADMIN_API_KEY", EnvPrefix+"_SERVER_ADMIN_API_KEY")
	_ = v.BindEnv("logging.level", "LOG_LEVEL", EnvPrefix+"_LOGGING_LEVEL")
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY", EnvPrefix+"_GEMINI_API_KEY")
	_ = v.BindEnv("weather.api_key", "WEATHER_API_KEY", EnvPrefix+"_WEATHER_API_KEY")
	_ = v.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT", EnvPrefix+"_TELEMETRY_ENDPOINT")
	_ = v.BindEnv("storage.base_path", "STORAGE_PATH", EnvPrefix+"_STORAGE_BASE_PATH")
}

// setDefaults sets default configuration values. Domain defaults come from
// the packages that own them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.admin_api_key", "")
	v.SetDefault("server.requests_per_second", 10)
	v.SetDefault("server.burst", 20)
	v.SetDefault("server.chat_per_second", 2)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)
	v.SetDefault("database.connect_attempts", 5)
	v.SetDefault("database.retry_delay", 500*time.Millisecond)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	prox := proximity.DefaultConfig()
	eng := engine.DefaultConfig()
	v.SetDefault("analysis.default_radius_km", prox.DefaultRadiusKm)
	v.SetDefault("analysis.window_days", eng.WindowDays)
	v.SetDefault("analysis.forecast_days", eng.ForecastDays)
	v.SetDefault("analysis.max_window_days", eng.MaxWindowDays)
	v.SetDefault("analysis.max_forecast_days", eng.MaxForecastDays)
	v.SetDefault("analysis.concurrency", eng.Concurrency)
	v.SetDefault("analysis.cache_ttl", prox.CacheTTL)

	inv := analytics.DefaultInventoryConfig()
	v.SetDefault("analysis.inventory.target_days_of_cover", inv.TargetDaysOfCover)
	v.SetDefault("analysis.inventory.overstock_slack", inv.OverstockSlack)
	v.SetDefault("analysis.inventory.holding_cost_per_unit", inv.HoldingCostPerUnit)

	fc := analytics.DefaultForecastConfig()
	v.SetDefault("analysis.forecast.base_confidence", fc.BaseConfidence)
	v.SetDefault("analysis.forecast.horizon_decay", fc.HorizonDecay)
	v.SetDefault("analysis.forecast.min_confidence", fc.MinConfidence)
	v.SetDefault("analysis.forecast.max_confidence", fc.MaxConfidence)
	v.SetDefault("analysis.forecast.competition_weight", fc.CompetitionWeight)
	v.SetDefault("analysis.forecast.weather_horizon_days", fc.WeatherHorizonDays)

	ins := insights.DefaultConfig()
	conditions := make([]string, len(ins.HighImpactConditions))
	for i, c := range ins.HighImpactConditions {
		conditions[i] = string(c)
	}
	v.SetDefault("insights.density_threshold", ins.DensityThreshold)
	v.SetDefault("insights.sales_decline_pct", ins.SalesDeclinePct)
	v.SetDefault("insights.category_decline_pct", ins.CategoryDeclinePct)
	v.SetDefault("insights.strong_growth_pct", ins.StrongGrowthPct)
	v.SetDefault("insights.hot_temperature_c", ins.HotTemperatureC)
	v.SetDefault("insights.cold_temperature_c", ins.ColdTemperatureC)
	v.SetDefault("insights.surge_factor", ins.SurgeFactor)
	v.SetDefault("insights.high_impact_conditions", conditions)
	v.SetDefault("insights.critical_ttl", ins.CriticalTTL)
	v.SetDefault("insights.high_ttl", ins.HighTTL)
	v.SetDefault("insights.medium_ttl", ins.MediumTTL)

	limits := ratelimit.DefaultConfig()
	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.base_url", weather.DefaultBaseURL)
	v.SetDefault("weather.cache_ttl", 15*time.Minute)
	v.SetDefault("weather.limits.requests_per_second", limits.RequestsPerSecond)
	v.SetDefault("weather.limits.max_retries", limits.MaxRetries)
	v.SetDefault("weather.limits.initial_backoff", limits.InitialBackoff)
	v.SetDefault("weather.limits.max_backoff", limits.MaxBackoff)
	v.SetDefault("weather.limits.timeout", limits.Timeout)

	gem := llm.DefaultGeminiConfig()
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", gem.Model)
	v.SetDefault("gemini.temperature", gem.Temperature)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.weather_refresh", 15*time.Minute)
	v.SetDefault("scheduler.insight_archive", 6*time.Hour)
	v.SetDefault("scheduler.archive_retention_days", 30)

	v.SetDefault("storage.type", string(storage.TypeLocal))
	v.SetDefault("storage.base_path", "./data/reports")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.service_name", "insight-service")
	v.SetDefault("telemetry.environment", "")

	v.SetDefault("data.store_source", SourceSeed)
	v.SetDefault("data.stores_file", "")
	v.SetDefault("data.sales_source", SourceSynthetic)
}

// Validate checks cross-field constraints and every domain section.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: must be between 1 and 65535")
	}
	if err := c.ProximityConfig().Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if err := c.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	switch c.Data.StoreSource {
	case SourceSeed:
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("data.store_source: postgres requires database.url")
		}
	case SourceFile:
		if c.Data.StoresFile == "" {
			return fmt.Errorf("data.store_source: file requires data.stores_file")
		}
	default:
		return fmt.Errorf("data.store_source: unknown source %q", c.Data.StoreSource)
	}

	switch c.Data.SalesSource {
	case SourceSynthetic:
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("data.sales_source: postgres requires database.url")
		}
	default:
		return fmt.Errorf("data.sales_source: unknown source %q", c.Data.SalesSource)
	}

	if storage.Type(c.Storage.Type) != storage.TypeLocal {
		return fmt.Errorf("storage.type: unsupported type %q", c.Storage.Type)
	}
	if c.Scheduler.Enabled && (c.Scheduler.WeatherRefresh <= 0 || c.Scheduler.InsightArchive <= 0) {
		return fmt.Errorf("scheduler: intervals must be positive")
	}
	return nil
}

// ProximityConfig returns the proximity analyzer settings.
func (c *Config) ProximityConfig() proximity.Config {
	return proximity.Config{
		DefaultRadiusKm: c.Analysis.DefaultRadiusKm,
		Concurrency:     c.Analysis.Concurrency,
		CacheTTL:        c.Analysis.CacheTTL,
	}
}

// EngineConfig returns the analysis pipeline settings.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		WindowDays:      c.Analysis.WindowDays,
		ForecastDays:    c.Analysis.ForecastDays,
		MaxWindowDays:   c.Analysis.MaxWindowDays,
		MaxForecastDays: c.Analysis.MaxForecastDays,
		Concurrency:     c.Analysis.Concurrency,
		Inventory:       c.Analysis.Inventory,
		Forecast:        c.Analysis.Forecast,
		Insights:        c.Insights,
	}
}

// PoolConfig returns the Postgres pool settings for the resolved database URL.
func (c *Config) PoolConfig() database.PoolConfig {
	return database.PoolConfig{
		URL:             GetDatabaseURL(),
		MaxConns:        c.Database.MaxConnections,
		MinConns:        c.Database.MinConnections,
		MaxConnLifetime: c.Database.MaxConnLifetime,
		MaxConnIdleTime: c.Database.MaxConnIdleTime,
		ConnectAttempts: c.Database.ConnectAttempts,
		RetryDelay:      c.Database.RetryDelay,
	}
}

// TelemetryEnabled reports whether traces should be exported. Setting an
// endpoint turns export on.
func (c *Config) TelemetryEnabled() bool {
	return c.Telemetry.Enabled || c.Telemetry.Endpoint != ""
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// GetDatabaseURL returns the database URL from config or environment
func GetDatabaseURL() string {
	if cfg := Get(); cfg != nil && cfg.Database.URL != "" {
		return cfg.Database.URL
	}
	return os.Getenv("DATABASE_URL")
}
