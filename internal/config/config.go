// Package config loads application configuration and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Retry    RetryConfig    `yaml:"retry" mapstructure:"retry"`
	// RateLimitMS maps an external service name to its minimum
	// inter-request interval in milliseconds.
	RateLimitMS map[string]int `yaml:"rate_limit_ms" mapstructure:"rate_limit_ms"`
	UserAgent   string         `yaml:"user_agent" mapstructure:"user_agent"`
	Server      ServerConfig   `yaml:"server" mapstructure:"server"`
	Log         LogConfig      `yaml:"log" mapstructure:"log"`
}

// GeocodeConfig configures the geocoding providers.
type GeocodeConfig struct {
	PostcodesIOBaseURL string `yaml:"postcodesio_base_url" mapstructure:"postcodesio_base_url"`
	NominatimBaseURL   string `yaml:"nominatim_base_url" mapstructure:"nominatim_base_url"`
	TimeoutSecs        int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	// Region is appended to Nominatim fallback queries, e.g. "London, UK".
	Region string `yaml:"region" mapstructure:"region"`
}

// OverpassConfig configures the Overpass API client.
type OverpassConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// CacheConfig configures the durable geocode cache backend.
type CacheConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite or postgres
	Path        string `yaml:"path" mapstructure:"path"`     // sqlite file path
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnalysisConfig holds the default per-job analysis parameters.
type AnalysisConfig struct {
	RadiusM    int     `yaml:"radius_m" mapstructure:"radius_m"`
	MaxAssignM float64 `yaml:"max_assign_m" mapstructure:"max_assign_m"`
	TopN       int     `yaml:"top_n" mapstructure:"top_n"`
}

// RetryConfig holds retry/backoff parameters for external calls.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml (optional) and the environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STREETSIGNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("geocode.postcodesio_base_url", "https://api.postcodes.io")
	v.SetDefault("geocode.nominatim_base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.timeout_secs", 10)
	v.SetDefault("geocode.region", "London, UK")
	v.SetDefault("overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout_secs", 240)
	v.SetDefault("cache.driver", "sqlite")
	v.SetDefault("cache.path", "geocode_cache.db")
	v.SetDefault("analysis.radius_m", 900)
	v.SetDefault("analysis.max_assign_m", 200.0)
	v.SetDefault("analysis.top_n", 3)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 2000)
	v.SetDefault("retry.max_backoff_ms", 30000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter_fraction", 0.25)
	// Nominatim usage policy caps clients at one request per two seconds;
	// Overpass tolerates one per second.
	v.SetDefault("rate_limit_ms", map[string]int{
		"postcodesio": 1000,
		"nominatim":   2000,
		"overpass":    1000,
	})
	v.SetDefault("user_agent", "StreetSignal/1.0 (salgadom7503@gmail.com)")
	v.SetDefault("server.port", 5001)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
