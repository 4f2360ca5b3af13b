package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Pipeline  PipelineConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds catalog source configuration
type CatalogConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryBackoff      time.Duration `mapstructure:"retry_backoff"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// PipelineConfig holds pipeline run configuration
type PipelineConfig struct {
	BatchSize           int           `mapstructure:"batch_size"`
	BatchPause          time.Duration `mapstructure:"batch_pause"`
	ConfidenceThreshold float64       `mapstructure:"confidence_threshold"`
	LookupTimeout       time.Duration `mapstructure:"lookup_timeout"`
	EnableDebugLogging  bool          `mapstructure:"enable_debug_logging"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds HTTP rate limiting configuration
type RateLimitConfig struct {
	PerSecond float64 `mapstructure:"per_second"`
	Burst     int     `mapstructure:"burst"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/optical-pipeline/")

	v.SetEnvPrefix("OPTICAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Catalog defaults
	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.base_url", "https://api.framesdata.example.com")
	v.SetDefault("catalog.request_timeout", "15s")
	v.SetDefault("catalog.max_retries", 3)
	v.SetDefault("catalog.retry_backoff", "500ms")
	v.SetDefault("catalog.requests_per_second", 5.0)

	// Pipeline defaults
	v.SetDefault("pipeline.batch_size", 5)
	v.SetDefault("pipeline.batch_pause", "250ms")
	v.SetDefault("pipeline.confidence_threshold", 50.0)
	v.SetDefault("pipeline.lookup_timeout", "10s")
	v.SetDefault("pipeline.enable_debug_logging", false)

	// Cache defaults (per-run cache; zero TTL means run-lifetime entries)
	v.SetDefault("cache.ttl", "0s")

	// HTTP rate limit defaults
	v.SetDefault("ratelimit.per_second", 10.0)
	v.SetDefault("ratelimit.burst", 20)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.APIKey == "" {
		return fmt.Errorf("catalog API key is required (set OPTICAL_CATALOG_API_KEY)")
	}
	if config.Pipeline.BatchSize < 1 {
		return fmt.Errorf("pipeline batch size must be at least 1, got: %d", config.Pipeline.BatchSize)
	}
	if config.Pipeline.ConfidenceThreshold < 0 || config.Pipeline.ConfidenceThreshold > 100 {
		return fmt.Errorf("confidence threshold must be between 0 and 100, got: %.1f", config.Pipeline.ConfidenceThreshold)
	}
	return nil
}
