// Package config provides application configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"currencyconverter/internal/rates"
)

// Cache backends for the rates snapshot.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
)

// Config holds the complete application configuration.
type Config struct {
	Server            ServerConfig
	Rates             RatesConfig
	Symbols           SymbolsConfig
	OpenExchangeRates OpenExchangeRatesConfig `mapstructure:"openexchangerates"`
	Frankfurter       FrankfurterConfig       `mapstructure:"frankfurter"`
	ExchangeRateHost  ExchangeRateHostConfig  `mapstructure:"exchangerate_host"`
	Redis             RedisConfig
	Database          DatabaseConfig
	Worker            WorkerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int  `mapstructure:"port"`
	ServeSwagger  bool `mapstructure:"serve_swagger"`
	ServeAsynqmon bool `mapstructure:"serve_asynqmon"`
}

// RatesConfig controls where rates come from and how long a cached snapshot
// is trusted.
type RatesConfig struct {
	Mode          string `mapstructure:"mode"`
	CacheBackend  string `mapstructure:"cache_backend"`
	CachePath     string `mapstructure:"cache_path"`
	RedisKey      string `mapstructure:"redis_key"`
	StaleAfterSec int    `mapstructure:"stale_after_sec"`
}

// StaleAfter returns the staleness threshold.
func (c RatesConfig) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterSec) * time.Second
}

// SymbolsConfig points at the currency symbol table.
type SymbolsConfig struct {
	Path string `mapstructure:"path"`
}

// OpenExchangeRatesConfig holds settings for the primary provider. It is
// enabled when an app id is set.
type OpenExchangeRatesConfig struct {
	BaseURL string `mapstructure:"base_url"`
	AppID   string `mapstructure:"app_id"`
	Timeout int    `mapstructure:"timeout_sec"`
}

// FrankfurterConfig holds settings for the frankfurter provider.
type FrankfurterConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	Base    string `mapstructure:"base"`
	Timeout int    `mapstructure:"timeout_sec"`
}

// ExchangeRateHostConfig holds settings for the exchangerate.host provider.
// It is enabled when an api key is set.
type ExchangeRateHostConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Source  string `mapstructure:"source"`
	Timeout int    `mapstructure:"timeout_sec"`
}

// RedisConfig holds connection settings for both Redis instances.
type RedisConfig struct {
	AsynqAddr string `mapstructure:"asynq_addr"` // Redis instance for the Asynq task queue.
	CacheAddr string `mapstructure:"cache_addr"` // Redis instance holding the rates snapshot.
}

// DatabaseConfig holds PostgreSQL connection settings for the conversion audit log.
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSec int    `mapstructure:"conn_max_lifetime_sec"`
	DSN                string
}

// WorkerConfig holds background refresh worker and task queue settings.
type WorkerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Concurrency  int    `mapstructure:"concurrency"`
	MaxRetry     int    `mapstructure:"max_retry"`
	TimeoutSec   int    `mapstructure:"timeout_sec"`
	UniqueTTLSec int    `mapstructure:"unique_ttl_sec"`
	RefreshCron  string `mapstructure:"refresh_cron"`
}

// LoadConfig reads configuration from config files, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file found or error loading it: %v\n", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Config search paths
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("./internal/config")

	viper.SetEnvPrefix("CONVERTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if no config file, we have defaults and env
		fmt.Printf("Config file not found: %v\n", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeSec <= 0 {
		cfg.Database.ConnMaxLifetimeSec = 300
	}

	cfg.Database.DSN = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.User, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Name, cfg.Database.SSLMode)

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.serve_swagger", true)
	viper.SetDefault("server.serve_asynqmon", false)
	viper.SetDefault("rates.mode", string(rates.ModeCachedRefresh))
	viper.SetDefault("rates.cache_backend", CacheBackendFile)
	viper.SetDefault("rates.cache_path", "data/rates.json")
	viper.SetDefault("rates.redis_key", rates.DefaultRedisKey)
	viper.SetDefault("rates.stale_after_sec", int(rates.DefaultStaleAfter/time.Second))
	viper.SetDefault("symbols.path", "testdata/currency_symbols.txt")
	viper.SetDefault("openexchangerates.base_url", "https://openexchangerates.org/api/latest.json")
	viper.SetDefault("openexchangerates.app_id", "")
	viper.SetDefault("openexchangerates.timeout_sec", 10)
	viper.SetDefault("frankfurter.enabled", true)
	viper.SetDefault("frankfurter.base_url", "https://api.frankfurter.dev/v1")
	viper.SetDefault("frankfurter.base", "USD")
	viper.SetDefault("frankfurter.timeout_sec", 5)
	viper.SetDefault("exchangerate_host.base_url", "https://api.exchangerate.host")
	viper.SetDefault("exchangerate_host.api_key", "")
	viper.SetDefault("exchangerate_host.source", "USD")
	viper.SetDefault("exchangerate_host.timeout_sec", 5)
	viper.SetDefault("redis.asynq_addr", "redis_asynq:6380")
	viper.SetDefault("redis.cache_addr", "redis_cache:6381")
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.host", "db")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.name", "converterdb")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime_sec", 300)
	viper.SetDefault("worker.enabled", false)
	viper.SetDefault("worker.concurrency", 1)
	viper.SetDefault("worker.max_retry", 3)
	viper.SetDefault("worker.timeout_sec", 30)
	viper.SetDefault("worker.unique_ttl_sec", 60)
	viper.SetDefault("worker.refresh_cron", "")
}

// HasProvider reports whether at least one remote provider is configured.
func (c *Config) HasProvider() bool {
	return c.OpenExchangeRates.AppID != "" || c.Frankfurter.Enabled || c.ExchangeRateHost.APIKey != ""
}

// Validate checks that all required configuration fields are set and valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}

	mode, err := rates.ParseMode(c.Rates.Mode)
	if err != nil {
		errs = append(errs, fmt.Errorf("rates.mode: %w", err))
	}
	switch c.Rates.CacheBackend {
	case CacheBackendFile:
		if c.Rates.CachePath == "" && mode != rates.ModeRemote {
			errs = append(errs, fmt.Errorf("rates.cache_path is required for mode %s (set CONVERTER_RATES_CACHE_PATH)", mode))
		}
	case CacheBackendRedis:
		if c.Redis.CacheAddr == "" {
			errs = append(errs, fmt.Errorf("redis.cache_addr is required for the redis cache backend (set CONVERTER_REDIS_CACHE_ADDR)"))
		}
		if c.Rates.RedisKey == "" {
			errs = append(errs, fmt.Errorf("rates.redis_key is required for the redis cache backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("rates.cache_backend must be %q or %q, got %q",
			CacheBackendFile, CacheBackendRedis, c.Rates.CacheBackend))
	}
	if c.Rates.StaleAfterSec <= 0 {
		errs = append(errs, fmt.Errorf("rates.stale_after_sec must be positive, got %d", c.Rates.StaleAfterSec))
	}
	if mode != rates.ModeCachedOnly && !c.HasProvider() {
		errs = append(errs, fmt.Errorf("mode %s needs a provider: set openexchangerates.app_id, exchangerate_host.api_key or enable frankfurter", mode))
	}

	if c.Symbols.Path == "" {
		errs = append(errs, fmt.Errorf("symbols.path is required"))
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, fmt.Errorf("database.host is required"))
		}
		if c.Database.Port <= 0 {
			errs = append(errs, fmt.Errorf("database.port must be positive, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required"))
		}
		if c.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required"))
		}
	}

	if c.Worker.Enabled {
		if c.Redis.AsynqAddr == "" {
			errs = append(errs, fmt.Errorf("redis.asynq_addr is required (set CONVERTER_REDIS_ASYNQ_ADDR)"))
		}
		if mode == rates.ModeCachedOnly {
			errs = append(errs, fmt.Errorf("worker.enabled requires a mode that can refresh, got %s", mode))
		}
		if c.Worker.Concurrency <= 0 {
			errs = append(errs, fmt.Errorf("worker.concurrency must be positive, got %d", c.Worker.Concurrency))
		}
		if c.Worker.MaxRetry < 0 {
			errs = append(errs, fmt.Errorf("worker.max_retry must be non-negative, got %d", c.Worker.MaxRetry))
		}
		if c.Worker.TimeoutSec <= 0 {
			errs = append(errs, fmt.Errorf("worker.timeout_sec must be positive, got %d", c.Worker.TimeoutSec))
		}
		if c.Worker.UniqueTTLSec <= 0 {
			errs = append(errs, fmt.Errorf("worker.unique_ttl_sec must be positive, got %d", c.Worker.UniqueTTLSec))
		}
	}

	return errors.Join(errs...)
}
