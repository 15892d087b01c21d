package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	StorageBackendMemory   = "memory"
	StorageBackendRedis    = "redis"
	StorageBackendPostgres = "postgres"
)

type Config struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Environment string `toml:"environment"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// storage
	StorageBackend  string `toml:"storage_backend"`
	ReadCacheSizeMB int    `toml:"read_cache_size_mb"`
	RedisHost       string `toml:"redis_host"`
	RedisPort       string `toml:"redis_port"`
	RedisKeyPrefix  string `toml:"redis_key_prefix"`
	PostgresHost    string `toml:"postgres_host"`
	PostgresPort    string `toml:"postgres_port"`
	PostgresDBName  string `toml:"postgres_db_name"`
	PostgresTable   string `toml:"postgres_table"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// workouts rate limiting, only used with the redis backend
	RateLimitAllowedPerMin int `toml:"rate_limit_allowed_per_min"`

	// celebrations
	CelebrationsFeedSize int    `toml:"celebrations_feed_size"`
	CelebrationsChannel  string `toml:"celebrations_channel"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the section for the given env,
// with defaults applied to the unset fields.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode toml config: %w", err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env [%s] missing", env)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.StorageBackend == "" {
		c.StorageBackend = StorageBackendMemory
	}
	if c.RedisKeyPrefix == "" {
		c.RedisKeyPrefix = "fittrack::"
	}
	if c.PostgresTable == "" {
		c.PostgresTable = "fittrack_kv"
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "localhost"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
	if c.CelebrationsFeedSize <= 0 {
		c.CelebrationsFeedSize = 50
	}
	if c.CelebrationsChannel == "" {
		c.CelebrationsChannel = "fittrack:celebrations"
	}
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageBackendMemory:
	case StorageBackendRedis:
		if c.RedisHost == "" || c.RedisPort == "" {
			return errors.New("redis backend requires redis_host and redis_port")
		}
	case StorageBackendPostgres:
		if c.PostgresHost == "" || c.PostgresPort == "" || c.PostgresDBName == "" {
			return errors.New("postgres backend requires postgres_host, postgres_port and postgres_db_name")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", c.StorageBackend)
	}
	if c.ReadCacheSizeMB < 0 {
		return errors.New("read_cache_size_mb must not be negative")
	}
	return nil
}
