// Package config defines all configuration structures for the Sentinel risk
// platform.  No I/O or parsing logic lives here — only plain data types,
// defaults, and validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// RefreshConfig controls the background snapshot rebuild job.
type RefreshConfig struct {
	// Interval is the time between refresh cycles.
	Interval time.Duration `mapstructure:"interval"`

	// CountryLimit caps how many roster entries each cycle scores, so a
	// cold start finishes in seconds rather than minutes.  Zero means the
	// whole roster.
	CountryLimit int `mapstructure:"country_limit"`

	// HistorySize is the maximum number of KPI history entries retained.
	HistorySize int `mapstructure:"history_size"`
}

// CacheConfig controls the on-demand enrichment (brief) cache.
type CacheConfig struct {
	// TTL is how long a generated narrative brief stays valid.
	TTL time.Duration `mapstructure:"ttl"`
}

// RedisConfig holds Redis connection parameters for the optional brief-cache
// backing store.  When Addr is empty the service uses its in-memory cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the prediction
// tracker.  When Host is empty the tracker runs in memory only.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN renders the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// KafkaConfig holds the escalation-alert publisher parameters.  When Brokers
// is empty, alert fan-out is disabled and alerts remain request-derived only.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BatchSize    int           `mapstructure:"batch_size"`
}

// NewsConfig holds the headline fetcher parameters.
type NewsConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	MaxHeadlines int           `mapstructure:"max_headlines"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// OpenAIConfig holds the narrative brief generator parameters.
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// MLConfig holds the model-serving endpoint the feature pipeline, risk
// classifier, anomaly model, sequence forecaster, and sentiment analyzer are
// reached through.
type MLConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SourcesConfig controls the data-source freshness scanner.
type SourcesConfig struct {
	// DataDir is the root directory holding per-source data drops
	// (gdelt/, acled/, ucdp/, world_bank/).
	DataDir string `mapstructure:"data_dir"`

	// StaleAfter marks a source inactive when its newest file is older
	// than this.
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

// Config is the root configuration object for the apiserver.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Refresh  RefreshConfig     `mapstructure:"refresh"`
	Cache    CacheConfig       `mapstructure:"cache"`
	Redis    RedisConfig       `mapstructure:"redis"`
	Database DatabaseConfig    `mapstructure:"database"`
	Kafka    KafkaConfig       `mapstructure:"kafka"`
	News     NewsConfig        `mapstructure:"news"`
	OpenAI   OpenAIConfig      `mapstructure:"openai"`
	ML       MLConfig          `mapstructure:"ml"`
	Sources  SourcesConfig     `mapstructure:"sources"`
	Log      logging.LogConfig `mapstructure:"log"`
}

// Validate checks invariants that defaults cannot repair.  It returns the
// first violation found, naming the offending key.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1,65535], got %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug|release|test, got %q", c.Server.Mode)
	}
	if c.Refresh.Interval < time.Second {
		return fmt.Errorf("refresh.interval must be at least 1s, got %s", c.Refresh.Interval)
	}
	if c.Refresh.CountryLimit < 0 {
		return fmt.Errorf("refresh.country_limit must not be negative, got %d", c.Refresh.CountryLimit)
	}
	if c.Refresh.HistorySize < 1 {
		return fmt.Errorf("refresh.history_size must be at least 1, got %d", c.Refresh.HistorySize)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Database.Host != "" {
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required when database.host is set")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database.db_name is required when database.host is set")
		}
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when kafka.brokers is set")
	}
	if c.News.MaxHeadlines < 1 {
		return fmt.Errorf("news.max_headlines must be at least 1, got %d", c.News.MaxHeadlines)
	}
	if c.ML.BaseURL == "" {
		return fmt.Errorf("ml.base_url is required")
	}
	return nil
}
