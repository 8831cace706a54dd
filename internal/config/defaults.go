package config

import "time"

// Default values applied to unset configuration fields.  The refresh interval
// and cache TTL deliberately share the same 15-minute cadence: a cached brief
// survives at most one snapshot replacement cycle beyond the one it was
// generated in.
const (
	DefaultServerPort      = 8000
	DefaultServerMode      = "release"
	DefaultRefreshInterval = 15 * time.Minute
	DefaultCountryLimit    = 15
	DefaultHistorySize     = 30
	DefaultCacheTTL        = 900 * time.Second
	DefaultMaxHeadlines    = 10
	DefaultNewsTimeout     = 10 * time.Second
	DefaultOpenAIModel     = "gpt-4o"
	DefaultOpenAITimeout   = 45 * time.Second
	DefaultStaleAfter      = 48 * time.Hour
	DefaultMLBaseURL       = "http://localhost:8501"
	DefaultMLTimeout       = 30 * time.Second
)

// ApplyDefaults fills every unset field of cfg with its platform default.
// It never overwrites a value the operator supplied.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}

	if cfg.Refresh.Interval == 0 {
		cfg.Refresh.Interval = DefaultRefreshInterval
	}
	if cfg.Refresh.CountryLimit == 0 {
		cfg.Refresh.CountryLimit = DefaultCountryLimit
	}
	if cfg.Refresh.HistorySize == 0 {
		cfg.Refresh.HistorySize = DefaultHistorySize
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}

	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "sentinel:"
	}

	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 8
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}

	if cfg.Kafka.Topic == "" && len(cfg.Kafka.Brokers) > 0 {
		cfg.Kafka.Topic = "sentinel.escalation-alerts"
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 16
	}

	if cfg.News.BaseURL == "" {
		cfg.News.BaseURL = "https://newsapi.org/v2/everything"
	}
	if cfg.News.MaxHeadlines == 0 {
		cfg.News.MaxHeadlines = DefaultMaxHeadlines
	}
	if cfg.News.Timeout == 0 {
		cfg.News.Timeout = DefaultNewsTimeout
	}

	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = DefaultOpenAIModel
	}
	if cfg.OpenAI.Temperature == 0 {
		cfg.OpenAI.Temperature = 0.3
	}
	if cfg.OpenAI.MaxTokens == 0 {
		cfg.OpenAI.MaxTokens = 1500
	}
	if cfg.OpenAI.Timeout == 0 {
		cfg.OpenAI.Timeout = DefaultOpenAITimeout
	}

	if cfg.ML.BaseURL == "" {
		cfg.ML.BaseURL = DefaultMLBaseURL
	}
	if cfg.ML.Timeout == 0 {
		cfg.ML.Timeout = DefaultMLTimeout
	}

	if cfg.Sources.DataDir == "" {
		cfg.Sources.DataDir = "data"
	}
	if cfg.Sources.StaleAfter == 0 {
		cfg.Sources.StaleAfter = DefaultStaleAfter
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// NewDefaultConfig returns a Config populated entirely from defaults,
// suitable for local development without a config file.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
