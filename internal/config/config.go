package config

import (
	"time"
)

type Config struct {
	Source         SourceConfig
	Filter         FilterConfig
	Ranking        RankingConfig
	Output         OutputConfig
	Cache          CacheConfig
	Schedule       ScheduleConfig
	Server         ServerConfig
	Logging        LoggingConfig
	CircuitBreaker CircuitBreakerConfig
}

type SourceConfig struct {
	BaseURL           string      `mapstructure:"base_url"`
	RedirectBase      string      `mapstructure:"redirect_base"`
	PagesToFetch      int         `mapstructure:"pages_to_fetch"`
	PageSize          int         `mapstructure:"page_size"`
	SortBy            string      `mapstructure:"sort_by"`
	WatchTitles       []string    `mapstructure:"watch_titles"`
	RequestsPerSecond float64     `mapstructure:"requests_per_second"`
	LookupConcurrency int         `mapstructure:"lookup_concurrency"`
	TimeoutSeconds    int         `mapstructure:"timeout_seconds"`
	Retry             RetryConfig `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

type FilterConfig struct {
	MinDiscountAmount float64 `mapstructure:"min_discount_amount"`
	MaxPrice          float64 `mapstructure:"max_price"`
	// Accepted for compatibility with existing deployments. The acceptance
	// predicate does not apply it; see internal/dedup.
	MinDiscountPercentage float64 `mapstructure:"min_discount_percentage"`
}

type RankingConfig struct {
	FeaturedCount int `mapstructure:"featured_count"`
}

type OutputConfig struct {
	Path  string      `mapstructure:"path"`
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type CacheConfig struct {
	Enabled    bool        `mapstructure:"enabled"`
	TTLSeconds int         `mapstructure:"ttl_seconds"`
	Redis      RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ScheduleConfig controls periodic execution. A zero interval means run once
// and exit.
type ScheduleConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
