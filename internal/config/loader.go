package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"dealfeed/internal/constants"
)

func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("source.base_url", constants.DefaultBaseURL)
	viper.SetDefault("source.redirect_base", constants.DefaultRedirectBase)
	viper.SetDefault("source.pages_to_fetch", constants.DefaultPagesToFetch)
	viper.SetDefault("source.page_size", constants.DefaultPageSize)
	viper.SetDefault("source.sort_by", constants.DefaultSortBy)
	viper.SetDefault("source.requests_per_second", constants.DefaultRequestsPerSecond)
	viper.SetDefault("source.lookup_concurrency", constants.DefaultLookupConcurrency)
	viper.SetDefault("source.timeout_seconds", 10)
	viper.SetDefault("source.retry.max_attempts", 3)
	viper.SetDefault("source.retry.initial_interval", "1s")
	viper.SetDefault("source.retry.max_interval", "30s")
	viper.SetDefault("source.retry.multiplier", 2.0)

	viper.SetDefault("ranking.featured_count", constants.DefaultFeaturedCount)

	viper.SetDefault("cache.ttl_seconds", constants.DefaultCacheTTL)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

func bindEnvVariables() {
	viper.BindEnv("source.base_url", "SOURCE_BASE_URL")
	viper.BindEnv("source.redirect_base", "SOURCE_REDIRECT_BASE")
	viper.BindEnv("source.pages_to_fetch", "SOURCE_PAGES_TO_FETCH")
	viper.BindEnv("source.page_size", "SOURCE_PAGE_SIZE")
	viper.BindEnv("source.sort_by", "SOURCE_SORT_BY")

	viper.BindEnv("filter.min_discount_amount", "FILTER_MIN_DISCOUNT_AMOUNT")
	viper.BindEnv("filter.max_price", "FILTER_MAX_PRICE")
	viper.BindEnv("filter.min_discount_percentage", "FILTER_MIN_DISCOUNT_PERCENTAGE")

	viper.BindEnv("output.path", "OUTPUT_PATH")
	viper.BindEnv("output.kafka.brokers", "OUTPUT_KAFKA_BROKERS")
	viper.BindEnv("output.kafka.topic", "OUTPUT_KAFKA_TOPIC")

	viper.BindEnv("cache.redis.host", "CACHE_REDIS_HOST")
	viper.BindEnv("cache.redis.port", "CACHE_REDIS_PORT")
	viper.BindEnv("cache.redis.password", "CACHE_REDIS_PASSWORD")
	viper.BindEnv("cache.redis.db", "CACHE_REDIS_DB")

	viper.BindEnv("server.enabled", "SERVER_ENABLED")
	viper.BindEnv("server.port", "SERVER_PORT")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")
}

func applyEnvOverrides(cfg *Config) error {
	if brokersEnv := viper.GetString("OUTPUT_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Output.Kafka.Brokers = brokers
		}
	}

	return nil
}
