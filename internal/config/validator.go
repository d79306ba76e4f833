package config

import (
	"fmt"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateSource(cfg.Source); err != nil {
		errors = append(errors, err)
	}

	if err := validateFilter(cfg.Filter); err != nil {
		errors = append(errors, err)
	}

	if err := validateRanking(cfg.Ranking); err != nil {
		errors = append(errors, err)
	}

	if err := validateOutput(cfg.Output); err != nil {
		errors = append(errors, err)
	}

	if err := validateCache(cfg.Cache); err != nil {
		errors = append(errors, err)
	}

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateSource(cfg SourceConfig) error {
	if cfg.BaseURL == "" {
		return &ValidationError{
			Field:   "source.base_url",
			Message: "base URL is required",
		}
	}

	if cfg.PagesToFetch < 0 {
		return &ValidationError{
			Field:   "source.pages_to_fetch",
			Message: fmt.Sprintf("pages to fetch must not be negative, got %d", cfg.PagesToFetch),
		}
	}

	if cfg.PageSize < 1 {
		return &ValidationError{
			Field:   "source.page_size",
			Message: fmt.Sprintf("page size must be positive, got %d", cfg.PageSize),
		}
	}

	if cfg.RequestsPerSecond <= 0 {
		return &ValidationError{
			Field:   "source.requests_per_second",
			Message: "requests per second must be positive",
		}
	}

	if cfg.LookupConcurrency < 1 {
		return &ValidationError{
			Field:   "source.lookup_concurrency",
			Message: fmt.Sprintf("lookup concurrency must be positive, got %d", cfg.LookupConcurrency),
		}
	}

	return nil
}

func validateFilter(cfg FilterConfig) error {
	if cfg.MinDiscountAmount < 0 {
		return &ValidationError{
			Field:   "filter.min_discount_amount",
			Message: "minimum discount amount must not be negative",
		}
	}

	if cfg.MaxPrice <= 0 {
		return &ValidationError{
			Field:   "filter.max_price",
			Message: "maximum price must be positive",
		}
	}

	if cfg.MinDiscountPercentage < 0 || cfg.MinDiscountPercentage > 100 {
		return &ValidationError{
			Field:   "filter.min_discount_percentage",
			Message: fmt.Sprintf("minimum discount percentage must be between 0 and 100, got %v", cfg.MinDiscountPercentage),
		}
	}

	return nil
}

func validateRanking(cfg RankingConfig) error {
	if cfg.FeaturedCount < 0 {
		return &ValidationError{
			Field:   "ranking.featured_count",
			Message: "featured count must not be negative",
		}
	}

	return nil
}

func validateOutput(cfg OutputConfig) error {
	if cfg.Path == "" {
		return &ValidationError{
			Field:   "output.path",
			Message: "output path is required",
		}
	}

	if cfg.Kafka.Enabled {
		if len(cfg.Kafka.Brokers) == 0 {
			return &ValidationError{
				Field:   "output.kafka.brokers",
				Message: "at least one broker is required when kafka output is enabled",
			}
		}
		if cfg.Kafka.Topic == "" {
			return &ValidationError{
				Field:   "output.kafka.topic",
				Message: "topic is required when kafka output is enabled",
			}
		}
	}

	return nil
}

func validateCache(cfg CacheConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.Redis.Host == "" {
		return &ValidationError{
			Field:   "cache.redis.host",
			Message: "redis host is required when cache is enabled",
		}
	}

	if cfg.Redis.Port < 1 || cfg.Redis.Port > 65535 {
		return &ValidationError{
			Field:   "cache.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Redis.Port),
		}
	}

	if cfg.TTLSeconds <= 0 {
		return &ValidationError{
			Field:   "cache.ttl_seconds",
			Message: "cache TTL must be positive",
		}
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}
