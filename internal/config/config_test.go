package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:           "https://www.cheapshark.com/api/1.0",
			RedirectBase:      "https://www.cheapshark.com/redirect",
			PagesToFetch:      25,
			PageSize:          60,
			SortBy:            "Metacritic",
			RequestsPerSecond: 1,
			LookupConcurrency: 4,
			TimeoutSeconds:    10,
		},
		Filter: FilterConfig{
			MinDiscountAmount: 1.0,
			MaxPrice:          100,
		},
		Ranking: RankingConfig{
			FeaturedCount: 12,
		},
		Output: OutputConfig{
			Path: "deals.json",
		},
	}
}

func TestValidateStatic(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *Config)
		wantError string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *Config) {},
		},
		{
			name:      "missing base URL",
			mutate:    func(cfg *Config) { cfg.Source.BaseURL = "" },
			wantError: "source.base_url",
		},
		{
			name:      "negative pages to fetch",
			mutate:    func(cfg *Config) { cfg.Source.PagesToFetch = -1 },
			wantError: "source.pages_to_fetch",
		},
		{
			name:      "zero page size",
			mutate:    func(cfg *Config) { cfg.Source.PageSize = 0 },
			wantError: "source.page_size",
		},
		{
			name:      "zero request rate",
			mutate:    func(cfg *Config) { cfg.Source.RequestsPerSecond = 0 },
			wantError: "source.requests_per_second",
		},
		{
			name:      "negative discount amount",
			mutate:    func(cfg *Config) { cfg.Filter.MinDiscountAmount = -0.5 },
			wantError: "filter.min_discount_amount",
		},
		{
			name:      "zero max price",
			mutate:    func(cfg *Config) { cfg.Filter.MaxPrice = 0 },
			wantError: "filter.max_price",
		},
		{
			name:      "discount percentage out of range",
			mutate:    func(cfg *Config) { cfg.Filter.MinDiscountPercentage = 120 },
			wantError: "filter.min_discount_percentage",
		},
		{
			name:      "missing output path",
			mutate:    func(cfg *Config) { cfg.Output.Path = "" },
			wantError: "output.path",
		},
		{
			name: "kafka enabled without brokers",
			mutate: func(cfg *Config) {
				cfg.Output.Kafka = KafkaConfig{Enabled: true, Topic: "deals"}
			},
			wantError: "output.kafka.brokers",
		},
		{
			name: "kafka enabled without topic",
			mutate: func(cfg *Config) {
				cfg.Output.Kafka = KafkaConfig{Enabled: true, Brokers: []string{"localhost:9092"}}
			},
			wantError: "output.kafka.topic",
		},
		{
			name: "cache enabled without redis host",
			mutate: func(cfg *Config) {
				cfg.Cache = CacheConfig{Enabled: true, TTLSeconds: 300, Redis: RedisConfig{Port: 6379}}
			},
			wantError: "cache.redis.host",
		},
		{
			name: "server enabled with invalid port",
			mutate: func(cfg *Config) {
				cfg.Server = ServerConfig{Enabled: true, Port: 70000}
			},
			wantError: "server.port",
		},
		{
			name: "disabled cache skips redis validation",
			mutate: func(cfg *Config) {
				cfg.Cache = CacheConfig{Enabled: false}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateStatic(cfg)
			if tt.wantError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
filter:
  min_discount_amount: 1.0
  max_price: 100
output:
  path: deals.json
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://www.cheapshark.com/api/1.0", cfg.Source.BaseURL)
	assert.Equal(t, 25, cfg.Source.PagesToFetch)
	assert.Equal(t, 60, cfg.Source.PageSize)
	assert.Equal(t, "Metacritic", cfg.Source.SortBy)
	assert.Equal(t, 12, cfg.Ranking.FeaturedCount)
	assert.Equal(t, 3, cfg.Source.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Source.Retry.InitialInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
source:
  pages_to_fetch: 5
  page_size: 10
  watch_titles:
    - Celeste
    - Hades
filter:
  min_discount_amount: 2.5
  max_price: 60
ranking:
  featured_count: 6
output:
  path: /tmp/deals.json
schedule:
  interval_seconds: 900
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Source.PagesToFetch)
	assert.Equal(t, []string{"Celeste", "Hades"}, cfg.Source.WatchTitles)
	assert.Equal(t, 2.5, cfg.Filter.MinDiscountAmount)
	assert.Equal(t, 60.0, cfg.Filter.MaxPrice)
	assert.Equal(t, 6, cfg.Ranking.FeaturedCount)
	assert.Equal(t, 900, cfg.Schedule.IntervalSeconds)
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
filter:
  min_discount_amount: -1
  max_price: 100
output:
  path: deals.json
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filter.min_discount_amount")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
