package constants

import "time"

const (
	DefaultHTTPTimeout = 10 * time.Second
)

const (
	DefaultBaseURL      = "https://www.cheapshark.com/api/1.0"
	DefaultRedirectBase = "https://www.cheapshark.com/redirect"
)

const (
	DefaultPagesToFetch = 25
	DefaultPageSize     = 60
	DefaultSortBy       = "Metacritic"
)

const (
	DefaultFeaturedCount = 12
	OutputPlatform       = "PC"
)

const (
	DefaultRequestsPerSecond = 1.0
	DefaultLookupConcurrency = 4
)

const (
	CacheKeyPrefixLookup = "lookup:"
	CacheKeyPrefixStores = "stores:"
	DefaultCacheTTL      = 3600
)

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)

// StoreFallbackPrefix builds the display label for unknown store IDs.
const StoreFallbackPrefix = "Store ID: "
