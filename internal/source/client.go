package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"dealfeed/internal/config"
	"dealfeed/internal/constants"
	"dealfeed/internal/logger"
	"dealfeed/internal/stores"
	"dealfeed/pkg/circuitbreaker"
	"dealfeed/pkg/metrics"
	"dealfeed/pkg/retry"
)

// Client talks to the upstream deals API. Every request goes through the
// shared rate limiter; transient failures are retried with backoff and the
// whole surface is guarded by an optional circuit breaker.
type Client struct {
	httpClient  *http.Client
	cfg         config.SourceConfig
	limiter     *rate.Limiter
	breaker     *circuitbreaker.Wrapper
	cache       LookupCache
	retryPolicy retry.Policy
	logger      logger.Logger
}

func NewClient(cfg config.SourceConfig, cache LookupCache, breaker *circuitbreaker.Wrapper, log logger.Logger) *Client {
	timeout := constants.DefaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = constants.DefaultRequestsPerSecond
	}

	if cache == nil {
		cache = NoopCache{}
	}

	policy := retry.Policy{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
		Multiplier:      cfg.Retry.Multiplier,
		MaxElapsedTime:  cfg.Retry.MaxElapsedTime,
	}
	if policy.MaxAttempts <= 0 {
		policy = retry.DefaultPolicy()
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		cfg:         cfg,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		breaker:     breaker,
		cache:       cache,
		retryPolicy: policy,
		logger:      log,
	}
}

// FetchStoreDirectory fetches the store list and reduces it to an ID to name
// mapping.
func (c *Client) FetchStoreDirectory(ctx context.Context) (stores.Directory, error) {
	var list []StoreInfo
	if err := c.getJSON(ctx, "stores", fmt.Sprintf("%s/stores", c.cfg.BaseURL), &list); err != nil {
		return nil, fmt.Errorf("failed to fetch store list: %w", err)
	}

	dir := make(stores.Directory, len(list))
	for _, s := range list {
		dir[s.StoreID] = s.StoreName
	}
	return dir, nil
}

// FetchRecords materializes the full raw input sequence for one run: the
// paginated bulk listing first, then the watchlist lookups in configured
// order.
func (c *Client) FetchRecords(ctx context.Context) ([]RawRecord, error) {
	records, err := c.fetchListing(ctx)
	if err != nil {
		return records, err
	}

	lookups, err := c.fetchWatchlist(ctx, c.cfg.WatchTitles)
	if err != nil {
		return records, err
	}

	return append(records, lookups...), nil
}

// fetchListing walks the paginated bulk listing. An empty page signals end of
// data. A page error ends the walk with whatever was collected so far; a
// partial sequence is preferred over a failed run.
func (c *Client) fetchListing(ctx context.Context) ([]RawRecord, error) {
	records := make([]RawRecord, 0, c.cfg.PagesToFetch*c.cfg.PageSize)

	for page := 0; page < c.cfg.PagesToFetch; page++ {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		deals, err := c.FetchDealsPage(ctx, page)
		if err != nil {
			c.logger.WarnwCtx(ctx, "Listing page fetch failed, continuing with partial listing",
				"page", page,
				"error", err,
			)
			break
		}

		if len(deals) == 0 {
			c.logger.DebugwCtx(ctx, "Empty listing page, stopping pagination",
				"page", page,
			)
			break
		}

		for _, d := range deals {
			records = append(records, ListingRecord(d))
		}
	}

	return records, nil
}

// FetchDealsPage fetches one page of the bulk listing.
func (c *Client) FetchDealsPage(ctx context.Context, page int) ([]ListingDeal, error) {
	u := fmt.Sprintf("%s/deals?pageSize=%d&pageNumber=%d&sortBy=%s",
		c.cfg.BaseURL, c.cfg.PageSize, page, url.QueryEscape(c.cfg.SortBy))

	var deals []ListingDeal
	if err := c.getJSON(ctx, "deals", u, &deals); err != nil {
		return nil, err
	}
	return deals, nil
}

// fetchWatchlist resolves the configured per-title lookups. Lookups run
// concurrently but the result is materialized in watchlist order so the
// downstream input sequence stays reproducible. A failed title is logged and
// skipped, never fatal.
func (c *Client) fetchWatchlist(ctx context.Context, titles []string) ([]RawRecord, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	results := make([][]LookupDeal, len(titles))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.lookupConcurrency())

	for i, title := range titles {
		i, title := i, title
		g.Go(func() error {
			deals, err := c.LookupTitle(gCtx, title)
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				c.logger.WarnwCtx(gCtx, "Title lookup failed, skipping",
					"title", title,
					"error", err,
				)
				return nil
			}
			results[i] = deals
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []RawRecord
	for _, deals := range results {
		for _, d := range deals {
			records = append(records, LookupRecord(d))
		}
	}
	return records, nil
}

// LookupTitle resolves one watchlist title to its current offers: a title
// search picks the best matching game, then the game lookup returns its
// per-store deals. Responses are cached when a cache is configured.
func (c *Client) LookupTitle(ctx context.Context, title string) ([]LookupDeal, error) {
	cacheKey := constants.CacheKeyPrefixLookup + title

	var resp gameLookupResponse
	hit, err := c.cache.Get(ctx, cacheKey, &resp)
	if err != nil {
		c.logger.DebugwCtx(ctx, "Lookup cache read failed",
			"title", title,
			"error", err,
		)
	}

	if !hit {
		found, err := c.lookupGame(ctx, title, &resp)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}

		if err := c.cache.Set(ctx, cacheKey, resp); err != nil {
			c.logger.DebugwCtx(ctx, "Lookup cache write failed",
				"title", title,
				"error", err,
			)
		}
	}

	deals := make([]LookupDeal, 0, len(resp.Deals))
	for _, d := range resp.Deals {
		d.Title = resp.Info.Title
		d.Thumb = resp.Info.Thumb
		deals = append(deals, d)
	}
	return deals, nil
}

func (c *Client) lookupGame(ctx context.Context, title string, resp *gameLookupResponse) (bool, error) {
	searchURL := fmt.Sprintf("%s/games?title=%s&limit=1", c.cfg.BaseURL, url.QueryEscape(title))

	var matches []gameSearchResult
	if err := c.getJSON(ctx, "games_search", searchURL, &matches); err != nil {
		return false, fmt.Errorf("game search failed for %q: %w", title, err)
	}

	if len(matches) == 0 {
		c.logger.DebugwCtx(ctx, "No game matched watchlist title",
			"title", title,
		)
		return false, nil
	}

	lookupURL := fmt.Sprintf("%s/games?id=%s", c.cfg.BaseURL, url.QueryEscape(matches[0].GameID.String()))
	if err := c.getJSON(ctx, "games_lookup", lookupURL, resp); err != nil {
		return false, fmt.Errorf("game lookup failed for %q: %w", title, err)
	}

	return true, nil
}

func (c *Client) lookupConcurrency() int {
	if c.cfg.LookupConcurrency > 0 {
		return c.cfg.LookupConcurrency
	}
	return constants.DefaultLookupConcurrency
}

// getJSON performs one paced, retried GET against the upstream API and
// decodes the response body into v.
func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, v interface{}) error {
	fetch := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return retry.NewFatalError(err)
		}

		start := time.Now()
		err := c.doRequest(ctx, rawURL, v)
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.ObserveSourceRequest(endpoint, time.Since(start), status)
		return err
	}

	operation := fetch
	if c.breaker != nil {
		operation = func() error {
			_, err := c.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
				return nil, fetch()
			})
			return err
		}
	}

	return retry.RetryWithCallback(ctx, c.retryPolicy, operation,
		func(attempt int, err error, nextDelay time.Duration) {
			c.logger.WarnwCtx(ctx, "Upstream request failed, retrying",
				"endpoint", endpoint,
				"attempt", attempt,
				"next_delay", nextDelay.String(),
				"error", err,
			)
		})
}

func (c *Client) doRequest(ctx context.Context, rawURL string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return retry.NewFatalError(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		err := fmt.Errorf("api returned status: %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return retry.NewFatalError(err)
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return retry.NewFatalError(fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}
