package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"dealfeed/internal/config"
	"dealfeed/internal/constants"
	"dealfeed/internal/logger"
	"dealfeed/internal/pipeline"
	"dealfeed/internal/sink"
	"dealfeed/internal/source"
	"dealfeed/pkg/circuitbreaker"
	"dealfeed/pkg/health"
	"dealfeed/pkg/metrics"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	redisClient *redis.Client
	client      *source.Client
	kafkaSink   *sink.KafkaSink
	pipe        *pipeline.Pipeline
	server      *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("dealfeed")
	}
	return &App{
		cfg:    cfg,
		logger: log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	metrics.RegisterSourceMetrics()
	metrics.RegisterPipelineMetrics()
	if a.cfg.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	cache, err := a.initCache(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	a.client = source.NewClient(a.cfg.Source, cache, a.initBreaker(), a.logger)

	sinks := []pipeline.Sink{
		sink.NewFileSink(a.cfg.Output.Path, a.logger),
	}
	if a.cfg.Output.Kafka.Enabled {
		a.kafkaSink = sink.NewKafkaSink(a.cfg.Output.Kafka, a.logger)
		sinks = append(sinks, a.kafkaSink)
	}

	a.pipe = pipeline.New(a.client, sinks, a.cfg, a.logger)

	if a.cfg.Server.Enabled {
		a.initHTTPServer()
	}

	return nil
}

func (a *App) initCache(ctx context.Context) (source.LookupCache, error) {
	if !a.cfg.Cache.Enabled {
		return source.NoopCache{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", a.cfg.Cache.Redis.Host, a.cfg.Cache.Redis.Port),
		Password: a.cfg.Cache.Redis.Password,
		DB:       a.cfg.Cache.Redis.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	a.logger.Info("Redis connected successfully")
	a.redisClient = rdb

	ttl := time.Duration(a.cfg.Cache.TTLSeconds) * time.Second
	return source.NewRedisCache(rdb, ttl), nil
}

func (a *App) initBreaker() *circuitbreaker.Wrapper {
	if !a.cfg.CircuitBreaker.Enabled {
		return nil
	}

	cbCfg := circuitbreaker.DefaultConfig("deals-api")
	if a.cfg.CircuitBreaker.MaxRequests > 0 {
		cbCfg.MaxRequests = a.cfg.CircuitBreaker.MaxRequests
	}
	if a.cfg.CircuitBreaker.Interval > 0 {
		cbCfg.Interval = a.cfg.CircuitBreaker.Interval
	}
	if a.cfg.CircuitBreaker.Timeout > 0 {
		cbCfg.Timeout = a.cfg.CircuitBreaker.Timeout
	}
	if a.cfg.CircuitBreaker.FailureRatio > 0 {
		minRequests := a.cfg.CircuitBreaker.MinRequests
		if minRequests == 0 {
			minRequests = 3
		}
		ratio := a.cfg.CircuitBreaker.FailureRatio
		cbCfg.ReadyToTrip = func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && failureRatio >= ratio
		}
	}

	return circuitbreaker.NewWrapper(cbCfg)
}

func (a *App) initHTTPServer() {
	mux := http.NewServeMux()

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewUpstreamChecker(nil, a.cfg.Source.BaseURL+"/stores"))
	if a.redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redisClient))
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		h := healthRegistry.Check(r.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprintf(w, `{"status":"%s","timestamp":"%s"}`, h.Status, h.Timestamp.Format(time.RFC3339))
	})

	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler: mux,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	if a.server != nil {
		g.Go(func() error {
			a.logger.InfowCtx(ctx, "HTTP server starting", "port", a.cfg.Server.Port)
			if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer a.stopServer()
		return a.runLoop(gCtx)
	})

	return g.Wait()
}

// runLoop executes the pipeline once, then keeps rerunning it on the
// configured interval. A zero interval means a single run.
func (a *App) runLoop(ctx context.Context) error {
	err := a.pipe.Run(ctx)

	interval := time.Duration(a.cfg.Schedule.IntervalSeconds) * time.Second
	if interval <= 0 {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Run errors are logged inside the pipeline; a scheduled job
			// keeps going and retries next tick.
			_ = a.pipe.Run(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (a *App) stopServer() {
	if a.server == nil {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Errorw("HTTP server shutdown error", "error", err)
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	var errs []error

	if a.kafkaSink != nil {
		if err := a.kafkaSink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafka sink close error: %w", err))
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close error: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.Info("Application exited successfully")
	return nil
}
