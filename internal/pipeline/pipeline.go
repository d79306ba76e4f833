// Package pipeline runs one aggregation pass: fetch, normalize, filter-dedup,
// rank, publish.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dealfeed/internal/config"
	"dealfeed/internal/dedup"
	"dealfeed/internal/logger"
	"dealfeed/internal/normalize"
	"dealfeed/internal/rank"
	"dealfeed/internal/source"
	"dealfeed/internal/stores"
	"dealfeed/pkg/logging"
	"dealfeed/pkg/metrics"
)

// Source supplies the per-run inputs: the store directory and the
// materialized raw record sequence.
type Source interface {
	FetchStoreDirectory(ctx context.Context) (stores.Directory, error)
	FetchRecords(ctx context.Context) ([]source.RawRecord, error)
}

// Sink receives the final ranked feed.
type Sink interface {
	Write(ctx context.Context, deals []rank.Deal) error
}

type Pipeline struct {
	source Source
	sinks  []Sink
	cfg    *config.Config
	logger logger.Logger
}

func New(src Source, sinks []Sink, cfg *config.Config, log logger.Logger) *Pipeline {
	return &Pipeline{
		source: src,
		sinks:  sinks,
		cfg:    cfg,
		logger: log,
	}
}

// Run executes one full pass. Upstream trouble degrades to a smaller or empty
// feed; only a sink failure fails the run.
func (p *Pipeline) Run(ctx context.Context) error {
	ctx = logging.WithRunID(ctx, uuid.NewString())
	start := time.Now()

	err := p.run(ctx)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ObserveRunDuration(time.Since(start), status)

	if err != nil {
		p.logger.ErrorwCtx(ctx, "Pipeline run failed",
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return err
	}

	p.logger.InfowCtx(ctx, "Pipeline run complete",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (p *Pipeline) run(ctx context.Context) error {
	directory, err := p.source.FetchStoreDirectory(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		p.logger.WarnwCtx(ctx, "Store directory unavailable, store names fall back to raw IDs",
			"error", err,
		)
		directory = stores.Directory{}
	}

	records, err := p.source.FetchRecords(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		p.logger.WarnwCtx(ctx, "Deal source error, continuing with partial input",
			"records", len(records),
			"error", err,
		)
	}

	p.logger.InfowCtx(ctx, "Fetched raw deal records",
		"records", len(records),
	)

	engine := dedup.NewEngine(dedup.Config{
		MinDiscountAmount: p.cfg.Filter.MinDiscountAmount,
		MaxPrice:          p.cfg.Filter.MaxPrice,
	})

	droppedByNormalizer := 0
	for _, rec := range records {
		substream := rec.Kind.String()

		d, ok := normalize.Record(rec)
		if !ok {
			droppedByNormalizer++
			metrics.RecordsNormalizedTotal.WithLabelValues(substream, "rejected").Inc()
			continue
		}
		metrics.RecordsNormalizedTotal.WithLabelValues(substream, "normalized").Inc()

		accepted, reason := engine.Add(d)
		if accepted {
			metrics.DealsFilteredTotal.WithLabelValues("accepted").Inc()
		} else {
			metrics.DealsFilteredTotal.WithLabelValues("rejected").Inc()
			metrics.FilterRejectionsTotal.WithLabelValues(string(reason)).Inc()
		}
	}
	metrics.DedupReplacementsTotal.Add(float64(engine.Replacements()))

	results := engine.Results()

	missingDealIDs := 0
	for _, d := range results {
		if d.DealID == "" {
			missingDealIDs++
		}
	}
	if missingDealIDs > 0 {
		p.logger.WarnwCtx(ctx, "Deals without a redirect identifier, links will be dead",
			"count", missingDealIDs,
		)
	}

	ranker := rank.NewRanker(directory, p.cfg.Source.RedirectBase, p.cfg.Ranking.FeaturedCount)
	feed := ranker.Rank(results)

	for _, s := range p.sinks {
		if err := s.Write(ctx, feed); err != nil {
			return fmt.Errorf("sink write failed: %w", err)
		}
	}
	metrics.SetFeedSize(len(feed))

	p.logSummary(ctx, len(records), droppedByNormalizer, engine, feed)
	return nil
}

func (p *Pipeline) logSummary(ctx context.Context, fetched, droppedByNormalizer int, engine *dedup.Engine, feed []rank.Deal) {
	fields := []interface{}{
		"fetched", fetched,
		"dropped_malformed", droppedByNormalizer,
		"rejected_by_filter", engine.Rejected(),
		"replacements", engine.Replacements(),
		"published", len(feed),
	}

	for reason, n := range engine.Rejections() {
		fields = append(fields, "rejected_"+string(reason), n)
	}

	if len(feed) > 0 {
		totalDiscount := 0
		for _, d := range feed {
			totalDiscount += d.DiscountPercentage
		}
		fields = append(fields,
			"avg_discount_pct", float64(totalDiscount)/float64(len(feed)),
			"best_deal", feed[0].Title,
			"best_discount_pct", feed[0].DiscountPercentage,
		)
	}

	p.logger.InfowCtx(ctx, "Run summary", fields...)
}
