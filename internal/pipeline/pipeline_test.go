package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealfeed/internal/config"
	"dealfeed/internal/logger"
	"dealfeed/internal/rank"
	"dealfeed/internal/source"
	"dealfeed/internal/stores"
)

type fakeSource struct {
	directory stores.Directory
	dirErr    error
	records   []source.RawRecord
	recErr    error
}

func (f *fakeSource) FetchStoreDirectory(ctx context.Context) (stores.Directory, error) {
	return f.directory, f.dirErr
}

func (f *fakeSource) FetchRecords(ctx context.Context) ([]source.RawRecord, error) {
	return f.records, f.recErr
}

type memorySink struct {
	feeds [][]rank.Deal
	err   error
}

func (s *memorySink) Write(ctx context.Context, deals []rank.Deal) error {
	if s.err != nil {
		return s.err
	}
	s.feeds = append(s.feeds, deals)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Source: config.SourceConfig{
			RedirectBase: "https://example.com/redirect",
		},
		Filter: config.FilterConfig{
			MinDiscountAmount: 0.5,
			MaxPrice:          150,
		},
		Ranking: config.RankingConfig{
			FeaturedCount: 12,
		},
	}
}

func listingRec(title string, sale, normal float64, storeID, dealID string) source.RawRecord {
	return source.ListingRecord(source.ListingDeal{
		Title:       title,
		DealID:      dealID,
		StoreID:     storeID,
		SalePrice:   source.NewAmount(sale),
		NormalPrice: source.NewAmount(normal),
	})
}

func runPipeline(t *testing.T, src *fakeSource) []rank.Deal {
	t.Helper()

	out := &memorySink{}
	p := New(src, []Sink{out}, testConfig(), logger.NopLogger())
	require.NoError(t, p.Run(context.Background()))
	require.Len(t, out.feeds, 1)
	return out.feeds[0]
}

func TestDuplicateTitleKeepsCheapestOffer(t *testing.T) {
	feed := runPipeline(t, &fakeSource{
		directory: stores.Directory{"1": "Steam"},
		records: []source.RawRecord{
			listingRec("Game A", 40, 50, "1", "d1"),
			listingRec("Game A", 35, 50, "1", "d2"),
		},
	})

	require.Len(t, feed, 1)
	assert.Equal(t, "Game A", feed[0].Title)
	assert.Equal(t, 35.0, feed[0].Price)
	assert.Equal(t, 50.0, feed[0].OldPrice)
	assert.Equal(t, 30, feed[0].DiscountPercentage)
}

func TestZeroSalePriceIsRejected(t *testing.T) {
	feed := runPipeline(t, &fakeSource{
		records: []source.RawRecord{
			listingRec("Freebie", 0, 19.99, "1", "d1"),
		},
	})
	assert.Empty(t, feed)
}

func TestNormalPriceAboveCapIsRejected(t *testing.T) {
	feed := runPipeline(t, &fakeSource{
		records: []source.RawRecord{
			// A huge discount does not matter once the normal price exceeds
			// the configured cap of 150.
			listingRec("Premium", 20, 200, "1", "d1"),
		},
	})
	assert.Empty(t, feed)
}

func TestStoreLookupMissProducesFallbackLabel(t *testing.T) {
	feed := runPipeline(t, &fakeSource{
		directory: stores.Directory{"1": "Steam"},
		records: []source.RawRecord{
			listingRec("Game A", 10, 30, "999", "d1"),
		},
	})

	require.Len(t, feed, 1)
	assert.Equal(t, "Store ID: 999", feed[0].Store)
}

func TestMalformedRecordsAreDroppedSilently(t *testing.T) {
	feed := runPipeline(t, &fakeSource{
		records: []source.RawRecord{
			source.ListingRecord(source.ListingDeal{Title: "No Prices"}),
			listingRec("Game A", 10, 30, "1", "d1"),
		},
	})

	require.Len(t, feed, 1)
	assert.Equal(t, "Game A", feed[0].Title)
}

func TestRankingAndFeaturedFlow(t *testing.T) {
	feed := runPipeline(t, &fakeSource{
		records: []source.RawRecord{
			listingRec("Small Savings", 18, 20, "1", "d1"),
			listingRec("Big Savings", 10, 60, "1", "d2"),
		},
	})

	require.Len(t, feed, 2)
	assert.Equal(t, "Big Savings", feed[0].Title)
	assert.Equal(t, 1, feed[0].ID)
	assert.True(t, feed[0].Featured)
	assert.Equal(t, "Small Savings", feed[1].Title)
	assert.Equal(t, 2, feed[1].ID)
}

func TestIdempotentRuns(t *testing.T) {
	src := &fakeSource{
		directory: stores.Directory{"1": "Steam", "7": "GOG"},
		records: []source.RawRecord{
			listingRec("Game B", 10, 60, "7", "d2"),
			listingRec("Game A", 40, 50, "1", "d1"),
			listingRec("Game A", 35, 50, "1", "d3"),
			listingRec("Game C", 18, 20, "1", "d4"),
		},
	}

	out := &memorySink{}
	p := New(src, []Sink{out}, testConfig(), logger.NopLogger())

	require.NoError(t, p.Run(context.Background()))
	require.NoError(t, p.Run(context.Background()))
	require.Len(t, out.feeds, 2)

	first, err := json.Marshal(out.feeds[0])
	require.NoError(t, err)
	second, err := json.Marshal(out.feeds[1])
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEmptyInputProducesEmptyFeed(t *testing.T) {
	feed := runPipeline(t, &fakeSource{})
	assert.Empty(t, feed)
}

func TestDirectoryErrorDegradesToFallbackLabels(t *testing.T) {
	feed := runPipeline(t, &fakeSource{
		dirErr: errors.New("upstream unavailable"),
		records: []source.RawRecord{
			listingRec("Game A", 10, 30, "1", "d1"),
		},
	})

	require.Len(t, feed, 1)
	assert.Equal(t, "Store ID: 1", feed[0].Store)
}

func TestSourceErrorStillPublishesPartialInput(t *testing.T) {
	feed := runPipeline(t, &fakeSource{
		records: []source.RawRecord{
			listingRec("Game A", 10, 30, "1", "d1"),
		},
		recErr: errors.New("page 3 timed out"),
	})

	require.Len(t, feed, 1)
	assert.Equal(t, "Game A", feed[0].Title)
}

func TestSinkErrorFailsTheRun(t *testing.T) {
	src := &fakeSource{
		records: []source.RawRecord{
			listingRec("Game A", 10, 30, "1", "d1"),
		},
	}

	out := &memorySink{err: errors.New("disk full")}
	p := New(src, []Sink{out}, testConfig(), logger.NopLogger())

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink write failed")
}

func TestAllSinksReceiveTheSameFeed(t *testing.T) {
	src := &fakeSource{
		records: []source.RawRecord{
			listingRec("Game A", 10, 30, "1", "d1"),
		},
	}

	first := &memorySink{}
	second := &memorySink{}
	p := New(src, []Sink{first, second}, testConfig(), logger.NopLogger())

	require.NoError(t, p.Run(context.Background()))
	require.Len(t, first.feeds, 1)
	require.Len(t, second.feeds, 1)
	assert.Equal(t, first.feeds[0], second.feeds[0])
}
