package sink

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealfeed/internal/logger"
	"dealfeed/internal/rank"
)

func testFeed() []rank.Deal {
	return []rank.Deal{
		{
			ID:                 1,
			Title:              "Portal 2",
			Platform:           "PC",
			Price:              4.99,
			OldPrice:           19.99,
			Store:              "Steam",
			URL:                "https://example.com/redirect?dealID=abc",
			ImageURL:           "https://img/header.jpg",
			DiscountPercentage: 75,
			Featured:           true,
		},
		{
			ID:                 2,
			Title:              "Celeste",
			Platform:           "PC",
			Price:              5.49,
			OldPrice:           19.99,
			Store:              "GOG",
			URL:                "https://example.com/redirect?dealID=",
			DiscountPercentage: 73,
		},
	}
}

func TestFileSinkWritesIndentedArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.json")
	s := NewFileSink(path, logger.NopLogger())

	require.NoError(t, s.Write(context.Background(), testFeed()))

	body, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, byte('['), body[0])
	assert.Equal(t, "\n", string(body[len(body)-1:]))
	assert.Contains(t, string(body), "  {")

	var decoded []rank.Deal
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, testFeed(), decoded)
}

func TestFileSinkReplacesPreviousFeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.json")
	require.NoError(t, os.WriteFile(path, []byte("stale contents that are longer than the new feed"), 0o644))

	s := NewFileSink(path, logger.NopLogger())
	require.NoError(t, s.Write(context.Background(), nil))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(body))
}

func TestFileSinkEmptyFeedIsEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.json")
	s := NewFileSink(path, logger.NopLogger())

	require.NoError(t, s.Write(context.Background(), []rank.Deal{}))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(body))
}

func TestFileSinkIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.json")
	s := NewFileSink(path, logger.NopLogger())

	require.NoError(t, s.Write(context.Background(), testFeed()))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), testFeed()))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFileSinkFailsOnMissingDirectory(t *testing.T) {
	s := NewFileSink(filepath.Join(t.TempDir(), "missing", "deals.json"), logger.NopLogger())
	assert.Error(t, s.Write(context.Background(), testFeed()))
}
