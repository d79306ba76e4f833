// Package sink serializes the final ranked feed to its destinations.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dealfeed/internal/logger"
	"dealfeed/internal/rank"
)

// FileSink writes the feed as one JSON array, fully replacing any previous
// file contents. The write goes through a temp file in the same directory so
// readers never observe a partial feed.
type FileSink struct {
	path   string
	logger logger.Logger
}

func NewFileSink(path string, log logger.Logger) *FileSink {
	return &FileSink{
		path:   path,
		logger: log,
	}
}

func (s *FileSink) Write(ctx context.Context, deals []rank.Deal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if deals == nil {
		deals = []rank.Deal{}
	}

	body, err := json.MarshalIndent(deals, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal feed: %w", err)
	}
	body = append(body, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write feed: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace feed file: %w", err)
	}

	s.logger.InfowCtx(ctx, "Feed file written",
		"path", s.path,
		"deals", len(deals),
		"bytes", len(body),
	)
	return nil
}
