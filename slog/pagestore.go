package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/arachne"
)

// Ensure LoggingPageStore implements arachne.PageStore.
var _ arachne.PageStore = (*LoggingPageStore)(nil)

// LoggingPageStore wraps a PageStore with debug logging.
type LoggingPageStore struct {
	next   arachne.PageStore
	logger *slog.Logger
}

// NewLoggingPageStore creates a new LoggingPageStore.
func NewLoggingPageStore(next arachne.PageStore, logger *slog.Logger) *LoggingPageStore {
	return &LoggingPageStore{next: next, logger: logger}
}

// Save delegates to the wrapped store and logs the write.
func (s *LoggingPageStore) Save(ctx context.Context, page *arachne.Page) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("save page",
			"url", page.URL,
			"bytes", len(page.Content),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Save(ctx, page)
}
