package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/arachne"
)

// Ensure LoggingSpider implements arachne.Spider.
var _ arachne.Spider[*arachne.Page] = (*LoggingSpider[*arachne.Page])(nil)

// LoggingSpider wraps a Spider and logs every scrape and process call.
// Failures are logged at warn level, successes at debug level.
type LoggingSpider[T any] struct {
	next   arachne.Spider[T]
	logger *slog.Logger
}

// NewLoggingSpider creates a new LoggingSpider.
func NewLoggingSpider[T any](next arachne.Spider[T], logger *slog.Logger) *LoggingSpider[T] {
	return &LoggingSpider[T]{
		next:   next,
		logger: logger.With("spider", next.Name()),
	}
}

// Name returns the wrapped spider's name.
func (s *LoggingSpider[T]) Name() string {
	return s.next.Name()
}

// StartURLs returns the wrapped spider's seeds.
func (s *LoggingSpider[T]) StartURLs() []arachne.Location {
	return s.next.StartURLs()
}

// Scrape delegates to the wrapped spider and logs the result.
func (s *LoggingSpider[T]) Scrape(ctx context.Context, loc arachne.Location) (items []T, discovered []arachne.Location, err error) {
	defer func(begin time.Time) {
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "scrape",
			"url", string(loc),
			"items", len(items),
			"discovered", len(discovered),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Scrape(ctx, loc)
}

// Process delegates to the wrapped spider and logs the result.
func (s *LoggingSpider[T]) Process(ctx context.Context, item T) (err error) {
	defer func(begin time.Time) {
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "process",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Process(ctx, item)
}
