package arachne

import (
	"context"
	"time"
)

// CrawlRecord is a finished run as kept in the crawl history.
type CrawlRecord struct {
	ID         string    `json:"id"`
	Spider     string    `json:"spider"`
	StartedAt  time.Time `json:"startedAt"`
	Crawled    int       `json:"crawled"`
	Processed  int       `json:"processed"`
	Errors     int       `json:"errors"`
	Dropped    int       `json:"dropped"`
	Canceled   bool      `json:"canceled"`
	DurationMS int64     `json:"durationMs"`
}

// NewCrawlRecord builds a history record from a run summary.
func NewCrawlRecord(s *Summary, startedAt time.Time) *CrawlRecord {
	return &CrawlRecord{
		Spider:     s.Spider,
		StartedAt:  startedAt,
		Crawled:    s.Crawled,
		Processed:  s.Processed,
		Errors:     s.Errors(),
		Dropped:    s.Dropped,
		Canceled:   s.Canceled,
		DurationMS: s.Duration.Milliseconds(),
	}
}

// Validate returns an error if the record contains invalid fields.
func (r *CrawlRecord) Validate() error {
	if r.Spider == "" {
		return Errorf(EINVALID, "crawl spider required")
	}
	return nil
}

// CrawlFilter represents a filter for CrawlHistory.FindCrawls.
type CrawlFilter struct {
	Spider *string
	Limit  int
}

// CrawlHistory records finished runs.
type CrawlHistory interface {
	RecordCrawl(ctx context.Context, r *CrawlRecord) error
	FindCrawls(ctx context.Context, filter CrawlFilter) ([]*CrawlRecord, error)
}
