package arachne

import (
	"context"
	"net/url"
	"time"
)

// Location identifies one unit of crawlable work, typically a normalized URL.
// The engine only compares locations for equality.
type Location string

// NormalizeLocation resolves href against base and strips the fragment.
// URLs differing only by fragment map to the same Location.
// Returns false for unparseable input or non-HTTP schemes.
func NormalizeLocation(base *url.URL, href string) (Location, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	u := ref
	if base != nil {
		u = base.ResolveReference(ref)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	u.Fragment = ""
	u.RawFragment = ""
	return Location(u.String()), true
}

// Spider is the site-specific capability consumed by the engine.
// T is the item type produced by Scrape and consumed by Process.
//
// Scrape and Process are called concurrently from multiple goroutines.
type Spider[T any] interface {
	// Name identifies the spider in logs.
	Name() string

	// StartURLs returns the seed locations. Called once per run.
	StartURLs() []Location

	// Scrape fetches one location and returns the items it produced and
	// the locations it discovered. A failed scrape is not retried by the
	// engine; retries belong inside Scrape.
	Scrape(ctx context.Context, loc Location) (items []T, discovered []Location, err error)

	// Process performs the side effect for one item (e.g. persisting it).
	Process(ctx context.Context, item T) error
}

// Config controls one crawl run.
type Config struct {
	// CrawlingConcurrency is the number of parallel fetch workers.
	CrawlingConcurrency int `toml:"crawling_concurrency"`

	// ProcessingConcurrency is the number of parallel persistence workers.
	ProcessingConcurrency int `toml:"processing_concurrency"`

	// MinRequestInterval is the minimum spacing between fetch starts
	// across all workers. Zero disables the politeness delay.
	MinRequestInterval time.Duration `toml:"min_request_interval"`

	// ItemBuffer is the capacity of the channel between the two stages.
	// Zero selects 2*ProcessingConcurrency.
	ItemBuffer int `toml:"item_buffer"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		CrawlingConcurrency:   2,
		ProcessingConcurrency: 2,
		MinRequestInterval:    200 * time.Millisecond,
	}
}

// Validate returns an error if the configuration cannot start a run.
func (c Config) Validate() error {
	if c.CrawlingConcurrency <= 0 {
		return Errorf(EINVALID, "crawling concurrency must be positive, got %d", c.CrawlingConcurrency)
	}
	if c.ProcessingConcurrency <= 0 {
		return Errorf(EINVALID, "processing concurrency must be positive, got %d", c.ProcessingConcurrency)
	}
	if c.MinRequestInterval < 0 {
		return Errorf(EINVALID, "min request interval must not be negative, got %s", c.MinRequestInterval)
	}
	if c.ItemBuffer < 0 {
		return Errorf(EINVALID, "item buffer must not be negative, got %d", c.ItemBuffer)
	}
	return nil
}

// ItemCapacity returns the effective item channel capacity.
func (c Config) ItemCapacity() int {
	if c.ItemBuffer > 0 {
		return c.ItemBuffer
	}
	return max(2*c.ProcessingConcurrency, 1)
}

// Summary reports the outcome of one crawl run.
type Summary struct {
	Spider        string
	Crawled       int
	Processed     int
	ScrapeErrors  int
	ProcessErrors int
	Dropped       int
	Canceled      bool
	Duration      time.Duration
}

// Errors returns the total number of per-location and per-item failures.
func (s *Summary) Errors() int {
	return s.ScrapeErrors + s.ProcessErrors
}
