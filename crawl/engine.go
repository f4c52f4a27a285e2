package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/arachne"
	"golang.org/x/sync/errgroup"
)

// Engine runs a Spider through a two-stage pipeline: crawl workers fetch
// locations and discover more, process workers persist the items they
// produce. The zero value is not usable; set Config.
type Engine[T any] struct {
	Config arachne.Config

	// Limiter gates every Scrape call. Defaults to a RateLimiter built
	// from Config.MinRequestInterval.
	Limiter arachne.Limiter

	// NewFrontier creates the per-run frontier. Defaults to NewFrontier().
	NewFrontier func() arachne.Frontier

	// Logger receives run and failure logs. Defaults to discarding.
	Logger *slog.Logger

	// Progress, if set, is called concurrently from worker goroutines.
	Progress ProgressFunc
}

// ProgressEvent reports one engine event.
type ProgressEvent struct {
	Type     ProgressType
	Location arachne.Location
	Error    error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressScraped ProgressType = iota
	ProgressScrapeFailed
	ProgressProcessed
	ProgressProcessFailed
	ProgressDropped
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Run crawls spider with cfg using default collaborators.
func Run[T any](ctx context.Context, spider arachne.Spider[T], cfg arachne.Config) (*arachne.Summary, error) {
	e := &Engine[T]{Config: cfg}
	return e.Run(ctx, spider)
}

// stats are the run counters reported in the Summary.
type stats struct {
	crawled       atomic.Int64
	processed     atomic.Int64
	scrapeErrors  atomic.Int64
	processErrors atomic.Int64
	dropped       atomic.Int64
}

// run holds the state shared by the workers of one Run call.
type run[T any] struct {
	e       *Engine[T]
	spider  arachne.Spider[T]
	limiter arachne.Limiter
	tracker *tracker
	items   chan T
	logger  *slog.Logger
	stats   stats
}

// Run crawls until every discovered location has been scraped and every
// produced item processed, then returns the Summary.
//
// If ctx is canceled first, pending locations are abandoned, items still
// buffered are dropped, and Run returns the partial Summary together with
// an ECANCELED error. Invalid configuration returns EINVALID before any
// work starts.
func (e *Engine[T]) Run(ctx context.Context, spider arachne.Spider[T]) (*arachne.Summary, error) {
	if spider == nil {
		return nil, arachne.Errorf(arachne.EINVALID, "spider required")
	}
	if err := e.Config.Validate(); err != nil {
		return nil, err
	}

	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("spider", spider.Name())

	limiter := e.Limiter
	if limiter == nil {
		limiter = NewRateLimiter(e.Config.MinRequestInterval)
	}

	var frontier arachne.Frontier
	if e.NewFrontier != nil {
		frontier = e.NewFrontier()
	} else {
		frontier = NewFrontier()
	}

	r := &run[T]{
		e:       e,
		spider:  spider,
		limiter: limiter,
		tracker: newTracker(frontier),
		items:   make(chan T, e.Config.ItemCapacity()),
		logger:  logger,
	}

	begin := time.Now()
	frontier.Seed(spider.StartURLs())
	logger.Info("crawl started",
		"seeds", frontier.Len(),
		"crawling_concurrency", e.Config.CrawlingConcurrency,
		"processing_concurrency", e.Config.ProcessingConcurrency,
		"min_request_interval", e.Config.MinRequestInterval,
	)

	g, gctx := errgroup.WithContext(ctx)

	// Cancellation of ctx, or an internal worker failure canceling gctx,
	// forces draining. Natural completion closes stop first.
	go func() {
		select {
		case <-gctx.Done():
			r.tracker.cancel()
		case <-r.tracker.stop:
		}
	}()

	// An empty seed set completes immediately.
	r.tracker.check()

	for range e.Config.CrawlingConcurrency {
		g.Go(func() error { return r.crawlWorker(gctx) })
	}
	for range e.Config.ProcessingConcurrency {
		g.Go(func() error { return r.processWorker(gctx) })
	}
	werr := g.Wait()
	r.tracker.finish()

	// Workers are gone; anything left in the channel can only have been
	// abandoned by cancellation.
	for drained := false; !drained; {
		select {
		case <-r.items:
			r.drop("")
		default:
			drained = true
		}
	}

	summary := &arachne.Summary{
		Spider:        spider.Name(),
		Crawled:       int(r.stats.crawled.Load()),
		Processed:     int(r.stats.processed.Load()),
		ScrapeErrors:  int(r.stats.scrapeErrors.Load()),
		ProcessErrors: int(r.stats.processErrors.Load()),
		Dropped:       int(r.stats.dropped.Load()),
		Canceled:      r.tracker.wasCanceled(),
		Duration:      time.Since(begin),
	}

	logger.Info("crawl finished",
		"crawled", summary.Crawled,
		"processed", summary.Processed,
		"scrape_errors", summary.ScrapeErrors,
		"process_errors", summary.ProcessErrors,
		"dropped", summary.Dropped,
		"canceled", summary.Canceled,
		"duration", summary.Duration,
	)

	if werr != nil {
		return summary, werr
	}
	if summary.Canceled {
		return summary, arachne.WrapError(arachne.ECANCELED, context.Cause(ctx), "crawl canceled before completion")
	}
	return summary, nil
}

// crawlWorker pulls locations until the run stops.
func (r *run[T]) crawlWorker(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = arachne.Errorf(arachne.EINTERNAL, "crawl worker: %v", p)
		}
	}()

	for {
		loc, ok := r.tracker.next()
		if !ok {
			return nil
		}
		err := r.crawl(ctx, loc)
		r.tracker.crawlDone()
		if err != nil {
			return err
		}
	}
}

// crawl resolves one location: rate limit, scrape, attach discovered
// locations, push items. A failed limiter wait abandons loc and forces
// draining; the error is returned only when ctx is still live.
func (r *run[T]) crawl(ctx context.Context, loc arachne.Location) error {
	if err := r.limiter.Wait(ctx); err != nil {
		r.tracker.cancel()
		if ctx.Err() != nil {
			return nil
		}
		return arachne.WrapError(arachne.EINTERNAL, err, "rate limiter")
	}

	items, discovered, err := r.scrape(ctx, loc)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			r.tracker.cancel()
			return nil
		}
		r.stats.crawled.Add(1)
		r.stats.scrapeErrors.Add(1)
		r.logger.Warn("scrape failed", "url", loc, "err", err)
		r.progress(ProgressEvent{Type: ProgressScrapeFailed, Location: loc, Error: err})
		return nil
	}
	r.stats.crawled.Add(1)

	accepted := 0
	for _, d := range discovered {
		if r.tracker.enqueue(d) {
			accepted++
		}
	}
	r.logger.Debug("scraped",
		"url", loc,
		"items", len(items),
		"discovered", len(discovered),
		"accepted", accepted,
	)
	r.progress(ProgressEvent{Type: ProgressScraped, Location: loc})

	for _, item := range items {
		r.tracker.itemAdded()
		select {
		case r.items <- item:
		case <-r.tracker.stop:
			// Only reachable on cancellation: natural completion requires
			// this task to finish first.
			r.drop(loc)
			r.tracker.itemDone()
		}
	}
	return nil
}

// scrape calls the spider, converting failures and panics to ESCRAPE.
func (r *run[T]) scrape(ctx context.Context, loc arachne.Location) (items []T, discovered []arachne.Location, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = arachne.Errorf(arachne.ESCRAPE, "panic scraping %s: %v", loc, p)
		}
	}()

	items, discovered, err = r.spider.Scrape(ctx, loc)
	if err != nil {
		return nil, nil, arachne.WrapError(arachne.ESCRAPE, err, fmt.Sprintf("scrape %s", loc))
	}
	return items, discovered, nil
}

// processWorker consumes items until the run stops.
func (r *run[T]) processWorker(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = arachne.Errorf(arachne.EINTERNAL, "process worker: %v", p)
		}
	}()

	for {
		select {
		case <-r.tracker.stop:
			return nil
		case item := <-r.items:
			select {
			case <-r.tracker.stop:
				r.drop("")
			default:
				r.process(ctx, item)
			}
			r.tracker.itemDone()
		}
	}
}

// process calls the spider for one item and records the outcome.
func (r *run[T]) process(ctx context.Context, item T) {
	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = arachne.Errorf(arachne.EPROCESS, "panic processing item: %v", p)
			}
		}()
		if err := r.spider.Process(ctx, item); err != nil {
			return arachne.WrapError(arachne.EPROCESS, err, "process item")
		}
		return nil
	}()

	if err != nil {
		r.stats.processErrors.Add(1)
		r.logger.Warn("process failed", "err", err)
		r.progress(ProgressEvent{Type: ProgressProcessFailed, Error: err})
		return
	}
	r.stats.processed.Add(1)
	r.progress(ProgressEvent{Type: ProgressProcessed})
}

// drop records an item abandoned by cancellation.
func (r *run[T]) drop(loc arachne.Location) {
	r.stats.dropped.Add(1)
	r.logger.Warn("item dropped", "url", loc)
	r.progress(ProgressEvent{Type: ProgressDropped, Location: loc})
}

func (r *run[T]) progress(event ProgressEvent) {
	if r.e.Progress != nil {
		r.e.Progress(event)
	}
}
