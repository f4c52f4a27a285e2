package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/arachne"
	"github.com/fwojciec/arachne/bloom"
	"github.com/fwojciec/arachne/crawl"
	"github.com/fwojciec/arachne/fs"
	arachneslog "github.com/fwojciec/arachne/slog"
	"github.com/fwojciec/arachne/toml"
)

// bloomFalsePositiveRate bounds the share of new URLs a Bloom-filter
// frontier mistakes for visited ones.
const bloomFalsePositiveRate = 0.001

// pageSink is where a crawl command saves pages. finish runs once the
// crawl has ended.
type pageSink struct {
	arachne.PageStore
	finish func(summary *arachne.Summary) error
}

// openSink returns a file store under settings.Out, or the database store.
func openSink(deps *Dependencies, settings toml.File, name string) *pageSink {
	if settings.Out == "" {
		return &pageSink{
			PageStore: arachneslog.NewLoggingPageStore(deps.Store, deps.Logger),
			finish:    func(*arachne.Summary) error { return nil },
		}
	}

	store := fs.NewStore(settings.Out, name)
	return &pageSink{
		PageStore: arachneslog.NewLoggingPageStore(store, deps.Logger),
		finish: func(summary *arachne.Summary) error {
			// A canceled or empty crawl leaves the previous output in place.
			if summary == nil || summary.Canceled || summary.Processed == 0 {
				return store.Abort()
			}
			if err := store.Commit(); err != nil {
				return err
			}
			fmt.Fprintf(deps.Stdout, "Saved %d pages to %s\n", summary.Processed, store.Dir())
			return nil
		},
	}
}

// runCrawl runs spider to completion, records it in the crawl history
// and prints the summary. A nil limiter gets one built from the settings.
func runCrawl(deps *Dependencies, spider arachne.Spider[*arachne.Page], settings toml.File, sink *pageSink, limiter arachne.Limiter) error {
	engine := &crawl.Engine[*arachne.Page]{
		Config:   settings.Crawl,
		Limiter:  limiter,
		Logger:   deps.Logger,
		Progress: progressPrinter(deps),
	}
	if n := settings.Bloom; n > 0 {
		engine.NewFrontier = func() arachne.Frontier {
			return crawl.NewFrontier(crawl.WithVisitedSet(bloom.NewFilter(n, bloomFalsePositiveRate)))
		}
	}

	started := time.Now().UTC()
	summary, err := engine.Run(deps.Ctx, arachneslog.NewLoggingSpider(spider, deps.Logger))
	if summary == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", arachne.ErrorMessage(err))
		return err
	}

	if ferr := sink.finish(summary); ferr != nil {
		fmt.Fprintf(deps.Stderr, "error saving output: %v\n", ferr)
		if err == nil {
			err = ferr
		}
	}

	// The run context may already be canceled; history is still written.
	record := arachne.NewCrawlRecord(summary, started)
	if herr := deps.History.RecordCrawl(context.WithoutCancel(deps.Ctx), record); herr != nil {
		fmt.Fprintf(deps.Stderr, "error recording crawl: %v\n", herr)
	}

	printSummary(deps, summary)
	return err
}

func progressPrinter(deps *Dependencies) crawl.ProgressFunc {
	return func(e crawl.ProgressEvent) {
		switch e.Type {
		case crawl.ProgressScrapeFailed:
			fmt.Fprintf(deps.Stderr, "skip %s: %s\n", crawl.ShortLocation(e.Location, 60), arachne.ErrorMessage(e.Error))
		case crawl.ProgressProcessFailed:
			fmt.Fprintf(deps.Stderr, "save failed: %s\n", arachne.ErrorMessage(e.Error))
		}
	}
}

func printSummary(deps *Dependencies, s *arachne.Summary) {
	status := "finished"
	if s.Canceled {
		status = "canceled"
	}
	fmt.Fprintf(deps.Stdout, "Crawl %s: %s\n", s.Spider, status)
	fmt.Fprintf(deps.Stdout, "  crawled:   %d\n", s.Crawled)
	fmt.Fprintf(deps.Stdout, "  processed: %d\n", s.Processed)
	fmt.Fprintf(deps.Stdout, "  errors:    %d scrape, %d process\n", s.ScrapeErrors, s.ProcessErrors)
	if s.Dropped > 0 {
		fmt.Fprintf(deps.Stdout, "  dropped:   %d\n", s.Dropped)
	}
	fmt.Fprintf(deps.Stdout, "  duration:  %s\n", s.Duration.Round(time.Millisecond))
}

// outputName returns a directory name for a site's pages.
func outputName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "site"
	}
	return strings.ReplaceAll(u.Host, ":", "_")
}
