package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/arachne"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := arachne.CrawlFilter{Limit: c.Limit}
	if c.Spider != "" {
		filter.Spider = &c.Spider
	}

	records, err := deps.History.FindCrawls(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", arachne.ErrorMessage(err))
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(deps.Stdout, "No crawls recorded. Use 'arachne site' or 'arachne sfs' to start one.")
		return nil
	}

	for _, r := range records {
		status := "ok"
		if r.Canceled {
			status = "canceled"
		}
		fmt.Fprintf(deps.Stdout, "%s  %-8s  crawled=%d processed=%d errors=%d dropped=%d  %s  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Spider,
			r.Crawled, r.Processed, r.Errors, r.Dropped,
			(time.Duration(r.DurationMS) * time.Millisecond).String(), status)
	}

	return nil
}
