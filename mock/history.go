package mock

import (
	"context"

	"github.com/fwojciec/arachne"
)

var _ arachne.CrawlHistory = (*CrawlHistory)(nil)

// CrawlHistory is a mock implementation of arachne.CrawlHistory.
type CrawlHistory struct {
	RecordCrawlFn func(ctx context.Context, r *arachne.CrawlRecord) error
	FindCrawlsFn  func(ctx context.Context, filter arachne.CrawlFilter) ([]*arachne.CrawlRecord, error)
}

func (h *CrawlHistory) RecordCrawl(ctx context.Context, r *arachne.CrawlRecord) error {
	return h.RecordCrawlFn(ctx, r)
}

func (h *CrawlHistory) FindCrawls(ctx context.Context, filter arachne.CrawlFilter) ([]*arachne.CrawlRecord, error) {
	return h.FindCrawlsFn(ctx, filter)
}
