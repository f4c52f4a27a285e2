// Package site implements a spider that mirrors one documentation site.
//
// The crawl stays on the start URL's host and below its directory. Every
// fetched page becomes one arachne.Page holding the page's main content as
// Markdown; its in-scope links are followed.
package site

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/arachne"
	"github.com/fwojciec/arachne/crawl"
	"github.com/fwojciec/arachne/goquery"
)

// Ensure Spider implements arachne.Spider.
var _ arachne.Spider[*arachne.Page] = (*Spider)(nil)

// Spider crawls one site and stores its pages.
type Spider struct {
	start    *url.URL
	prefix   string
	name     string
	include  *regexp.Regexp
	maxPages int64
	delays   []time.Duration
	limiter  arachne.Limiter
	logger   *slog.Logger

	scraped atomic.Int64

	fetcher   arachne.Fetcher
	links     arachne.LinkSelector
	extractor arachne.Extractor
	converter arachne.Converter
	store     arachne.PageStore
}

// Option configures a Spider.
type Option func(*Spider)

// WithName overrides the spider name used in logs and crawl history.
func WithName(name string) Option {
	return func(s *Spider) {
		s.name = name
	}
}

// WithInclude restricts link following to URLs matching re.
// The start URL is always crawled.
func WithInclude(re *regexp.Regexp) Option {
	return func(s *Spider) {
		s.include = re
	}
}

// WithMaxPages stops fetching after n pages. Zero means no limit.
func WithMaxPages(n int) Option {
	return func(s *Spider) {
		s.maxPages = int64(n)
	}
}

// WithRetryDelays sets the backoff between fetch attempts.
// An empty slice disables retries.
func WithRetryDelays(delays []time.Duration) Option {
	return func(s *Spider) {
		s.delays = delays
	}
}

// WithLimiter gates fetch retries on the crawl's limiter. Pass the same
// limiter the engine uses.
func WithLimiter(l arachne.Limiter) Option {
	return func(s *Spider) {
		s.limiter = l
	}
}

// WithLogger sets the logger for retries and skipped pages.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Spider) {
		s.logger = logger
	}
}

// Deps are the services a Spider uses to fetch, parse and store pages.
type Deps struct {
	Fetcher   arachne.Fetcher
	Links     arachne.LinkSelector
	Extractor arachne.Extractor
	Converter arachne.Converter
	Store     arachne.PageStore
}

// New creates a Spider rooted at startURL.
func New(startURL string, deps Deps, opts ...Option) (*Spider, error) {
	u, err := url.Parse(startURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, arachne.Errorf(arachne.EINVALID, "invalid start URL %q", startURL)
	}
	if deps.Fetcher == nil || deps.Links == nil || deps.Extractor == nil || deps.Converter == nil || deps.Store == nil {
		return nil, arachne.Errorf(arachne.EINVALID, "site spider requires fetcher, link selector, extractor, converter and store")
	}
	u.Fragment = ""
	u.RawFragment = ""

	s := &Spider{
		start:     u,
		prefix:    scopePrefix(u.Path),
		name:      "site",
		delays:    crawl.DefaultRetryDelays(),
		logger:    slog.New(slog.DiscardHandler),
		fetcher:   deps.Fetcher,
		links:     deps.Links,
		extractor: deps.Extractor,
		converter: deps.Converter,
		store:     deps.Store,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// scopePrefix returns the directory part of path, always ending in "/".
func scopePrefix(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i+1]
	}
	return "/"
}

// Name returns the spider name.
func (s *Spider) Name() string {
	return s.name
}

// StartURLs returns the start URL.
func (s *Spider) StartURLs() []arachne.Location {
	return []arachne.Location{arachne.Location(s.start.String())}
}

// Scrape fetches loc and returns its page along with the in-scope links.
// A page whose content cannot be extracted yields no item, but its links
// are still followed.
func (s *Spider) Scrape(ctx context.Context, loc arachne.Location) ([]*arachne.Page, []arachne.Location, error) {
	if s.maxPages > 0 && s.scraped.Add(1) > s.maxPages {
		return nil, nil, nil
	}

	body, err := crawl.FetchWithRetryDelays(ctx, string(loc), s.fetcher.Fetch, s.limiter, s.logRetry, s.delays)
	if err != nil {
		return nil, nil, err
	}
	html := string(body)

	found, err := s.links.ExtractLinks(html, string(loc))
	if err != nil {
		return nil, nil, fmt.Errorf("extract links: %w", err)
	}
	var discovered []arachne.Location
	if !s.capped() {
		for _, link := range found {
			if s.inScope(link) {
				discovered = append(discovered, link)
			}
		}
	}

	page, err := s.page(html, loc)
	if err != nil {
		s.logger.Warn("skipping page content", "url", string(loc), "err", err)
		return nil, discovered, nil
	}
	return []*arachne.Page{page}, discovered, nil
}

func (s *Spider) page(html string, loc arachne.Location) (*arachne.Page, error) {
	extracted, err := s.extractor.Extract(html, string(loc))
	if err != nil {
		return nil, err
	}
	content, err := s.converter.Convert(extracted.ContentHTML, string(loc))
	if err != nil {
		return nil, err
	}
	title := extracted.Title
	if title == "" {
		title = goquery.Title(html)
	}
	return &arachne.Page{
		URL:       string(loc),
		Title:     title,
		Content:   content,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// Process saves the page.
func (s *Spider) Process(ctx context.Context, page *arachne.Page) error {
	return s.store.Save(ctx, page)
}

// capped reports whether the page cap is used up, so further links would
// only cost rate limit slots.
func (s *Spider) capped() bool {
	return s.maxPages > 0 && s.scraped.Load() >= s.maxPages
}

func (s *Spider) inScope(loc arachne.Location) bool {
	u, err := url.Parse(string(loc))
	if err != nil {
		return false
	}
	if !strings.EqualFold(u.Host, s.start.Host) {
		return false
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, s.prefix) {
		return false
	}
	if s.include != nil && !s.include.MatchString(string(loc)) {
		return false
	}
	return true
}

func (s *Spider) logRetry(format string, args ...any) {
	s.logger.Info(fmt.Sprintf(format, args...))
}
