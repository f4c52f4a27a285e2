package site_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/arachne"
	"github.com/fwojciec/arachne/crawl"
	"github.com/fwojciec/arachne/goquery"
	arachnehttp "github.com/fwojciec/arachne/http"
	"github.com/fwojciec/arachne/mock"
	"github.com/fwojciec/arachne/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeps(links ...arachne.Location) site.Deps {
	return site.Deps{
		Fetcher: &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				return []byte("<html><title>T</title><body>hello</body></html>"), nil
			},
		},
		Links: &mock.LinkSelector{
			ExtractLinksFn: func(html string, baseURL string) ([]arachne.Location, error) {
				return links, nil
			},
		},
		Extractor: &mock.Extractor{
			ExtractFn: func(html string, pageURL string) (*arachne.ExtractResult, error) {
				return &arachne.ExtractResult{Title: "T", ContentHTML: "<p>hello</p>"}, nil
			},
		},
		Converter: &mock.Converter{
			ConvertFn: func(html string, pageURL string) (string, error) {
				return "hello", nil
			},
		},
		Store: &mock.PageStore{
			SaveFn: func(ctx context.Context, page *arachne.Page) error {
				return nil
			},
		},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("rejects invalid start URL", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"", "ftp://example.com/", "/docs", "https://"} {
			_, err := site.New(raw, newDeps())
			assert.Equal(t, arachne.EINVALID, arachne.ErrorCode(err), raw)
		}
	})

	t.Run("rejects missing dependencies", func(t *testing.T) {
		t.Parallel()

		deps := newDeps()
		deps.Store = nil

		_, err := site.New("https://example.com/", deps)

		assert.Equal(t, arachne.EINVALID, arachne.ErrorCode(err))
	})

	t.Run("start URL drops fragment", func(t *testing.T) {
		t.Parallel()

		s, err := site.New("https://example.com/docs/#intro", newDeps())
		require.NoError(t, err)

		assert.Equal(t, []arachne.Location{"https://example.com/docs/"}, s.StartURLs())
		assert.Equal(t, "site", s.Name())
	})

	t.Run("name can be overridden", func(t *testing.T) {
		t.Parallel()

		s, err := site.New("https://example.com/", newDeps(), site.WithName("docs"))
		require.NoError(t, err)

		assert.Equal(t, "docs", s.Name())
	})
}

func TestSpider_Scrape(t *testing.T) {
	t.Parallel()

	t.Run("returns page and in-scope links", func(t *testing.T) {
		t.Parallel()

		deps := newDeps(
			"https://example.com/docs/a",
			"https://example.com/docs/sub/b",
			"https://example.com/blog/post",
			"https://other.com/docs/a",
		)
		s, err := site.New("https://example.com/docs/intro", deps)
		require.NoError(t, err)

		items, discovered, err := s.Scrape(context.Background(), "https://example.com/docs/intro")

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "https://example.com/docs/intro", items[0].URL)
		assert.Equal(t, "T", items[0].Title)
		assert.Equal(t, "hello", items[0].Content)
		assert.False(t, items[0].FetchedAt.IsZero())
		assert.Equal(t, []arachne.Location{
			"https://example.com/docs/a",
			"https://example.com/docs/sub/b",
		}, discovered)
	})

	t.Run("include filter limits followed links", func(t *testing.T) {
		t.Parallel()

		deps := newDeps("https://example.com/guide/a", "https://example.com/api/b")
		s, err := site.New("https://example.com/", deps, site.WithInclude(regexp.MustCompile(`/guide/`)))
		require.NoError(t, err)

		_, discovered, err := s.Scrape(context.Background(), "https://example.com/")

		require.NoError(t, err)
		assert.Equal(t, []arachne.Location{"https://example.com/guide/a"}, discovered)
	})

	t.Run("extraction failure keeps links", func(t *testing.T) {
		t.Parallel()

		deps := newDeps("https://example.com/a")
		deps.Extractor = &mock.Extractor{
			ExtractFn: func(html string, pageURL string) (*arachne.ExtractResult, error) {
				return nil, errors.New("no content")
			},
		}
		s, err := site.New("https://example.com/", deps)
		require.NoError(t, err)

		items, discovered, err := s.Scrape(context.Background(), "https://example.com/")

		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Equal(t, []arachne.Location{"https://example.com/a"}, discovered)
	})

	t.Run("does not retry not found", func(t *testing.T) {
		t.Parallel()

		calls := 0
		deps := newDeps()
		deps.Fetcher = &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				calls++
				return nil, arachne.Errorf(arachne.ENOTFOUND, "HTTP 404 for %s", url)
			},
		}
		s, err := site.New("https://example.com/", deps, site.WithRetryDelays([]time.Duration{time.Millisecond}))
		require.NoError(t, err)

		_, _, err = s.Scrape(context.Background(), "https://example.com/")

		assert.Equal(t, arachne.ENOTFOUND, arachne.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		t.Parallel()

		calls := 0
		deps := newDeps()
		deps.Fetcher = &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				calls++
				if calls == 1 {
					return nil, arachne.Errorf(arachne.ESCRAPE, "HTTP 503 for %s", url)
				}
				return []byte("<html></html>"), nil
			},
		}
		s, err := site.New("https://example.com/", deps, site.WithRetryDelays([]time.Duration{time.Millisecond}))
		require.NoError(t, err)

		items, _, err := s.Scrape(context.Background(), "https://example.com/")

		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, 2, calls)
	})

	t.Run("stops fetching after page cap", func(t *testing.T) {
		t.Parallel()

		calls := 0
		deps := newDeps("https://example.com/a")
		deps.Fetcher = &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				calls++
				return []byte("<html></html>"), nil
			},
		}
		s, err := site.New("https://example.com/", deps, site.WithMaxPages(2))
		require.NoError(t, err)

		_, first, err := s.Scrape(context.Background(), "https://example.com/")
		require.NoError(t, err)
		items, second, err := s.Scrape(context.Background(), "https://example.com/a")
		require.NoError(t, err)
		assert.Len(t, first, 1)
		assert.Len(t, items, 1, "the last page under the cap is still saved")
		assert.Empty(t, second, "links past the cap are not followed")

		items, third, err := s.Scrape(context.Background(), "https://example.com/b")
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Empty(t, third)
		assert.Equal(t, 2, calls)
	})

	t.Run("falls back to the document title", func(t *testing.T) {
		t.Parallel()

		deps := newDeps()
		deps.Fetcher = &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				return []byte("<html><head><title> Install </title></head><body>x</body></html>"), nil
			},
		}
		deps.Extractor = &mock.Extractor{
			ExtractFn: func(html string, pageURL string) (*arachne.ExtractResult, error) {
				return &arachne.ExtractResult{ContentHTML: "<p>x</p>"}, nil
			},
		}
		s, err := site.New("https://example.com/", deps)
		require.NoError(t, err)

		items, _, err := s.Scrape(context.Background(), "https://example.com/")

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Install", items[0].Title)
	})

	t.Run("waits on the limiter before retrying a fetch", func(t *testing.T) {
		t.Parallel()

		calls := 0
		deps := newDeps()
		deps.Fetcher = &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, error) {
				calls++
				if calls == 1 {
					return nil, errors.New("connection reset")
				}
				return []byte("<html></html>"), nil
			},
		}
		waits := 0
		limiter := &mock.Limiter{WaitFn: func(ctx context.Context) error {
			waits++
			return nil
		}}
		s, err := site.New("https://example.com/", deps,
			site.WithRetryDelays([]time.Duration{time.Millisecond}),
			site.WithLimiter(limiter),
		)
		require.NoError(t, err)

		_, _, err = s.Scrape(context.Background(), "https://example.com/")

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, 1, waits)
	})
}

func TestSpider_Process(t *testing.T) {
	t.Parallel()

	var saved *arachne.Page
	deps := newDeps()
	deps.Store = &mock.PageStore{
		SaveFn: func(ctx context.Context, page *arachne.Page) error {
			saved = page
			return nil
		},
	}
	s, err := site.New("https://example.com/", deps)
	require.NoError(t, err)

	page := &arachne.Page{URL: "https://example.com/"}
	require.NoError(t, s.Process(context.Background(), page))

	assert.Same(t, page, saved)
}

func TestSpider_Crawl(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"/docs/":  `<a href="/docs/a">A</a><a href="/docs/b#top">B</a><a href="/blog/">Blog</a>`,
		"/docs/a": `<a href="/docs/b">B</a><a href="/docs/">Home</a>`,
		"/docs/b": `<a href="https://elsewhere.example/">X</a>`,
		"/blog/":  `<a href="/docs/">Docs</a>`,
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, "<html><body>%s</body></html>", body)
	}))
	t.Cleanup(ts.Close)

	var mu sync.Mutex
	var saved []string
	deps := newDeps()
	deps.Fetcher = arachnehttp.NewFetcher()
	deps.Links = goquery.NewSelector()
	deps.Store = &mock.PageStore{
		SaveFn: func(ctx context.Context, page *arachne.Page) error {
			mu.Lock()
			defer mu.Unlock()
			saved = append(saved, page.URL)
			return nil
		},
	}
	s, err := site.New(ts.URL+"/docs/", deps)
	require.NoError(t, err)

	cfg := arachne.DefaultConfig()
	cfg.MinRequestInterval = 0
	summary, err := crawl.Run[*arachne.Page](context.Background(), s, cfg)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Crawled)
	assert.Equal(t, 3, summary.Processed)
	assert.Zero(t, summary.Errors())

	sort.Strings(saved)
	assert.Equal(t, []string{ts.URL + "/docs/", ts.URL + "/docs/a", ts.URL + "/docs/b"}, saved)
}
