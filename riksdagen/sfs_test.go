package riksdagen_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/fwojciec/arachne"
	"github.com/fwojciec/arachne/crawl"
	arachnehttp "github.com/fwojciec/arachne/http"
	"github.com/fwojciec/arachne/mock"
	"github.com/fwojciec/arachne/riksdagen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listPage = `{
  "dokumentlista": {
    "@nasta_sida": "//data.riksdagen.se/dokumentlista/?doktyp=SFS&utformat=json&p=2",
    "dokument": [
      {
        "id": "sfs-2024-1",
        "dok_id": "sfs-2024-1",
        "titel": "Lag (2024:1) om provning",
        "undertitel": "t.o.m. SFS 2024:10",
        "beteckning": "2024:1",
        "datum": "2024-01-04",
        "summary": "Denna lag reglerar provning.",
        "dokument_url_html": "//data.riksdagen.se/dokument/sfs-2024-1.html"
      },
      {
        "id": "sfs-2024-2",
        "dok_id": "sfs-2024-2",
        "titel": "Förordning (2024:2)"
      }
    ]
  }
}`

func fetcherFor(body string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) ([]byte, error) {
			return []byte(body), nil
		},
	}
}

func TestSFSSpider(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		s := riksdagen.NewSFSSpider(fetcherFor(""), nil)

		assert.Equal(t, "sfs", s.Name())
		assert.Equal(t, []arachne.Location{riksdagen.DefaultStartURL}, s.StartURLs())
	})

	t.Run("scrapes documents and next page", func(t *testing.T) {
		t.Parallel()

		s := riksdagen.NewSFSSpider(fetcherFor(listPage), nil)

		items, next, err := s.Scrape(context.Background(), riksdagen.DefaultStartURL)

		require.NoError(t, err)
		require.Len(t, items, 2)

		assert.Equal(t, "https://data.riksdagen.se/dokument/sfs-2024-1.html", items[0].URL)
		assert.Equal(t, "Lag (2024:1) om provning", items[0].Title)
		assert.Contains(t, items[0].Content, "# Lag (2024:1) om provning")
		assert.Contains(t, items[0].Content, "- beteckning: 2024:1")
		assert.Contains(t, items[0].Content, "Denna lag reglerar provning.")
		assert.False(t, items[0].FetchedAt.IsZero())

		assert.Equal(t, "https://data.riksdagen.se/dokument/sfs-2024-2.html", items[1].URL)

		assert.Equal(t, []arachne.Location{
			"https://data.riksdagen.se/dokumentlista/?doktyp=SFS&utformat=json&p=2",
		}, next)
	})

	t.Run("last page has no next link", func(t *testing.T) {
		t.Parallel()

		s := riksdagen.NewSFSSpider(fetcherFor(`{"dokumentlista":{"dokument":[]}}`), nil)

		items, next, err := s.Scrape(context.Background(), riksdagen.DefaultStartURL)

		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Empty(t, next)
	})

	t.Run("accepts a single document object", func(t *testing.T) {
		t.Parallel()

		body := `{"dokumentlista":{"dokument":{"id":"x","dok_id":"sfs-1","titel":"Ensam"}}}`
		s := riksdagen.NewSFSSpider(fetcherFor(body), nil)

		items, _, err := s.Scrape(context.Background(), riksdagen.DefaultStartURL)

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Ensam", items[0].Title)
		assert.Contains(t, items[0].Content, "- dok_id: sfs-1\n- id: x\n")
	})

	t.Run("malformed body is a scrape error", func(t *testing.T) {
		t.Parallel()

		s := riksdagen.NewSFSSpider(fetcherFor(`<html>`), nil)

		_, _, err := s.Scrape(context.Background(), riksdagen.DefaultStartURL)

		assert.Equal(t, arachne.ESCRAPE, arachne.ErrorCode(err))
	})

	t.Run("process saves the page", func(t *testing.T) {
		t.Parallel()

		var saved *arachne.Page
		store := &mock.PageStore{
			SaveFn: func(ctx context.Context, page *arachne.Page) error {
				saved = page
				return nil
			},
		}
		s := riksdagen.NewSFSSpider(fetcherFor(""), store)
		page := &arachne.Page{URL: "https://data.riksdagen.se/dokument/x.html"}

		require.NoError(t, s.Process(context.Background(), page))
		assert.Same(t, page, saved)
	})
}

func TestSFSSpider_Crawl(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/dokumentlista/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("p") {
		case "":
			fmt.Fprint(w, `{"dokumentlista":{"@nasta_sida":"/dokumentlista/?p=2","dokument":[{"dok_id":"a","titel":"A"},{"dok_id":"b","titel":"B"}]}}`)
		case "2":
			fmt.Fprint(w, `{"dokumentlista":{"@nasta_sida":"/dokumentlista/?p=3","dokument":{"dok_id":"c","titel":"C"}}}`)
		case "3":
			fmt.Fprint(w, `{"dokumentlista":{"@nasta_sida":"/dokumentlista/?p=2","dokument":[]}}`)
		}
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	var mu sync.Mutex
	var titles []string
	store := &mock.PageStore{
		SaveFn: func(ctx context.Context, page *arachne.Page) error {
			mu.Lock()
			defer mu.Unlock()
			titles = append(titles, page.Title)
			return nil
		},
	}
	s := riksdagen.NewSFSSpider(arachnehttp.NewFetcher(), store,
		riksdagen.WithStartURL(ts.URL+"/dokumentlista/"))

	cfg := arachne.DefaultConfig()
	cfg.MinRequestInterval = 0
	summary, err := crawl.Run[*arachne.Page](context.Background(), s, cfg)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Crawled)
	assert.Equal(t, 3, summary.Processed)

	sort.Strings(titles)
	assert.Equal(t, []string{"A", "B", "C"}, titles)
}
