// Package riksdagen implements a spider for the Swedish Code of Statutes
// (SFS) listing in the Riksdag open data API.
//
// Each page of the document list yields one arachne.Page per statute and
// links to the next list page, so the crawl walks the listing to its end.
package riksdagen

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/arachne"
	"github.com/goccy/go-json"
)

// DefaultStartURL is the SFS document list in JSON form.
const DefaultStartURL = "https://data.riksdagen.se/dokumentlista/?sok=&doktyp=SFS&sort=rel&sortorder=desc&utformat=json&a=s"

// Ensure SFSSpider implements arachne.Spider.
var _ arachne.Spider[*arachne.Page] = (*SFSSpider)(nil)

// SFSSpider walks the SFS document list.
type SFSSpider struct {
	startURL string
	fetcher  arachne.Fetcher
	store    arachne.PageStore
}

// Option configures an SFSSpider.
type Option func(*SFSSpider)

// WithStartURL overrides the document list URL.
func WithStartURL(u string) Option {
	return func(s *SFSSpider) {
		s.startURL = u
	}
}

// NewSFSSpider creates a new SFSSpider.
func NewSFSSpider(fetcher arachne.Fetcher, store arachne.PageStore, opts ...Option) *SFSSpider {
	s := &SFSSpider{
		startURL: DefaultStartURL,
		fetcher:  fetcher,
		store:    store,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "sfs".
func (s *SFSSpider) Name() string {
	return "sfs"
}

// StartURLs returns the first list page.
func (s *SFSSpider) StartURLs() []arachne.Location {
	return []arachne.Location{arachne.Location(s.startURL)}
}

// Scrape fetches one list page. It returns the listed documents and the
// next list page, if any.
func (s *SFSSpider) Scrape(ctx context.Context, loc arachne.Location) ([]*arachne.Page, []arachne.Location, error) {
	body, err := s.fetcher.Fetch(ctx, string(loc))
	if err != nil {
		return nil, nil, err
	}

	var root listResponse
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, nil, arachne.Errorf(arachne.ESCRAPE, "decode document list %s: %v", loc, err)
	}

	base, err := url.Parse(string(loc))
	if err != nil {
		return nil, nil, arachne.Errorf(arachne.EINVALID, "invalid list URL %q", loc)
	}

	now := time.Now().UTC()
	pages := make([]*arachne.Page, 0, len(root.List.Documents))
	for _, doc := range root.List.Documents {
		pages = append(pages, doc.page(base, now))
	}

	var next []arachne.Location
	if root.List.NextPage != "" {
		if l, ok := arachne.NormalizeLocation(base, root.List.NextPage); ok {
			next = append(next, l)
		}
	}
	return pages, next, nil
}

// Process saves the statute page.
func (s *SFSSpider) Process(ctx context.Context, page *arachne.Page) error {
	return s.store.Save(ctx, page)
}

type listResponse struct {
	List documentList `json:"dokumentlista"`
}

type documentList struct {
	NextPage  string    `json:"@nasta_sida"`
	Documents documents `json:"dokument"`
}

// documents accepts both an array and a single object, since the API
// returns a bare object when a list page holds exactly one document.
type documents []document

func (d *documents) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*d = nil
		return nil
	case len(data) > 0 && data[0] == '{':
		var one document
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*d = documents{one}
		return nil
	}
	var many []document
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*d = many
	return nil
}

type document struct {
	ID         string `json:"id"`
	DokID      string `json:"dok_id"`
	Title      string `json:"titel"`
	Subtitle   string `json:"undertitel"`
	Beteckning string `json:"beteckning"`
	Date       string `json:"datum"`
	Summary    string `json:"summary"`
	URL        string `json:"dokument_url_html"`
}

// page converts a listed document into a page. Relative and
// scheme-less document URLs resolve against the list URL.
func (d document) page(base *url.URL, fetchedAt time.Time) *arachne.Page {
	u := d.URL
	if u == "" {
		u = "https://data.riksdagen.se/dokument/" + d.DokID + ".html"
	}
	if loc, ok := arachne.NormalizeLocation(base, u); ok {
		u = string(loc)
	}

	return &arachne.Page{
		URL:       u,
		Title:     d.Title,
		Content:   d.markdown(),
		FetchedAt: fetchedAt,
	}
}

func (d document) markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", d.Title)
	if d.Subtitle != "" {
		fmt.Fprintf(&b, "\n%s\n", d.Subtitle)
	}
	fmt.Fprintf(&b, "\n- dok_id: %s\n", d.DokID)
	if d.ID != "" && d.ID != d.DokID {
		fmt.Fprintf(&b, "- id: %s\n", d.ID)
	}
	if d.Beteckning != "" {
		fmt.Fprintf(&b, "- beteckning: %s\n", d.Beteckning)
	}
	if d.Date != "" {
		fmt.Fprintf(&b, "- datum: %s\n", d.Date)
	}
	if s := strings.TrimSpace(d.Summary); s != "" {
		fmt.Fprintf(&b, "\n%s\n", s)
	}
	return b.String()
}
