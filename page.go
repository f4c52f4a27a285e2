package arachne

import (
	"context"
	"time"
)

// Page is the item produced by the bundled spiders.
type Page struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Content     string    `json:"content"` // Markdown
	ContentHash string    `json:"contentHash"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Validate returns an error if the page contains invalid fields.
func (p *Page) Validate() error {
	if p.URL == "" {
		return Errorf(EINVALID, "page URL required")
	}
	return nil
}

// PageStore persists pages. Save is called concurrently by the
// processing workers.
type PageStore interface {
	Save(ctx context.Context, page *Page) error
}

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	// Extract processes raw HTML fetched from pageURL.
	Extract(html string, pageURL string) (*ExtractResult, error)
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML into Markdown, resolving relative links
	// against pageURL when it is non-empty.
	Convert(html string, pageURL string) (string, error)
}

// LinkSelector extracts outbound links from HTML.
type LinkSelector interface {
	// ExtractLinks parses HTML and returns absolute, fragment-free
	// locations in document order without duplicates.
	// The baseURL is used to resolve relative URLs.
	ExtractLinks(html string, baseURL string) ([]Location, error)
}

// PageFilter represents a filter for PageService.FindPages.
type PageFilter struct {
	URL    *string
	Limit  int
	Offset int
}

// PageService reads pages persisted by a PageStore.
type PageService interface {
	FindPageByURL(ctx context.Context, url string) (*Page, error)
	FindPages(ctx context.Context, filter PageFilter) ([]*Page, error)
}
