// Package readability extracts article content with Mozilla's Readability
// heuristics. It suits blog-like pages where trafilatura keeps too much.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/arachne"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements arachne.Extractor at compile time.
var _ arachne.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content. Relative links
// in the content are resolved against pageURL when it is valid.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*arachne.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, arachne.Errorf(arachne.EINVALID, "empty HTML input")
	}

	var base *url.URL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		base = u
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), base)
	if err != nil {
		return nil, arachne.WrapError(arachne.ESCRAPE, err, "extract article")
	}

	return &arachne.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
