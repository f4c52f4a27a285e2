// Package trafilatura extracts the main content of HTML pages.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/arachne"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements arachne.Extractor at compile time.
var _ arachne.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura with its readability fallback enabled.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the title and boilerplate-free content of rawHTML.
// pageURL, if valid, helps trafilatura resolve metadata.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*arachne.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, arachne.Errorf(arachne.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, arachne.WrapError(arachne.ESCRAPE, err, "extract content")
	}

	out := &arachne.ExtractResult{Title: result.Metadata.Title}
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, err
		}
		out.ContentHTML = buf.String()
	}
	return out, nil
}
