// Package goquery provides HTML link extraction built on goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/arachne"
)

// Ensure Selector implements arachne.LinkSelector at compile time.
var _ arachne.LinkSelector = (*Selector)(nil)

// regions lists page areas in the order their links are emitted. Links from
// navigation come first so a FIFO frontier explores the site outline early.
var regions = []string{
	".toc a[href], .table-of-contents a[href], .sidebar a[href], aside a[href]",
	"nav a[href], [role=\"navigation\"] a[href], .nav a[href], .menu a[href], .navbar a[href]",
	"main a[href], article a[href], .content a[href]",
	"footer a[href], .footer a[href]",
	"a[href]",
}

// Selector extracts same-host links from HTML.
type Selector struct{}

// NewSelector creates a new Selector.
func NewSelector() *Selector {
	return &Selector{}
}

// ExtractLinks parses HTML and returns absolute, fragment-free locations.
// Each location appears once, at the position of its first region match.
// A <base href> element overrides baseURL for resolution.
func (s *Selector) ExtractLinks(html string, baseURL string) ([]arachne.Location, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, arachne.Errorf(arachne.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, arachne.Errorf(arachne.EINVALID, "failed to parse HTML: %v", err)
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(href); err == nil {
			base = base.ResolveReference(ref)
		}
	}

	seen := make(map[arachne.Location]bool)
	var links []arachne.Location
	for _, selector := range regions {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			href = strings.TrimSpace(href)
			if href == "" || strings.HasPrefix(href, "#") {
				return
			}
			if _, ok := sel.Attr("download"); ok {
				return
			}

			loc, ok := arachne.NormalizeLocation(base, href)
			if !ok || seen[loc] {
				return
			}
			if !isSameHost(base, loc) {
				return
			}
			seen[loc] = true
			links = append(links, loc)
		})
	}

	return links, nil
}

// Title returns the document title, or "" if there is none.
func Title(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// isSameHost checks if loc has the same host as the base URL.
func isSameHost(base *url.URL, loc arachne.Location) bool {
	u, err := url.Parse(string(loc))
	if err != nil {
		return false
	}
	return u.Host == base.Host
}
