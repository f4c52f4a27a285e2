package main

import (
	"fmt"
	"regexp"

	"github.com/fwojciec/arachne"
	"github.com/fwojciec/arachne/crawl"
	"github.com/fwojciec/arachne/goquery"
	"github.com/fwojciec/arachne/htmltomarkdown"
	"github.com/fwojciec/arachne/readability"
	"github.com/fwojciec/arachne/site"
	"github.com/fwojciec/arachne/trafilatura"
)

// Run executes the site command.
func (c *SiteCmd) Run(deps *Dependencies) error {
	settings, err := c.Apply(deps.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", arachne.ErrorMessage(err))
		return err
	}

	include := settings.Site.Include
	if c.Include != "" {
		include = c.Include
	}
	maxPages := settings.Site.MaxPages
	if c.MaxPages != 0 {
		maxPages = c.MaxPages
	}

	extractor, err := newExtractor(c.Extractor, settings.Site.Extractor)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", arachne.ErrorMessage(err))
		return err
	}

	// Retries inside the spider share the engine's request spacing.
	limiter := crawl.NewRateLimiter(settings.Crawl.MinRequestInterval)
	opts := []site.Option{
		site.WithMaxPages(maxPages),
		site.WithLimiter(limiter),
		site.WithLogger(deps.Logger),
	}
	if include != "" {
		re, err := regexp.Compile(include)
		if err != nil {
			err = arachne.Errorf(arachne.EINVALID, "invalid include pattern: %v", err)
			fmt.Fprintf(deps.Stderr, "error: %s\n", arachne.ErrorMessage(err))
			return err
		}
		opts = append(opts, site.WithInclude(re))
	}

	sink := openSink(deps, settings, outputName(c.URL))
	spider, err := site.New(c.URL, site.Deps{
		Fetcher:   deps.Fetcher,
		Links:     goquery.NewSelector(),
		Extractor: extractor,
		Converter: htmltomarkdown.NewConverter(),
		Store:     sink,
	}, opts...)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", arachne.ErrorMessage(err))
		return err
	}

	return runCrawl(deps, spider, settings, sink, limiter)
}

// newExtractor picks the extractor named by the flag, else by the file.
func newExtractor(flag, file string) (arachne.Extractor, error) {
	name := file
	if flag != "" {
		name = flag
	}
	switch name {
	case "", "trafilatura":
		return trafilatura.NewExtractor(), nil
	case "readability":
		return readability.NewExtractor(), nil
	}
	return nil, arachne.Errorf(arachne.EINVALID, "unknown extractor %q", name)
}
