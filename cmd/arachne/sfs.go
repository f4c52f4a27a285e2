package main

import (
	"fmt"

	"github.com/fwojciec/arachne"
	"github.com/fwojciec/arachne/riksdagen"
)

// Run executes the sfs command.
func (c *SFSCmd) Run(deps *Dependencies) error {
	settings, err := c.Apply(deps.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", arachne.ErrorMessage(err))
		return err
	}

	var opts []riksdagen.Option
	if c.URL != "" {
		opts = append(opts, riksdagen.WithStartURL(c.URL))
	}

	sink := openSink(deps, settings, "sfs")
	spider := riksdagen.NewSFSSpider(deps.Fetcher, sink, opts...)

	return runCrawl(deps, spider, settings, sink, nil)
}
