package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/arachne"
	"github.com/fwojciec/arachne/toml"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	File    toml.File
	Fetcher arachne.Fetcher
	Store   arachne.PageStore
	Pages   arachne.PageService
	History arachne.CrawlHistory
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"C" type:"path" help:"TOML configuration file"`
	DB      string `name:"db" env:"ARACHNE_DB" help:"SQLite database path"`
	Verbose bool   `short:"v" help:"Log every fetch, scrape and save"`

	Site    SiteCmd    `cmd:"" help:"Mirror a documentation site"`
	SFS     SFSCmd     `cmd:"" name:"sfs" help:"Crawl the Swedish Code of Statutes listing"`
	History HistoryCmd `cmd:"" help:"Show past crawls"`
	Pages   PagesCmd   `cmd:"" help:"List stored pages"`
}

// CrawlFlags are the settings shared by crawl commands. Unset flags keep
// the value from the configuration file.
type CrawlFlags struct {
	Crawl   int           `short:"c" name:"crawl-concurrency" help:"Parallel fetch workers"`
	Process int           `short:"p" name:"process-concurrency" help:"Parallel save workers"`
	Delay   string        `short:"d" name:"delay" help:"Minimum interval between requests, e.g. 200ms (0 disables)"`
	Buffer  int           `name:"buffer" help:"Items buffered between fetch and save"`
	Timeout time.Duration `name:"timeout" help:"Per-request timeout"`
	Bloom   uint          `name:"bloom" help:"Track visited URLs in a Bloom filter sized for N URLs"`
	Out     string        `short:"o" type:"path" help:"Write markdown files under this directory instead of the database"`
}

// Apply returns file with the flags that were set layered on top.
func (f *CrawlFlags) Apply(file toml.File) (toml.File, error) {
	if f.Crawl != 0 {
		file.Crawl.CrawlingConcurrency = f.Crawl
	}
	if f.Process != 0 {
		file.Crawl.ProcessingConcurrency = f.Process
	}
	if f.Delay != "" {
		d, err := time.ParseDuration(f.Delay)
		if err != nil {
			return file, arachne.Errorf(arachne.EINVALID, "invalid delay %q: %v", f.Delay, err)
		}
		file.Crawl.MinRequestInterval = d
	}
	if f.Buffer != 0 {
		file.Crawl.ItemBuffer = f.Buffer
	}
	if f.Timeout != 0 {
		file.Timeout = f.Timeout
	}
	if f.Bloom != 0 {
		file.Bloom = f.Bloom
	}
	if f.Out != "" {
		file.Out = f.Out
	}
	return file, file.Crawl.Validate()
}

// SiteCmd is the "site" subcommand.
type SiteCmd struct {
	URL       string `arg:"" help:"Start URL; the crawl stays below its directory"`
	Include   string `help:"Only follow URLs matching this regex"`
	MaxPages  int    `name:"max-pages" help:"Stop after fetching N pages"`
	Extractor string `help:"Content extractor: trafilatura (default) or readability"`

	CrawlFlags `embed:""`
}

// SFSCmd is the "sfs" subcommand.
type SFSCmd struct {
	URL string `name:"url" help:"Document list URL (defaults to the Riksdag open data API)"`

	CrawlFlags `embed:""`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Spider string `help:"Only show crawls by this spider"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of crawls"`
}

// PagesCmd is the "pages" subcommand.
type PagesCmd struct {
	Limit  int `short:"n" default:"50" help:"Maximum number of pages"`
	Offset int `help:"Skip this many pages"`
}
