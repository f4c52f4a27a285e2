package main_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/arachne"
	main "github.com/fwojciec/arachne/cmd/arachne"
	"github.com/fwojciec/arachne/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	helpOutput := stdout.String()
	for _, cmd := range []string{"site", "sfs", "history", "pages"} {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
}

func TestCLI_ParsesCrawlFlags(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	parser, err := kong.New(cli, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"site", "https://example.com/docs/",
		"-c", "4", "-p", "3", "-d", "1s", "--buffer", "9", "--timeout", "5s",
		"--bloom", "1000", "--max-pages", "10", "--include", "/docs/"})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/docs/", cli.Site.URL)
	assert.Equal(t, 4, cli.Site.Crawl)
	assert.Equal(t, 3, cli.Site.Process)
	assert.Equal(t, "1s", cli.Site.Delay)
	assert.Equal(t, 9, cli.Site.Buffer)
	assert.Equal(t, 5*time.Second, cli.Site.Timeout)
	assert.Equal(t, uint(1000), cli.Site.Bloom)
	assert.Equal(t, 10, cli.Site.MaxPages)
	assert.Equal(t, "/docs/", cli.Site.Include)
}

func TestCrawlFlags_Apply(t *testing.T) {
	t.Parallel()

	t.Run("unset flags keep file values", func(t *testing.T) {
		t.Parallel()

		file := toml.DefaultFile()
		file.Crawl.CrawlingConcurrency = 7
		file.Out = "pages"

		got, err := (&main.CrawlFlags{}).Apply(file)

		require.NoError(t, err)
		assert.Equal(t, file, got)
	})

	t.Run("set flags override file values", func(t *testing.T) {
		t.Parallel()

		flags := &main.CrawlFlags{
			Crawl:   5,
			Process: 6,
			Delay:   "0",
			Buffer:  3,
			Timeout: time.Second,
			Bloom:   10,
			Out:     "out",
		}

		got, err := flags.Apply(toml.DefaultFile())

		require.NoError(t, err)
		assert.Equal(t, 5, got.Crawl.CrawlingConcurrency)
		assert.Equal(t, 6, got.Crawl.ProcessingConcurrency)
		assert.Zero(t, got.Crawl.MinRequestInterval)
		assert.Equal(t, 3, got.Crawl.ItemBuffer)
		assert.Equal(t, time.Second, got.Timeout)
		assert.Equal(t, uint(10), got.Bloom)
		assert.Equal(t, "out", got.Out)
	})

	t.Run("rejects malformed delay", func(t *testing.T) {
		t.Parallel()

		_, err := (&main.CrawlFlags{Delay: "soon"}).Apply(toml.DefaultFile())

		assert.Equal(t, arachne.EINVALID, arachne.ErrorCode(err))
	})

	t.Run("rejects invalid concurrency", func(t *testing.T) {
		t.Parallel()

		_, err := (&main.CrawlFlags{Crawl: -1}).Apply(toml.DefaultFile())

		assert.Equal(t, arachne.EINVALID, arachne.ErrorCode(err))
	})
}

func TestCLI_ParsesSiteExtractor(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	parser, err := kong.New(cli, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"site", "https://example.com/", "--extractor", "readability"})

	require.NoError(t, err)
	assert.Equal(t, "readability", cli.Site.Extractor)
}
