package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/arachne"
	arachnehttp "github.com/fwojciec/arachne/http"
	arachneslog "github.com/fwojciec/arachne/slog"
	"github.com/fwojciec/arachne/sqlite"
	"github.com/fwojciec/arachne/toml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path used when neither --db, ARACHNE_DB nor the config
	// file name one. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("arachne"),
		kong.Description("Polite concurrent web crawler"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'arachne --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.File = toml.DefaultFile()
	if cli.Config != "" {
		if deps.File, err = toml.LoadConfig(cli.Config); err != nil {
			return err
		}
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	dbPath := m.DBPath
	if deps.File.DB != "" {
		dbPath = deps.File.DB
	}
	if cli.DB != "" {
		dbPath = cli.DB
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set ARACHNE_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()

	pages := sqlite.NewPageStore(m.DB)
	deps.Pages = pages
	deps.Store = pages
	deps.History = sqlite.NewCrawlHistory(m.DB)

	// Crawl commands share one fetcher configured from the merged settings.
	var flags *CrawlFlags
	switch cmd := kongCtx.Command(); {
	case strings.HasPrefix(cmd, "site"):
		flags = &cli.Site.CrawlFlags
	case cmd == "sfs":
		flags = &cli.SFS.CrawlFlags
	}
	if flags != nil {
		settings, err := flags.Apply(deps.File)
		if err != nil {
			return err
		}
		opts := []arachnehttp.Option{arachnehttp.WithTimeout(settings.Timeout)}
		if settings.UserAgent != "" {
			opts = append(opts, arachnehttp.WithUserAgent(settings.UserAgent))
		}
		fetcher := arachneslog.NewLoggingFetcher(arachnehttp.NewFetcher(opts...), deps.Logger)
		defer fetcher.Close()
		deps.Fetcher = fetcher
	}

	err = kongCtx.Run(deps)
	if arachne.ErrorCode(err) == arachne.ECANCELED {
		fmt.Fprintln(stderr, "Interrupted; partial results recorded")
	}
	return err
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "arachne.db"
	}
	dir := filepath.Join(home, ".arachne")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "arachne.db")
}
