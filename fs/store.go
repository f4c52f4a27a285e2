// Package fs provides file-based storage for crawled pages.
package fs

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/arachne"
)

// URLToPath converts a page URL to a relative file path.
// Example: https://example.com/docs/api/users → docs/api/users.md
// A query string adds a short hash suffix so pages that differ only by
// query do not overwrite each other.
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", arachne.Errorf(arachne.EINVALID, "invalid page URL %q: %v", rawURL, err)
	}

	path := strings.TrimPrefix(u.Path, "/")
	if path == "" || strings.HasSuffix(path, "/") {
		path += "index"
	}
	path = strings.TrimSuffix(path, ".html")

	// Reject traversal out of the output directory.
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", arachne.Errorf(arachne.EINVALID, "page URL %q escapes output directory", rawURL)
	}

	if u.RawQuery != "" {
		clean += fmt.Sprintf("-%08x", uint32(xxhash.Sum64String(u.RawQuery)))
	}
	return clean + ".md", nil
}

// FormatPage formats a page with YAML frontmatter.
func FormatPage(page *arachne.Page) string {
	fetched := page.FetchedAt
	if fetched.IsZero() {
		fetched = time.Now()
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(fmt.Sprintf("%q", page.Title))
	b.WriteString("\ncrawled: ")
	b.WriteString(fetched.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(page.Content)
	b.WriteString("\n")
	return b.String()
}

// Ensure Store implements arachne.PageStore at compile time.
var _ arachne.PageStore = (*Store)(nil)

// Store writes pages as markdown files with atomic run semantics.
// Pages are saved under baseDir/name.tmp and moved to baseDir/name on
// Commit; Abort discards them. Save is safe for concurrent use.
type Store struct {
	baseDir string
	name    string
}

// NewStore creates a new Store.
func NewStore(baseDir, name string) *Store {
	return &Store{
		baseDir: baseDir,
		name:    name,
	}
}

// Dir returns the directory pages end up in after Commit.
func (s *Store) Dir() string {
	return filepath.Join(s.baseDir, s.name)
}

func (s *Store) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

// Save writes one page. Each file is written to a temporary name and
// renamed so a reader never sees a partial file.
func (s *Store) Save(ctx context.Context, page *arachne.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := page.Validate(); err != nil {
		return err
	}

	relPath, err := URLToPath(page.URL)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(s.tempDir(), relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(fullPath), ".page-*")
	if err != nil {
		return err
	}
	if _, err := f.WriteString(FormatPage(page)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), fullPath)
}

// Commit replaces the output directory with the pages saved so far.
func (s *Store) Commit() error {
	if _, err := os.Stat(s.tempDir()); os.IsNotExist(err) {
		return arachne.Errorf(arachne.ENOTFOUND, "no pages saved")
	}
	if err := os.RemoveAll(s.Dir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.Dir())
}

// Abort discards the pages saved so far.
func (s *Store) Abort() error {
	return os.RemoveAll(s.tempDir())
}
