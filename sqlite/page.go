package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/arachne"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var (
	_ arachne.PageStore   = (*PageStore)(nil)
	_ arachne.PageService = (*PageStore)(nil)
)

// PageStore implements arachne.PageStore and arachne.PageService using SQLite.
// Pages are keyed by URL; saving a URL again replaces the stored page.
type PageStore struct {
	db *DB
}

// NewPageStore creates a new PageStore.
func NewPageStore(db *DB) *PageStore {
	return &PageStore{db: db}
}

// Save inserts or replaces the page stored for page.URL. The page's ID
// and FetchedAt are filled in when empty; ContentHash is always recomputed.
func (s *PageStore) Save(ctx context.Context, page *arachne.Page) error {
	if err := page.Validate(); err != nil {
		return err
	}

	if page.ID == "" {
		page.ID = uuid.New().String()
	}
	if page.FetchedAt.IsZero() {
		page.FetchedAt = time.Now().UTC()
	}
	page.ContentHash = HashContent(page.Content)

	// The stored id is kept on conflict so it stays stable across crawls.
	return s.db.QueryRowContext(ctx, `
		INSERT INTO pages (id, url, title, content, content_hash, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			content_hash = excluded.content_hash,
			fetched_at = excluded.fetched_at
		RETURNING id
	`, page.ID, page.URL, page.Title, page.Content, page.ContentHash,
		page.FetchedAt.UTC().Format(timeFormat)).Scan(&page.ID)
}

// FindPageByURL retrieves a page by URL.
func (s *PageStore) FindPageByURL(ctx context.Context, url string) (*arachne.Page, error) {
	pages, err := s.FindPages(ctx, arachne.PageFilter{URL: &url, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, arachne.Errorf(arachne.ENOTFOUND, "page not found")
	}
	return pages[0], nil
}

// FindPages retrieves pages matching the filter ordered by URL.
func (s *PageStore) FindPages(ctx context.Context, filter arachne.PageFilter) ([]*arachne.Page, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, url, title, content, content_hash, fetched_at FROM pages WHERE 1=1")

	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}

	query.WriteString(" ORDER BY url ASC")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		// SQLite requires LIMIT before OFFSET.
		if filter.Limit <= 0 {
			query.WriteString(" LIMIT -1")
		}
		query.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*arachne.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	return pages, rows.Err()
}

func scanPage(rows *sql.Rows) (*arachne.Page, error) {
	var page arachne.Page
	var fetchedAt string

	if err := rows.Scan(&page.ID, &page.URL, &page.Title, &page.Content,
		&page.ContentHash, &fetchedAt); err != nil {
		return nil, err
	}

	var err error
	page.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at")
	if err != nil {
		return nil, err
	}
	return &page, nil
}
