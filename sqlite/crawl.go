package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/arachne"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ arachne.CrawlHistory = (*CrawlHistory)(nil)

// CrawlHistory implements arachne.CrawlHistory using SQLite.
type CrawlHistory struct {
	db *DB
}

// NewCrawlHistory creates a new CrawlHistory.
func NewCrawlHistory(db *DB) *CrawlHistory {
	return &CrawlHistory{db: db}
}

// RecordCrawl stores a finished run and assigns its ID.
func (h *CrawlHistory) RecordCrawl(ctx context.Context, r *arachne.CrawlRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}

	r.ID = uuid.New().String()
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO crawls (id, spider, started_at, crawled, processed, errors, dropped, canceled, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Spider, r.StartedAt.UTC().Format(timeFormat), r.Crawled, r.Processed,
		r.Errors, r.Dropped, r.Canceled, r.DurationMS)

	return err
}

// FindCrawls returns recorded runs, most recent first.
func (h *CrawlHistory) FindCrawls(ctx context.Context, filter arachne.CrawlFilter) ([]*arachne.CrawlRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, spider, started_at, crawled, processed, errors, dropped, canceled, duration_ms FROM crawls WHERE 1=1")

	if filter.Spider != nil {
		query.WriteString(" AND spider = ?")
		args = append(args, *filter.Spider)
	}

	query.WriteString(" ORDER BY started_at DESC")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	rows, err := h.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*arachne.CrawlRecord
	for rows.Next() {
		var r arachne.CrawlRecord
		var startedAt string
		if err := rows.Scan(&r.ID, &r.Spider, &startedAt, &r.Crawled, &r.Processed,
			&r.Errors, &r.Dropped, &r.Canceled, &r.DurationMS); err != nil {
			return nil, err
		}
		if r.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
			return nil, err
		}
		records = append(records, &r)
	}

	return records, rows.Err()
}
