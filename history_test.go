package arachne_test

import (
	"testing"
	"time"

	"github.com/fwojciec/arachne"
	"github.com/stretchr/testify/assert"
)

func TestNewCrawlRecord(t *testing.T) {
	t.Parallel()

	started := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	r := arachne.NewCrawlRecord(&arachne.Summary{
		Spider:        "site",
		Crawled:       5,
		Processed:     4,
		ScrapeErrors:  1,
		ProcessErrors: 2,
		Dropped:       1,
		Canceled:      true,
		Duration:      2*time.Second + 300*time.Millisecond,
	}, started)

	assert.Equal(t, &arachne.CrawlRecord{
		Spider:     "site",
		StartedAt:  started,
		Crawled:    5,
		Processed:  4,
		Errors:     3,
		Dropped:    1,
		Canceled:   true,
		DurationMS: 2300,
	}, r)
}

func TestCrawlRecord_Validate(t *testing.T) {
	t.Parallel()

	t.Run("requires spider", func(t *testing.T) {
		t.Parallel()
		err := (&arachne.CrawlRecord{}).Validate()
		assert.Equal(t, arachne.EINVALID, arachne.ErrorCode(err))
	})

	t.Run("accepts named record", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, (&arachne.CrawlRecord{Spider: "sfs"}).Validate())
	})
}
