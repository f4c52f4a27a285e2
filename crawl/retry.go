package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/arachne"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// FetchWithRetryDelays fetches url, retrying transient failures after each
// of delays. The engine never retries a failed Scrape; spiders that want
// retries call this from inside Scrape. Every retry waits on limiter, when
// non-nil, so it shares the crawl's request spacing. Client errors
// (invalid input, not found) are returned without retrying.
func FetchWithRetryDelays(ctx context.Context, url string, fetch FetchFunc, limiter arachne.Limiter, logger LogFunc, delays []time.Duration) ([]byte, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		body, err := fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 || !retryable(err) {
			break
		}

		if logger != nil {
			logger("retry %s (attempt %d): %v", url, attempt+2, err)
		}

		if err := sleep(ctx, delays[attempt]); err != nil {
			return nil, err
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
	}

	return nil, lastErr
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	switch arachne.ErrorCode(err) {
	case arachne.EINVALID, arachne.ENOTFOUND, arachne.ECANCELED:
		return false
	}
	return true
}
