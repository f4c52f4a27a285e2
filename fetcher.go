package arachne

import "context"

// Fetcher retrieves raw response bodies from URLs.
type Fetcher interface {
	// Fetch performs a GET request and returns the body.
	// Non-success status codes are returned as ESCRAPE errors.
	Fetch(ctx context.Context, url string) ([]byte, error)

	// Close releases resources.
	Close() error
}
