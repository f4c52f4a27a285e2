// Package mock provides function-field implementations of arachne interfaces for tests.
package mock

import (
	"context"

	"github.com/fwojciec/arachne"
)

var _ arachne.Spider[string] = (*Spider[string])(nil)

// Spider is a mock implementation of arachne.Spider.
type Spider[T any] struct {
	NameFn      func() string
	StartURLsFn func() []arachne.Location
	ScrapeFn    func(ctx context.Context, loc arachne.Location) ([]T, []arachne.Location, error)
	ProcessFn   func(ctx context.Context, item T) error
}

func (s *Spider[T]) Name() string {
	if s.NameFn == nil {
		return "mock"
	}
	return s.NameFn()
}

func (s *Spider[T]) StartURLs() []arachne.Location {
	return s.StartURLsFn()
}

func (s *Spider[T]) Scrape(ctx context.Context, loc arachne.Location) ([]T, []arachne.Location, error) {
	return s.ScrapeFn(ctx, loc)
}

func (s *Spider[T]) Process(ctx context.Context, item T) error {
	return s.ProcessFn(ctx, item)
}
