package mock

import (
	"context"

	"github.com/fwojciec/arachne"
)

var _ arachne.Frontier = (*Frontier)(nil)

// Frontier is a mock implementation of arachne.Frontier.
type Frontier struct {
	SeedFn       func(locs []arachne.Location)
	TryEnqueueFn func(loc arachne.Location) bool
	DequeueFn    func() (arachne.Location, bool)
	LenFn        func() int
	SeenFn       func(loc arachne.Location) bool
}

func (f *Frontier) Seed(locs []arachne.Location) {
	f.SeedFn(locs)
}

func (f *Frontier) TryEnqueue(loc arachne.Location) bool {
	return f.TryEnqueueFn(loc)
}

func (f *Frontier) Dequeue() (arachne.Location, bool) {
	return f.DequeueFn()
}

func (f *Frontier) Len() int {
	return f.LenFn()
}

func (f *Frontier) Seen(loc arachne.Location) bool {
	return f.SeenFn(loc)
}

var _ arachne.Limiter = (*Limiter)(nil)

// Limiter is a mock implementation of arachne.Limiter.
type Limiter struct {
	WaitFn func(ctx context.Context) error
}

func (l *Limiter) Wait(ctx context.Context) error {
	return l.WaitFn(ctx)
}
