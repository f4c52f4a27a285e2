package crawl

import (
	"sync"

	"github.com/fwojciec/arachne"
)

// Compile-time interface verification.
var _ arachne.Frontier = (*Frontier)(nil)

// Frontier is an in-memory FIFO frontier with deduplication.
// A location is claimed the moment it is first enqueued, so it can enter
// the pending queue at most once per Frontier lifetime.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu      sync.Mutex
	visited arachne.VisitedSet
	queue   []arachne.Location
	head    int
}

// FrontierOption configures a Frontier.
type FrontierOption func(*Frontier)

// WithVisitedSet replaces the exact visited set, e.g. with a bloom.Filter.
func WithVisitedSet(set arachne.VisitedSet) FrontierOption {
	return func(f *Frontier) {
		f.visited = set
	}
}

// NewFrontier creates an empty Frontier.
func NewFrontier(opts ...FrontierOption) *Frontier {
	f := &Frontier{}
	for _, opt := range opts {
		opt(f)
	}
	if f.visited == nil {
		f.visited = newExactSet()
	}
	return f
}

// Seed enqueues each location that has not been claimed yet.
func (f *Frontier) Seed(locs []arachne.Location) {
	for _, loc := range locs {
		f.TryEnqueue(loc)
	}
}

// TryEnqueue claims loc and appends it to the queue.
// Returns false if loc has already been claimed.
func (f *Frontier) TryEnqueue(loc arachne.Location) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visited.TestAndAdd(loc) {
		return false
	}
	f.queue = append(f.queue, loc)
	return true
}

// Dequeue pops the oldest pending location.
// The bool result is false if the frontier is empty.
func (f *Frontier) Dequeue() (arachne.Location, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.head == len(f.queue) {
		return "", false
	}
	loc := f.queue[f.head]
	f.queue[f.head] = ""
	f.head++

	// Reclaim the consumed prefix once it dominates the backing array.
	if f.head == len(f.queue) {
		f.queue = f.queue[:0]
		f.head = 0
	} else if f.head > 1024 && f.head*2 > len(f.queue) {
		n := copy(f.queue, f.queue[f.head:])
		f.queue = f.queue[:n]
		f.head = 0
	}
	return loc, true
}

// Len returns the number of pending locations.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) - f.head
}

// Seen returns true if loc has been claimed, whether or not it was dequeued.
func (f *Frontier) Seen(loc arachne.Location) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Test(loc)
}

// exactSet is the default VisitedSet. Callers hold Frontier.mu.
type exactSet map[arachne.Location]struct{}

func newExactSet() exactSet {
	return make(exactSet)
}

func (s exactSet) TestAndAdd(loc arachne.Location) bool {
	if _, ok := s[loc]; ok {
		return true
	}
	s[loc] = struct{}{}
	return false
}

func (s exactSet) Test(loc arachne.Location) bool {
	_, ok := s[loc]
	return ok
}
