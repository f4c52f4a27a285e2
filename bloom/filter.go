// Package bloom provides approximate location deduplication using Bloom filters.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/arachne"
)

var _ arachne.VisitedSet = (*Filter)(nil)

// Filter is a fixed-memory VisitedSet. A false positive makes the frontier
// reject a location that was never seen, so it suits very large crawls where
// losing a small fraction of pages is acceptable.
type Filter struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected locations
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// TestAndAdd adds loc and reports whether it was possibly present before.
func (f *Filter) TestAndAdd(loc arachne.Location) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.f.TestAndAddString(string(loc))
}

// Test returns true if loc might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(loc arachne.Location) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.f.TestString(string(loc))
}

// EstimatedCount returns the approximate number of locations in the filter.
func (f *Filter) EstimatedCount() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint(f.f.ApproximatedSize())
}
