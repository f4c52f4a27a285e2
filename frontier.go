package arachne

import "context"

// Frontier holds pending locations and remembers every location it has
// ever accepted. Implementations must be safe for concurrent use.
type Frontier interface {
	// Seed enqueues each location that has not been seen before.
	Seed(locs []Location)

	// TryEnqueue claims and enqueues loc.
	// Returns false if loc was already claimed.
	TryEnqueue(loc Location) bool

	// Dequeue pops the oldest pending location.
	// Returns false if nothing is pending.
	Dequeue() (Location, bool)

	// Len returns the number of pending locations.
	Len() int

	// Seen returns true if loc has been claimed.
	Seen(loc Location) bool
}

// VisitedSet records claimed locations for a Frontier.
type VisitedSet interface {
	// TestAndAdd adds loc and reports whether it was already present.
	TestAndAdd(loc Location) bool

	// Test reports whether loc is present.
	Test(loc Location) bool
}

// Limiter gates outbound fetches.
type Limiter interface {
	// Wait blocks until the next fetch may start.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context) error
}
