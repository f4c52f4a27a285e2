package crawl

import (
	"sync"

	"github.com/fwojciec/arachne"
)

// runState is the lifecycle of one run.
type runState int

const (
	stateRunning runState = iota
	stateDraining
	stateDone
)

func (s runState) String() string {
	switch s {
	case stateRunning:
		return "running"
	case stateDraining:
		return "draining"
	case stateDone:
		return "done"
	}
	return "unknown"
}

// tracker detects when a run has no work left.
//
// Counters are updated under mu, and the completion check runs after every
// decrement. Lock order is tracker.mu before the frontier's own lock.
type tracker struct {
	mu       sync.Mutex
	cond     *sync.Cond
	frontier arachne.Frontier

	state         runState
	canceled      bool
	crawlInFlight int
	itemsInFlight int

	// stop is closed on the transition out of stateRunning.
	stop chan struct{}
}

func newTracker(frontier arachne.Frontier) *tracker {
	t := &tracker{
		frontier: frontier,
		stop:     make(chan struct{}),
	}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// next blocks until a location is pending or the run stops draining work.
// On success the caller owns one crawl task and must call crawlDone.
func (t *tracker) next() (arachne.Location, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for {
		if t.state != stateRunning {
			return "", false
		}
		if loc, ok := t.frontier.Dequeue(); ok {
			t.crawlInFlight++
			return loc, true
		}
		t.cond.Wait()
	}
}

// enqueue claims loc in the frontier and wakes parked crawl workers.
func (t *tracker) enqueue(loc arachne.Location) bool {
	if !t.frontier.TryEnqueue(loc) {
		return false
	}
	// Taking mu orders this wakeup after any worker's empty check.
	t.mu.Lock()
	t.cond.Signal()
	t.mu.Unlock()
	return true
}

// itemAdded records one item about to be pushed to the item channel.
// It must be called before the push so the item is counted while visible.
func (t *tracker) itemAdded() {
	t.mu.Lock()
	t.itemsInFlight++
	t.mu.Unlock()
}

// itemDone records one item fully resolved by a process worker
// or dropped after a failed push.
func (t *tracker) itemDone() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.itemsInFlight--
	t.checkLocked()
}

// crawlDone records one crawl task fully resolved, after its discovered
// locations were enqueued and its items were pushed.
func (t *tracker) crawlDone() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.crawlInFlight--
	t.checkLocked()
}

// check evaluates the completion condition, e.g. right after seeding.
func (t *tracker) check() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.checkLocked()
}

func (t *tracker) checkLocked() {
	if t.state != stateRunning {
		return
	}
	if t.crawlInFlight < 0 || t.itemsInFlight < 0 {
		panic("crawl: in-flight counter went negative")
	}
	if t.crawlInFlight == 0 && t.itemsInFlight == 0 && t.frontier.Len() == 0 {
		t.drainLocked()
	}
}

// cancel forces the transition to draining without waiting for pending work.
func (t *tracker) cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateRunning {
		return
	}
	t.canceled = true
	t.drainLocked()
}

func (t *tracker) drainLocked() {
	t.state = stateDraining
	close(t.stop)
	t.cond.Broadcast()
}

// finish marks the run done once every worker has exited.
func (t *tracker) finish() {
	t.mu.Lock()
	t.state = stateDone
	t.mu.Unlock()
}

// wasCanceled reports whether draining was forced by cancel.
func (t *tracker) wasCanceled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canceled
}

// snapshot returns the counters for tests and logging.
func (t *tracker) snapshot() (state runState, crawlInFlight, itemsInFlight int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state, t.crawlInFlight, t.itemsInFlight
}
