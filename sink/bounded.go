// Package sink provides BoundedSplitSink, a mutex-guarded in-memory
// reference implementation of splitloader.SplitSink used by tests and the
// demo binary. It demonstrates the backpressure contract: AddToQueue returns
// an already-complete CompletionSignal while the sink holds no more than its
// capacity, and a pending signal -- completed by the next Drain call --
// otherwise.
package sink

import (
	"sync"

	splitloader "github.com/lakequery/splitloader"
)

// pendingSignal is a CompletionSignal that completes when its channel is
// closed by whichever goroutine frees up room in the sink
type pendingSignal struct {
	ch chan struct{}
}

func newPendingSignal() *pendingSignal {
	return &pendingSignal{ch: make(chan struct{})}
}

func (s *pendingSignal) Done() <-chan struct{} { return s.ch }

func (s *pendingSignal) IsDone() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

func (s *pendingSignal) complete() {
	close(s.ch)
}

// BoundedSplitSink is a fixed-capacity in-memory SplitSink. Splits pile up
// in received until Drain removes them, at which point every pending signal
// is completed and blocked producers may proceed.
type BoundedSplitSink struct {
	capacity int

	mu       sync.Mutex
	received []*splitloader.InternalSplit
	pending  []*pendingSignal
	done     bool
	failure  error
	once     sync.Once
	doneOnce sync.Once
}

// NewBoundedSplitSink builds a BoundedSplitSink that will hold at most
// capacity un-drained splits before backpressuring producers
func NewBoundedSplitSink(capacity int) *BoundedSplitSink {
	return &BoundedSplitSink{capacity: capacity}
}

// AddToQueue enqueues split, returning a signal that completes once the
// sink has room for it
func (s *BoundedSplitSink) AddToQueue(split *splitloader.InternalSplit) splitloader.CompletionSignal {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return splitloader.Completed()
	}

	s.received = append(s.received, split)
	if len(s.received) <= s.capacity {
		return splitloader.Completed()
	}

	sig := newPendingSignal()
	s.pending = append(s.pending, sig)
	return sig
}

// AddBatch enqueues every split in splits, honoring ordering within the
// batch. The returned signal reflects the last element's admission state.
func (s *BoundedSplitSink) AddBatch(splits []*splitloader.InternalSplit) splitloader.CompletionSignal {
	var last splitloader.CompletionSignal = splitloader.Completed()
	for _, split := range splits {
		last = s.AddToQueue(split)
	}
	return last
}

// NoMoreSplits is an idempotent terminal marker
func (s *BoundedSplitSink) NoMoreSplits() {
	s.doneOnce.Do(func() {
		s.mu.Lock()
		s.done = true
		s.mu.Unlock()
	})
}

// Fail is an idempotent terminal failure; once called, AddToQueue/AddBatch/
// NoMoreSplits become no-ops
func (s *BoundedSplitSink) Fail(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.done = true
		s.failure = err
		s.mu.Unlock()
	})
}

// Err returns the failure passed to Fail, if any
func (s *BoundedSplitSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

// Drain removes and returns every split currently received and completes
// every pending signal
func (s *BoundedSplitSink) Drain() []*splitloader.InternalSplit {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.received
	s.received = nil

	for _, p := range s.pending {
		p.complete()
	}
	s.pending = nil

	return out
}

// Len reports how many splits are currently held without draining them
func (s *BoundedSplitSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}
