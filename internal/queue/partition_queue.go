// Package queue implements the two-level work queue LoaderTask goroutines
// drain: a PartitionQueue of not-yet-dispatched partitions, and a
// FileIteratorDeque of partially-drained per-directory file iterators.
package queue

import (
	"sync"

	splitloader "github.com/lakequery/splitloader"
)

// PartitionQueue drains a fixed list of partitions exactly once across all
// concurrent callers. It is created once, drained to empty, and never
// refilled -- materializing the caller's Iterable<Partition> up front, per
// the Design Notes' "guarded iterator or materialize to a concurrent deque"
// suggestion.
type PartitionQueue struct {
	mu         sync.Mutex
	partitions []splitloader.Partition
	cursor     int
}

// NewPartitionQueue builds a PartitionQueue over partitions, which is
// consumed left to right, each element delivered to exactly one Poll caller
func NewPartitionQueue(partitions []splitloader.Partition) *PartitionQueue {
	return &PartitionQueue{partitions: partitions}
}

// Poll returns the next partition, or (zero, false) if the queue is drained
func (q *PartitionQueue) Poll() (splitloader.Partition, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cursor >= len(q.partitions) {
		return splitloader.Partition{}, false
	}
	p := q.partitions[q.cursor]
	q.cursor++
	return p, true
}

// IsEmpty reports whether every partition has already been polled. It is
// observably consistent with Poll returning false for all future callers.
func (q *PartitionQueue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cursor >= len(q.partitions)
}
