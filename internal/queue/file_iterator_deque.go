package queue

import (
	"container/list"
	"sync"

	"github.com/lakequery/splitloader/internal/fileiter"
)

// FileIteratorDeque is a concurrent double-ended queue of FileIterators
// representing work-in-progress partitions. AddFirst re-parks a
// partially-consumed iterator on backpressure so the same partially-drained
// iterator resumes rather than being retained in a goroutine's private
// state; AddLast parks a freshly created iterator.
//
// A mutex-guarded container/list.List is used rather than a lock-free
// structure: nothing in the retrieved corpus reaches for a specialized
// lock-free deque, and a mutex-guarded doubly-linked list is exactly the
// idiom the teacher uses for its own shared mutable collections (see
// internal/pcache's LRU lists in the teacher repo).
type FileIteratorDeque struct {
	mu sync.Mutex
	l  list.List
}

// NewFileIteratorDeque builds an empty FileIteratorDeque
func NewFileIteratorDeque() *FileIteratorDeque {
	d := &FileIteratorDeque{}
	d.l.Init()
	return d
}

// AddFirst re-parks it at the head of the deque
func (d *FileIteratorDeque) AddFirst(it *fileiter.FileIterator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.l.PushFront(it)
}

// AddLast parks it at the tail of the deque
func (d *FileIteratorDeque) AddLast(it *fileiter.FileIterator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.l.PushBack(it)
}

// PollFirst removes and returns the iterator at the head of the deque, or
// (nil, false) if it is empty
func (d *FileIteratorDeque) PollFirst() (*fileiter.FileIterator, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	front := d.l.Front()
	if front == nil {
		return nil, false
	}
	d.l.Remove(front)
	return front.Value.(*fileiter.FileIterator), true
}

// IsEmpty reports whether the deque currently holds no iterators
func (d *FileIteratorDeque) IsEmpty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.l.Len() == 0
}
