package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	splitloader "github.com/lakequery/splitloader"
	"github.com/lakequery/splitloader/internal/fileiter"
)

func TestPartitionQueueDeliversEachPartitionExactlyOnce(t *testing.T) {
	partitions := []splitloader.Partition{{Name: "p0"}, {Name: "p1"}, {Name: "p2"}, {Name: "p3"}}
	q := NewPartitionQueue(partitions)

	var mu sync.Mutex
	seen := make(map[string]int)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				p, ok := q.Poll()
				if !ok {
					return
				}
				mu.Lock()
				seen[p.Name]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.True(t, q.IsEmpty())
	require.Len(t, seen, len(partitions))
	for _, name := range []string{"p0", "p1", "p2", "p3"} {
		require.Equal(t, 1, seen[name], "partition %s should be delivered exactly once", name)
	}
}

func TestPartitionQueuePollOnEmptyReturnsFalse(t *testing.T) {
	q := NewPartitionQueue(nil)
	require.True(t, q.IsEmpty())
	_, ok := q.Poll()
	require.False(t, ok)
}

func TestFileIteratorDequeAddFirstAndAddLastOrdering(t *testing.T) {
	d := NewFileIteratorDeque()
	require.True(t, d.IsEmpty())

	a := fileiter.New("/a", nil, "p", nil, nil, nil, nil, nil)
	b := fileiter.New("/b", nil, "p", nil, nil, nil, nil, nil)
	c := fileiter.New("/c", nil, "p", nil, nil, nil, nil, nil)

	d.AddLast(a)
	d.AddLast(b)
	d.AddFirst(c) // re-parked ahead of the queue

	first, ok := d.PollFirst()
	require.True(t, ok)
	require.Same(t, c, first)

	second, ok := d.PollFirst()
	require.True(t, ok)
	require.Same(t, a, second)

	third, ok := d.PollFirst()
	require.True(t, ok)
	require.Same(t, b, third)

	require.True(t, d.IsEmpty())
	_, ok = d.PollFirst()
	require.False(t, ok)
}
