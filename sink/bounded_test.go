package sink

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	splitloader "github.com/lakequery/splitloader"
)

func split(path string) *splitloader.InternalSplit {
	return &splitloader.InternalSplit{Path: path}
}

func TestBoundedSplitSinkCompletesImmediatelyUnderCapacity(t *testing.T) {
	s := NewBoundedSplitSink(4)
	signal := s.AddToQueue(split("a"))
	require.True(t, signal.IsDone())
	require.Equal(t, 1, s.Len())
}

func TestBoundedSplitSinkBackpressuresOverCapacity(t *testing.T) {
	s := NewBoundedSplitSink(1)
	first := s.AddToQueue(split("a"))
	require.True(t, first.IsDone())

	second := s.AddToQueue(split("b"))
	require.False(t, second.IsDone())

	drained := s.Drain()
	require.Len(t, drained, 2)

	select {
	case <-second.Done():
	default:
		t.Fatal("expected pending signal to complete after Drain")
	}
}

func TestBoundedSplitSinkFailIsIdempotentAndBlocksFurtherWork(t *testing.T) {
	s := NewBoundedSplitSink(4)
	err1 := errors.New("boom")
	s.Fail(err1)
	s.Fail(errors.New("second failure should be ignored"))
	require.Equal(t, err1, s.Err())

	signal := s.AddToQueue(split("a"))
	require.True(t, signal.IsDone())
	require.Equal(t, 0, s.Len())
}

func TestBoundedSplitSinkNoMoreSplitsIsIdempotent(t *testing.T) {
	s := NewBoundedSplitSink(4)
	s.NoMoreSplits()
	s.NoMoreSplits()
	require.Nil(t, s.Err())
}

func TestBoundedSplitSinkAddBatchPreservesOrder(t *testing.T) {
	s := NewBoundedSplitSink(4)
	batch := []*splitloader.InternalSplit{split("a"), split("b"), split("c")}
	signal := s.AddBatch(batch)
	require.True(t, signal.IsDone())

	drained := s.Drain()
	require.Len(t, drained, 3)
	require.Equal(t, "a", drained[0].Path)
	require.Equal(t, "b", drained[1].Path)
	require.Equal(t, "c", drained[2].Path)
}
