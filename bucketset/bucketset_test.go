package bucketset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBucketSetContainsAndLen(t *testing.T) {
	s := New([]int{2, 5, 8, 5})
	require.Equal(t, 3, s.Len())
	require.True(t, s.Contains(2))
	require.True(t, s.Contains(5))
	require.True(t, s.Contains(8))
	require.False(t, s.Contains(3))
}

func TestBucketSetToSortedSlice(t *testing.T) {
	s := New([]int{9, 1, 4})
	require.Equal(t, []int{1, 4, 9}, s.ToSortedSlice())
}

func TestNilBucketSetIsEmpty(t *testing.T) {
	var s *BucketSet
	require.Equal(t, 0, s.Len())
	require.False(t, s.Contains(0))
	require.Nil(t, s.ToSortedSlice())
}
