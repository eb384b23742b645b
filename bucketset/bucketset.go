// Package bucketset provides a compact representation of an explicit set of
// requested Hive-style bucket numbers.
package bucketset

import (
	roaring "github.com/RoaringBitmap/roaring"
)

// BucketSet holds a set of requested bucket numbers, backed by a Roaring
// bitmap so that a wide, sparse bucket selection over a table with many
// buckets stays cheap to construct, test and iterate.
type BucketSet struct {
	bitmap *roaring.Bitmap
}

// New builds a BucketSet from a list of bucket numbers
func New(buckets []int) *BucketSet {
	bm := roaring.New()
	for _, b := range buckets {
		bm.Add(uint32(b))
	}
	return &BucketSet{bitmap: bm}
}

// Contains returns true iff bucketNumber was requested
func (s *BucketSet) Contains(bucketNumber int) bool {
	if s == nil || s.bitmap == nil {
		return false
	}
	return s.bitmap.Contains(uint32(bucketNumber))
}

// Len returns the number of requested buckets
func (s *BucketSet) Len() int {
	if s == nil || s.bitmap == nil {
		return 0
	}
	return int(s.bitmap.GetCardinality())
}

// ToSortedSlice returns the requested bucket numbers in ascending order
func (s *BucketSet) ToSortedSlice() []int {
	if s == nil || s.bitmap == nil {
		return nil
	}
	vals := s.bitmap.ToArray()
	out := make([]int, len(vals))
	for i, v := range vals {
		out[i] = int(v)
	}
	return out
}
