package splitloader

import "github.com/lakequery/splitloader/bucketset"

// BucketHandle describes a table's bucketing scheme and, optionally, the
// specific buckets a scan needs. An empty or nil Buckets means "full scan of
// all buckets."
type BucketHandle struct {
	BucketCount int
	Buckets     *bucketset.BucketSet
}

// HasExplicitBuckets returns true iff the scan requested specific buckets
// rather than all of them
func (h *BucketHandle) HasExplicitBuckets() bool {
	return h != nil && h.Buckets != nil && h.Buckets.Len() > 0
}
