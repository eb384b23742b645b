package splitloader

import "context"

// FileSplit is a pre-computed split boundary returned by an InputFormat's
// GetSplits, before it has been enriched with block locations and locality
// hints by SplitFactory
type FileSplit struct {
	Path   string
	Start  int64
	Length int64
}

// InputFormat decides whether a file is splittable and, for input formats
// that require it, computes split boundaries itself. The class-level
// annotation the original system reflects on to detect "use my own
// getSplits" is replaced here by the UsesExternalSplitComputation capability
// probe -- see Design Notes.
type InputFormat interface {
	// Name identifies this InputFormat for logging
	Name() string
	// IsSplittable reports whether independent byte ranges of path may be
	// read in parallel
	IsSplittable(ctx context.Context, fs Filesystem, path string) (bool, error)
	// UsesExternalSplitComputation reports whether PartitionLoader must call
	// GetSplits instead of walking the partition directory itself
	UsesExternalSplitComputation() bool
	// IsSymlinkFormat reports whether a partition directory in this format
	// holds symlink files, each naming target data files elsewhere
	IsSymlinkFormat() bool
	// GetSplits computes file splits directly, for formats where
	// UsesExternalSplitComputation (or symlink target resolution) applies
	GetSplits(ctx context.Context, fs Filesystem, path string) ([]FileSplit, error)
}
