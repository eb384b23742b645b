package splitloader

import (
	"context"
	"io"
)

// FileStatus describes one entry returned by a directory listing
type FileStatus struct {
	Path   string
	Length int64
	IsDir  bool
	Blocks []BlockLocation
}

// BlockLocation is a filesystem-reported byte range annotated with the
// hostnames that hold replicas of it
type BlockLocation struct {
	Offset int64
	Length int64
	Hosts  []string
}

// Filesystem is the distributed filesystem abstraction this package consumes
// -- directory listing, file status and block locations. Implementations are
// assumed thread-safe.
type Filesystem interface {
	// ListStatus lists all entries directly beneath path. Hidden-file
	// filtering is the caller's responsibility (see FileIterator).
	ListStatus(ctx context.Context, path string) ([]FileStatus, error)
	// GetFileStatus resolves a single path to its FileStatus
	GetFileStatus(ctx context.Context, path string) (FileStatus, error)
	// GetFileBlockLocations returns the block locations of status
	// intersecting [start, start+length)
	GetFileBlockLocations(ctx context.Context, status FileStatus, start, length int64) ([]BlockLocation, error)
	// Open opens path for reading, e.g. to parse a symlink file's contents
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// FilesystemResolver resolves a path to the Filesystem instance that should
// serve it. Symlink target paths may name a different cluster than the
// symlink directory itself, so each target is resolved independently.
type FilesystemResolver interface {
	Resolve(ctx context.Context, path string) (Filesystem, error)
}
