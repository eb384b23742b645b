// Package fileiter implements the lazy, single-level, restartable-only-by-
// replacement directory walker LoaderTask goroutines drain. Recursion into
// sub-directories is the caller's responsibility: it constructs a fresh
// FileIterator rooted at the sub-directory and pushes it onto the deque
// (see internal/queue and internal/engine), rather than FileIterator
// recursing on its own.
package fileiter

import (
	"context"
	"strings"

	splitloader "github.com/lakequery/splitloader"
)

// IsHidden matches the convention "names beginning with . or _ are hidden"
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// BaseName returns the final path component of p
func BaseName(p string) string {
	idx := strings.LastIndexByte(p, '/')
	if idx < 0 {
		return p
	}
	return p[idx+1:]
}

// FileIterator lazily lists the files directly beneath Root, filtering
// hidden entries. It is not safe for concurrent use by two goroutines: the
// FileIteratorDeque disciplines ownership so only one goroutine ever holds
// an iterator at a time.
type FileIterator struct {
	Root               string
	Filesystem         splitloader.Filesystem
	PartitionName      string
	InputFormat        splitloader.InputFormat
	Schema             *splitloader.Schema
	PartitionKeys      []*string
	EffectivePredicate splitloader.PathDomain
	Coercions          map[int]splitloader.ColumnType

	entries []splitloader.FileStatus
	cursor  int
	loaded  bool
	err     error
}

// New constructs a FileIterator rooted at root, inheriting the rest of its
// context from the partition that produced it
func New(root string, fs splitloader.Filesystem, partitionName string, inputFormat splitloader.InputFormat, schema *splitloader.Schema, partitionKeys []*string, predicate splitloader.PathDomain, coercions map[int]splitloader.ColumnType) *FileIterator {
	return &FileIterator{
		Root:               root,
		Filesystem:         fs,
		PartitionName:      partitionName,
		InputFormat:        inputFormat,
		Schema:             schema,
		PartitionKeys:      partitionKeys,
		EffectivePredicate: predicate,
		Coercions:          coercions,
	}
}

// ensureLoaded performs the single lazy ListStatus call and filters hidden
// entries. It is only ever called by the goroutine that currently owns this
// iterator.
func (it *FileIterator) ensureLoaded(ctx context.Context) error {
	if it.loaded {
		return it.err
	}
	it.loaded = true
	statuses, err := it.Filesystem.ListStatus(ctx, it.Root)
	if err != nil {
		it.err = err
		return err
	}
	visible := statuses[:0]
	for _, s := range statuses {
		if !IsHidden(BaseName(s.Path)) {
			visible = append(visible, s)
		}
	}
	it.entries = visible
	return nil
}

// HasNext reports whether another entry remains. Errors from the underlying
// lister surface here or from Next, whichever is called first.
func (it *FileIterator) HasNext(ctx context.Context) (bool, error) {
	if err := it.ensureLoaded(ctx); err != nil {
		return false, err
	}
	return it.cursor < len(it.entries), nil
}

// Next returns the next entry and advances the cursor
func (it *FileIterator) Next(ctx context.Context) (splitloader.FileStatus, error) {
	if err := it.ensureLoaded(ctx); err != nil {
		return splitloader.FileStatus{}, err
	}
	entry := it.entries[it.cursor]
	it.cursor++
	return entry, nil
}
