// Package formats provides InputFormat implementations. The Hadoop-style
// class-level annotation the original system reflects on to detect
// "use my own getSplits" is replaced by the UsesExternalSplitComputation and
// IsSymlinkFormat capability-probe methods on splitloader.InputFormat -- no
// reflection is used anywhere in this module.
package formats

import (
	"context"
	"path"
	"strings"

	splitloader "github.com/lakequery/splitloader"
)

// nonSplittableExtensions names file extensions this module treats as
// non-splittable, mirroring the intent (though not the mechanism) of an
// InputFormat registry that consults a codec's splittability
var nonSplittableExtensions = map[string]struct{}{
	".gz": {},
}

// GenericInputFormat is the default: files are splittable unless their
// extension names a known non-splittable codec, and it neither computes its
// own splits nor represents a symlink directory
type GenericInputFormat struct{}

// Name identifies this InputFormat for logging
func (GenericInputFormat) Name() string { return "generic" }

// IsSplittable reports whether path's extension is known non-splittable
func (GenericInputFormat) IsSplittable(_ context.Context, _ splitloader.Filesystem, filePath string) (bool, error) {
	_, nonSplittable := nonSplittableExtensions[strings.ToLower(path.Ext(filePath))]
	return !nonSplittable, nil
}

// UsesExternalSplitComputation is always false for GenericInputFormat
func (GenericInputFormat) UsesExternalSplitComputation() bool { return false }

// IsSymlinkFormat is always false for GenericInputFormat
func (GenericInputFormat) IsSymlinkFormat() bool { return false }

// GetSplits is never called for GenericInputFormat, since
// UsesExternalSplitComputation is false
func (GenericInputFormat) GetSplits(_ context.Context, _ splitloader.Filesystem, _ string) ([]splitloader.FileSplit, error) {
	return nil, nil
}

// TextInputFormat is used both as an ordinary line-oriented input format and
// as the format symlink targets are resolved through. Its GetSplits
// produces one FileSplit per target file spanning the whole file -- this
// module does not implement block-boundary text splitting, since a single
// split per target file is sufficient for the CORE's contract.
type TextInputFormat struct{}

// Name identifies this InputFormat for logging
func (TextInputFormat) Name() string { return "text" }

// IsSplittable is always true for TextInputFormat
func (TextInputFormat) IsSplittable(_ context.Context, _ splitloader.Filesystem, _ string) (bool, error) {
	return true, nil
}

// UsesExternalSplitComputation is always false for TextInputFormat itself;
// PartitionLoader calls GetSplits directly when resolving symlink targets,
// independent of this flag
func (TextInputFormat) UsesExternalSplitComputation() bool { return false }

// IsSymlinkFormat is always false for TextInputFormat
func (TextInputFormat) IsSymlinkFormat() bool { return false }

// GetSplits returns one FileSplit spanning the whole file at path
func (TextInputFormat) GetSplits(ctx context.Context, fs splitloader.Filesystem, filePath string) ([]splitloader.FileSplit, error) {
	status, err := fs.GetFileStatus(ctx, filePath)
	if err != nil {
		return nil, err
	}
	return []splitloader.FileSplit{{Path: filePath, Start: 0, Length: status.Length}}, nil
}

// DelegatingInputFormat wraps a user-supplied GetSplits, demonstrating the
// "delegated split computation" dispatch case: UsesExternalSplitComputation
// is always true, so PartitionLoader calls Splitter instead of walking the
// partition directory itself
type DelegatingInputFormat struct {
	Splitter func(ctx context.Context, fs splitloader.Filesystem, path string) ([]splitloader.FileSplit, error)
}

// Name identifies this InputFormat for logging
func (DelegatingInputFormat) Name() string { return "delegating" }

// IsSplittable is always false for splits produced by a DelegatingInputFormat
func (DelegatingInputFormat) IsSplittable(_ context.Context, _ splitloader.Filesystem, _ string) (bool, error) {
	return false, nil
}

// UsesExternalSplitComputation is always true for DelegatingInputFormat
func (DelegatingInputFormat) UsesExternalSplitComputation() bool { return true }

// IsSymlinkFormat is always false for DelegatingInputFormat
func (DelegatingInputFormat) IsSymlinkFormat() bool { return false }

// GetSplits invokes the wrapped Splitter function
func (d DelegatingInputFormat) GetSplits(ctx context.Context, fs splitloader.Filesystem, dirPath string) ([]splitloader.FileSplit, error) {
	return d.Splitter(ctx, fs, dirPath)
}

// SymlinkTextInputFormat marks a partition directory as containing symlink
// files whose lines are target paths, rather than data files itself.
// Bucketed tables using this format are unsupported (see internal/loader).
type SymlinkTextInputFormat struct{}

// Name identifies this InputFormat for logging
func (SymlinkTextInputFormat) Name() string { return "symlink_text" }

// IsSplittable is never consulted for the symlink directory itself
func (SymlinkTextInputFormat) IsSplittable(_ context.Context, _ splitloader.Filesystem, _ string) (bool, error) {
	return false, nil
}

// UsesExternalSplitComputation is always false for SymlinkTextInputFormat
func (SymlinkTextInputFormat) UsesExternalSplitComputation() bool { return false }

// IsSymlinkFormat is always true for SymlinkTextInputFormat
func (SymlinkTextInputFormat) IsSymlinkFormat() bool { return true }

// GetSplits is never called for SymlinkTextInputFormat; targets are
// resolved through TextInputFormat instead
func (SymlinkTextInputFormat) GetSplits(_ context.Context, _ splitloader.Filesystem, _ string) ([]splitloader.FileSplit, error) {
	return nil, nil
}
