// Package errors defines the split loader's error taxonomy: one struct type
// per error kind, each implementing the error interface and, where an
// underlying cause exists, Unwrap.
package errors

import "fmt"

// BadDataError occurs when a symlink file cannot be parsed
type BadDataError struct {
	Path string
	Err  error
}

// Error returns a textual representation of this BadDataError
func (e *BadDataError) Error() string {
	return fmt.Sprintf("error parsing symlinks from %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause
func (e *BadDataError) Unwrap() error { return e.Err }

// InvalidBucketFilesError occurs when a bucket directory contains a
// sub-directory, or when the number of files does not match the declared
// bucket count
type InvalidBucketFilesError struct {
	PartitionName string
	Message       string
}

// Error returns a textual representation of this InvalidBucketFilesError
func (e *InvalidBucketFilesError) Error() string {
	return fmt.Sprintf("Hive table is corrupt for partition %s: %s", e.PartitionName, e.Message)
}

// InvalidMetadataError occurs when a partition's key values don't match the
// table's declared partition columns in arity
type InvalidMetadataError struct {
	Message string
}

// Error returns a textual representation of this InvalidMetadataError
func (e *InvalidMetadataError) Error() string {
	return e.Message
}

// InvalidPartitionValueError occurs when a partition key value is null
type InvalidPartitionValueError struct {
	ColumnName string
}

// Error returns a textual representation of this InvalidPartitionValueError
func (e *InvalidPartitionValueError) Error() string {
	return fmt.Sprintf("partition key value cannot be null for field: %s", e.ColumnName)
}

// UnsupportedError occurs for a bucketed table using the symlink format, or
// for an unsupported partition-key column type
type UnsupportedError struct {
	Message string
}

// Error returns a textual representation of this UnsupportedError
func (e *UnsupportedError) Error() string {
	return e.Message
}

// InternalError occurs when a block-coverage invariant is violated -- this
// indicates a bug in this package or a misbehaving Filesystem, never bad
// input
type InternalError struct {
	Message string
}

// Error returns a textual representation of this InternalError
func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Message)
}

// IOError wraps any unexpected filesystem failure
type IOError struct {
	Path string
	Err  error
}

// Error returns a textual representation of this IOError
func (e *IOError) Error() string {
	return fmt.Sprintf("IO error on %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause
func (e *IOError) Unwrap() error { return e.Err }
