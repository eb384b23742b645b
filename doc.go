// Package splitloader produces a stream of Splits -- self-contained byte-range
// descriptors annotated with data-locality hints -- from a Table and a set of
// Partitions on a distributed filesystem. Downstream worker tasks consume the
// Splits to perform parallel scans. The package does not execute scans,
// evaluate predicates beyond a simple path-column domain, or handle writes.
package splitloader
