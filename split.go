package splitloader

// InternalBlock is a clamped, host-annotated byte range within a split.
// Invariant: Start <= End. A zero-width block is permitted only when it
// coincides exactly with a zero-width split.
type InternalBlock struct {
	Start int64
	End   int64
	Hosts []string
}

// InternalSplit is a self-contained descriptor of a byte range inside one
// file, annotated with data-locality hints.
//
// Invariants:
//   - Blocks is non-empty.
//   - Blocks[0].Start == Start, Blocks[len(Blocks)-1].End == End.
//   - if !Splittable, Blocks has exactly one element covering [Start, End)
//     whose Hosts are inherited from the first real block.
//   - ForceLocalScheduling is true only if the session requested it AND
//     every block has at least one host address other than "localhost".
type InternalSplit struct {
	PartitionName        string
	Path                 string
	Start                int64
	End                  int64
	FileSize             int64
	Schema               *Schema
	PartitionKeys        []*string
	Blocks               []InternalBlock
	BucketNumber         *int
	Splittable           bool
	ForceLocalScheduling bool
	Coercions            map[int]ColumnType
}

// Length returns the byte length spanned by this split
func (s *InternalSplit) Length() int64 {
	return s.End - s.Start
}
