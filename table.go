package splitloader

// StorageDescriptor identifies where a Table or Partition's files live, how
// to read them, and the serde schema those files were written with. A
// partition's Schema is nil when it was written with the same serde as the
// table itself; only a partition whose data diverged from the table's
// declared schema (a schema evolution) carries its own.
type StorageDescriptor struct {
	Location    string
	InputFormat InputFormat
	Schema      *Schema
}

// Table is the logical table being scanned
type Table struct {
	Name             string
	PartitionColumns []Column
	Storage          *StorageDescriptor
	Bucketing        *BucketHandle
	Schema           *Schema
}

// Partition identifies one partition of a Table. A nil Storage means the
// table's own StorageDescriptor applies (unpartitioned table, or a
// partition that does not override storage).
type Partition struct {
	Name      string
	Storage   *StorageDescriptor
	Values    []*string
	Coercions map[int]ColumnType
}
