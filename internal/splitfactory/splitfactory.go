// Package splitfactory implements the pure clamp-and-assemble algorithm that
// turns a file's block locations into a locality-accurate InternalSplit.
package splitfactory

import (
	splitloader "github.com/lakequery/splitloader"
	sifErrors "github.com/lakequery/splitloader/errors"
)

// CreateParams bundles the inputs to Create
type CreateParams struct {
	PartitionName      string
	Path               string
	BlockLocations     []splitloader.BlockLocation
	Start              int64
	Length             int64
	FileSize           int64
	Schema             *splitloader.Schema
	PartitionKeys      []*string
	Splittable         bool
	ForceLocalScheduling bool
	BucketNumber       *int
	Coercions          map[int]splitloader.ColumnType
	PathDomain         splitloader.PathDomain
}

// Create builds an InternalSplit from params, clamping each block location
// against [Start, Start+Length). Returns (nil, nil) when the PathDomain
// prunes this path. Returns (nil, err) when the resulting block list fails
// to cover the split end to end -- an INTERNAL invariant violation.
func Create(p CreateParams) (*splitloader.InternalSplit, error) {
	if p.PathDomain != nil && !p.PathDomain.IncludesNullableValue(p.Path) {
		return nil, nil
	}

	end := p.Start + p.Length
	blocks := make([]splitloader.InternalBlock, 0, len(p.BlockLocations))
	for _, bl := range p.BlockLocations {
		blockStart := max64(p.Start, bl.Offset)
		blockEnd := min64(end, bl.Offset+bl.Length)
		if blockStart > blockEnd {
			// block is outside split range
			continue
		}
		if blockStart == blockEnd && !(blockStart == p.Start && blockEnd == end) {
			// zero-width block, not at the boundary of an empty split: skip
			continue
		}
		blocks = append(blocks, splitloader.InternalBlock{
			Start: blockStart,
			End:   blockEnd,
			Hosts: bl.Hosts,
		})
	}

	if err := checkBlocks(blocks, p.Start, end); err != nil {
		return nil, err
	}

	if !p.Splittable {
		blocks = []splitloader.InternalBlock{{
			Start: p.Start,
			End:   end,
			Hosts: blocks[0].Hosts,
		}}
	}

	return &splitloader.InternalSplit{
		PartitionName:        p.PartitionName,
		Path:                 p.Path,
		Start:                p.Start,
		End:                  end,
		FileSize:             p.FileSize,
		Schema:               p.Schema,
		PartitionKeys:        p.PartitionKeys,
		Blocks:               blocks,
		BucketNumber:         p.BucketNumber,
		Splittable:           p.Splittable,
		ForceLocalScheduling: p.ForceLocalScheduling && allBlocksHaveRealAddress(blocks),
		Coercions:            p.Coercions,
	}, nil
}

func checkBlocks(blocks []splitloader.InternalBlock, start, end int64) error {
	if len(blocks) == 0 {
		return &sifErrors.InternalError{Message: "bad block metadata: no blocks intersect split range"}
	}
	if blocks[0].Start != start {
		return &sifErrors.InternalError{Message: "bad block metadata: first block does not start at split start"}
	}
	if blocks[len(blocks)-1].End != end {
		return &sifErrors.InternalError{Message: "bad block metadata: last block does not end at split end"}
	}
	return nil
}

// allBlocksHaveRealAddress preserves the literal-string "localhost" check
// from the original implementation; see Design Notes' open question about
// whether 127.0.0.1 or IPv6 loopback should also be excluded.
func allBlocksHaveRealAddress(blocks []splitloader.InternalBlock) bool {
	for _, b := range blocks {
		if !hasRealAddress(b.Hosts) {
			return false
		}
	}
	return true
}

func hasRealAddress(hosts []string) bool {
	for _, h := range hosts {
		if h != "localhost" {
			return true
		}
	}
	return false
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
