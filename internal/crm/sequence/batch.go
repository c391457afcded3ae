package sequence

import (
	"context"
	"fmt"
)

// Batch hands out codes for a single import operation. Each distinct scope is
// reserved with one database round trip up front; subsequent codes for the same
// scope are incremented purely in memory. A Batch must not outlive the import
// call that created it.
type Batch struct {
	counters Counters
	prefix   string
	blocks   map[string]*block
}

type block struct {
	next      int64
	remaining int64
}

// NewBatch constructs a Batch for one prefix.
func NewBatch(counters Counters, prefix string) *Batch {
	return &Batch{
		counters: counters,
		prefix:   prefix,
		blocks:   make(map[string]*block),
	}
}

// ReserveScope reserves n sequence values for the given scope.
func (b *Batch) ReserveScope(ctx context.Context, scope string, n int64) error {
	if _, ok := b.blocks[scope]; ok {
		return fmt.Errorf("sequence: scope %q already reserved in this batch", scope)
	}
	first, err := b.counters.Reserve(ctx, b.prefix, scope, n)
	if err != nil {
		return err
	}
	b.blocks[scope] = &block{next: first, remaining: n}
	return nil
}

// Next returns the next reserved sequence value for the scope.
func (b *Batch) Next(scope string) (int64, error) {
	blk, ok := b.blocks[scope]
	if !ok {
		return 0, fmt.Errorf("sequence: scope %q not reserved in this batch", scope)
	}
	if blk.remaining == 0 {
		return 0, fmt.Errorf("sequence: reserved block for scope %q exhausted", scope)
	}
	seq := blk.next
	blk.next++
	blk.remaining--
	return seq, nil
}
