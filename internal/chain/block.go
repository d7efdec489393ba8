package chain

import (
	"sync/atomic"

	"github.com/hupe1980/soa/internal/column"
)

// Block is one fixed-capacity segment of the chain.
// It holds one storage per column, each exactly size slots long.
type Block struct {
	columns []column.Storage
	size    int
	next    atomic.Pointer[Block]
}

// NewBlock allocates a block of size slots for the given columns.
// Every slot starts at its column default.
func NewBlock(size int, factories []column.Factory) *Block {
	b := &Block{
		columns: make([]column.Storage, len(factories)),
		size:    size,
	}
	for i, f := range factories {
		b.columns[i] = f(size)
	}
	return b
}

// Size returns the slot count.
func (b *Block) Size() int { return b.size }

// Column returns the storage of the column with the given ordinal.
func (b *Block) Column(ord int) column.Storage { return b.columns[ord] }

// Next returns the following block, or nil for the tail.
func (b *Block) Next() *Block { return b.next.Load() }

// Reset restores every column at slot to its default.
func (b *Block) Reset(slot int) {
	for _, c := range b.columns {
		c.Reset(slot)
	}
}

// ResetAll restores every slot of every column.
func (b *Block) ResetAll() {
	for _, c := range b.columns {
		c.ResetAll()
	}
}

// Bytes estimates the memory held by the block's columns.
func (b *Block) Bytes() int64 {
	var n int64
	for _, c := range b.columns {
		n += c.Bytes()
	}
	return n
}
