// Package chain implements the block-chain arena behind soa.Table.
//
// # Concurrency Model
//
// Grow, Free and ResetAll must be serialized by the owner (soa.Table holds its
// structural mutex around them). Capacity and Locate are lock-free.
//
// Locate walks the chain from the head. The walk never reads a link that is
// being written: a block is linked (atomic store of the predecessor's next
// pointer) before the block count is incremented (atomic add), and an index
// into the block can only be handed out after that increment. A caller that
// holds a valid index has therefore observed the count, and with it the
// link. All loads and stores of links and the count go through sync/atomic.
//
// # Memory Management
//
// Blocks are never moved or resized; the address of a slot is fixed from the
// moment its block is linked until Free.
package chain

import (
	"sync/atomic"

	"github.com/hupe1980/soa/internal/column"
)

// Arena owns a singly linked chain of equally sized blocks.
type Arena struct {
	blockSize  int
	factories  []column.Factory
	head       atomic.Pointer[Block]
	tail       *Block // protected by the owner's lock
	blockCount atomic.Uint64
}

// New creates an empty arena. No block is allocated until the first Grow.
func New(blockSize int, factories []column.Factory) *Arena {
	return &Arena{
		blockSize: blockSize,
		factories: factories,
	}
}

// BlockSize returns the number of slots per block.
func (a *Arena) BlockSize() int { return a.blockSize }

// BlockCount returns the number of linked blocks.
func (a *Arena) BlockCount() int { return int(a.blockCount.Load()) }

// Capacity returns BlockSize × BlockCount.
func (a *Arena) Capacity() int {
	return int(a.blockCount.Load()) * a.blockSize
}

// Grow links a new default-valued block at the tail and returns it.
func (a *Arena) Grow() *Block {
	b := NewBlock(a.blockSize, a.factories)
	if a.tail == nil {
		a.head.Store(b)
	} else {
		a.tail.next.Store(b)
	}
	a.tail = b
	a.blockCount.Add(1)
	return b
}

// Locate maps a row index to its block and slot.
// It returns false if index is not below the current capacity.
func (a *Arena) Locate(index uint64) (*Block, int, bool) {
	bs := uint64(a.blockSize)
	if index >= a.blockCount.Load()*bs {
		return nil, 0, false
	}
	// A concurrent Free may unlink blocks after the count was read.
	hops := index / bs
	b := a.head.Load()
	for i := uint64(0); b != nil && i < hops; i++ {
		b = b.next.Load()
	}
	if b == nil {
		return nil, 0, false
	}
	return b, int(index % bs), true
}

// Each calls fn for every block in chain order, passing the index of the
// block's first slot, until fn returns false.
func (a *Arena) Each(fn func(first uint64, b *Block) bool) {
	var first uint64
	for b := a.head.Load(); b != nil; b = b.next.Load() {
		if !fn(first, b) {
			return
		}
		first += uint64(a.blockSize)
	}
}

// ResetAll restores every slot of every block to its default.
func (a *Arena) ResetAll() {
	a.Each(func(_ uint64, b *Block) bool {
		b.ResetAll()
		return true
	})
}

// Bytes estimates the memory held by all blocks.
func (a *Arena) Bytes() int64 {
	var n int64
	a.Each(func(_ uint64, b *Block) bool {
		n += b.Bytes()
		return true
	})
	return n
}

// Free unlinks every block in chain order and resets the arena to empty.
// It returns the number of blocks released.
func (a *Arena) Free() int {
	a.blockCount.Store(0)
	n := 0
	b := a.head.Swap(nil)
	for b != nil {
		b = b.next.Swap(nil)
		n++
	}
	a.tail = nil
	return n
}
