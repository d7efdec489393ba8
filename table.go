package soa

import (
	"fmt"
	"sync"

	"golang.org/x/sys/cpu"

	"github.com/hupe1980/soa/internal/chain"
	"github.com/hupe1980/soa/internal/column"
	"github.com/hupe1980/soa/internal/freelist"
)

// LockedOps are the structural operations of a Table. Each one holds the
// table's mutex for its whole duration, so they are mutually exclusive with
// each other and with block growth.
type LockedOps interface {
	Acquire() (Index, error)
	Release(index Index) error
	ReleaseNoReset(index Index) error
	Clear()
	ActiveRowCount() int
	Visit(fn func(Index))
}

// UnlockedOps are the element operations of a Table. They never block and
// never allocate on success, and may be called concurrently with each other
// and with LockedOps for any index below the capacity. Synchronizing access
// to the data of one index is left to the caller.
type UnlockedOps interface {
	Store
	Name() string
	Capacity() int
	Row(index Index) (Row, error)
}

var (
	_ LockedOps   = (*Table)(nil)
	_ UnlockedOps = (*Table)(nil)
)

// Table is a growable column table with stable row addresses.
//
// Rows live in fixed-size blocks linked into a chain. Once a row index has
// been handed out, the memory behind it never moves until the table is
// closed. Structural operations (LockedOps) are serialized behind one mutex;
// element access (UnlockedOps and the Column methods Get, Ref, Set, Of) takes
// no lock.
//
// The table does not track which indices are acquired: every index below
// the capacity is valid for element access, whether acquired or free.
type Table struct {
	name   string
	schema *Schema
	arena  *chain.Arena

	_ cpu.CacheLinePad

	mu         sync.Mutex
	free       *freelist.Stack
	closed     bool
	blockBytes int64
	reserved   int64
	logger     *Logger
	metrics    MetricsCollector
	memory     MemoryAcquirer
}

// NewTable builds an empty table for schema. No block is allocated until the
// first Acquire.
func NewTable(schema *Schema, opts ...Option) (*Table, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, o.blockSize)
	}
	factories, err := schema.freeze()
	if err != nil {
		return nil, err
	}

	t := &Table{
		name:    o.name,
		schema:  schema,
		arena:   chain.New(o.blockSize, factories),
		free:    freelist.New(o.blockSize),
		logger:  o.logger.WithTable(o.name),
		metrics: o.metrics,
		memory:  o.memory,
	}
	if t.memory != nil {
		t.blockBytes = chain.NewBlock(1, factories).Bytes() * int64(o.blockSize)
	}
	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Schema returns the schema the table was built from.
func (t *Table) Schema() *Schema { return t.schema }

// BlockSize returns the number of rows per block.
func (t *Table) BlockSize() int { return t.arena.BlockSize() }

// Capacity returns the number of addressable rows. It never blocks.
func (t *Table) Capacity() int { return t.arena.Capacity() }

// Acquire hands out a free row index, linking a new block first when none is
// left. The row's columns hold their defaults unless the index was returned
// with ReleaseNoReset.
func (t *Table) Acquire() (Index, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, ErrClosed
	}

	grew := false
	if t.free.Len() == 0 {
		if err := t.growLocked(); err != nil {
			return 0, err
		}
		grew = true
	}
	index, _ := t.free.Pop()
	t.metrics.RecordAcquire(grew)
	return Index(index), nil
}

func (t *Table) growLocked() error {
	if t.memory != nil {
		if !t.memory.TryAcquireMemory(t.blockBytes) {
			return fmt.Errorf("%w: table '%s' needs %d bytes for a new block", ErrMemoryLimit, t.name, t.blockBytes)
		}
		t.reserved += t.blockBytes
	}

	first := uint64(t.arena.Capacity())
	t.arena.Grow()
	capacity := t.arena.Capacity()
	t.free.PushRange(first, uint64(capacity))

	t.logger.LogGrow(t.arena.BlockCount(), capacity)
	t.metrics.RecordGrow(capacity)
	return nil
}

// Release resets every column of index to its default and returns the index
// to the free list. Releasing an index twice hands it out twice.
func (t *Table) Release(index Index) error {
	return t.release(index, true)
}

// ReleaseNoReset returns index to the free list without resetting its
// columns. The next Acquire of the index sees the stale values.
func (t *Table) ReleaseNoReset(index Index) error {
	return t.release(index, false)
}

func (t *Table) release(index Index, reset bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	b, slot, ok := t.arena.Locate(uint64(index))
	if !ok {
		return t.outOfRange(index)
	}
	if reset {
		b.Reset(slot)
	}
	t.free.Push(uint64(index))
	t.metrics.RecordRelease(reset)
	return nil
}

// Clear resets every slot and marks every index in [0, capacity) free.
// The capacity is unchanged.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.arena.ResetAll()
	capacity := t.arena.Capacity()
	t.free.Reset()
	t.free.PushRange(0, uint64(capacity))

	t.logger.LogClear(capacity)
	t.metrics.RecordClear(capacity)
}

// ActiveRowCount returns capacity minus the number of free indices.
func (t *Table) ActiveRowCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.arena.Capacity() - t.free.Len()
}

// Visit calls fn for every index in [0, capacity) in increasing order.
// fn must not call locked Table methods.
func (t *Table) Visit(fn func(Index)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	capacity := t.arena.Capacity()
	for i := 0; i < capacity; i++ {
		fn(Index(i))
	}
}

// Row returns a handle to every column of index.
func (t *Table) Row(index Index) (Row, error) {
	b, slot, ok := t.arena.Locate(uint64(index))
	if !ok {
		return Row{}, t.outOfRange(index)
	}
	return Row{schema: t.schema, block: b, slot: slot, index: index}, nil
}

// Close releases every block and any memory reserved from the acquirer.
// Element access afterwards fails with an out-of-range error and structural
// operations with ErrClosed.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	blocks := t.arena.Free()
	t.free.Reset()
	if t.memory != nil && t.reserved > 0 {
		t.memory.ReleaseMemory(t.reserved)
		t.reserved = 0
	}
	t.logger.LogClose(blocks)
	t.metrics.RecordClose()
	return nil
}

func (t *Table) locate(s *Schema, ord int, index Index) (column.Storage, int, error) {
	if s != t.schema {
		panic("soa: column belongs to a different schema")
	}
	b, slot, ok := t.arena.Locate(uint64(index))
	if !ok {
		return nil, 0, t.outOfRange(index)
	}
	return b.Column(ord), slot, nil
}

// eachBlock calls fn under the structural lock with the storage of column
// ord in every block, until fn returns false.
func (t *Table) eachBlock(fn func(first uint64, st column.Storage) bool, ord int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.arena.Each(func(first uint64, b *chain.Block) bool {
		return fn(first, b.Column(ord))
	})
}

func (t *Table) outOfRange(index Index) error {
	return &OutOfRangeError{
		Table:    t.name,
		Index:    index,
		Capacity: t.arena.Capacity(),
	}
}

// Row references one row of a Table. Read its columns with Column.Of.
// A Row stays valid for the lifetime of the table.
type Row struct {
	schema *Schema
	block  *chain.Block
	slot   int
	index  Index
}

// Index returns the row index.
func (r Row) Index() Index { return r.index }

// Reset restores every column of the row to its default. Like other element
// writes it takes no lock.
func (r Row) Reset() { r.block.Reset(r.slot) }
