package soa

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/soa/internal/column"
	"github.com/hupe1980/soa/internal/freelist"
)

// DenseStore keeps live rows packed at the front of contiguous column
// arrays and reaches them through an index map.
//
// Erase moves the last live row into the erased row's backing slot, so it
// runs in O(1) and leaves no holes; the public index of the moved row does
// not change. Erased indices are reused by Add, most recently erased first.
//
// DenseStore is not safe for concurrent use.
type DenseStore struct {
	name    string
	schema  *Schema
	columns []column.Storage
	size    int
	slotOf  []uint64 // public index -> backing slot
	owner   []uint64 // backing slot -> public index
	free    *freelist.Stack
	freed   *bitset.BitSet
	logger  *Logger
}

// NewDenseStore builds an empty store for schema.
func NewDenseStore(schema *Schema, opts ...Option) (*DenseStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	factories, err := schema.freeze()
	if err != nil {
		return nil, err
	}
	columns := make([]column.Storage, len(factories))
	for i, f := range factories {
		columns[i] = f(0)
	}
	return &DenseStore{
		name:    o.name,
		schema:  schema,
		columns: columns,
		free:    freelist.New(0),
		freed:   bitset.New(0),
		logger:  o.logger.WithTable(o.name),
	}, nil
}

// Name returns the store name.
func (d *DenseStore) Name() string { return d.name }

// Size returns the number of live rows.
func (d *DenseStore) Size() int { return d.size }

// Add returns the index of a new default-valued row.
func (d *DenseStore) Add() Index {
	slot := uint64(d.size)

	if p, ok := d.free.Pop(); ok {
		d.freed.Clear(uint(p))
		if cur := d.slotOf[p]; cur != slot {
			d.swapSlots(cur, slot)
		}
		d.resetSlot(int(slot))
		d.size++
		return Index(p)
	}

	p := uint64(len(d.slotOf))
	d.slotOf = append(d.slotOf, slot)
	if int(slot) < len(d.owner) {
		d.owner[slot] = p
	} else {
		d.owner = append(d.owner, p)
	}
	if int(slot) < d.columns[0].Len() {
		d.resetSlot(int(slot))
	} else {
		for _, c := range d.columns {
			c.Grow()
		}
	}
	d.size++
	return Index(p)
}

// Erase removes the row at index by moving the last live row into its
// backing slot. Other indices stay valid and keep their values.
func (d *DenseStore) Erase(index Index) error {
	if !d.IsValid(index) {
		return d.outOfRange(index)
	}
	p := uint64(index)
	last := uint64(d.size - 1)
	if cur := d.slotOf[p]; cur != last {
		d.swapSlots(cur, last)
	}
	d.free.Push(p)
	d.freed.Set(uint(p))
	d.size--
	return nil
}

// swapSlots exchanges the data and owners of two backing slots.
func (d *DenseStore) swapSlots(a, b uint64) {
	for _, c := range d.columns {
		c.Swap(int(a), int(b))
	}
	pa, pb := d.owner[a], d.owner[b]
	d.owner[a], d.owner[b] = pb, pa
	d.slotOf[pa], d.slotOf[pb] = b, a
}

func (d *DenseStore) resetSlot(slot int) {
	for _, c := range d.columns {
		c.Reset(slot)
	}
}

// Clear forgets every row. Backing data is left in place and reset slot by
// slot as Add hands it out again.
func (d *DenseStore) Clear() {
	d.size = 0
	d.slotOf = d.slotOf[:0]
	d.free.Reset()
	d.freed.ClearAll()
	d.logger.LogClear(0)
}

// IsValid reports whether index was issued since the last Clear and has not
// been erased.
func (d *DenseStore) IsValid(index Index) bool {
	return uint64(index) < uint64(len(d.slotOf)) && !d.freed.Test(uint(index))
}

// Each calls fn for every live index in backing order, which matches the
// order of the slices returned by Column.Values.
func (d *DenseStore) Each(fn func(Index)) {
	for slot := 0; slot < d.size; slot++ {
		fn(Index(d.owner[slot]))
	}
}

func (d *DenseStore) locate(s *Schema, ord int, index Index) (column.Storage, int, error) {
	if s != d.schema {
		panic("soa: column belongs to a different schema")
	}
	if !d.IsValid(index) {
		return nil, 0, d.outOfRange(index)
	}
	return d.columns[ord], int(d.slotOf[index]), nil
}

func (d *DenseStore) outOfRange(index Index) error {
	return &OutOfRangeError{
		Table:    d.name,
		Index:    index,
		Capacity: d.size,
		Dense:    true,
	}
}

// Values returns the live values of this column packed in backing order.
// The slice aliases the store and is invalidated by Add, Erase and Clear.
func (c Column[T]) Values(d *DenseStore) []T {
	c.check(d.schema)
	return column.Values[T](d.columns[c.ord])[:d.size]
}
