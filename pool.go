package soa

// Pool is a single-column Table: a growable pool of T with stable addresses.
//
//	pool, _ := soa.NewPool[Voice](soa.WithName("voices"))
//	i, _ := pool.Acquire()
//	v, _ := pool.Ref(i) // stays valid until pool.Close
type Pool[T any] struct {
	table *Table
	col   Column[T]
}

// NewPool builds an empty pool. Slots start at, and are reset to, the zero
// value of T.
func NewPool[T any](opts ...Option) (*Pool[T], error) {
	return NewPoolWithDefault[T](*new(T), opts...)
}

// NewPoolWithDefault builds an empty pool whose slots start at def.
func NewPoolWithDefault[T any](def T, opts ...Option) (*Pool[T], error) {
	schema := NewSchema()
	col := AddColumn(schema, "value", WithDefault(def))
	t, err := NewTable(schema, opts...)
	if err != nil {
		return nil, err
	}
	return &Pool[T]{table: t, col: col}, nil
}

// Table returns the table backing the pool.
func (p *Pool[T]) Table() *Table { return p.table }

// Acquire hands out a free slot; see Table.Acquire.
func (p *Pool[T]) Acquire() (Index, error) { return p.table.Acquire() }

// Release resets the slot and returns it; see Table.Release.
func (p *Pool[T]) Release(i Index) error { return p.table.Release(i) }

// ReleaseNoReset returns the slot without resetting it.
func (p *Pool[T]) ReleaseNoReset(i Index) error { return p.table.ReleaseNoReset(i) }

// Capacity returns the number of addressable slots.
func (p *Pool[T]) Capacity() int { return p.table.Capacity() }

// Get returns the value at i. It takes no lock.
func (p *Pool[T]) Get(i Index) (T, error) { return p.col.Get(p.table, i) }

// Ref returns a stable pointer to the value at i. It takes no lock.
func (p *Pool[T]) Ref(i Index) (*T, error) { return p.col.Ref(p.table, i) }

// Set stores v at i. It takes no lock.
func (p *Pool[T]) Set(i Index, v T) error { return p.col.Set(p.table, i, v) }

// Close releases the pool's blocks.
func (p *Pool[T]) Close() error { return p.table.Close() }
