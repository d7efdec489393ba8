package soa

import (
	"fmt"
	"sync"

	"github.com/hupe1980/soa/internal/column"
)

// Index is a row index. It identifies one logical row across all columns of
// a table or store.
type Index uint64

// Schema is the ordered list of columns a Table or DenseStore is built from.
//
// Columns are declared with AddColumn. A schema is frozen once the first
// table or store is built from it; several tables may share one schema.
type Schema struct {
	mu      sync.Mutex
	columns []columnDef
	names   map[string]int
	frozen  bool
}

type columnDef struct {
	name    string
	factory column.Factory
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{names: make(map[string]int)}
}

// Len returns the number of declared columns.
func (s *Schema) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.columns)
}

// Names returns the column names in declaration order.
func (s *Schema) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.name
	}
	return names
}

// freeze marks the schema immutable and returns the column factories.
func (s *Schema) freeze() ([]column.Factory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.columns) == 0 {
		return nil, ErrNoColumns
	}
	s.frozen = true
	factories := make([]column.Factory, len(s.columns))
	for i, c := range s.columns {
		factories[i] = c.factory
	}
	return factories, nil
}

type columnConfig[T any] struct {
	def T
}

// ColumnOption configures a column declared with AddColumn.
type ColumnOption[T any] func(*columnConfig[T])

// WithDefault sets the value a slot holds when it is created or reset.
// Without it, the zero value of T is used.
func WithDefault[T any](v T) ColumnOption[T] {
	return func(c *columnConfig[T]) {
		c.def = v
	}
}

// AddColumn declares a column of type T and returns its handle.
//
// Declaring a column on a frozen schema, or reusing a name, is a programming
// error and panics.
func AddColumn[T any](s *Schema, name string, opts ...ColumnOption[T]) Column[T] {
	var cfg columnConfig[T]
	for _, opt := range opts {
		opt(&cfg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		panic(fmt.Sprintf("soa: cannot add column %q: schema is in use", name))
	}
	if _, ok := s.names[name]; ok {
		panic(fmt.Sprintf("soa: duplicate column %q", name))
	}
	ord := len(s.columns)
	s.columns = append(s.columns, columnDef{
		name:    name,
		factory: column.NewFactory(cfg.def),
	})
	s.names[name] = ord
	return Column[T]{schema: s, ord: ord, name: name}
}

// Store is implemented by *Table and *DenseStore. Column handles use it to
// reach the storage behind a row index.
type Store interface {
	locate(s *Schema, ord int, index Index) (column.Storage, int, error)
}

var (
	_ Store = (*Table)(nil)
	_ Store = (*DenseStore)(nil)
)

// Column is a typed handle to one column of a schema.
// Element access through a Column on a Table is lock-free; see Table.
type Column[T any] struct {
	schema *Schema
	ord    int
	name   string
}

// Name returns the column name.
func (c Column[T]) Name() string { return c.name }

// Ref returns a pointer to the value at index. For a Table the pointer stays
// valid, and keeps pointing at the same row, for the lifetime of the table.
// For a DenseStore it is invalidated by the next Add, Erase or Clear.
func (c Column[T]) Ref(s Store, index Index) (*T, error) {
	st, slot, err := s.locate(c.schema, c.ord, index)
	if err != nil {
		return nil, err
	}
	return &column.Values[T](st)[slot], nil
}

// Get returns the value at index.
func (c Column[T]) Get(s Store, index Index) (T, error) {
	st, slot, err := s.locate(c.schema, c.ord, index)
	if err != nil {
		var zero T
		return zero, err
	}
	return column.Values[T](st)[slot], nil
}

// Set stores v at index.
func (c Column[T]) Set(s Store, index Index, v T) error {
	st, slot, err := s.locate(c.schema, c.ord, index)
	if err != nil {
		return err
	}
	column.Values[T](st)[slot] = v
	return nil
}

// Of returns a pointer to this column's value in row r.
func (c Column[T]) Of(r Row) *T {
	c.check(r.schema)
	return &column.Values[T](r.block.Column(c.ord))[r.slot]
}

// Find returns the first index in [0, capacity) whose value satisfies pred.
// Free slots are scanned too. Find holds the table's structural lock.
func (c Column[T]) Find(t *Table, pred func(T) bool) (Index, bool) {
	c.check(t.schema)
	var (
		found Index
		ok    bool
	)
	t.eachBlock(func(first uint64, st column.Storage) bool {
		for slot, v := range column.Values[T](st) {
			if pred(v) {
				found, ok = Index(first+uint64(slot)), true
				return false
			}
		}
		return true
	}, c.ord)
	return found, ok
}

// Visit calls fn for every index in [0, capacity) in increasing order with a
// pointer to this column's value. Visit holds the table's structural lock;
// fn must not call locked Table methods.
func (c Column[T]) Visit(t *Table, fn func(Index, *T)) {
	c.check(t.schema)
	t.eachBlock(func(first uint64, st column.Storage) bool {
		values := column.Values[T](st)
		for slot := range values {
			fn(Index(first+uint64(slot)), &values[slot])
		}
		return true
	}, c.ord)
}

func (c Column[T]) check(s *Schema) {
	if c.schema != s {
		panic(fmt.Sprintf("soa: column %q belongs to a different schema", c.name))
	}
}
