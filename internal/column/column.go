// Package column provides the type-erased column storage shared by the block
// chain and the dense store.
//
// A Storage hides a typed []T behind a small interface so that a block (or a
// dense store) can hold one storage per column without knowing the column
// types. The single place where the erased storage is turned back into a []T
// is Values, used by the typed column handles of the public package.
package column

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/soa/codec"
)

// Storage is a type-erased column array.
type Storage interface {
	// Len returns the number of slots.
	Len() int
	// Reset assigns the column default to slot.
	Reset(slot int)
	// ResetAll assigns the column default to every slot.
	ResetAll()
	// Swap exchanges the values held by slots a and b.
	Swap(a, b int)
	// Grow appends one default-valued slot.
	Grow()
	// Bytes estimates the memory held by the slots.
	Bytes() int64
	// Encode marshals all slots with c.
	Encode(c codec.Codec) ([]byte, error)
	// Decode replaces all slots with the values encoded in data.
	// The decoded slot count must equal Len.
	Decode(c codec.Codec, data []byte) error
	// Assign copies the slots of src, which must be a storage of the same
	// type and length, into this storage in place.
	Assign(src Storage)
}

// Factory builds a storage with n default-valued slots.
type Factory func(n int) Storage

// Array is the typed Storage implementation.
type Array[T any] struct {
	values []T
	def    T
}

// NewArray returns an array of n slots, each set to def.
func NewArray[T any](n int, def T) *Array[T] {
	a := &Array[T]{values: make([]T, n), def: def}
	a.ResetAll()
	return a
}

// NewFactory returns a Factory producing arrays with the given default.
func NewFactory[T any](def T) Factory {
	return func(n int) Storage {
		return NewArray(n, def)
	}
}

// Values returns the typed slots of s.
// It panics if s does not hold values of type T.
func Values[T any](s Storage) []T {
	a, ok := s.(*Array[T])
	if !ok {
		var zero T
		panic(fmt.Sprintf("column: storage %T does not hold %T", s, zero))
	}
	return a.values
}

// Len implements Storage.
func (a *Array[T]) Len() int { return len(a.values) }

// Reset implements Storage.
func (a *Array[T]) Reset(slot int) { a.values[slot] = a.def }

// ResetAll implements Storage.
func (a *Array[T]) ResetAll() {
	for i := range a.values {
		a.values[i] = a.def
	}
}

// Swap implements Storage.
func (a *Array[T]) Swap(i, j int) {
	a.values[i], a.values[j] = a.values[j], a.values[i]
}

// Grow implements Storage.
func (a *Array[T]) Grow() { a.values = append(a.values, a.def) }

// Bytes implements Storage.
func (a *Array[T]) Bytes() int64 {
	var zero T
	return int64(unsafe.Sizeof(zero)) * int64(cap(a.values))
}

// Encode implements Storage.
func (a *Array[T]) Encode(c codec.Codec) ([]byte, error) {
	return c.Marshal(a.values)
}

// Decode implements Storage.
func (a *Array[T]) Decode(c codec.Codec, data []byte) error {
	var decoded []T
	if err := c.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if len(decoded) != len(a.values) {
		return fmt.Errorf("column: decoded %d values, want %d", len(decoded), len(a.values))
	}
	copy(a.values, decoded)
	return nil
}

// Assign implements Storage.
func (a *Array[T]) Assign(src Storage) {
	vals := Values[T](src)
	if len(vals) != len(a.values) {
		panic(fmt.Sprintf("column: assign %d values to %d slots", len(vals), len(a.values)))
	}
	copy(a.values, vals)
}
