package soa

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is matched (via errors.Is) by every *OutOfRangeError.
	ErrOutOfRange = errors.New("row index out of range")
	// ErrClosed is returned by structural operations on a closed table.
	ErrClosed = errors.New("table is closed")
	// ErrNoColumns is returned when a table or store is built from an empty schema.
	ErrNoColumns = errors.New("schema has no columns")
	// ErrInvalidBlockSize is returned for a block size below one.
	ErrInvalidBlockSize = errors.New("block size must be positive")
	// ErrMemoryLimit is returned when the memory acquirer refuses a new block.
	ErrMemoryLimit = errors.New("memory limit reached")
	// ErrSchemaMismatch is returned when a snapshot does not fit the target table.
	ErrSchemaMismatch = errors.New("snapshot schema mismatch")
	// ErrInvalidSnapshot is returned for malformed snapshot data.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	// ErrSnapshotTooLarge is returned when a snapshot exceeds the read limit.
	ErrSnapshotTooLarge = errors.New("snapshot exceeds size limit")
)

// OutOfRangeError reports access to a row index the table or store does not
// hold. It is a programming error: callers are expected to keep indices valid.
type OutOfRangeError struct {
	// Table is the name of the table or store.
	Table string
	// Index is the offending row index.
	Index Index
	// Capacity is the table capacity (Table) or live size (DenseStore) at the
	// time of the access.
	Capacity int
	// Dense is true when the error comes from a DenseStore.
	Dense bool
}

func (e *OutOfRangeError) Error() string {
	bound := "capacity"
	if e.Dense {
		bound = "size"
	}
	return fmt.Sprintf(
		"tried to look up an element from table '%s' at index %d, but %d is not a valid index: the table %s is %d",
		e.Table, e.Index, e.Index, bound, e.Capacity)
}

// Is makes errors.Is(err, ErrOutOfRange) hold.
func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }
