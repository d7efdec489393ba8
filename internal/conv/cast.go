package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is wrapped by every failed conversion.
var ErrOverflow = errors.New("integer overflow")

// IntToUint64 converts a row count to its stored width. Negative counts
// fail.
func IntToUint64(v int) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrOverflow, v)
	}
	return uint64(v), nil
}

// Uint64ToInt converts a stored count back to int. Counts above math.MaxInt
// fail, which on 32-bit platforms includes any snapshot over 2^31-1 rows.
func Uint64ToInt(v uint64) (int, error) {
	if v > math.MaxInt {
		return 0, fmt.Errorf("%w: count %d does not fit in int", ErrOverflow, v)
	}
	return int(v), nil
}
