// Package conv provides checked integer conversions for values that cross
// the snapshot boundary, where counts are stored as fixed-width integers.
package conv
