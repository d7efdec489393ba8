// Package freelist provides the LIFO stack of reclaimed row indices.
//
// The stack performs no duplicate detection: pushing an index twice hands it
// out twice. Owners serialize access.
package freelist

// Stack is a LIFO stack of free row indices.
type Stack struct {
	indices []uint64
}

// New returns an empty stack with room for capacity indices.
func New(capacity int) *Stack {
	return &Stack{indices: make([]uint64, 0, capacity)}
}

// Len returns the number of free indices.
func (s *Stack) Len() int { return len(s.indices) }

// Push returns index to the stack.
func (s *Stack) Push(index uint64) {
	s.indices = append(s.indices, index)
}

// PushRange pushes [lo, hi) such that lo is popped first.
func (s *Stack) PushRange(lo, hi uint64) {
	for i := hi; i > lo; i-- {
		s.indices = append(s.indices, i-1)
	}
}

// Pop removes and returns the most recently pushed index.
// It returns false if the stack is empty.
func (s *Stack) Pop() (uint64, bool) {
	n := len(s.indices)
	if n == 0 {
		return 0, false
	}
	index := s.indices[n-1]
	s.indices = s.indices[:n-1]
	return index, true
}

// Reset empties the stack, keeping its backing storage.
func (s *Stack) Reset() {
	s.indices = s.indices[:0]
}

// Each calls fn for every free index, most recently pushed last.
func (s *Stack) Each(fn func(index uint64)) {
	for _, i := range s.indices {
		fn(i)
	}
}
