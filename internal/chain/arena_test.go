package chain

import (
	"sync"
	"testing"

	"github.com/hupe1980/soa/internal/column"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArena(blockSize int) *Arena {
	return New(blockSize, []column.Factory{
		column.NewFactory(0),
		column.NewFactory(float32(-1)),
	})
}

func TestArena_Grow(t *testing.T) {
	a := newTestArena(4)
	assert.Equal(t, 0, a.Capacity())
	assert.Equal(t, 0, a.BlockCount())

	_, _, ok := a.Locate(0)
	assert.False(t, ok)

	first := a.Grow()
	assert.Equal(t, 4, a.Capacity())
	second := a.Grow()
	assert.Equal(t, 8, a.Capacity())
	assert.Equal(t, 2, a.BlockCount())
	assert.Same(t, second, first.Next())
	assert.Nil(t, second.Next())
}

func TestArena_Locate(t *testing.T) {
	a := newTestArena(3)
	b0 := a.Grow()
	b1 := a.Grow()
	b2 := a.Grow()

	cases := []struct {
		index uint64
		block *Block
		slot  int
	}{
		{0, b0, 0},
		{2, b0, 2},
		{3, b1, 0},
		{5, b1, 2},
		{6, b2, 0},
		{8, b2, 2},
	}
	for _, tc := range cases {
		b, slot, ok := a.Locate(tc.index)
		require.True(t, ok, "index %d", tc.index)
		assert.Same(t, tc.block, b, "index %d", tc.index)
		assert.Equal(t, tc.slot, slot, "index %d", tc.index)
	}

	_, _, ok := a.Locate(9)
	assert.False(t, ok)
}

func TestArena_SlotsStartAtDefault(t *testing.T) {
	a := newTestArena(2)
	b := a.Grow()
	assert.Equal(t, []int{0, 0}, column.Values[int](b.Column(0)))
	assert.Equal(t, []float32{-1, -1}, column.Values[float32](b.Column(1)))
}

func TestArena_StableAddresses(t *testing.T) {
	a := newTestArena(2)
	a.Grow()
	b, slot, _ := a.Locate(1)
	p := &column.Values[int](b.Column(0))[slot]
	*p = 99

	for i := 0; i < 16; i++ {
		a.Grow()
	}

	b, slot, _ = a.Locate(1)
	assert.Same(t, p, &column.Values[int](b.Column(0))[slot])
	assert.Equal(t, 99, *p)
}

func TestArena_ResetAll(t *testing.T) {
	a := newTestArena(2)
	a.Grow()
	a.Grow()
	a.Each(func(_ uint64, b *Block) bool {
		column.Values[int](b.Column(0))[1] = 5
		return true
	})
	a.ResetAll()
	a.Each(func(_ uint64, b *Block) bool {
		assert.Equal(t, []int{0, 0}, column.Values[int](b.Column(0)))
		return true
	})
}

func TestArena_Each(t *testing.T) {
	a := newTestArena(4)
	a.Grow()
	a.Grow()
	a.Grow()

	var firsts []uint64
	a.Each(func(first uint64, _ *Block) bool {
		firsts = append(firsts, first)
		return true
	})
	assert.Equal(t, []uint64{0, 4, 8}, firsts)

	var visited int
	a.Each(func(uint64, *Block) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func TestArena_Free(t *testing.T) {
	a := newTestArena(4)
	a.Grow()
	a.Grow()

	assert.Equal(t, 2, a.Free())
	assert.Equal(t, 0, a.Capacity())
	_, _, ok := a.Locate(0)
	assert.False(t, ok)

	// The arena can grow again after Free.
	a.Grow()
	assert.Equal(t, 4, a.Capacity())
}

func TestArena_LocateAfterUnlink(t *testing.T) {
	// Free zeroes the count before unlinking; a reader that loaded the old
	// count may still walk a chain that is being torn down.
	t.Run("Head", func(t *testing.T) {
		a := newTestArena(2)
		a.Grow()
		a.Grow()
		a.head.Store(nil)

		for _, i := range []uint64{0, 3} {
			b, _, ok := a.Locate(i)
			assert.False(t, ok)
			assert.Nil(t, b)
		}
	})

	t.Run("Link", func(t *testing.T) {
		a := newTestArena(2)
		first := a.Grow()
		a.Grow()
		first.next.Store(nil)

		b, slot, ok := a.Locate(1)
		require.True(t, ok)
		assert.Same(t, first, b)
		assert.Equal(t, 1, slot)

		_, _, ok = a.Locate(2)
		assert.False(t, ok)
	})
}

func TestArena_Bytes(t *testing.T) {
	a := New(8, []column.Factory{column.NewFactory(int64(0))})
	a.Grow()
	a.Grow()
	assert.Equal(t, int64(128), a.Bytes())
}

func TestArena_ConcurrentLocateDuringGrow(t *testing.T) {
	a := newTestArena(4)
	var mu sync.Mutex

	mu.Lock()
	a.Grow()
	mu.Unlock()

	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				capacity := uint64(a.Capacity())
				b, _, ok := a.Locate(capacity - 1)
				if !ok || b == nil {
					t.Errorf("locate %d failed", capacity-1)
					return
				}
			}
		}()
	}

	for i := 0; i < 64; i++ {
		mu.Lock()
		a.Grow()
		mu.Unlock()
	}
	wg.Wait()
}
