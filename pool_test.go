package soa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	t.Run("AcquireRelease", func(t *testing.T) {
		p, err := NewPool[float64](WithBlockSize(2), WithName("gains"))
		require.NoError(t, err)
		defer p.Close()

		a, _ := p.Acquire()
		b, _ := p.Acquire()
		c, _ := p.Acquire()
		assert.Equal(t, []Index{0, 1, 2}, []Index{a, b, c})
		assert.Equal(t, 4, p.Capacity())
		assert.Equal(t, "gains", p.Table().Name())

		require.NoError(t, p.Set(b, 0.5))
		v, err := p.Get(b)
		require.NoError(t, err)
		assert.Equal(t, 0.5, v)

		require.NoError(t, p.Release(b))
		again, _ := p.Acquire()
		assert.Equal(t, b, again)
		v, _ = p.Get(again)
		assert.Equal(t, 0.0, v)
	})

	t.Run("NoReset", func(t *testing.T) {
		p, err := NewPool[string]()
		require.NoError(t, err)
		defer p.Close()

		i, _ := p.Acquire()
		require.NoError(t, p.Set(i, "stale"))
		require.NoError(t, p.ReleaseNoReset(i))
		j, _ := p.Acquire()
		v, _ := p.Get(j)
		assert.Equal(t, "stale", v)
	})

	t.Run("StableRef", func(t *testing.T) {
		p, err := NewPoolWithDefault(int32(-1), WithBlockSize(1))
		require.NoError(t, err)
		defer p.Close()

		i, _ := p.Acquire()
		ref, err := p.Ref(i)
		require.NoError(t, err)
		assert.Equal(t, int32(-1), *ref)

		for k := 0; k < 32; k++ {
			_, err := p.Acquire()
			require.NoError(t, err)
		}
		again, _ := p.Ref(i)
		assert.Same(t, ref, again)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		p, err := NewPool[int]()
		require.NoError(t, err)
		defer p.Close()

		_, err = p.Get(0)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})
}
