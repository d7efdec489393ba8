package soa

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVoiceStore(t *testing.T) (*DenseStore, Column[int], Column[string]) {
	t.Helper()
	s := NewSchema()
	pitch := AddColumn[int](s, "pitch")
	label := AddColumn(s, "label", WithDefault("idle"))
	d, err := NewDenseStore(s, WithName("voices"))
	require.NoError(t, err)
	return d, pitch, label
}

func TestDenseStore_Add(t *testing.T) {
	d, pitch, label := newVoiceStore(t)
	assert.Equal(t, "voices", d.Name())

	for want := Index(0); want < 3; want++ {
		i := d.Add()
		assert.Equal(t, want, i)
		assert.True(t, d.IsValid(i))
		v, err := label.Get(d, i)
		require.NoError(t, err)
		assert.Equal(t, "idle", v)
		p, _ := pitch.Get(d, i)
		assert.Equal(t, 0, p)
	}
	assert.Equal(t, 3, d.Size())
}

func TestDenseStore_SwapEraseDensity(t *testing.T) {
	d, pitch, _ := newVoiceStore(t)
	idx := make([]Index, 4)
	for k := range idx {
		idx[k] = d.Add()
		require.NoError(t, pitch.Set(d, idx[k], (k+1)*100))
	}

	require.NoError(t, d.Erase(idx[1]))
	assert.Equal(t, 3, d.Size())
	assert.False(t, d.IsValid(idx[1]))

	for k, i := range idx {
		if k == 1 {
			continue
		}
		v, err := pitch.Get(d, i)
		require.NoError(t, err)
		assert.Equal(t, (k+1)*100, v)
	}

	// Live values stay packed at the front.
	assert.ElementsMatch(t, []int{100, 300, 400}, pitch.Values(d))
	assert.Len(t, pitch.Values(d), 3)
}

func TestDenseStore_Reuse(t *testing.T) {
	d, pitch, label := newVoiceStore(t)
	a := d.Add()
	b := d.Add()
	c := d.Add()
	require.NoError(t, pitch.Set(d, b, 7))
	require.NoError(t, label.Set(d, b, "on"))
	require.NoError(t, pitch.Set(d, c, 9))

	require.NoError(t, d.Erase(b))
	require.NoError(t, d.Erase(a))

	// Most recently erased first, reset to defaults.
	assert.Equal(t, a, d.Add())
	got := d.Add()
	assert.Equal(t, b, got)
	p, _ := pitch.Get(d, got)
	l, _ := label.Get(d, got)
	assert.Equal(t, 0, p)
	assert.Equal(t, "idle", l)

	v, _ := pitch.Get(d, c)
	assert.Equal(t, 9, v)

	assert.Equal(t, Index(3), d.Add())
	assert.Equal(t, 4, d.Size())
}

func TestDenseStore_Each(t *testing.T) {
	d, pitch, _ := newVoiceStore(t)
	for k := 0; k < 5; k++ {
		i := d.Add()
		require.NoError(t, pitch.Set(d, i, k))
	}
	require.NoError(t, d.Erase(0))
	require.NoError(t, d.Erase(3))

	var seen []Index
	d.Each(func(i Index) { seen = append(seen, i) })
	assert.ElementsMatch(t, []Index{1, 2, 4}, seen)

	values := pitch.Values(d)
	for k, i := range seen {
		v, _ := pitch.Get(d, i)
		assert.Equal(t, values[k], v)
	}
}

func TestDenseStore_Erase(t *testing.T) {
	t.Run("Invalid", func(t *testing.T) {
		d, _, _ := newVoiceStore(t)
		err := d.Erase(0)
		require.Error(t, err)

		var oor *OutOfRangeError
		require.True(t, errors.As(err, &oor))
		assert.True(t, oor.Dense)
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("Twice", func(t *testing.T) {
		d, _, _ := newVoiceStore(t)
		i := d.Add()
		require.NoError(t, d.Erase(i))
		assert.ErrorIs(t, d.Erase(i), ErrOutOfRange)
		assert.Equal(t, 0, d.Size())
	})

	t.Run("Last", func(t *testing.T) {
		d, pitch, _ := newVoiceStore(t)
		a := d.Add()
		b := d.Add()
		require.NoError(t, pitch.Set(d, a, 1))
		require.NoError(t, d.Erase(b))
		v, _ := pitch.Get(d, a)
		assert.Equal(t, 1, v)
	})
}

func TestDenseStore_Clear(t *testing.T) {
	d, pitch, _ := newVoiceStore(t)
	for k := 0; k < 3; k++ {
		require.NoError(t, pitch.Set(d, d.Add(), 5))
	}
	require.NoError(t, d.Erase(1))

	d.Clear()
	assert.Equal(t, 0, d.Size())
	assert.False(t, d.IsValid(0))
	assert.Empty(t, pitch.Values(d))

	i := d.Add()
	assert.Equal(t, Index(0), i)
	v, _ := pitch.Get(d, i)
	assert.Equal(t, 0, v)
}

func TestDenseStore_OutOfRangeAccess(t *testing.T) {
	d, pitch, _ := newVoiceStore(t)
	d.Add()
	_, err := pitch.Get(d, 1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Contains(t, err.Error(), "the table size is 1")
}

func TestNewDenseStore_NoColumns(t *testing.T) {
	_, err := NewDenseStore(NewSchema())
	assert.ErrorIs(t, err, ErrNoColumns)
}
