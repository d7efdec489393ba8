package soa

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/soa/blobstore"
	"github.com/hupe1980/soa/resource"
)

func TestSaveLoadBlob(t *testing.T) {
	ctx := context.Background()
	for name, store := range map[string]blobstore.BlobStore{
		"Memory": blobstore.NewMemoryStore(),
		"Local":  blobstore.NewLocalStore(t.TempDir()),
	} {
		t.Run(name, func(t *testing.T) {
			src, cols := newSensorTable(t, WithBlockSize(4))
			populateSensors(t, src, cols)

			saved, err := SaveBlob(ctx, store, "snapshots/sensors.soa", src)
			require.NoError(t, err)

			names, err := store.List(ctx, "snapshots/")
			require.NoError(t, err)
			assert.Equal(t, []string{"snapshots/sensors.soa"}, names)

			dst, dcols := newSensorTable(t, WithBlockSize(4))
			loaded, err := LoadBlob(ctx, store, "snapshots/sensors.soa", dst)
			require.NoError(t, err)
			assert.Equal(t, saved.ID, loaded.ID)

			v, _ := dcols.reading.Get(dst, 5)
			assert.Equal(t, float32(5.5), v)
			assert.Equal(t, 5, dst.ActiveRowCount())
		})
	}
}

func TestSaveBlob_FailureLeavesNoBlob(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	tbl, _ := newSensorTable(t)
	require.NoError(t, tbl.Close())

	_, err := SaveBlob(ctx, store, "closed.soa", tbl)
	assert.ErrorIs(t, err, ErrClosed)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLoadBlob_NotFound(t *testing.T) {
	tbl, _ := newSensorTable(t)
	_, err := LoadBlob(context.Background(), blobstore.NewMemoryStore(), "missing.soa", tbl)
	assert.True(t, errors.Is(err, blobstore.ErrNotFound))
}

func TestLoadBlob_SizeLimit(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	src, cols := newSensorTable(t)
	populateSensors(t, src, cols)
	saved, err := SaveBlob(ctx, store, "big.soa", src)
	require.NoError(t, err)

	dst, _ := newSensorTable(t)
	_, err = LoadBlob(ctx, store, "big.soa", dst, WithMaxSnapshotBytes(saved.Bytes/2))
	assert.ErrorIs(t, err, ErrSnapshotTooLarge)
	assert.Equal(t, 0, dst.Capacity())
}

func TestSaveAllLoadAll(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	ctrl := resource.NewController(resource.Config{
		MaxBackgroundWorkers: 2,
		IOLimitBytesPerSec:   64 << 20,
	})

	tables := make(map[string]*Table)
	columns := make(map[string]sensorColumns)
	for _, name := range []string{"a.soa", "b.soa", "c.soa"} {
		tbl, cols := newSensorTable(t, WithName(name), WithBlockSize(4))
		populateSensors(t, tbl, cols)
		tables[name] = tbl
		columns[name] = cols
	}

	saved, err := SaveAll(ctx, store, tables, ctrl, WithCompression(CompressionLZ4))
	require.NoError(t, err)
	require.Len(t, saved, 3)
	for name, info := range saved {
		assert.Equal(t, name, info.Name)
		assert.Equal(t, CompressionLZ4, info.Compression)
	}

	targets := make(map[string]*Table)
	for name := range tables {
		tbl, _ := newSensorTable(t, WithBlockSize(4))
		targets[name] = tbl
	}
	loaded, err := LoadAll(ctx, store, targets, ctrl)
	require.NoError(t, err)
	for name, info := range loaded {
		assert.Equal(t, saved[name].ID, info.ID)
		assert.Equal(t, 5, targets[name].ActiveRowCount())
	}
}

func TestSaveAll_Error(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	good, cols := newSensorTable(t)
	populateSensors(t, good, cols)
	closed, _ := newSensorTable(t)
	require.NoError(t, closed.Close())

	_, err := SaveAll(ctx, store, map[string]*Table{"good": good, "closed": closed}, nil)
	assert.ErrorIs(t, err, ErrClosed)
}
