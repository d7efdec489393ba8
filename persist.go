package soa

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/soa/blobstore"
	"github.com/hupe1980/soa/resource"
)

// SaveBlob streams a snapshot of t into store under name. The blob only
// becomes visible once the whole snapshot is written.
func SaveBlob(ctx context.Context, store blobstore.BlobStore, name string, t *Table, opts ...SnapshotOption) (Info, error) {
	return saveBlob(ctx, store, name, t, nil, opts)
}

func saveBlob(ctx context.Context, store blobstore.BlobStore, name string, t *Table, ctrl *resource.Controller, opts []SnapshotOption) (Info, error) {
	w, err := store.Create(ctx, name)
	if err != nil {
		return Info{}, err
	}

	var dst io.Writer = w
	if ctrl != nil {
		dst = resource.NewRateLimitedWriter(ctx, w, ctrl)
	}

	info, err := t.Save(dst, opts...)
	if err != nil {
		_ = blobstore.Abort(w)
		return info, fmt.Errorf("save '%s': %w", name, err)
	}
	if err := w.Close(); err != nil {
		return info, fmt.Errorf("save '%s': %w", name, err)
	}
	return info, nil
}

// LoadBlob loads the snapshot stored under name into t; see Table.Load.
func LoadBlob(ctx context.Context, store blobstore.BlobStore, name string, t *Table, opts ...SnapshotOption) (Info, error) {
	return loadBlob(ctx, store, name, t, nil, opts)
}

func loadBlob(ctx context.Context, store blobstore.BlobStore, name string, t *Table, ctrl *resource.Controller, opts []SnapshotOption) (Info, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return Info{}, err
	}
	defer func() { _ = b.Close() }()

	r := blobstore.NewReader(ctx, b)
	if ctrl != nil {
		r = resource.NewRateLimitedReader(ctx, r, ctrl)
	}

	info, err := t.Load(r, opts...)
	if err != nil {
		return info, fmt.Errorf("load '%s': %w", name, err)
	}
	return info, nil
}

// SaveAll saves every table under its map key, concurrently.
//
// ctrl bounds the number of snapshots written at once (MaxBackgroundWorkers)
// and their combined throughput (IOLimitBytesPerSec); nil means no limits.
// The first error cancels the remaining saves; blobs written before it stay.
func SaveAll(ctx context.Context, store blobstore.BlobStore, tables map[string]*Table, ctrl *resource.Controller, opts ...SnapshotOption) (map[string]Info, error) {
	return forEachTable(ctx, tables, ctrl, func(ctx context.Context, name string, t *Table) (Info, error) {
		return saveBlob(ctx, store, name, t, ctrl, opts)
	})
}

// LoadAll loads every table from the blob named by its map key, concurrently,
// under the same limits as SaveAll.
func LoadAll(ctx context.Context, store blobstore.BlobStore, tables map[string]*Table, ctrl *resource.Controller, opts ...SnapshotOption) (map[string]Info, error) {
	return forEachTable(ctx, tables, ctrl, func(ctx context.Context, name string, t *Table) (Info, error) {
		return loadBlob(ctx, store, name, t, ctrl, opts)
	})
}

func forEachTable(ctx context.Context, tables map[string]*Table, ctrl *resource.Controller, fn func(context.Context, string, *Table) (Info, error)) (map[string]Info, error) {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		mu    sync.Mutex
		infos = make(map[string]Info, len(tables))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		t := tables[name]
		g.Go(func() error {
			if err := ctrl.AcquireBackground(gctx); err != nil {
				return err
			}
			defer ctrl.ReleaseBackground()

			info, err := fn(gctx, name, t)
			if err != nil {
				return err
			}
			mu.Lock()
			infos[name] = info
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return infos, err
	}
	return infos, nil
}
