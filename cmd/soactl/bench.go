package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/soa"
	"github.com/hupe1980/soa/resource"
)

type benchColumns struct {
	id  soa.Column[int64]
	x   soa.Column[float32]
	y   soa.Column[float32]
	tag soa.Column[string]
}

func newBenchTable(opts ...soa.Option) (*soa.Table, benchColumns, error) {
	s := soa.NewSchema()
	cols := benchColumns{
		id:  soa.AddColumn[int64](s, "id"),
		x:   soa.AddColumn[float32](s, "x"),
		y:   soa.AddColumn[float32](s, "y"),
		tag: soa.AddColumn(s, "tag", soa.WithDefault("free")),
	}
	t, err := soa.NewTable(s, opts...)
	return t, cols, err
}

func runBench(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if benchWorkers < 1 {
		return fmt.Errorf("--workers must be at least 1")
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	metrics := &soa.BasicMetricsCollector{}
	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: benchMemoryLimit})

	t, cols, err := newBenchTable(
		soa.WithName("bench"),
		soa.WithBlockSize(benchBlockSize),
		soa.WithLogger(soa.NewTextLogger(level)),
		soa.WithMetrics(metrics),
		soa.WithMemoryAcquirer(ctrl),
	)
	if err != nil {
		return err
	}
	defer func() { _ = t.Close() }()

	start := time.Now()

	// Rows are acquired by one goroutine while the workers read and write
	// the rows acquired so far without taking the table lock.
	acquired := make(chan soa.Index, benchWorkers*64)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(acquired)
		for i := 0; i < benchRows; i++ {
			idx, err := t.Acquire()
			if err != nil {
				return err
			}
			select {
			case acquired <- idx:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	released := make(chan soa.Index, benchWorkers*64)
	var workers errgroup.Group
	for w := 0; w < benchWorkers; w++ {
		workers.Go(func() error {
			for idx := range acquired {
				if err := cols.id.Set(t, idx, int64(idx)); err != nil {
					return err
				}
				row, err := t.Row(idx)
				if err != nil {
					return err
				}
				*cols.x.Of(row) = float32(idx)
				*cols.y.Of(row) = -float32(idx)
				*cols.tag.Of(row) = "live"

				v, err := cols.id.Get(t, idx)
				if err != nil {
					return err
				}
				if v != int64(idx) {
					return fmt.Errorf("row %d holds id %d", idx, v)
				}
				if idx%2 == 1 {
					select {
					case released <- idx:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(released)
		return workers.Wait()
	})
	g.Go(func() error {
		for idx := range released {
			if err := t.Release(idx); err != nil {
				return err
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	if benchSnapshot != "" {
		compression, err := soa.ParseCompression(benchCompression)
		if err != nil {
			return err
		}
		store, name, err := openLocation(ctx, benchSnapshot)
		if err != nil {
			return err
		}
		if _, err := soa.SaveBlob(ctx, store, name, t, soa.WithCompression(compression)); err != nil {
			return err
		}
	}

	stats := metrics.GetStats()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "rows\t%d\n", benchRows)
	fmt.Fprintf(w, "workers\t%d\n", benchWorkers)
	fmt.Fprintf(w, "elapsed\t%s\n", elapsed)
	fmt.Fprintf(w, "rows/s\t%.0f\n", float64(benchRows)/elapsed.Seconds())
	fmt.Fprintf(w, "capacity\t%d\n", t.Capacity())
	fmt.Fprintf(w, "active rows\t%d\n", t.ActiveRowCount())
	fmt.Fprintf(w, "blocks linked\t%d\n", stats.GrowCount)
	fmt.Fprintf(w, "releases\t%d\n", stats.ReleaseCount)
	fmt.Fprintf(w, "block memory\t%d bytes\n", ctrl.MemoryUsage())
	if benchSnapshot != "" {
		fmt.Fprintf(w, "snapshot\t%s (%d bytes)\n", benchSnapshot, stats.SnapshotBytes)
	}
	return w.Flush()
}
