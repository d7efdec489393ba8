package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/soa"
	"github.com/hupe1980/soa/blobstore"
	"github.com/hupe1980/soa/codec"
)

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, name, err := openLocation(ctx, args[0])
	if err != nil {
		return err
	}

	b, err := store.Open(ctx, name)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	info, err := soa.Inspect(blobstore.NewReader(ctx, b))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		data, err := codec.Default.Marshal(info)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "id\t%s\n", info.ID)
	fmt.Fprintf(w, "table\t%s\n", info.Name)
	fmt.Fprintf(w, "created\t%s\n", info.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "block size\t%d\n", info.BlockSize)
	fmt.Fprintf(w, "capacity\t%d\n", info.Capacity)
	fmt.Fprintf(w, "active rows\t%d\n", info.ActiveRows)
	fmt.Fprintf(w, "columns\t%s\n", strings.Join(info.Columns, ", "))
	fmt.Fprintf(w, "codec\t%s\n", info.Codec)
	fmt.Fprintf(w, "compression\t%s\n", info.Compression)
	fmt.Fprintf(w, "size\t%d bytes\n", info.Bytes)
	return w.Flush()
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, prefix, err := openDir(ctx, args[0])
	if err != nil {
		return err
	}

	names, err := store.List(ctx, prefix)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		if names == nil {
			names = []string{}
		}
		data, err := codec.Default.Marshal(names)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	for _, n := range names {
		if _, err := fmt.Fprintln(out, n); err != nil {
			return err
		}
	}
	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "no snapshots found")
	}
	return nil
}
