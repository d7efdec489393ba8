// Package soa provides struct-of-arrays storage with stable row addresses.
//
// A Schema declares typed columns. A Table built from it stores each column
// in fixed-size blocks linked into a chain, so a row's memory never moves
// once its index has been handed out. Indices are recycled through a LIFO
// free list.
//
// # Quick Start
//
//	s := soa.NewSchema()
//	pos := soa.AddColumn[float32](s, "pos")
//	tag := soa.AddColumn(s, "tag", soa.WithDefault("new"))
//
//	t, _ := soa.NewTable(s, soa.WithBlockSize(1024))
//	defer t.Close()
//
//	i, _ := t.Acquire()
//	_ = pos.Set(t, i, 1.5)
//	p, _ := pos.Ref(t, i) // stays valid while the table grows
//	*p += 1
//	_ = t.Release(i)      // resets the row to its defaults
//
// # Concurrency
//
// Structural operations (Acquire, Release, Clear, Visit) take the table's
// mutex. Element access through a Column handle takes no lock and may run
// concurrently with growth for any index below the capacity.
//
// # Other Containers
//
//   - Pool is a single-column Table.
//   - DenseStore keeps live rows packed at the front of each column by
//     swap-erase, for cache-friendly iteration over Column.Values.
//
// # Snapshots
//
// Table.Save and Table.Load write and read a self-describing snapshot.
// SaveBlob, LoadBlob, SaveAll and LoadAll move snapshots through any
// blobstore.BlobStore (local disk, memory, S3 or MinIO), optionally bounded
// by a resource.Controller.
package soa
