package soa_test

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/soa"
	"github.com/hupe1980/soa/blobstore"
)

func ExampleTable() {
	s := soa.NewSchema()
	x := soa.AddColumn[float64](s, "x")
	name := soa.AddColumn(s, "name", soa.WithDefault("anon"))

	t, err := soa.NewTable(s, soa.WithBlockSize(4))
	if err != nil {
		log.Fatal(err)
	}
	defer t.Close()

	for k := 0; k < 3; k++ {
		i, err := t.Acquire()
		if err != nil {
			log.Fatal(err)
		}
		_ = x.Set(t, i, float64(k)*1.5)
	}
	_ = name.Set(t, 1, "bob")

	t.Visit(func(i soa.Index) {
		xv, _ := x.Get(t, i)
		nv, _ := name.Get(t, i)
		fmt.Println(i, xv, nv)
	})
	// Output:
	// 0 0 anon
	// 1 1.5 bob
	// 2 3 anon
	// 3 0 anon
}

func ExampleTable_Release() {
	s := soa.NewSchema()
	hp := soa.AddColumn(s, "hp", soa.WithDefault(100))

	t, _ := soa.NewTable(s, soa.WithBlockSize(2))
	defer t.Close()

	a, _ := t.Acquire()
	b, _ := t.Acquire()
	_ = hp.Set(t, a, 5)
	_ = t.Release(a)

	c, _ := t.Acquire()
	v, _ := hp.Get(t, c)
	fmt.Println(b, c, v, t.ActiveRowCount())
	// Output: 1 0 100 2
}

func ExampleDenseStore() {
	s := soa.NewSchema()
	score := soa.AddColumn[int](s, "score")

	d, _ := soa.NewDenseStore(s)
	for k := 1; k <= 4; k++ {
		_ = score.Set(d, d.Add(), k*10)
	}
	_ = d.Erase(0)

	fmt.Println(d.Size(), len(score.Values(d)))
	// Output: 3 3
}

func ExamplePool() {
	p, _ := soa.NewPool[string]()
	defer p.Close()

	i, _ := p.Acquire()
	_ = p.Set(i, "hello")
	v, _ := p.Get(i)
	fmt.Println(v)
	// Output: hello
}

func ExampleTable_Save() {
	s := soa.NewSchema()
	id := soa.AddColumn[int64](s, "id")

	src, _ := soa.NewTable(s, soa.WithName("ids"), soa.WithBlockSize(8))
	defer src.Close()
	for k := 0; k < 5; k++ {
		i, _ := src.Acquire()
		_ = id.Set(src, i, int64(k)*7)
	}

	var buf bytes.Buffer
	if _, err := src.Save(&buf, soa.WithCompression(soa.CompressionLZ4)); err != nil {
		log.Fatal(err)
	}

	dst, _ := soa.NewTable(s, soa.WithBlockSize(8))
	defer dst.Close()
	info, err := dst.Load(&buf)
	if err != nil {
		log.Fatal(err)
	}

	v, _ := id.Get(dst, 4)
	fmt.Println(info.Name, info.ActiveRows, v)
	// Output: ids 5 28
}

func ExampleSaveBlob() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	s := soa.NewSchema()
	soa.AddColumn[uint32](s, "n")
	t, _ := soa.NewTable(s, soa.WithName("counters"))
	defer t.Close()
	_, _ = t.Acquire()

	if _, err := soa.SaveBlob(ctx, store, "counters.soa", t); err != nil {
		log.Fatal(err)
	}
	names, _ := store.List(ctx, "")
	fmt.Println(names)
	// Output: [counters.soa]
}
