package soa

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/google/uuid"

	"github.com/hupe1980/soa/codec"
	"github.com/hupe1980/soa/internal/chain"
	"github.com/hupe1980/soa/internal/column"
	"github.com/hupe1980/soa/internal/compress"
	"github.com/hupe1980/soa/internal/conv"
)

// Snapshot layout:
//
//	magic [4]byte "SOAT"
//	version uint8
//	compression uint8
//	frame (internal/compress) holding the codec.Default encoded document
const (
	snapshotMagic      = "SOAT"
	snapshotVersion    = 1
	snapshotHeaderSize = 6
)

// Info summarizes a snapshot.
type Info struct {
	ID          string
	Name        string
	CreatedAt   time.Time
	BlockSize   int
	Capacity    int
	ActiveRows  int
	Columns     []string
	Codec       string
	Compression Compression
	// Bytes is the encoded size of the snapshot, header included.
	Bytes int64
}

// document is the body of a snapshot. Blocks holds, per column, the
// codec-encoded values of every block in chain order.
type document struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	BlockSize int        `json:"block_size"`
	Capacity  uint64     `json:"capacity"`
	Columns   []string   `json:"columns"`
	Codec     string     `json:"codec"`
	Blocks    [][][]byte `json:"blocks"`
	Free      []byte     `json:"free"`
}

func defaultSnapshotOptions() snapshotOptions {
	return snapshotOptions{
		codec:       codec.Default,
		compression: CompressionZSTD,
		maxBytes:    DefaultMaxSnapshotBytes,
	}
}

// Save writes every block, the column names and the free set to w.
// The structural lock is held while the blocks are encoded; element writers
// running concurrently may or may not be captured.
func (t *Table) Save(w io.Writer, opts ...SnapshotOption) (Info, error) {
	start := time.Now()
	info, err := t.save(w, opts)
	t.metrics.RecordSnapshot("save", info.Bytes, time.Since(start), err)
	t.logger.LogSnapshot(context.Background(), "save", info, err)
	return info, err
}

func (t *Table) save(w io.Writer, opts []SnapshotOption) (Info, error) {
	o := defaultSnapshotOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !o.compression.Valid() {
		return Info{}, fmt.Errorf("soa: unknown compression %d", o.compression)
	}

	doc, err := t.encodeDocument(o.codec)
	if err != nil {
		return Info{}, err
	}

	body, err := codec.Default.Marshal(doc)
	if err != nil {
		return Info{}, fmt.Errorf("soa: encode snapshot document: %w", err)
	}
	frame, err := compress.Compress(body, o.compression)
	if err != nil {
		return Info{}, err
	}

	header := [snapshotHeaderSize]byte{}
	copy(header[:], snapshotMagic)
	header[4] = snapshotVersion
	header[5] = byte(o.compression)

	if _, err := w.Write(header[:]); err != nil {
		return Info{}, err
	}
	if _, err := w.Write(frame); err != nil {
		return Info{}, err
	}

	return doc.info(o.compression, int64(snapshotHeaderSize+len(frame)))
}

func (t *Table) encodeDocument(c codec.Codec) (*document, error) {
	names := t.schema.Names()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrClosed
	}

	capacity, err := conv.IntToUint64(t.arena.Capacity())
	if err != nil {
		return nil, err
	}
	doc := &document{
		ID:        uuid.NewString(),
		Name:      t.name,
		CreatedAt: time.Now().UTC(),
		BlockSize: t.arena.BlockSize(),
		Capacity:  capacity,
		Columns:   names,
		Codec:     c.Name(),
		Blocks:    make([][][]byte, len(names)),
	}

	var encErr error
	t.arena.Each(func(_ uint64, b *chain.Block) bool {
		for ord := range names {
			data, err := b.Column(ord).Encode(c)
			if err != nil {
				encErr = fmt.Errorf("soa: encode column '%s': %w", names[ord], err)
				return false
			}
			doc.Blocks[ord] = append(doc.Blocks[ord], data)
		}
		return true
	})
	if encErr != nil {
		return nil, encErr
	}

	free := roaring64.New()
	t.free.Each(free.Add)
	if doc.Free, err = free.ToBytes(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Load replaces the table contents with a snapshot written by Save.
//
// The snapshot must have the table's block size and column names, in order.
// The table grows to the snapshot capacity if needed; it never shrinks.
// Blocks beyond the snapshot capacity are reset and their indices freed.
// Row addresses handed out before Load stay valid.
//
// Snapshots encoded with a codec other than the built-in ones need that
// codec passed with WithSnapshotCodec.
func (t *Table) Load(r io.Reader, opts ...SnapshotOption) (Info, error) {
	start := time.Now()
	info, err := t.load(r, opts)
	t.metrics.RecordSnapshot("load", info.Bytes, time.Since(start), err)
	t.logger.LogSnapshot(context.Background(), "load", info, err)
	return info, err
}

func (t *Table) load(r io.Reader, opts []SnapshotOption) (Info, error) {
	o := snapshotOptions{maxBytes: DefaultMaxSnapshotBytes}
	for _, opt := range opts {
		opt(&o)
	}

	doc, info, err := readSnapshot(r, o.maxBytes)
	if err != nil {
		return info, err
	}

	c, err := resolveCodec(doc.Codec, o.codec)
	if err != nil {
		return info, err
	}

	if doc.BlockSize != t.BlockSize() {
		return info, fmt.Errorf("%w: block size %d, table has %d", ErrSchemaMismatch, doc.BlockSize, t.BlockSize())
	}
	if names := t.schema.Names(); !slices.Equal(doc.Columns, names) {
		return info, fmt.Errorf("%w: columns %v, table has %v", ErrSchemaMismatch, doc.Columns, names)
	}

	factories, err := t.schema.freeze()
	if err != nil {
		return info, err
	}
	staged, err := decodeBlocks(doc, info, factories, c)
	if err != nil {
		return info, err
	}
	free, err := decodeFree(doc.Free, info.Capacity)
	if err != nil {
		return info, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return info, ErrClosed
	}
	for t.arena.Capacity() < info.Capacity {
		if err := t.growLocked(); err != nil {
			return info, err
		}
	}

	t.arena.Each(func(first uint64, b *chain.Block) bool {
		bi := int(first) / info.BlockSize
		if bi >= len(staged) {
			b.ResetAll()
			return true
		}
		for ord, src := range staged[bi] {
			b.Column(ord).Assign(src)
		}
		return true
	})

	// Push in descending order so the lowest free index pops first.
	t.free.Reset()
	for i := t.arena.Capacity() - 1; i >= info.Capacity; i-- {
		t.free.Push(uint64(i))
	}
	indices := free.ToArray()
	for i := len(indices) - 1; i >= 0; i-- {
		t.free.Push(indices[i])
	}

	return info, nil
}

// Inspect reads the summary of a snapshot without a schema. Only
// WithMaxSnapshotBytes applies.
func Inspect(r io.Reader, opts ...SnapshotOption) (Info, error) {
	o := snapshotOptions{maxBytes: DefaultMaxSnapshotBytes}
	for _, opt := range opts {
		opt(&o)
	}
	_, info, err := readSnapshot(r, o.maxBytes)
	return info, err
}

func readSnapshot(r io.Reader, maxBytes int64) (*document, Info, error) {
	limit := maxBytes
	if limit < math.MaxInt64 {
		limit++
	}
	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, Info{}, err
	}
	if int64(len(data)) > maxBytes {
		return nil, Info{}, fmt.Errorf("%w: more than %d bytes", ErrSnapshotTooLarge, maxBytes)
	}
	if len(data) < snapshotHeaderSize || !bytes.Equal(data[:4], []byte(snapshotMagic)) {
		return nil, Info{}, fmt.Errorf("%w: bad magic", ErrInvalidSnapshot)
	}
	if data[4] != snapshotVersion {
		return nil, Info{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, data[4])
	}
	compression := Compression(data[5])
	if !compression.Valid() {
		return nil, Info{}, fmt.Errorf("%w: unknown compression %d", ErrInvalidSnapshot, data[5])
	}

	body, err := compress.Decompress(data[snapshotHeaderSize:], compression)
	if err != nil {
		return nil, Info{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	doc := new(document)
	if err := codec.Default.Unmarshal(body, doc); err != nil {
		return nil, Info{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	info, err := doc.info(compression, int64(len(data)))
	if err != nil {
		return nil, Info{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return doc, info, nil
}

func (d *document) info(compression Compression, size int64) (Info, error) {
	capacity, err := conv.Uint64ToInt(d.Capacity)
	if err != nil {
		return Info{}, err
	}
	free := roaring64.New()
	if len(d.Free) > 0 {
		if err := free.UnmarshalBinary(d.Free); err != nil {
			return Info{}, err
		}
	}
	return Info{
		ID:          d.ID,
		Name:        d.Name,
		CreatedAt:   d.CreatedAt,
		BlockSize:   d.BlockSize,
		Capacity:    capacity,
		ActiveRows:  capacity - int(free.GetCardinality()),
		Columns:     d.Columns,
		Codec:       d.Codec,
		Compression: compression,
		Bytes:       size,
	}, nil
}

func resolveCodec(name string, given codec.Codec) (codec.Codec, error) {
	if given != nil && given.Name() == name {
		return given, nil
	}
	if c, ok := codec.ByName(name); ok {
		return c, nil
	}
	return nil, fmt.Errorf("soa: snapshot codec '%s' is not available", name)
}

// decodeBlocks decodes every block into fresh storages so that a malformed
// snapshot leaves the table untouched.
func decodeBlocks(doc *document, info Info, factories []column.Factory, c codec.Codec) ([][]column.Storage, error) {
	if info.BlockSize <= 0 || info.Capacity%info.BlockSize != 0 {
		return nil, fmt.Errorf("%w: capacity %d is not a multiple of block size %d", ErrInvalidSnapshot, info.Capacity, info.BlockSize)
	}
	blocks := info.Capacity / info.BlockSize
	if len(doc.Blocks) != len(factories) {
		return nil, fmt.Errorf("%w: %d column payloads for %d columns", ErrInvalidSnapshot, len(doc.Blocks), len(factories))
	}

	staged := make([][]column.Storage, blocks)
	for bi := range staged {
		staged[bi] = make([]column.Storage, len(factories))
	}
	for ord, f := range factories {
		if len(doc.Blocks[ord]) != blocks {
			return nil, fmt.Errorf("%w: column '%s' has %d blocks, want %d", ErrInvalidSnapshot, doc.Columns[ord], len(doc.Blocks[ord]), blocks)
		}
		for bi, data := range doc.Blocks[ord] {
			s := f(info.BlockSize)
			if err := s.Decode(c, data); err != nil {
				return nil, fmt.Errorf("%w: column '%s' block %d: %w", ErrInvalidSnapshot, doc.Columns[ord], bi, err)
			}
			staged[bi][ord] = s
		}
	}
	return staged, nil
}

func decodeFree(data []byte, capacity int) (*roaring64.Bitmap, error) {
	free := roaring64.New()
	if len(data) == 0 {
		return free, nil
	}
	if err := free.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%w: free set: %w", ErrInvalidSnapshot, err)
	}
	if !free.IsEmpty() && free.Maximum() >= uint64(capacity) {
		return nil, fmt.Errorf("%w: free index %d beyond capacity %d", ErrInvalidSnapshot, free.Maximum(), capacity)
	}
	return free, nil
}
