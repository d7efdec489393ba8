package soa

import (
	"github.com/hupe1980/soa/codec"
	"github.com/hupe1980/soa/internal/compress"
)

// DefaultBlockSize is the number of rows per block when WithBlockSize is not given.
const DefaultBlockSize = 64

// MemoryAcquirer is consulted before a table links a new block.
// *resource.Controller satisfies it.
type MemoryAcquirer interface {
	TryAcquireMemory(bytes int64) bool
	ReleaseMemory(bytes int64)
}

type options struct {
	name      string
	blockSize int
	logger    *Logger
	metrics   MetricsCollector
	memory    MemoryAcquirer
}

func defaultOptions() options {
	return options{
		blockSize: DefaultBlockSize,
		logger:    NoopLogger(),
		metrics:   NoopMetricsCollector{},
	}
}

// Option configures a Table, DenseStore or Pool.
type Option func(*options)

// WithName sets the name reported in errors, logs and snapshots.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithBlockSize sets the number of rows per block of a Table.
// It is ignored by DenseStore.
func WithBlockSize(n int) Option {
	return func(o *options) {
		o.blockSize = n
	}
}

// WithLogger sets the structured logger. Nil restores the no-op logger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetrics sets the metrics collector. Nil restores the no-op collector.
func WithMetrics(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metrics = m
	}
}

// WithMemoryAcquirer bounds the memory a Table may reserve for blocks.
// Acquire fails with ErrMemoryLimit when the acquirer refuses a block.
func WithMemoryAcquirer(m MemoryAcquirer) Option {
	return func(o *options) {
		o.memory = m
	}
}

// Compression selects the snapshot compression algorithm.
type Compression = compress.Type

const (
	// CompressionNone stores snapshots uncompressed.
	CompressionNone = compress.None
	// CompressionLZ4 favors speed.
	CompressionLZ4 = compress.LZ4
	// CompressionZSTD favors ratio.
	CompressionZSTD = compress.ZSTD
)

// ParseCompression maps "none", "lz4" or "zstd" to a Compression.
func ParseCompression(name string) (Compression, error) {
	return compress.ParseType(name)
}

// DefaultMaxSnapshotBytes is the read limit of Load and Inspect unless
// WithMaxSnapshotBytes says otherwise.
const DefaultMaxSnapshotBytes int64 = 4 << 30

type snapshotOptions struct {
	codec       codec.Codec
	compression Compression
	maxBytes    int64
}

// SnapshotOption configures Save, Load and Inspect.
type SnapshotOption func(*snapshotOptions)

// WithCompression selects the snapshot compression. Default is ZSTD.
func WithCompression(c Compression) SnapshotOption {
	return func(o *snapshotOptions) {
		o.compression = c
	}
}

// WithMaxSnapshotBytes caps how many encoded bytes Load and Inspect read.
// Larger snapshots fail with ErrSnapshotTooLarge before the table is touched.
// A value of zero or less restores DefaultMaxSnapshotBytes.
func WithMaxSnapshotBytes(n int64) SnapshotOption {
	return func(o *snapshotOptions) {
		if n <= 0 {
			n = DefaultMaxSnapshotBytes
		}
		o.maxBytes = n
	}
}

// WithSnapshotCodec selects the codec used for column values.
// If nil is passed, codec.Default is used.
func WithSnapshotCodec(c codec.Codec) SnapshotOption {
	return func(o *snapshotOptions) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}
