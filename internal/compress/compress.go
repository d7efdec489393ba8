// Package compress frames snapshot payloads with optional LZ4 or ZSTD
// compression.
//
// Frame layout: [rawSize uint32][packedSize uint32][payload...].
// A packedSize of 0 marks a payload stored as is.
package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type selects the compression algorithm.
type Type uint8

const (
	// None stores payloads uncompressed.
	None Type = 0
	// LZ4 favors speed.
	LZ4 Type = 1
	// ZSTD favors ratio.
	ZSTD Type = 2
)

const headerSize = 8

var (
	// ErrCorrupt is returned when a frame cannot be decoded.
	ErrCorrupt = errors.New("compress: corrupt frame")
	// ErrTooLarge is returned when a payload does not fit a frame.
	ErrTooLarge = errors.New("compress: payload too large")
)

var (
	encoderPool sync.Pool
	decoderPool sync.Pool
)

func getEncoder() (*zstd.Encoder, error) {
	if v := encoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getDecoder() (*zstd.Decoder, error) {
	if v := decoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// String returns the algorithm name.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ParseType maps an algorithm name back to its Type.
func ParseType(name string) (Type, error) {
	switch name {
	case "none", "":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("compress: unknown algorithm %q", name)
	}
}

// Valid reports whether t is a known algorithm.
func (t Type) Valid() bool { return t <= ZSTD }

// Compress frames data with algorithm t. Payloads that do not shrink by at
// least 10% are stored uncompressed.
func Compress(data []byte, t Type) ([]byte, error) {
	if len(data) > math.MaxUint32 {
		return nil, ErrTooLarge
	}

	var packed []byte
	switch t {
	case None:
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		packed = buf[:n]
	case ZSTD:
		enc, err := getEncoder()
		if err != nil {
			return nil, err
		}
		packed = enc.EncodeAll(data, nil)
		encoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("compress: unknown algorithm %d", uint8(t))
	}

	if len(packed) == 0 || float64(len(packed)) > float64(len(data))*0.9 {
		return frame(data, 0), nil
	}
	return frame(packed, len(data)), nil
}

func frame(payload []byte, rawSize int) []byte {
	out := make([]byte, headerSize+len(payload))
	if rawSize == 0 {
		binary.LittleEndian.PutUint32(out[0:], uint32(len(payload)))
		binary.LittleEndian.PutUint32(out[4:], 0)
	} else {
		binary.LittleEndian.PutUint32(out[0:], uint32(rawSize))
		binary.LittleEndian.PutUint32(out[4:], uint32(len(payload)))
	}
	copy(out[headerSize:], payload)
	return out
}

// Decompress reverses Compress.
func Decompress(data []byte, t Type) ([]byte, error) {
	if len(data) < headerSize {
		return nil, ErrCorrupt
	}
	rawSize := binary.LittleEndian.Uint32(data[0:])
	packedSize := binary.LittleEndian.Uint32(data[4:])
	body := data[headerSize:]

	if packedSize == 0 {
		if uint64(len(body)) < uint64(rawSize) {
			return nil, ErrCorrupt
		}
		return body[:rawSize], nil
	}
	if uint64(len(body)) < uint64(packedSize) {
		return nil, ErrCorrupt
	}
	body = body[:packedSize]

	switch t {
	case LZ4:
		out := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint32(n) != rawSize {
			return nil, ErrCorrupt
		}
		return out, nil
	case ZSTD:
		dec, err := getDecoder()
		if err != nil {
			return nil, err
		}
		defer decoderPool.Put(dec)
		out, err := dec.DecodeAll(body, make([]byte, 0, rawSize))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint32(len(out)) != rawSize {
			return nil, ErrCorrupt
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: compressed payload with algorithm %s", ErrCorrupt, t)
	}
}
