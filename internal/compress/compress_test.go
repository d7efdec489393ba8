package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_RoundTrip(t *testing.T) {
	compressible := bytes.Repeat([]byte("column-data "), 512)
	random := []byte{0x91, 0x07, 0xee, 0x3c, 0x55, 0xa0}

	for _, typ := range []Type{None, LZ4, ZSTD} {
		t.Run(typ.String(), func(t *testing.T) {
			for _, data := range [][]byte{compressible, random, {}} {
				framed, err := Compress(data, typ)
				require.NoError(t, err)

				out, err := Decompress(framed, typ)
				require.NoError(t, err)
				assert.Equal(t, len(data), len(out))
				assert.True(t, bytes.Equal(data, out))
			}
		})
	}
}

func TestCompress_Shrinks(t *testing.T) {
	data := bytes.Repeat([]byte{0}, 4096)
	for _, typ := range []Type{LZ4, ZSTD} {
		framed, err := Compress(data, typ)
		require.NoError(t, err)
		assert.Less(t, len(framed), len(data), typ.String())
	}
}

func TestDecompress_Corrupt(t *testing.T) {
	_, err := Decompress([]byte{1, 2, 3}, ZSTD)
	assert.ErrorIs(t, err, ErrCorrupt)

	framed, err := Compress(bytes.Repeat([]byte("ab"), 1024), ZSTD)
	require.NoError(t, err)
	_, err = Decompress(framed[:len(framed)-4], ZSTD)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestParseType(t *testing.T) {
	for _, typ := range []Type{None, LZ4, ZSTD} {
		got, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	_, err := ParseType("brotli")
	assert.Error(t, err)
	assert.False(t, Type(9).Valid())
}
