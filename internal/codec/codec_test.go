package codec

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/idcl/internal/restype"
	"github.com/meigma/idcl/internal/testutil"
)

func TestDecompressStored(t *testing.T) {
	t.Parallel()

	data := []byte("0123456789")
	out, err := Decompress(data, 10, MethodStored)
	require.NoError(t, err)
	assert.Equal(t, data, out)

	_, err = Decompress(data, 11, MethodStored)
	assert.ErrorIs(t, err, restype.ErrSizeMismatch)

	out, err = Decompress(nil, 0, MethodStored)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDecompressUnknownMethod(t *testing.T) {
	t.Parallel()

	_, err := Decompress([]byte{1}, 1, Method(9))
	assert.ErrorIs(t, err, restype.ErrCorruptStream)
}

func TestDecompressRoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	random := make([]byte, 5000)
	for i := range random {
		random[i] = byte(rng.UintN(256))
	}

	inputs := map[string][]byte{
		"small text":     testutil.CompressibleBytes(1000),
		"multi chunk":    testutil.CompressibleBytes(3*ChunkSize + 1234),
		"random":         random,
		"single byte":    {0x42},
		"fill":           bytes.Repeat([]byte{0xAB}, ChunkSize+7),
		"exact chunk":    testutil.CompressibleBytes(ChunkSize),
		"mixed contents": append(testutil.CompressibleBytes(ChunkSize+100), random...),
	}
	modes := map[string]testutil.StreamMode{
		"lz":    testutil.StreamLZ,
		"split": testutil.StreamSplit,
		"raw":   testutil.StreamRaw,
	}

	for name, data := range inputs {
		for modeName, mode := range modes {
			t.Run(name+"/"+modeName, func(t *testing.T) {
				t.Parallel()
				stream := testutil.EncodeStream(data, mode)
				out, err := Decompress(stream, uint64(len(data)), MethodOodleLike)
				require.NoError(t, err)
				assert.Equal(t, data, out)
			})
		}
	}
}

func TestDecompressCompresses(t *testing.T) {
	t.Parallel()

	data := testutil.CompressibleBytes(1000)
	for _, mode := range []testutil.StreamMode{testutil.StreamLZ, testutil.StreamSplit} {
		stream := testutil.EncodeStream(data, mode)
		assert.Less(t, len(stream), len(data))
	}
}

func TestDecompressSizeErrors(t *testing.T) {
	t.Parallel()

	data := testutil.CompressibleBytes(1000)
	stream := testutil.EncodeStream(data, testutil.StreamLZ)

	tests := []struct {
		name     string
		stream   []byte
		expected uint64
	}{
		{"expected too large", stream, 1001},
		{"expected too small", stream, 999},
		{"empty input", nil, 10},
		{"truncated", stream[:len(stream)-3], 1000},
		{"trailing bytes", append(append([]byte(nil), stream...), 0), 1000},
		{"empty stream with size zero and trailing data", []byte{0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decompress(tt.stream, tt.expected, MethodOodleLike)
			assert.ErrorIs(t, err, restype.ErrCorruptStream)
		})
	}
}

func TestDecompressEmpty(t *testing.T) {
	t.Parallel()

	out, err := Decompress(nil, 0, MethodOodleLike)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDecompressCorruptChunks(t *testing.T) {
	t.Parallel()

	chunk := func(kind byte, payload ...byte) []byte {
		return append(testutil.ChunkHeader(kind, len(payload)), payload...)
	}

	tests := []struct {
		name     string
		stream   []byte
		expected uint64
	}{
		{"unknown kind", chunk(9, 'a'), 1},
		{"raw length mismatch", chunk(ChunkRaw, 'a', 'b'), 3},
		{"fill with two bytes", chunk(ChunkFill, 'a', 'b'), 4},
		{"zero offset", chunk(ChunkLZ, 0x10, 'a', 0x00, 0x00), 5},
		{"offset before start", chunk(ChunkLZ, 0x10, 'a', 0x02, 0x00), 5},
		{"match overruns chunk", chunk(ChunkLZ, 0x1f, 'a', 0x01, 0x00, 0x10), 5},
		{"literals truncated", chunk(ChunkLZ, 0x30, 'a'), 3},
		{"missing final literals", chunk(ChunkLZ, 0x10, 'a', 0x01, 0x00), 10},
		{"split header truncated", chunk(ChunkLZSplit, 0x01, 0x00), 1},
		{"split literal section too long", chunk(ChunkLZSplit, 1, 0, 0, 9, 0, 0, 0x10), 1},
		{"split unused literals", chunk(ChunkLZSplit, 2, 0, 0, 2, 0, 0, 'a', 'b', 0x10), 1},
		{"split bad huffman table", chunk(ChunkLZSplit, 4, 0, 0, 2, 0, 0, 0xff, 0xff, 0x40), 4},
		{"length run truncated", chunk(ChunkLZ, 0xf0, 0xff), 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decompress(tt.stream, tt.expected, MethodOodleLike)
			assert.ErrorIs(t, err, restype.ErrCorruptStream)
		})
	}
}

func TestDecompressOverlappingMatch(t *testing.T) {
	t.Parallel()

	// One literal 'a' then a 9-byte match at offset 1: "aaaaaaaaaa".
	payload := []byte{0x15, 'a', 0x01, 0x00, 0x00}
	stream := append(testutil.ChunkHeader(ChunkLZ, len(payload)), payload...)
	out, err := Decompress(stream, 10, MethodOodleLike)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{'a'}, 10), out)
}

func TestDecompressCrossChunkMatch(t *testing.T) {
	t.Parallel()

	first := testutil.CompressibleBytes(ChunkSize)
	tail := first[ChunkSize-8:]

	// Second chunk copies the last 8 bytes of the first chunk.
	payload := []byte{0x04, 0x08, 0x00}
	var stream []byte
	stream = append(stream, testutil.ChunkHeader(ChunkRaw, len(first))...)
	stream = append(stream, first...)
	stream = append(stream, testutil.ChunkHeader(ChunkLZ, len(payload))...)
	stream = append(stream, payload...)

	out, err := Decompress(stream, ChunkSize+8, MethodOodleLike)
	require.NoError(t, err)
	assert.Equal(t, tail, out[ChunkSize:])
}

func TestDecompressIsPure(t *testing.T) {
	t.Parallel()

	data := testutil.CompressibleBytes(2 * ChunkSize)
	stream := testutil.EncodeStream(data, testutil.StreamSplit)

	results := make(chan []byte, 8)
	for range 8 {
		go func() {
			out, err := Decompress(stream, uint64(len(data)), MethodOodleLike)
			if err != nil {
				results <- nil
				return
			}
			results <- out
		}()
	}
	for range 8 {
		assert.Equal(t, data, <-results)
	}
}
