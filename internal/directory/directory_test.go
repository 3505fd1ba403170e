package directory

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/idcl/internal/restype"
	"github.com/meigma/idcl/internal/testutil"
)

func readArchive(t *testing.T, data []byte) (*Directory, error) {
	t.Helper()
	src := testutil.NewMockByteSource(data)
	return Read(src, src.Size())
}

func TestReadTwoEntries(t *testing.T) {
	t.Parallel()

	stored := []byte("0123456789")
	packed := testutil.CompressibleBytes(1000)
	data := testutil.Archive{Entries: []testutil.ArchiveEntry{
		{Name: "gfx/logo.txt", Type: "rawdata", Data: stored},
		{Name: `maps\e1m1.decl`, Type: "decl", Data: packed, Compressed: true},
	}}.Bytes()

	d, err := readArchive(t, data)
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())

	var got []*Entry
	for e := range d.Entries() {
		got = append(got, e)
	}
	require.Len(t, got, 2)

	assert.Equal(t, "gfx/logo.txt", got[0].Name)
	assert.Equal(t, "rawdata", got[0].TypeTag)
	assert.Equal(t, restype.MethodStored, got[0].Method)
	assert.Equal(t, uint64(10), got[0].OriginalSize)
	assert.Equal(t, stored, data[got[0].DataOffset:got[0].DataOffset+got[0].DataSize])

	assert.Equal(t, "maps/e1m1.decl", got[1].Name)
	assert.Equal(t, `maps\e1m1.decl`, got[1].RawName)
	assert.Equal(t, restype.MethodOodleLike, got[1].Method)
	assert.Equal(t, uint64(1000), got[1].OriginalSize)
	assert.Less(t, got[1].DataSize, uint64(1000))

	for _, e := range got {
		assert.LessOrEqual(t, e.DataOffset+e.DataSize, uint64(len(data)))
		assert.NotZero(t, e.ID)
	}

	e, ok := d.Lookup("maps/e1m1.decl")
	require.True(t, ok)
	assert.Equal(t, 1, e.Index)
}

func TestReadEmptyArchive(t *testing.T) {
	t.Parallel()

	d, err := readArchive(t, testutil.Archive{}.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 0, d.Len())
	for range d.Entries() {
		t.Fatal("empty archive yielded an entry")
	}
}

func TestReadUnnamedEntry(t *testing.T) {
	t.Parallel()

	data := testutil.Archive{Entries: []testutil.ArchiveEntry{
		{Name: "a.bin", Data: []byte("a")},
		{Data: []byte("b")},
	}}.Bytes()

	d, err := readArchive(t, data)
	require.NoError(t, err)
	e, ok := d.Entry(1)
	require.True(t, ok)
	assert.Empty(t, e.RawName)
	assert.Equal(t, "file_00000001.dat", e.Name)
}

func TestReadPrefixedPayload(t *testing.T) {
	t.Parallel()

	content := testutil.CompressibleBytes(500)
	data := testutil.Archive{Entries: []testutil.ArchiveEntry{
		{Name: "p.bin", Data: content, Compressed: true, Prefixed: true},
	}}.Bytes()

	d, err := readArchive(t, data)
	require.NoError(t, err)
	e, _ := d.Entry(0)
	stream := testutil.EncodeStream(content, testutil.StreamLZ)
	assert.Equal(t, uint64(len(stream)), e.DataSize)
	assert.Equal(t, stream, data[e.DataOffset:e.DataOffset+e.DataSize])
}

func TestReadHeaderErrors(t *testing.T) {
	t.Parallel()

	valid := testutil.Archive{Entries: []testutil.ArchiveEntry{{Name: "a", Data: []byte("x")}}}.Bytes()

	badMagic := append([]byte(nil), valid...)
	copy(badMagic, "IDCX")

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, restype.ErrTruncatedArchive},
		{"short", []byte("ID"), restype.ErrTruncatedArchive},
		{"bad magic", badMagic, restype.ErrBadMagic},
		{"header truncated", valid[:100], restype.ErrTruncatedArchive},
		{"version too old", testutil.Archive{Version: 9}.Bytes(), restype.ErrUnsupportedVersion},
		{"version too new", testutil.Archive{Version: 14}.Bytes(), restype.ErrUnsupportedVersion},
		{"directory truncated", valid[:len(valid)-1], restype.ErrTruncatedArchive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := readArchive(t, tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReadEntryBeyondArchive(t *testing.T) {
	t.Parallel()

	data := testutil.Archive{Entries: []testutil.ArchiveEntry{
		{Name: "ok.bin", Data: []byte("fine")},
		{Name: "bad.bin", Data: []byte("broken")},
	}}.Bytes()

	rec := testutil.RecordOffset(data, 1)
	binary.LittleEndian.PutUint64(data[rec+56:], uint64(len(data)-2))

	_, err := readArchive(t, data)
	assert.ErrorIs(t, err, restype.ErrTruncatedArchive)
}

func TestReadOffsetOverflow(t *testing.T) {
	t.Parallel()

	data := testutil.Archive{Entries: []testutil.ArchiveEntry{{Name: "a", Data: []byte("abc")}}}.Bytes()
	rec := testutil.RecordOffset(data, 0)
	binary.LittleEndian.PutUint64(data[rec+56:], ^uint64(0)-1)

	_, err := readArchive(t, data)
	assert.ErrorIs(t, err, restype.ErrTruncatedArchive)
}

func TestReadNamesOutsideArchive(t *testing.T) {
	t.Parallel()

	data := testutil.Archive{Entries: []testutil.ArchiveEntry{{Name: "a", Data: []byte("abc")}}}.Bytes()
	binary.LittleEndian.PutUint64(data[72:], uint64(len(data)+10))

	_, err := readArchive(t, data)
	assert.ErrorIs(t, err, restype.ErrTruncatedArchive)
}

func TestReadIDOutsideArchive(t *testing.T) {
	t.Parallel()

	data := testutil.Archive{Entries: []testutil.ArchiveEntry{{Name: "a", Data: []byte("abc")}}}.Bytes()
	rec := testutil.RecordOffset(data, 0)
	binary.LittleEndian.PutUint64(data[rec+32:], 1<<30)

	_, err := readArchive(t, data)
	assert.ErrorIs(t, err, restype.ErrTruncatedArchive)
}
