package idcl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/idcl/dispatch"
	"github.com/meigma/idcl/internal/testutil"
)

func TestManifestRoundTrip(t *testing.T) {
	t.Parallel()

	inner := testutil.Archive{Entries: []testutil.ArchiveEntry{
		{Name: "inner/hello.txt", Data: []byte("hello")},
	}}
	a := openFixture(t, testutil.Archive{Entries: []testutil.ArchiveEntry{
		{Name: "models/good.bmd6model", Type: "bmd6model", Data: testutil.BuildMesh(testutil.Quad("a"), testutil.Pyramid("b"))},
		{Name: "models/bad.bmd6model", Type: "bmd6model", Data: corruptMesh()},
		{Name: "packs/sub.resources", Data: inner.Bytes()},
		{Name: "decls/weapon.decl", Type: "decl", Data: []byte("weapon {}")},
	}})

	report, err := a.ExtractTo(t.Context(), NewMemorySink(false))
	require.NoError(t, err)

	got, err := UnmarshalManifest(report.MarshalManifest())
	require.NoError(t, err)

	assert.Equal(t, report.Archive, got.Archive)
	require.Len(t, got.Entries, len(report.Entries))
	for i, want := range report.Entries {
		g := got.Entries[i]
		assert.Equal(t, want.Index, g.Index)
		assert.Equal(t, want.Name, g.Name)
		assert.Equal(t, want.TypeTag, g.TypeTag)
		assert.Equal(t, want.Container, g.Container)
		assert.Equal(t, want.Kind, g.Kind)
		assert.Equal(t, want.Status, g.Status)
		assert.Equal(t, want.Size, g.Size)
		assert.Equal(t, want.Outputs, g.Outputs)
		if want.Err == nil {
			assert.NoError(t, g.Err)
		} else {
			require.Error(t, g.Err)
			assert.Equal(t, want.Err.Error(), g.Err.Error())
		}
	}
	assert.Equal(t, report.Summary(), got.Summary())

	nested, ok := got.Find("packs/sub.resources", "inner/hello.txt")
	require.True(t, ok)
	assert.Equal(t, digest.FromBytes([]byte("hello")), nested.Outputs[0].Digest)
}

func TestManifestEmptyReport(t *testing.T) {
	t.Parallel()

	got, err := UnmarshalManifest((&Report{Archive: "empty.resources"}).MarshalManifest())
	require.NoError(t, err)
	assert.Equal(t, "empty.resources", got.Archive)
	assert.Empty(t, got.Entries)
}

func TestUnmarshalManifestRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := UnmarshalManifest(nil)
	require.Error(t, err)

	_, err = UnmarshalManifest([]byte{0xff, 0xff, 0xff, 0x7f, 1, 2, 3})
	require.Error(t, err)
}

func TestReportTable(t *testing.T) {
	t.Parallel()

	report := &Report{Archive: "a.resources", Entries: []EntryResult{
		{Name: "ok.txt", Kind: dispatch.KindRaw, Status: StatusSucceeded, Size: 3,
			Outputs: []Output{{Path: "ok.txt", Size: 3}}},
		{Name: "bad.bmd6model", Kind: dispatch.KindMesh, Status: StatusFailed, Size: 9,
			Err: ErrIndexOutOfRange},
		{Name: "x.txt", Container: "sub.resources", Status: StatusSkipped},
	}}

	var buf bytes.Buffer
	require.NoError(t, report.WriteTable(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "STATUS")
	assert.Contains(t, lines[1], "succeeded")
	assert.Contains(t, lines[2], "idcl: index out of range")
	assert.Contains(t, lines[3], "sub.resources/x.txt")

	s := report.Summary()
	assert.Equal(t, Summary{Succeeded: 1, Skipped: 1, Failed: 1, Outputs: 1, Bytes: 3}, s)
	assert.Equal(t, 3, s.Total())
	assert.Equal(t, "1 succeeded, 0 passthrough, 1 skipped, 1 failed, 0 not processed", s.String())
	assert.Len(t, report.Failures(), 1)
}
