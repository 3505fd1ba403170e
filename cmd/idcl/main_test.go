package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/idcl"
	"github.com/meigma/idcl/internal/testutil"
)

func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	fixture := testutil.Archive{Entries: []testutil.ArchiveEntry{
		{Name: "strings/stored.txt", Data: []byte("0123456789")},
		{Name: "models/box.bmd6model", Type: "bmd6model", Data: testutil.BuildMesh(testutil.Quad("a")), Compressed: true},
		{Name: "tex/wall.bimage", Type: "image", Data: testutil.BuildImage(2, 2, 0, testutil.RGBAPattern(2, 2))},
	}}
	path := filepath.Join(dir, "gameresources.resources")
	require.NoError(t, os.WriteFile(path, fixture.Bytes(), 0o600))
	return path
}

func TestExtractAndReport(t *testing.T) {
	dir := t.TempDir()
	archive := writeFixture(t, dir)
	out := filepath.Join(dir, "out")

	err := newApp().RunContext(t.Context(), []string{
		"idcl", "--cache-dir", filepath.Join(dir, "cache"),
		"extract", "--out", out, "--mesh-format", "glb", "--image-format", "bmp", archive,
	})
	require.NoError(t, err)

	root := filepath.Join(out, "gameresources")
	for _, p := range []string{"strings/stored.txt", "models/box/box_part1.glb", "tex/wall.bmp"} {
		assert.FileExists(t, filepath.Join(root, filepath.FromSlash(p)))
	}

	data, err := os.ReadFile(filepath.Join(root, idcl.ManifestName))
	require.NoError(t, err)
	report, err := idcl.UnmarshalManifest(data)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Summary().Succeeded)

	err = newApp().RunContext(t.Context(), []string{"idcl", "report", filepath.Join(root, idcl.ManifestName)})
	require.NoError(t, err)
	err = newApp().RunContext(t.Context(), []string{"idcl", "list", archive})
	require.NoError(t, err)
}

func TestConvertLooseFiles(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "crate.bmd6model")
	require.NoError(t, os.WriteFile(model, testutil.BuildMesh(testutil.Quad("a"), testutil.Pyramid("b")), 0o600))
	image := filepath.Join(dir, "wall.bimage")
	require.NoError(t, os.WriteFile(image, testutil.BuildImage(4, 4, 0, testutil.RGBAPattern(4, 4)), 0o600))
	out := filepath.Join(dir, "out")

	require.NoError(t, newApp().RunContext(t.Context(), []string{"idcl", "mesh", "--out", out, "--rotate-x", model}))
	assert.FileExists(t, filepath.Join(out, "crate", "crate_part1.obj"))
	assert.FileExists(t, filepath.Join(out, "crate", "crate_part2.obj"))

	require.NoError(t, newApp().RunContext(t.Context(), []string{"idcl", "image", "--out", out, "--format", "tiff", image}))
	assert.FileExists(t, filepath.Join(out, "wall.tiff"))

	broken := filepath.Join(dir, "broken.bmd6model")
	require.NoError(t, os.WriteFile(broken, []byte("BMD6"), 0o600))
	err := newApp().RunContext(t.Context(), []string{"idcl", "mesh", "--out", out, broken})
	require.ErrorIs(t, err, idcl.ErrCorruptMesh)

	err = newApp().RunContext(t.Context(), []string{"idcl", "--max-file-size", "16", "image", "--out", out, image})
	require.ErrorIs(t, err, idcl.ErrSizeOverflow)
}

func TestExtractRejectsBadFlags(t *testing.T) {
	archive := writeFixture(t, t.TempDir())
	err := newApp().RunContext(t.Context(), []string{"idcl", "extract", "--mesh-format", "fbx", archive})
	require.Error(t, err)
	err = newApp().RunContext(t.Context(), []string{"idcl", "extract"})
	require.Error(t, err)
}

func TestArchiveStem(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "gameresources", archiveStem("/games/base/gameresources.resources"))
	assert.Equal(t, "chunk_1", archiveStem("https://cdn.example.com/base/chunk_1.pack?sig=abc"))
	assert.Equal(t, "noext", archiveStem("noext"))
}
