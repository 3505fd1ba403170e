package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, s Sink, path string, content string) {
	t.Helper()
	w, err := s.Writer(path)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Commit())
}

func TestFileSinkCommit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := NewFileSink(filepath.Join(dir, "out"))
	writeArtifact(t, s, "models/wall/wall_part1.obj", "v 0 0 0\n")

	got, err := os.ReadFile(filepath.Join(dir, "out", "models", "wall", "wall_part1.obj"))
	require.NoError(t, err)
	assert.Equal(t, "v 0 0 0\n", string(got))

	entries, err := os.ReadDir(filepath.Join(dir, "out", "models", "wall"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not remain")
}

func TestFileSinkDiscard(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := NewFileSink(dir)
	for i := range 2 {
		name := fmt.Sprintf("sub/discard-%d.bin", i)
		w, err := s.Writer(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("partial"))
		require.NoError(t, err)
		require.NoError(t, w.Discard())

		_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(name)))
		assert.True(t, os.IsNotExist(err))
	}
	entries, err := os.ReadDir(filepath.Join(dir, "sub"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileSinkShouldWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := NewFileSink(dir)
	assert.True(t, s.ShouldWrite("a.txt"))
	writeArtifact(t, s, "a.txt", "one")
	assert.False(t, s.ShouldWrite("a.txt"))
	assert.False(t, s.ShouldWrite("../escape.txt"))

	o := NewFileSink(dir, WithOverwrite(true))
	assert.True(t, o.ShouldWrite("a.txt"))
	writeArtifact(t, o, "a.txt", "two")
	got, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}

func TestFileSinkRejectsInvalidPaths(t *testing.T) {
	t.Parallel()

	s := NewFileSink(t.TempDir())
	for _, p := range []string{"../x", "/abs", "a//b", "."} {
		_, err := s.Writer(p)
		assert.Error(t, err, p)
	}
}

func TestFileSinkSamePathConcurrent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := NewFileSink(dir, WithOverwrite(true))

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := s.Writer("shared/out.txt")
			if !assert.NoError(t, err) {
				return
			}
			// Interleaved writes would mix the two halves.
			_, _ = fmt.Fprintf(w, "%02d-", i)
			_, _ = fmt.Fprintf(w, "%02d", i)
			assert.NoError(t, w.Commit())
		}()
	}
	wg.Wait()

	got, err := os.ReadFile(filepath.Join(dir, "shared", "out.txt"))
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, string(got[:2]), string(got[3:]))
}

func TestMemorySink(t *testing.T) {
	t.Parallel()

	s := NewMemorySink(false)
	assert.True(t, s.ShouldWrite("x"))
	writeArtifact(t, s, "x", "hello")
	assert.False(t, s.ShouldWrite("x"))

	w, err := s.Writer("y")
	require.NoError(t, err)
	_, _ = w.Write([]byte("dropped"))
	require.NoError(t, w.Discard())

	files := s.Files()
	assert.Equal(t, map[string][]byte{"x": []byte("hello")}, files)
	got, ok := s.Get("x")
	assert.True(t, ok)
	assert.Equal(t, "hello", string(got))
}
