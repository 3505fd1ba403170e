package memory

import (
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePutGet(t *testing.T) {
	t.Parallel()

	c, err := New(4)
	require.NoError(t, err)

	content := []byte("decoded")
	key := digest.FromString("payload")
	require.NoError(t, c.Put(key, content))

	content[0] = 'X'
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte("decoded"), got)
	assert.Equal(t, int64(7), c.SizeBytes())

	require.NoError(t, c.Delete(key))
	_, ok = c.Get(key)
	assert.False(t, ok)
	assert.Equal(t, int64(0), c.SizeBytes())
}

func TestCacheEvicts(t *testing.T) {
	t.Parallel()

	c, err := New(2)
	require.NoError(t, err)

	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, c.Put(digest.FromString(s), []byte(s)))
	}
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(digest.FromString("a"))
	assert.False(t, ok)
	assert.Equal(t, int64(2), c.SizeBytes())
}

func TestCacheMaxEntryBytes(t *testing.T) {
	t.Parallel()

	c, err := New(2, WithMaxEntryBytes(3))
	require.NoError(t, err)

	require.NoError(t, c.Put(digest.FromString("big"), []byte("toolarge")))
	assert.Equal(t, 0, c.Len())
}

func TestNewRejectsZero(t *testing.T) {
	t.Parallel()

	_, err := New(0)
	assert.Error(t, err)
}
