package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_PutOpenDelete(t *testing.T) {
	ctx := context.Background()
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	n, err := l.Put(ctx, "job-cards/j1/p1.jpg", strings.NewReader("jpeg-bytes"), 1024)
	require.NoError(t, err)
	assert.EqualValues(t, 10, n)

	rc, err := l.Open(ctx, "job-cards/j1/p1.jpg")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "jpeg-bytes", string(b))

	require.NoError(t, l.Delete(ctx, "job-cards/j1/p1.jpg"))
	_, err = l.Open(ctx, "job-cards/j1/p1.jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, l.Delete(ctx, "job-cards/j1/p1.jpg"))
}

func TestLocal_PutTooLargeLeavesNothing(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	l, err := NewLocal(root)
	require.NoError(t, err)

	_, err = l.Put(ctx, "a/big.png", strings.NewReader(strings.Repeat("x", 11)), 10)
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(filepath.Join(root, "a"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocal_RejectsTraversal(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../etc/passwd", "a/../../b", `a\b`} {
		_, err := l.Put(context.Background(), key, strings.NewReader("x"), 10)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}
