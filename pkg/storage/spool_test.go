package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpool(t *testing.T) {
	t.Run("save open remove round trip", func(t *testing.T) {
		spool, err := NewSpool(t.TempDir())
		require.NoError(t, err)

		path, err := spool.Save("statement.txt", strings.NewReader("hello"))
		require.NoError(t, err)
		assert.FileExists(t, path)

		r, err := spool.Open(path)
		require.NoError(t, err)
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		r.Close()
		assert.Equal(t, "hello", string(data))

		require.NoError(t, spool.Remove(path))
		assert.NoFileExists(t, path)

		// removing again is not an error
		assert.NoError(t, spool.Remove(path))
	})

	t.Run("sanitizes hostile filenames", func(t *testing.T) {
		dir := t.TempDir()
		spool, err := NewSpool(dir)
		require.NoError(t, err)

		path, err := spool.Save("../../etc/passwd", strings.NewReader("x"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(path, dir))
	})

	t.Run("rejects paths outside the spool", func(t *testing.T) {
		spool, err := NewSpool(t.TempDir())
		require.NoError(t, err)

		outside := filepath.Join(t.TempDir(), "victim.txt")
		require.NoError(t, os.WriteFile(outside, []byte("x"), 0644))

		assert.Error(t, spool.Remove(outside))
		assert.FileExists(t, outside)
	})

	t.Run("sweep removes only old files", func(t *testing.T) {
		spool, err := NewSpool(t.TempDir())
		require.NoError(t, err)

		oldPath, err := spool.Save("old.txt", strings.NewReader("x"))
		require.NoError(t, err)
		newPath, err := spool.Save("new.txt", strings.NewReader("x"))
		require.NoError(t, err)

		stale := time.Now().Add(-2 * time.Hour)
		require.NoError(t, os.Chtimes(oldPath, stale, stale))

		removed, err := spool.SweepOlderThan(time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)
		assert.NoFileExists(t, oldPath)
		assert.FileExists(t, newPath)
	})
}
