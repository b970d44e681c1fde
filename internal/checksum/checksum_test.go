package checksum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigestNormalizesLineEndings(t *testing.T) {
	unix := Digest([]byte("a\nb\nc\n"))
	windows := Digest([]byte("a\r\nb\r\nc\r\n"))
	require.Equal(t, unix, windows)

	other := Digest([]byte("a\nb\nd\n"))
	require.NotEqual(t, unix, other)
}

func TestStoreStaleLifecycle(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plot_example.py")
	require.NoError(t, os.WriteFile(src, []byte("print(1)\n"), 0o644))

	store, err := NewStore(filepath.Join(dir, "out"))
	require.NoError(t, err)

	// First encounter: no record, always stale.
	stale, digest, err := store.IsStale(src)
	require.NoError(t, err)
	require.True(t, stale)
	require.NotEmpty(t, digest)

	require.NoError(t, store.Commit(src, digest))

	stale, _, err = store.IsStale(src)
	require.NoError(t, err)
	require.False(t, stale)

	// A single changed byte flips it back to stale.
	require.NoError(t, os.WriteFile(src, []byte("print(2)\n"), 0o644))
	stale, digest2, err := store.IsStale(src)
	require.NoError(t, err)
	require.True(t, stale)
	require.NotEqual(t, digest, digest2)
}

func TestStoreLineEndingChangeIsNotStale(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plot_example.py")
	require.NoError(t, os.WriteFile(src, []byte("print(1)\n"), 0o644))

	store, err := NewStore(filepath.Join(dir, "out"))
	require.NoError(t, err)
	_, digest, err := store.IsStale(src)
	require.NoError(t, err)
	require.NoError(t, store.Commit(src, digest))

	require.NoError(t, os.WriteFile(src, []byte("print(1)\r\n"), 0o644))
	stale, _, err := store.IsStale(src)
	require.NoError(t, err)
	require.False(t, stale)
}

func TestWriteFileIfChanged(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "page.md")

	changed, err := WriteFileIfChanged(target, []byte("hello\n"))
	require.NoError(t, err)
	require.True(t, changed)

	info1, err := os.Stat(target)
	require.NoError(t, err)

	// Identical content: target untouched, .new removed.
	changed, err = WriteFileIfChanged(target, []byte("hello\n"))
	require.NoError(t, err)
	require.False(t, changed)
	_, err = os.Stat(target + ".new")
	require.True(t, os.IsNotExist(err))

	info2, err := os.Stat(target)
	require.NoError(t, err)
	require.Equal(t, info1.ModTime(), info2.ModTime())

	changed, err = WriteFileIfChanged(target, []byte("goodbye\n"))
	require.NoError(t, err)
	require.True(t, changed)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "goodbye\n", string(data))
}

func TestPromoteNewRejectsBadSuffix(t *testing.T) {
	_, err := PromoteNew(filepath.Join(t.TempDir(), "not-a-staging-file"))
	require.Error(t, err)
}
