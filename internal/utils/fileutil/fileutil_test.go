package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAtomicWriteFile tests atomic replacement of a file
// TestAtomicWriteFile 测试文件的原子替换
func TestAtomicWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "offsets.json")

	require.NoError(t, AtomicWriteFile(path, []byte("one"), 0644))
	require.NoError(t, AtomicWriteFile(path, []byte("two"), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be cleaned up")
}

// TestOpenAppend tests append semantics
// TestOpenAppend 测试追加语义
func TestOpenAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "events")

	for _, line := range []string{"a\n", "b\n"} {
		f, err := OpenAppend(path)
		require.NoError(t, err)
		_, err = f.WriteString(line)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))
}

// TestFirstExisting tests lookup order
// TestFirstExisting 测试查找顺序
func TestFirstExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "analytics.yaml"), []byte("{}"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "analytics"), 0755))

	p, ok := FirstExisting(dir, "analytics", "analytics.yaml")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "analytics.yaml"), p)

	_, ok = FirstExisting(dir, "missing")
	assert.False(t, ok)
}
