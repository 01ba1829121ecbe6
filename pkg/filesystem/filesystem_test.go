package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/myquest/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseFS(t *testing.T, fs types.FS, root string) {
	t.Helper()

	testFile := filepath.Join(root, "test.txt")
	testContent := []byte("hello world")

	require.NoError(t, fs.MkdirAll(root, 0755))

	// WriteFile + Stat
	require.NoError(t, fs.WriteFile(testFile, testContent, 0644))
	info, err := fs.Stat(testFile)
	require.NoError(t, err)
	assert.Equal(t, "test.txt", info.Name())
	assert.Equal(t, int64(len(testContent)), info.Size())

	// ReadFile
	content, err := fs.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, testContent, content)

	// Overwrite keeps a single entry
	require.NoError(t, fs.WriteFile(testFile, []byte("second"), 0644))
	content, err = fs.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	// MkdirAll + ReadDir
	require.NoError(t, fs.MkdirAll(filepath.Join(root, "sub", "dir"), 0755))
	entries, err := fs.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 2) // test.txt and sub/

	// Rename
	renamed := filepath.Join(root, "renamed.txt")
	require.NoError(t, fs.Rename(testFile, renamed))
	_, err = fs.Stat(testFile)
	assert.True(t, os.IsNotExist(err))

	// Remove
	require.NoError(t, fs.Remove(renamed))
	_, err = fs.Stat(renamed)
	assert.True(t, os.IsNotExist(err))
}

func TestNewOS(t *testing.T) {
	fs := NewOS()
	assert.NotNil(t, fs)
	exerciseFS(t, fs, t.TempDir())
}

func TestNewAferoFS(t *testing.T) {
	fs := NewAferoFS(afero.NewMemMapFs())
	exerciseFS(t, fs, "/data")

	t.Run("read_directory_fails", func(t *testing.T) {
		require.NoError(t, fs.MkdirAll("/data/dir", 0755))
		_, err := fs.ReadFile("/data/dir")
		assert.Error(t, err)
	})
}

func TestOSWriteFileLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs := NewOS()
	target := filepath.Join(dir, "habits.json")

	for i := 0; i < 3; i++ {
		require.NoError(t, fs.WriteFile(target, []byte("{}"), 0644))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "habits.json", entries[0].Name())

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestMemoryWriteFileReplacesInPlace(t *testing.T) {
	mem := afero.NewMemMapFs()
	fs := NewAferoFS(mem)
	require.NoError(t, fs.MkdirAll("/data", 0755))

	require.NoError(t, fs.WriteFile("/data/todos.json", []byte("old"), 0600))
	require.NoError(t, fs.WriteFile("/data/todos.json", []byte("new"), 0600))

	entries, err := fs.ReadDir("/data")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "todos.json", entries[0].Name())

	data, err := afero.ReadFile(mem, "/data/todos.json")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestWriteFileIntoMissingDirFails(t *testing.T) {
	fs := NewOS()
	err := fs.WriteFile(filepath.Join(t.TempDir(), "missing", "habits.json"), []byte("{}"), 0644)
	assert.Error(t, err)
}
