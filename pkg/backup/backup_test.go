package backup_test

import (
	stderrors "errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/myquest/pkg/backup"
	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/filesystem"
	"github.com/arthur-debert/myquest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const primary = "/data/habits/habits.json"

func newFS(t *testing.T) types.FS {
	t.Helper()
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll(filepath.Dir(primary), 0755))
	return fs
}

func write(t *testing.T, fs types.FS, path, content string) {
	t.Helper()
	require.NoError(t, fs.WriteFile(path, []byte(content), 0644))
}

func read(t *testing.T, fs types.FS, path string) string {
	t.Helper()
	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// save mimics the storage pipeline: rotate, then overwrite the primary
func save(t *testing.T, fs types.FS, content string, max int) {
	t.Helper()
	require.NoError(t, backup.Rotate(fs, primary, max))
	write(t, fs, primary, content)
}

func TestSlotPath(t *testing.T) {
	tests := []struct {
		primary string
		n       int
		want    string
	}{
		{"/data/habits/habits.json", 1, "/data/habits/habits.backup1"},
		{"/data/todos.json", 5, "/data/todos.backup5"},
		{"/data/timelines/default.yaml", 2, "/data/timelines/default.backup2"},
		{"/data/noext", 1, "/data/noext.backup1"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, backup.SlotPath(tt.primary, tt.n))
		})
	}
}

func TestRotateFirstSaveIsNoop(t *testing.T) {
	fs := newFS(t)

	save(t, fs, "v1", 3)

	assert.Equal(t, "v1", read(t, fs, primary))
	slots, err := backup.List(fs, primary)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestRotateKeepsBoundedRing(t *testing.T) {
	const max = 3
	const saves = 6

	fs := newFS(t)
	for k := 1; k <= saves; k++ {
		save(t, fs, fmt.Sprintf("v%d", k), max)
	}

	slots, err := backup.List(fs, primary)
	require.NoError(t, err)
	require.Len(t, slots, max)

	// slot i holds the value from save (K - i)
	for i, slot := range slots {
		assert.Equal(t, i+1, slot.Index)
		assert.Equal(t, fmt.Sprintf("v%d", saves-(i+1)), read(t, fs, slot.Path))
	}
	assert.Equal(t, fmt.Sprintf("v%d", saves), read(t, fs, primary))
}

func TestRotateDisabled(t *testing.T) {
	fs := newFS(t)
	save(t, fs, "v1", 0)
	save(t, fs, "v2", 0)

	slots, err := backup.List(fs, primary)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestRotatePrunesSlotsAboveBound(t *testing.T) {
	fs := newFS(t)
	write(t, fs, primary, "current")
	for i := 1; i <= 5; i++ {
		write(t, fs, backup.SlotPath(primary, i), fmt.Sprintf("old%d", i))
	}

	require.NoError(t, backup.Rotate(fs, primary, 2))

	slots, err := backup.List(fs, primary)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "current", read(t, fs, slots[0].Path))
	assert.Equal(t, "old1", read(t, fs, slots[1].Path))
}

func TestListIgnoresUnrelatedFiles(t *testing.T) {
	fs := newFS(t)
	dir := filepath.Dir(primary)
	write(t, fs, filepath.Join(dir, "habits.backupX"), "x")
	write(t, fs, filepath.Join(dir, "other.backup1"), "x")
	write(t, fs, filepath.Join(dir, "habits.backup0"), "x")
	write(t, fs, backup.SlotPath(primary, 2), "two")

	slots, err := backup.List(fs, primary)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 2, slots[0].Index)
	assert.Equal(t, int64(3), slots[0].Size)
}

func TestRestore(t *testing.T) {
	fs := newFS(t)
	save(t, fs, "v1", 2)
	save(t, fs, "v2", 2)

	require.NoError(t, backup.Restore(fs, primary, 1))
	assert.Equal(t, "v1", read(t, fs, primary))

	err := backup.Restore(fs, primary, 2)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

// failingRenameFS makes every Rename fail
type failingRenameFS struct {
	types.FS
}

func (f failingRenameFS) Rename(oldpath, newpath string) error {
	return stderrors.New("disk on fire")
}

func TestRotateSurfacesIOErrors(t *testing.T) {
	mem := newFS(t)
	write(t, mem, primary, "current")
	write(t, mem, backup.SlotPath(primary, 1), "previous")

	err := backup.Rotate(failingRenameFS{mem}, primary, 3)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIO))

	// nothing was lost: primary and slot 1 are untouched
	assert.Equal(t, "current", read(t, mem, primary))
	assert.Equal(t, "previous", read(t, mem, backup.SlotPath(primary, 1)))
}
