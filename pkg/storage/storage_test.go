// pkg/storage/storage_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: Memory FS
// PURPOSE: Manager lifecycle, persistence, backup rotation and failure modes

package storage_test

import (
	"context"
	stderrors "errors"
	iofs "io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arthur-debert/myquest/pkg/backup"
	"github.com/arthur-debert/myquest/pkg/codec"
	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/filesystem"
	"github.com/arthur-debert/myquest/pkg/storage"
	"github.com/arthur-debert/myquest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataPath = "/data/counter/counter.json"

type counter struct {
	Count int      `json:"count" yaml:"count"`
	Tags  []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

func newManager(t *testing.T, fs types.FS, cfg storage.Config) *storage.Manager[counter] {
	t.Helper()
	m, err := storage.New(dataPath, storage.Options[counter]{
		Config:  cfg,
		FS:      fs,
		Default: &counter{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m
}

func decodeFile(t *testing.T, fs types.FS, path string) counter {
	t.Helper()
	raw, err := fs.ReadFile(path)
	require.NoError(t, err)
	var c counter
	require.NoError(t, codec.JSON.Decode(raw, &c))
	return c
}

func increment(t *testing.T, m *storage.Manager[counter]) {
	t.Helper()
	require.NoError(t, m.Write(func(c *counter) { c.Count++ }))
}

func flush(t *testing.T, m *storage.Manager[counter]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Flush(ctx))
}

func TestNewWritesDefaultWhenMissing(t *testing.T) {
	fs := filesystem.NewMemory()
	m := newManager(t, fs, storage.DefaultConfig())

	assert.Equal(t, counter{}, decodeFile(t, fs, dataPath))
	assert.Equal(t, dataPath, m.Path())
	assert.Equal(t, "json", m.Codec().Name())
}

func TestNewWithoutCreateDirsKeepsDefaultInMemoryOnly(t *testing.T) {
	fs := filesystem.NewMemory()
	cfg := storage.DefaultConfig()
	cfg.CreateDirs = false

	m, err := storage.New(dataPath, storage.Options[counter]{
		Config:  cfg,
		FS:      fs,
		Default: &counter{Count: 7},
	})
	require.NoError(t, err)
	defer m.Close(context.Background())

	_, err = fs.Stat(dataPath)
	assert.Error(t, err)

	got, err := storage.Read(m, func(c *counter) int { return c.Count })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestNewLoadsExistingFile(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll(filepath.Dir(dataPath), 0755))
	require.NoError(t, fs.WriteFile(dataPath, []byte(`{"count": 41}`), 0644))

	m := newManager(t, fs, storage.DefaultConfig())

	got, err := storage.Read(m, func(c *counter) int { return c.Count })
	require.NoError(t, err)
	assert.Equal(t, 41, got)
}

func TestNewFallsBackToDefaultOnCorruptFile(t *testing.T) {
	for name, content := range map[string]string{
		"malformed": `{"count": `,
		"empty":     "   \n",
	} {
		t.Run(name, func(t *testing.T) {
			fs := filesystem.NewMemory()
			require.NoError(t, fs.MkdirAll(filepath.Dir(dataPath), 0755))
			require.NoError(t, fs.WriteFile(dataPath, []byte(content), 0644))

			m := newManager(t, fs, storage.DefaultConfig())

			data, err := m.Data()
			require.NoError(t, err)
			assert.Equal(t, counter{}, data)

			// the damaged file is left for the user to inspect
			raw, err := fs.ReadFile(dataPath)
			require.NoError(t, err)
			assert.Equal(t, content, string(raw))
		})
	}
}

func TestNewRejectsUnknownExtension(t *testing.T) {
	cfg := storage.DefaultConfig()
	cfg.Extension = "xml"

	_, err := storage.New(dataPath, storage.Options[counter]{Config: cfg, FS: filesystem.NewMemory()})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestNewFailsWhenDirectoryCannotBeCreated(t *testing.T) {
	fs := &faultyFS{FS: filesystem.NewMemory()}
	fs.failMkdir.Store(true)

	_, err := storage.New(dataPath, storage.Options[counter]{Config: storage.DefaultConfig(), FS: fs})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInit))
}

func TestWriteIsVisibleImmediately(t *testing.T) {
	m := newManager(t, filesystem.NewMemory(), storage.DefaultConfig())

	increment(t, m)

	got, err := storage.Read(m, func(c *counter) int { return c.Count })
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestGenericWriteReturnsClosureResult(t *testing.T) {
	m := newManager(t, filesystem.NewMemory(), storage.DefaultConfig())

	n, err := storage.Write(m, func(c *counter) int {
		c.Tags = append(c.Tags, "a", "b")
		return len(c.Tags)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestFlushPersistsLatestValue(t *testing.T) {
	fs := filesystem.NewMemory()
	m := newManager(t, fs, storage.DefaultConfig())

	for i := 0; i < 3; i++ {
		increment(t, m)
	}
	flush(t, m)

	assert.Equal(t, 3, decodeFile(t, fs, dataPath).Count)
	status := m.Status()
	assert.Equal(t, uint64(3), status.Revision)
	assert.Equal(t, uint64(3), status.Persisted)
	assert.False(t, status.Dirty())
	assert.NoError(t, status.LastError)
}

func TestBackgroundSaverEventuallyPersists(t *testing.T) {
	fs := filesystem.NewMemory()
	m := newManager(t, fs, storage.DefaultConfig())

	increment(t, m)

	assert.Eventually(t, func() bool {
		return !m.Status().Dirty()
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, decodeFile(t, fs, dataPath).Count)
}

func TestBackupsRotateOnEachSave(t *testing.T) {
	fs := filesystem.NewMemory()
	cfg := storage.DefaultConfig()
	cfg.MaxBackups = 2
	m := newManager(t, fs, cfg)

	for i := 0; i < 3; i++ {
		increment(t, m)
		flush(t, m)
	}

	assert.Equal(t, 3, decodeFile(t, fs, dataPath).Count)
	assert.Equal(t, 2, decodeFile(t, fs, backup.SlotPath(dataPath, 1)).Count)
	assert.Equal(t, 1, decodeFile(t, fs, backup.SlotPath(dataPath, 2)).Count)
	_, err := fs.Stat(backup.SlotPath(dataPath, 3))
	assert.Error(t, err)
}

func TestNoBackupsWhenDisabled(t *testing.T) {
	fs := filesystem.NewMemory()
	cfg := storage.DefaultConfig()
	cfg.BackupOnSave = false
	m := newManager(t, fs, cfg)

	increment(t, m)
	flush(t, m)

	slots, err := backup.List(fs, dataPath)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestForceSaveWritesEvenWhenClean(t *testing.T) {
	fs := filesystem.NewMemory()
	m := newManager(t, fs, storage.DefaultConfig())

	require.NoError(t, m.ForceSave())

	// the default written at construction was rotated into slot 1
	assert.Equal(t, 0, decodeFile(t, fs, backup.SlotPath(dataPath, 1)).Count)
	assert.Equal(t, 0, decodeFile(t, fs, dataPath).Count)
}

func TestDataReturnsIndependentCopy(t *testing.T) {
	m := newManager(t, filesystem.NewMemory(), storage.DefaultConfig())
	require.NoError(t, m.Write(func(c *counter) { c.Tags = []string{"original"} }))

	snapshot, err := m.Data()
	require.NoError(t, err)
	snapshot.Tags[0] = "changed"
	snapshot.Count = 99

	current, err := m.Data()
	require.NoError(t, err)
	assert.Equal(t, []string{"original"}, current.Tags)
	assert.Equal(t, 0, current.Count)
}

func TestReload(t *testing.T) {
	t.Run("picks up external edits", func(t *testing.T) {
		fs := filesystem.NewMemory()
		m := newManager(t, fs, storage.DefaultConfig())

		require.NoError(t, fs.WriteFile(dataPath, []byte(`{"count": 12}`), 0644))
		require.NoError(t, m.Reload())

		got, err := storage.Read(m, func(c *counter) int { return c.Count })
		require.NoError(t, err)
		assert.Equal(t, 12, got)
		assert.False(t, m.Status().Dirty())
	})

	t.Run("malformed content leaves memory untouched", func(t *testing.T) {
		fs := filesystem.NewMemory()
		m := newManager(t, fs, storage.DefaultConfig())
		increment(t, m)
		flush(t, m)

		require.NoError(t, fs.WriteFile(dataPath, []byte(`not json`), 0644))
		err := m.Reload()
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrDecode))

		got, err := storage.Read(m, func(c *counter) int { return c.Count })
		require.NoError(t, err)
		assert.Equal(t, 1, got)
	})

	t.Run("missing file is an IO error", func(t *testing.T) {
		fs := filesystem.NewMemory()
		m := newManager(t, fs, storage.DefaultConfig())

		require.NoError(t, fs.Remove(dataPath))
		err := m.Reload()
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrIO))
	})
}

func TestFailedSaveKeepsMemoryAndReportsError(t *testing.T) {
	fs := &faultyFS{FS: filesystem.NewMemory()}
	m := newManager(t, fs, storage.DefaultConfig())

	fs.failWrite.Store(true)
	increment(t, m)

	err := m.Flush(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrIO))

	status := m.Status()
	assert.True(t, status.Dirty())
	assert.Error(t, status.LastError)

	got, err := storage.Read(m, func(c *counter) int { return c.Count })
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	// the next save succeeds once the disk recovers
	fs.failWrite.Store(false)
	flush(t, m)
	assert.False(t, m.Status().Dirty())
	assert.NoError(t, m.Status().LastError)
	assert.Equal(t, 1, decodeFile(t, fs, dataPath).Count)
}

func TestPanicPoisonsManager(t *testing.T) {
	m := newManager(t, filesystem.NewMemory(), storage.DefaultConfig())

	err := m.Write(func(c *counter) { panic("boom") })
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLock))

	err = m.Read(func(c *counter) {})
	assert.True(t, errors.IsErrorCode(err, errors.ErrLock))
	assert.True(t, m.Status().Poisoned)
	assert.Equal(t, uint64(0), m.Status().Revision)
}

func TestCloseFlushesAndRejectsFurtherWork(t *testing.T) {
	fs := filesystem.NewMemory()
	m, err := storage.New(dataPath, storage.Options[counter]{Config: storage.DefaultConfig(), FS: fs})
	require.NoError(t, err)

	increment(t, m)
	require.NoError(t, m.Close(context.Background()))
	assert.Equal(t, 1, decodeFile(t, fs, dataPath).Count)

	err = m.Write(func(c *counter) { c.Count++ })
	assert.True(t, errors.IsErrorCode(err, errors.ErrClosed))
	_, err = m.Data()
	assert.True(t, errors.IsErrorCode(err, errors.ErrClosed))
	assert.True(t, m.Status().Closed)

	// closing twice is harmless
	assert.NoError(t, m.Close(context.Background()))
}

func TestCloseRetriesFlushAfterTimeout(t *testing.T) {
	fs := &gateFS{FS: filesystem.NewMemory(), entered: make(chan struct{}), release: make(chan struct{})}
	m, err := storage.New(dataPath, storage.Options[counter]{Config: storage.DefaultConfig(), FS: fs})
	require.NoError(t, err)

	// hold the background save inside WriteFile while a second change queues up
	fs.armed.Store(true)
	increment(t, m)
	<-fs.entered
	increment(t, m)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Close(ctx), context.DeadlineExceeded)

	close(fs.release)
	require.NoError(t, m.Close(context.Background()))
	assert.Equal(t, 2, decodeFile(t, fs, dataPath).Count)
	assert.False(t, m.Status().Dirty())
}

func TestModifyWithoutChangeSkipsSave(t *testing.T) {
	fs := filesystem.NewMemory()
	m := newManager(t, fs, storage.DefaultConfig())
	increment(t, m)
	flush(t, m)
	before, err := m.Backups()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		changed, err := m.Modify(func(c *counter) bool { return false })
		require.NoError(t, err)
		assert.False(t, changed)
	}
	flush(t, m)

	after, err := m.Backups()
	require.NoError(t, err)
	assert.Len(t, after, len(before))
	assert.Equal(t, uint64(1), m.Status().Revision)

	changed, err := m.Modify(func(c *counter) bool {
		c.Count = 5
		return true
	})
	require.NoError(t, err)
	assert.True(t, changed)
	flush(t, m)
	assert.Equal(t, 5, decodeFile(t, fs, dataPath).Count)
	assert.Equal(t, uint64(2), m.Status().Persisted)
}

func TestConcurrentWritesAreNotLost(t *testing.T) {
	fs := filesystem.NewMemory()
	m := newManager(t, fs, storage.DefaultConfig())

	const writers = 20
	const perWriter = 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				assert.NoError(t, m.Write(func(c *counter) { c.Count++ }))
			}
		}()
	}
	wg.Wait()
	flush(t, m)

	assert.Equal(t, writers*perWriter, decodeFile(t, fs, dataPath).Count)
	assert.Equal(t, uint64(writers*perWriter), m.Status().Persisted)
}

func TestExtensionSelectsCodec(t *testing.T) {
	fs := filesystem.NewMemory()
	cfg := storage.DefaultConfig()
	cfg.Extension = "yaml"
	path := "/data/timelines/default.yaml"

	m, err := storage.New(path, storage.Options[counter]{Config: cfg, FS: fs, Default: &counter{Count: 2}})
	require.NoError(t, err)
	defer m.Close(context.Background())

	raw, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "count: 2\n", string(raw))
}

// faultyFS injects failures into an otherwise working filesystem
type faultyFS struct {
	types.FS
	failWrite atomic.Bool
	failMkdir atomic.Bool
}

func (f *faultyFS) WriteFile(name string, data []byte, perm iofs.FileMode) error {
	if f.failWrite.Load() && !strings.Contains(filepath.Base(name), ".backup") {
		return stderrors.New("disk full")
	}
	return f.FS.WriteFile(name, data, perm)
}

func (f *faultyFS) MkdirAll(path string, perm iofs.FileMode) error {
	if f.failMkdir.Load() {
		return stderrors.New("permission denied")
	}
	return f.FS.MkdirAll(path, perm)
}

// gateFS blocks the first armed write of the primary file until released
type gateFS struct {
	types.FS
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (g *gateFS) WriteFile(name string, data []byte, perm iofs.FileMode) error {
	if !strings.Contains(filepath.Base(name), ".backup") && g.armed.CompareAndSwap(true, false) {
		close(g.entered)
		<-g.release
	}
	return g.FS.WriteFile(name, data, perm)
}

func TestRestoreBringsBackOlderVersion(t *testing.T) {
	fs := filesystem.NewMemory()
	m := newManager(t, fs, storage.DefaultConfig())

	for i := 0; i < 3; i++ {
		increment(t, m)
		flush(t, m)
	}

	slots, err := m.Backups()
	require.NoError(t, err)
	require.Len(t, slots, 3)

	require.NoError(t, m.Restore(2))

	got, err := storage.Read(m, func(c *counter) int { return c.Count })
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, 1, decodeFile(t, fs, dataPath).Count)
	assert.False(t, m.Status().Dirty())

	err = m.Restore(9)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}
