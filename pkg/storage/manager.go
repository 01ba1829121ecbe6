package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arthur-debert/myquest/pkg/backup"
	"github.com/arthur-debert/myquest/pkg/codec"
	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/filesystem"
	"github.com/arthur-debert/myquest/pkg/logging"
	"github.com/arthur-debert/myquest/pkg/types"
	"github.com/rs/zerolog"
)

const filePerm = 0644

// Options configures a Manager. Zero values pick sensible defaults.
type Options[T any] struct {
	Config Config
	// Codec overrides the format chosen from Config.Extension or the path.
	Codec codec.Codec
	// FS defaults to the OS filesystem.
	FS types.FS
	// Default is used when the file is missing or cannot be decoded. A nil
	// Default means the zero value of T.
	Default *T
}

// Status is a point-in-time view of a Manager's persistence state
type Status struct {
	Path      string
	Format    string
	Revision  uint64
	Persisted uint64
	LastSave  time.Time
	LastError error
	Closed    bool
	Poisoned  bool
}

// Dirty reports whether in-memory changes have not reached the disk yet
func (s Status) Dirty() bool {
	return s.Revision > s.Persisted
}

// Manager is the single point of truth for one persisted document.
type Manager[T any] struct {
	path   string
	config Config
	codec  codec.Codec
	fs     types.FS
	logger zerolog.Logger

	mu       sync.RWMutex
	data     T
	revision uint64

	// saveMu serializes everything that touches the file
	saveMu sync.Mutex

	statusMu  sync.Mutex
	persisted uint64
	lastSave  time.Time
	lastErr   error

	poisoned atomic.Bool
	closed   atomic.Bool

	signal    chan struct{}
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New opens the document at path, creating it from the default when it
// does not exist and Config.CreateDirs is set.
func New[T any](path string, opts Options[T]) (*Manager[T], error) {
	logger := logging.GetLogger("storage.Manager").With().Str("path", path).Logger()
	logger.Debug().Msg("Initializing storage manager")

	if path == "" {
		return nil, errors.New(errors.ErrInit, "storage path is empty")
	}

	c, err := resolveCodec(path, opts)
	if err != nil {
		return nil, err
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	if opts.Config.CreateDirs {
		if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrap(err, errors.ErrInit, "failed to create directory structure").
				WithDetail("path", path)
		}
	}

	m := &Manager[T]{
		path:    path,
		config:  opts.Config,
		codec:   c,
		fs:      fsys,
		logger:  logger,
		signal:  make(chan struct{}, 1),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}

	if err := m.load(opts.Default); err != nil {
		return nil, err
	}

	go m.run()
	return m, nil
}

// NewJSON opens a JSON document
func NewJSON[T any](path string, cfg Config, def *T) (*Manager[T], error) {
	return New(path, Options[T]{Config: cfg, Codec: codec.JSON, Default: def})
}

// NewYAML opens a YAML document
func NewYAML[T any](path string, cfg Config, def *T) (*Manager[T], error) {
	return New(path, Options[T]{Config: cfg, Codec: codec.YAML, Default: def})
}

func resolveCodec[T any](path string, opts Options[T]) (codec.Codec, error) {
	if opts.Codec != nil {
		return opts.Codec, nil
	}
	if opts.Config.Extension != "" {
		return codec.ByName(opts.Config.Extension)
	}
	return codec.ForPath(path)
}

func (m *Manager[T]) defaultValue(def *T) (T, error) {
	if def == nil {
		var zero T
		return zero, nil
	}
	return clone(def)
}

// load runs once, before the saver starts, so it needs no locking
func (m *Manager[T]) load(def *T) error {
	_, err := m.fs.Stat(m.path)
	switch {
	case err == nil:
		m.logger.Debug().Msg("Loading existing data file")
		content, err := m.fs.ReadFile(m.path)
		if err != nil {
			return errors.Wrap(err, errors.ErrIO, "failed to read data file").WithDetail("path", m.path)
		}
		data, err := m.decode(content)
		if err != nil {
			m.logger.Error().Err(err).Msg("Failed to parse file, using default data")
			data, err = m.defaultValue(def)
			if err != nil {
				return err
			}
		} else {
			m.logger.Info().Msg("Successfully loaded data from file")
		}
		m.data = data
		return nil

	case os.IsNotExist(err):
		m.logger.Debug().Msg("No existing file found, using default data")
		data, err := m.defaultValue(def)
		if err != nil {
			return err
		}
		m.data = data
		if !m.config.CreateDirs {
			return nil
		}
		content, err := m.codec.Encode(&m.data)
		if err != nil {
			m.logger.Error().Err(err).Msg("Failed to serialize default data")
			return err
		}
		if err := m.fs.WriteFile(m.path, content, filePerm); err != nil {
			m.logger.Error().Err(err).Msg("Failed to write default data to file")
			return errors.Wrap(err, errors.ErrIO, "failed to write default data").WithDetail("path", m.path)
		}
		m.lastSave = time.Now()
		m.logger.Debug().Msg("Successfully wrote default data to file")
		return nil

	default:
		return errors.Wrap(err, errors.ErrIO, "failed to stat data file").WithDetail("path", m.path)
	}
}

func (m *Manager[T]) decode(content []byte) (T, error) {
	var data T
	if len(bytes.TrimSpace(content)) == 0 {
		return data, errors.New(errors.ErrDecode, "data file is empty").WithDetail("path", m.path)
	}
	if err := m.codec.Decode(content, &data); err != nil {
		var zero T
		return zero, err
	}
	return data, nil
}

// Path returns the primary file path
func (m *Manager[T]) Path() string {
	return m.path
}

// Config returns the configuration the Manager was built with
func (m *Manager[T]) Config() Config {
	return m.config
}

// Codec returns the data format in use
func (m *Manager[T]) Codec() codec.Codec {
	return m.codec
}

// FS returns the filesystem the Manager reads and writes through
func (m *Manager[T]) FS() types.FS {
	return m.fs
}

func (m *Manager[T]) usable() error {
	if m.closed.Load() {
		return errors.New(errors.ErrClosed, "storage manager is closed").WithDetail("path", m.path)
	}
	if m.poisoned.Load() {
		return errors.New(errors.ErrLock, "storage manager is poisoned by an earlier panic").WithDetail("path", m.path)
	}
	return nil
}

// guard runs fn and turns a panic into a LOCK error, poisoning the Manager
func (m *Manager[T]) guard(op string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.poisoned.Store(true)
			m.logger.Error().Str("operation", op).Interface("panic", r).Msg("Closure panicked while holding the lock")
			err = errors.Newf(errors.ErrLock, "%s closure panicked: %v", op, r).WithDetail("path", m.path)
		}
	}()
	fn()
	return nil
}

// Read runs fn with shared access to the document. fn must not block or
// retain v.
func (m *Manager[T]) Read(fn func(v *T)) error {
	if err := m.usable(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.guard("read", func() { fn(&m.data) })
}

// Write runs fn with exclusive access to the document and schedules an
// asynchronous save. It returns once the in-memory change is applied.
func (m *Manager[T]) Write(fn func(v *T)) error {
	if err := m.usable(); err != nil {
		return err
	}

	m.mu.Lock()
	err := m.guard("write", func() { fn(&m.data) })
	if err == nil {
		m.revision++
	}
	m.mu.Unlock()

	if err != nil {
		return err
	}
	m.schedule()
	return nil
}

// Modify runs fn with exclusive access to the document. A save is scheduled
// only when fn reports a change; otherwise the revision stays put and no
// backup is rotated.
func (m *Manager[T]) Modify(fn func(v *T) bool) (bool, error) {
	if err := m.usable(); err != nil {
		return false, err
	}

	var changed bool
	m.mu.Lock()
	err := m.guard("write", func() { changed = fn(&m.data) })
	if err == nil && changed {
		m.revision++
	}
	m.mu.Unlock()

	if err != nil || !changed {
		return false, err
	}
	m.schedule()
	return true, nil
}

// Read applies fn to the document under a shared lock and returns its result
func Read[T, R any](m *Manager[T], fn func(v *T) R) (R, error) {
	var out R
	err := m.Read(func(v *T) { out = fn(v) })
	return out, err
}

// Write applies fn to the document under an exclusive lock and returns its
// result. Persistence happens asynchronously, as with Manager.Write.
func Write[T, R any](m *Manager[T], fn func(v *T) R) (R, error) {
	var out R
	err := m.Write(func(v *T) { out = fn(v) })
	return out, err
}

// Data returns a deep copy of the current document
func (m *Manager[T]) Data() (T, error) {
	if err := m.usable(); err != nil {
		var zero T
		return zero, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(&m.data)
}

// ForceSave synchronously rotates backups and writes the current document,
// whether or not it changed since the last save.
func (m *Manager[T]) ForceSave() error {
	if err := m.usable(); err != nil {
		return err
	}
	done := logging.LogOperationStart(m.logger, "force-save")
	defer done()
	return m.persist(true)
}

// Flush writes pending changes, if any, and waits for the write to finish.
func (m *Manager[T]) Flush(ctx context.Context) error {
	if err := m.usable(); err != nil {
		return err
	}
	return m.flush(ctx)
}

func (m *Manager[T]) flush(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- m.persist(false) }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reload replaces the in-memory document with the file's content. On any
// error the in-memory document is left untouched.
func (m *Manager[T]) Reload() error {
	if err := m.usable(); err != nil {
		return err
	}
	done := logging.LogOperationStart(m.logger, "reload")
	defer done()

	m.saveMu.Lock()
	defer m.saveMu.Unlock()
	return m.reloadLocked()
}

// Restore copies backup slot n over the primary file and reloads it.
// Unsaved in-memory changes are discarded.
func (m *Manager[T]) Restore(n int) error {
	if err := m.usable(); err != nil {
		return err
	}
	done := logging.LogOperationStart(m.logger, "restore")
	defer done()

	m.saveMu.Lock()
	defer m.saveMu.Unlock()
	if err := backup.Restore(m.fs, m.path, n); err != nil {
		return err
	}
	return m.reloadLocked()
}

// Backups lists the backup slots currently on disk
func (m *Manager[T]) Backups() ([]backup.Slot, error) {
	return backup.List(m.fs, m.path)
}

// reloadLocked must be called with saveMu held
func (m *Manager[T]) reloadLocked() error {
	content, err := m.fs.ReadFile(m.path)
	if err != nil {
		return errors.Wrap(err, errors.ErrIO, "failed to read data file").WithDetail("path", m.path)
	}
	data, err := m.decode(content)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Reload rejected invalid file content")
		return err
	}

	m.mu.Lock()
	m.data = data
	rev := m.revision
	m.mu.Unlock()

	m.record(rev, nil)
	m.logger.Info().Msg("Reloaded data from disk")
	return nil
}

// Status reports revision counters and the outcome of the last save
func (m *Manager[T]) Status() Status {
	m.mu.RLock()
	rev := m.revision
	m.mu.RUnlock()

	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	return Status{
		Path:      m.path,
		Format:    m.codec.Name(),
		Revision:  rev,
		Persisted: m.persisted,
		LastSave:  m.lastSave,
		LastError: m.lastErr,
		Closed:    m.closed.Load(),
		Poisoned:  m.poisoned.Load(),
	}
}

// Close stops the background saver and flushes pending changes. Later
// operations fail with a CLOSED error. When ctx expires first, the pending
// changes stay in memory and calling Close again retries the flush.
func (m *Manager[T]) Close(ctx context.Context) error {
	m.closeOnce.Do(func() {
		m.closed.Store(true)
		close(m.closing)
	})
	select {
	case <-m.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if m.poisoned.Load() {
		return nil
	}
	return m.flush(ctx)
}

func (m *Manager[T]) schedule() {
	select {
	case m.signal <- struct{}{}:
	default:
		// a save is already pending and will pick up this revision
	}
}

func (m *Manager[T]) run() {
	defer close(m.done)
	for {
		select {
		case <-m.signal:
			if err := m.persist(false); err != nil {
				m.logger.Error().Err(err).Msg("Failed to save data")
			}
		case <-m.closing:
			return
		}
	}
}

// persist snapshots the document and writes it. Unless force is set it
// does nothing when the latest revision is already on disk.
func (m *Manager[T]) persist(force bool) error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.mu.RLock()
	rev := m.revision
	if !force && rev <= m.persistedRevision() {
		m.mu.RUnlock()
		return nil
	}
	snapshot, err := clone(&m.data)
	m.mu.RUnlock()
	if err != nil {
		m.record(0, err)
		return err
	}

	err = m.saveToDisk(&snapshot)
	m.record(rev, err)
	if err == nil {
		m.logger.Debug().Uint64("revision", rev).Msg("Successfully saved data to disk")
	}
	return err
}

func (m *Manager[T]) saveToDisk(v *T) error {
	content, err := m.codec.Encode(v)
	if err != nil {
		return err
	}

	if m.config.BackupOnSave {
		if err := backup.Rotate(m.fs, m.path, m.config.MaxBackups); err != nil {
			return err
		}
	}

	if err := m.fs.WriteFile(m.path, content, filePerm); err != nil {
		return errors.Wrap(err, errors.ErrIO, "failed to write data file").WithDetail("path", m.path)
	}
	return nil
}

func (m *Manager[T]) persistedRevision() uint64 {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	return m.persisted
}

// record stores the outcome of a save; a failed save leaves persisted alone
func (m *Manager[T]) record(rev uint64, err error) {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	m.lastErr = err
	if err != nil {
		return
	}
	if rev > m.persisted {
		m.persisted = rev
	}
	m.lastSave = time.Now()
}
