package timeline

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/filesystem"
	"github.com/arthur-debert/myquest/pkg/logging"
	"github.com/arthur-debert/myquest/pkg/storage"
	"github.com/arthur-debert/myquest/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Locator resolves timeline names to files
type Locator interface {
	TimelinesDir() string
	TimelineFile(name, ext string) (string, error)
}

// Manager owns the active timeline document
type Manager struct {
	locator Locator
	cfg     storage.Config
	fs      types.FS
	logger  zerolog.Logger

	mu           sync.RWMutex
	name         string
	store        *storage.Manager[Document]
	lastModified time.Time
}

// New opens the named timeline. A nil fs uses the OS filesystem and an
// empty cfg.Extension means YAML.
func New(locator Locator, cfg storage.Config, fs types.FS, name string) (*Manager, error) {
	if cfg.Extension == "" {
		cfg.Extension = "yaml"
	}
	if fs == nil {
		fs = filesystem.NewOS()
	}
	m := &Manager{
		locator: locator,
		cfg:     cfg,
		fs:      fs,
		logger:  logging.GetLogger("timeline.Manager"),
	}
	m.logger.Debug().Str("name", name).Msg("Initializing timeline manager")

	store, modified, err := m.open(name)
	if err != nil {
		return nil, err
	}
	m.name = name
	m.store = store
	m.lastModified = modified
	return m, nil
}

// open builds a storage manager for name, seeding new files from the
// default timeline and assigning IDs missing from hand-edited files.
func (m *Manager) open(name string) (*storage.Manager[Document], time.Time, error) {
	path, err := m.locator.TimelineFile(name, m.cfg.Extension)
	if err != nil {
		return nil, time.Time{}, err
	}
	def, err := DefaultDocument(name)
	if err != nil {
		return nil, time.Time{}, err
	}

	store, err := storage.New(path, storage.Options[Document]{Config: m.cfg, FS: m.fs, Default: def})
	if err != nil {
		return nil, time.Time{}, err
	}

	missing, err := storage.Read(store, missingIDs)
	if err != nil {
		return nil, time.Time{}, err
	}
	if missing {
		m.logger.Debug().Str("name", name).Msg("Assigning missing IDs")
		if err := store.Write(func(d *Document) { assignIDs(d) }); err != nil {
			return nil, time.Time{}, err
		}
	}

	return store, m.modTime(path), nil
}

func (m *Manager) modTime(path string) time.Time {
	info, err := m.fs.Stat(path)
	if err != nil {
		return time.Now()
	}
	return info.ModTime()
}

func (m *Manager) current() *storage.Manager[Document] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store
}

// Storage exposes the active document for status and maintenance
func (m *Manager) Storage() *storage.Manager[Document] {
	return m.current()
}

// CurrentName returns the name of the active timeline
func (m *Manager) CurrentName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name
}

// Current returns a copy of the active timeline
func (m *Manager) Current() (Document, error) {
	return m.current().Data()
}

// Available lists the timelines stored on disk, sorted by name. The
// active timeline is always included.
func (m *Manager) Available() ([]string, error) {
	dir := m.locator.TimelinesDir()
	entries, err := m.fs.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, errors.ErrIO, "failed to list timelines").WithDetail("dir", dir)
	}

	seen := map[string]bool{m.CurrentName(): true}
	names := []string{m.CurrentName()}
	suffix := "." + m.cfg.Extension
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), suffix)
		if strings.HasPrefix(name, ".") || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Select makes name the active timeline, creating it from the default
// template if needed. Pending changes of the previous timeline are
// flushed first.
func (m *Manager) Select(ctx context.Context, name string) (Document, error) {
	m.logger.Debug().Str("name", name).Msg("Switching timeline")
	if err := m.current().Flush(ctx); err != nil {
		return Document{}, err
	}
	store, modified, err := m.open(name)
	if err != nil {
		return Document{}, err
	}

	m.mu.Lock()
	previous := m.store
	m.name = name
	m.store = store
	m.lastModified = modified
	m.mu.Unlock()

	if previous != nil {
		if err := previous.Close(ctx); err != nil && !errors.IsErrorCode(err, errors.ErrClosed) {
			m.logger.Error().Err(err).Str("path", previous.Path()).Msg("Failed to close previous timeline")
		}
	}
	return store.Data()
}

// CheckForFileChanges reloads the active timeline when its file was
// modified since the last check. It returns the new document and true
// when a reload happened. Files with unsaved local changes are left alone.
func (m *Manager) CheckForFileChanges() (Document, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := m.store.Path()
	info, err := m.fs.Stat(path)
	if err != nil {
		return Document{}, false, nil
	}
	if !info.ModTime().After(m.lastModified) {
		return Document{}, false, nil
	}
	if m.store.Status().Dirty() {
		m.logger.Debug().Str("path", path).Msg("File changed but local changes are pending, skipping reload")
		return Document{}, false, nil
	}

	m.logger.Debug().Str("name", m.name).Msg("File change detected for timeline")
	if err := m.store.Reload(); err != nil {
		return Document{}, false, err
	}
	m.lastModified = info.ModTime()

	if missing, err := storage.Read(m.store, missingIDs); err == nil && missing {
		if err := m.store.Write(func(d *Document) { assignIDs(d) }); err != nil {
			return Document{}, false, err
		}
	}
	doc, err := m.store.Data()
	if err != nil {
		return Document{}, false, err
	}
	return doc, true, nil
}

// Replace swaps the whole active document after validating it
func (m *Manager) Replace(doc Document) error {
	if err := Validate(&doc); err != nil {
		return err
	}
	assignIDs(&doc)
	m.logger.Debug().Str("name", m.CurrentName()).Msg("Updating timeline")
	return m.current().Write(func(d *Document) { *d = doc })
}

func periodNotFound(id uuid.UUID) error {
	return errors.New(errors.ErrNotFound, "period not found").WithDetail("id", id.String())
}

func eventNotFound(id uuid.UUID) error {
	return errors.New(errors.ErrNotFound, "event not found").WithDetail("id", id.String())
}

func findPeriod(d *Document, id uuid.UUID) *Period {
	for i := range d.LifePeriods {
		if sameID(d.LifePeriods[i].ID, id) {
			return &d.LifePeriods[i]
		}
	}
	return nil
}

// AddPeriod inserts a period and returns its ID
func (m *Manager) AddPeriod(p Period) (uuid.UUID, error) {
	if err := validatePeriod(&p); err != nil {
		return uuid.Nil, err
	}
	if p.ID == nil {
		p.ID = newID()
	}
	assignEventIDs(p.Events)
	m.logger.Debug().Str("period", p.Name).Msg("Adding life period")
	err := m.current().Write(func(d *Document) {
		d.LifePeriods = append(d.LifePeriods, p)
		sortPeriods(d.LifePeriods)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return *p.ID, nil
}

// UpdatePeriod replaces the period with the same ID
func (m *Manager) UpdatePeriod(p Period) error {
	if p.ID == nil {
		return errors.New(errors.ErrInvalidInput, "period ID is required")
	}
	if err := validatePeriod(&p); err != nil {
		return err
	}
	assignEventIDs(p.Events)
	m.logger.Debug().Str("period", p.Name).Msg("Updating life period")
	found, err := m.current().Modify(func(d *Document) bool {
		existing := findPeriod(d, *p.ID)
		if existing == nil {
			return false
		}
		*existing = p
		sortPeriods(d.LifePeriods)
		return true
	})
	if err != nil {
		return err
	}
	if !found {
		return periodNotFound(*p.ID)
	}
	return nil
}

// DeletePeriod removes a period and its events
func (m *Manager) DeletePeriod(id uuid.UUID) error {
	m.logger.Debug().Str("id", id.String()).Msg("Deleting life period")
	found, err := m.current().Modify(func(d *Document) bool {
		for i := range d.LifePeriods {
			if sameID(d.LifePeriods[i].ID, id) {
				d.LifePeriods = append(d.LifePeriods[:i], d.LifePeriods[i+1:]...)
				return true
			}
		}
		return false
	})
	if err != nil {
		return err
	}
	if !found {
		return periodNotFound(id)
	}
	return nil
}

// AddEvent inserts an event into a period and returns its ID
func (m *Manager) AddEvent(periodID uuid.UUID, e Event) (uuid.UUID, error) {
	if err := validateEvent(&e); err != nil {
		return uuid.Nil, err
	}
	if e.ID == nil {
		e.ID = newID()
	}
	m.logger.Debug().Str("period", periodID.String()).Str("event", e.Name).Msg("Adding event")
	found, err := m.current().Modify(func(d *Document) bool {
		p := findPeriod(d, periodID)
		if p == nil {
			return false
		}
		p.Events = append(p.Events, e)
		sortEvents(p.Events)
		return true
	})
	if err != nil {
		return uuid.Nil, err
	}
	if !found {
		return uuid.Nil, periodNotFound(periodID)
	}
	return *e.ID, nil
}

// UpdateEvent replaces the event with the same ID inside a period
func (m *Manager) UpdateEvent(periodID uuid.UUID, e Event) error {
	if e.ID == nil {
		return errors.New(errors.ErrInvalidInput, "event ID is required")
	}
	if err := validateEvent(&e); err != nil {
		return err
	}
	m.logger.Debug().Str("period", periodID.String()).Str("event", e.ID.String()).Msg("Updating event")
	var missing error
	_, err := m.current().Modify(func(d *Document) bool {
		p := findPeriod(d, periodID)
		if p == nil {
			missing = periodNotFound(periodID)
			return false
		}
		for i := range p.Events {
			if sameID(p.Events[i].ID, *e.ID) {
				p.Events[i] = e
				sortEvents(p.Events)
				return true
			}
		}
		missing = eventNotFound(*e.ID)
		return false
	})
	if err != nil {
		return err
	}
	return missing
}

// DeleteEvent removes an event from a period
func (m *Manager) DeleteEvent(periodID, eventID uuid.UUID) error {
	m.logger.Debug().Str("period", periodID.String()).Str("event", eventID.String()).Msg("Deleting event")
	var missing error
	_, err := m.current().Modify(func(d *Document) bool {
		p := findPeriod(d, periodID)
		if p == nil {
			missing = periodNotFound(periodID)
			return false
		}
		for i := range p.Events {
			if sameID(p.Events[i].ID, eventID) {
				p.Events = append(p.Events[:i], p.Events[i+1:]...)
				return true
			}
		}
		missing = eventNotFound(eventID)
		return false
	})
	if err != nil {
		return err
	}
	return missing
}

// PeriodEvents returns the events of one period ordered by start
func (m *Manager) PeriodEvents(periodID uuid.UUID) ([]Event, error) {
	var (
		events []Event
		found  bool
	)
	err := m.current().Read(func(d *Document) {
		if p := findPeriod(d, periodID); p != nil {
			found = true
			events = append([]Event{}, p.Events...)
		}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, periodNotFound(periodID)
	}
	return events, nil
}

// ForceSave writes the active document synchronously
func (m *Manager) ForceSave() error {
	return m.current().ForceSave()
}

// Reload re-reads the active document from disk
func (m *Manager) Reload() error {
	s := m.current()
	if err := s.Reload(); err != nil {
		return err
	}
	m.mu.Lock()
	m.lastModified = m.modTime(s.Path())
	m.mu.Unlock()
	return nil
}

// Close flushes and releases the active document
func (m *Manager) Close(ctx context.Context) error {
	return m.current().Close(ctx)
}

// Path returns the file of the active timeline
func (m *Manager) Path() string {
	return m.current().Path()
}

func assignEventIDs(events []Event) {
	for i := range events {
		if events[i].ID == nil {
			events[i].ID = newID()
		}
	}
}
