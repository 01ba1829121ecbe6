package habits

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/logging"
	"github.com/arthur-debert/myquest/pkg/storage"
	"github.com/arthur-debert/myquest/pkg/types"
	"github.com/arthur-debert/myquest/pkg/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Manager translates habit operations into storage reads and writes
type Manager struct {
	store  *storage.Manager[Store]
	logger zerolog.Logger
}

// New opens the habits document at path. A nil fs uses the OS filesystem.
func New(path string, cfg storage.Config, fs types.FS) (*Manager, error) {
	store, err := storage.New(path, storage.Options[Store]{
		Config:  cfg,
		FS:      fs,
		Default: &Store{Habits: map[uuid.UUID]Habit{}},
	})
	if err != nil {
		return nil, err
	}
	m := &Manager{
		store:  store,
		logger: logging.GetLogger("habits.Manager"),
	}
	if err := m.tidy(); err != nil {
		_ = store.Close(context.Background())
		return nil, err
	}
	return m, nil
}

// tidy sorts and dedupes completed days of habits loaded from disk, which
// may have been edited by hand.
func (m *Manager) tidy() error {
	changed, err := m.store.Modify(func(s *Store) bool {
		changed := false
		for id, h := range s.Habits {
			days := sortDays(h.CompletedDays)
			if !slices.Equal(days, h.CompletedDays) {
				h.CompletedDays = days
				s.Habits[id] = h
				changed = true
			}
		}
		return changed
	})
	if changed {
		m.logger.Info().Msg("Sorted completed days of loaded habits")
	}
	return err
}

// Storage exposes the underlying document for status and maintenance
func (m *Manager) Storage() *storage.Manager[Store] {
	return m.store
}

func notFound(id uuid.UUID) error {
	return errors.New(errors.ErrNotFound, "habit not found").WithDetail("id", id.String())
}

// normalize validates user supplied fields
func normalize(h Habit) (Habit, error) {
	h.Title = strings.TrimSpace(h.Title)
	if h.Title == "" {
		return h, errors.New(errors.ErrInvalidInput, "habit title must not be empty")
	}
	color, err := utils.NormalizeColor(h.Color)
	if err != nil {
		return h, err
	}
	h.Color = color
	if h.StartDate.IsZero() {
		h.StartDate = Today()
	}
	h.CompletedDays = sortDays(h.CompletedDays)
	return h, nil
}

// List returns all habits ordered by title
func (m *Manager) List() ([]Entry, error) {
	m.logger.Debug().Msg("Getting all habits")
	entries, err := storage.Read(m.store, func(s *Store) []Entry {
		out := make([]Entry, 0, len(s.Habits))
		for id, h := range s.Habits {
			h.CompletedDays = append([]Date{}, h.CompletedDays...)
			out = append(out, Entry{ID: id, Habit: h})
		}
		return out
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := strings.ToLower(entries[i].Title), strings.ToLower(entries[j].Title)
		if a != b {
			return a < b
		}
		return entries[i].ID.String() < entries[j].ID.String()
	})
	return entries, nil
}

// Get returns one habit
func (m *Manager) Get(id uuid.UUID) (Habit, error) {
	m.logger.Debug().Str("id", id.String()).Msg("Getting habit")
	var (
		h  Habit
		ok bool
	)
	err := m.store.Read(func(s *Store) {
		h, ok = s.Habits[id]
		h.CompletedDays = append([]Date{}, h.CompletedDays...)
	})
	if err != nil {
		return Habit{}, err
	}
	if !ok {
		return Habit{}, notFound(id)
	}
	return h, nil
}

// Create stores a new habit and returns its ID
func (m *Manager) Create(h Habit) (uuid.UUID, error) {
	h, err := normalize(h)
	if err != nil {
		return uuid.Nil, err
	}
	id := uuid.New()
	m.logger.Debug().Str("id", id.String()).Str("title", h.Title).Msg("Creating habit")
	err = m.store.Write(func(s *Store) {
		if s.Habits == nil {
			s.Habits = map[uuid.UUID]Habit{}
		}
		s.Habits[id] = h
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Update replaces an existing habit
func (m *Manager) Update(id uuid.UUID, h Habit) error {
	h, err := normalize(h)
	if err != nil {
		return err
	}
	m.logger.Debug().Str("id", id.String()).Msg("Updating habit")
	found, err := m.store.Modify(func(s *Store) bool {
		if _, ok := s.Habits[id]; !ok {
			return false
		}
		s.Habits[id] = h
		return true
	})
	if err != nil {
		return err
	}
	if !found {
		return notFound(id)
	}
	return nil
}

// Delete removes a habit
func (m *Manager) Delete(id uuid.UUID) error {
	m.logger.Debug().Str("id", id.String()).Msg("Deleting habit")
	found, err := m.store.Modify(func(s *Store) bool {
		if _, ok := s.Habits[id]; !ok {
			return false
		}
		delete(s.Habits, id)
		return true
	})
	if err != nil {
		return err
	}
	if !found {
		return notFound(id)
	}
	return nil
}

// MarkDay records date as completed. Marking a day twice is a no-op.
func (m *Manager) MarkDay(id uuid.UUID, date Date) error {
	m.logger.Debug().Str("id", id.String()).Stringer("date", date).Msg("Marking day")
	return m.modify(id, func(h *Habit) {
		h.CompletedDays = insertDay(h.CompletedDays, date)
	})
}

// UnmarkDay removes date from the completed days
func (m *Manager) UnmarkDay(id uuid.UUID, date Date) error {
	m.logger.Debug().Str("id", id.String()).Stringer("date", date).Msg("Unmarking day")
	return m.modify(id, func(h *Habit) {
		days := h.CompletedDays[:0]
		for _, d := range h.CompletedDays {
			if d != date {
				days = append(days, d)
			}
		}
		h.CompletedDays = days
	})
}

func (m *Manager) modify(id uuid.UUID, fn func(h *Habit)) error {
	found, err := m.store.Modify(func(s *Store) bool {
		h, ok := s.Habits[id]
		if !ok {
			return false
		}
		fn(&h)
		s.Habits[id] = h
		return true
	})
	if err != nil {
		return err
	}
	if !found {
		return notFound(id)
	}
	return nil
}

// Streak counts consecutive completed days ending today, or yesterday
// when today is not done yet.
func (m *Manager) Streak(id uuid.UUID, today Date) (int, error) {
	h, err := m.Get(id)
	if err != nil {
		return 0, err
	}
	day := today
	if !h.Completed(day) {
		day = day.AddDays(-1)
	}
	streak := 0
	for h.Completed(day) {
		streak++
		day = day.AddDays(-1)
	}
	return streak, nil
}

// ForceSave writes the document synchronously
func (m *Manager) ForceSave() error {
	return m.store.ForceSave()
}

// Reload re-reads the document from disk
func (m *Manager) Reload() error {
	if err := m.store.Reload(); err != nil {
		return err
	}
	return m.tidy()
}

// Close flushes pending changes and releases the document
func (m *Manager) Close(ctx context.Context) error {
	return m.store.Close(ctx)
}

// insertDay adds d keeping days sorted and unique. An unsorted slice still
// never gains a duplicate.
func insertDay(days []Date, d Date) []Date {
	if slices.Contains(days, d) {
		return days
	}
	i := sort.Search(len(days), func(i int) bool { return !days[i].Before(d) })
	days = append(days, Date{})
	copy(days[i+1:], days[i:])
	days[i] = d
	return days
}

// sortDays returns days sorted with duplicates removed
func sortDays(days []Date) []Date {
	out := make([]Date, 0, len(days))
	for _, d := range days {
		out = insertDay(out, d)
	}
	return out
}
