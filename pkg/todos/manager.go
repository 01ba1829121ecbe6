package todos

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/logging"
	"github.com/arthur-debert/myquest/pkg/storage"
	"github.com/arthur-debert/myquest/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Manager translates todo operations into storage reads and writes
type Manager struct {
	store  *storage.Manager[Store]
	logger zerolog.Logger
	now    func() time.Time
}

// New opens the todos document at path. A nil fs uses the OS filesystem.
func New(path string, cfg storage.Config, fs types.FS) (*Manager, error) {
	store, err := storage.New(path, storage.Options[Store]{
		Config:  cfg,
		FS:      fs,
		Default: emptyStore(),
	})
	if err != nil {
		return nil, err
	}
	return &Manager{
		store:  store,
		logger: logging.GetLogger("todos.Manager"),
		now:    time.Now,
	}, nil
}

// Storage exposes the underlying document for status and maintenance
func (m *Manager) Storage() *storage.Manager[Store] {
	return m.store
}

func notFound(id uuid.UUID) error {
	return errors.New(errors.ErrNotFound, "todo not found").WithDetail("id", id.String())
}

// ByDay returns the todos of one weekday ordered by position
func (m *Manager) ByDay(day string) ([]Todo, error) {
	d, err := ParseDay(day)
	if err != nil {
		return nil, err
	}
	m.logger.Debug().Str("day", d).Msg("Getting todos for day")
	todos, err := storage.Read(m.store, func(s *Store) []Todo {
		return append([]Todo{}, s.bucket(d).Todos...)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(todos, func(i, j int) bool { return todos[i].Position < todos[j].Position })
	return todos, nil
}

// Week returns every bucket keyed by day name
func (m *Manager) Week() (map[string][]Todo, error) {
	week := make(map[string][]Todo, len(Days))
	for _, day := range Days {
		todos, err := m.ByDay(day)
		if err != nil {
			return nil, err
		}
		week[day] = todos
	}
	return week, nil
}

// Create appends a todo to the end of a weekday bucket
func (m *Manager) Create(content, day string) (Todo, error) {
	d, err := ParseDay(day)
	if err != nil {
		return Todo{}, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Todo{}, errors.New(errors.ErrInvalidInput, "todo content must not be empty")
	}

	m.logger.Debug().Str("day", d).Msg("Creating new todo")
	todo := Todo{
		ID:        uuid.New(),
		Content:   content,
		Day:       d,
		CreatedAt: m.now().UTC().Truncate(time.Second),
	}
	return storage.Write(m.store, func(s *Store) Todo {
		b := s.bucket(d)
		todo.Position = len(b.Todos) + 1
		b.Todos = append(b.Todos, todo)
		return todo
	})
}

// Delete removes a todo and renumbers its bucket
func (m *Manager) Delete(id uuid.UUID) error {
	m.logger.Debug().Str("id", id.String()).Msg("Deleting todo")
	found, err := m.store.Modify(func(s *Store) bool {
		b, i := s.find(id)
		if b == nil {
			return false
		}
		b.Todos = append(b.Todos[:i], b.Todos[i+1:]...)
		b.renumber()
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

// UpdatePositions assigns new positions to todos of one day. IDs that are
// not in that day are ignored.
func (m *Manager) UpdatePositions(day string, positions map[uuid.UUID]int) error {
	d, err := ParseDay(day)
	if err != nil {
		return err
	}
	m.logger.Debug().Str("day", d).Int("count", len(positions)).Msg("Updating positions")
	return m.store.Write(func(s *Store) {
		b := s.bucket(d)
		for i := range b.Todos {
			if pos, ok := positions[b.Todos[i].ID]; ok {
				b.Todos[i].Position = pos
			}
		}
	})
}

// Move takes a todo out of its bucket and appends it to newDay
func (m *Manager) Move(id uuid.UUID, newDay string) error {
	d, err := ParseDay(newDay)
	if err != nil {
		return err
	}
	m.logger.Debug().Str("id", id.String()).Str("day", d).Msg("Moving todo")
	found, err := m.store.Modify(func(s *Store) bool {
		src, i := s.find(id)
		if src == nil {
			return false
		}
		todo := src.Todos[i]
		src.Todos = append(src.Todos[:i], src.Todos[i+1:]...)
		src.renumber()

		dst := s.bucket(d)
		todo.Day = d
		todo.Position = len(dst.Todos) + 1
		dst.Todos = append(dst.Todos, todo)
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

// ForceSave writes the document synchronously
func (m *Manager) ForceSave() error {
	return m.store.ForceSave()
}

// Reload re-reads the document from disk
func (m *Manager) Reload() error {
	return m.store.Reload()
}

// Close flushes pending changes and releases the document
func (m *Manager) Close(ctx context.Context) error {
	return m.store.Close(ctx)
}
