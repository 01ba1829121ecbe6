package todos

import (
	"strings"
	"time"

	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/google/uuid"
)

// Days lists the weekday buckets in display order
var Days = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// ParseDay normalizes a weekday name
func ParseDay(day string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(day))
	for _, known := range Days {
		if d == known {
			return d, nil
		}
	}
	return "", errors.Newf(errors.ErrInvalidInput, "invalid day %q", day).WithDetail("known", Days)
}

// DayOf returns the bucket name for t
func DayOf(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// Todo is one item in a weekday bucket
type Todo struct {
	ID        uuid.UUID `json:"id" yaml:"id" toml:"id"`
	Content   string    `json:"content" yaml:"content" toml:"content"`
	Day       string    `json:"day" yaml:"day" toml:"day"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at" toml:"created_at"`
	Position  int       `json:"position" yaml:"position" toml:"position"`
}

// DayTodos is one weekday bucket
type DayTodos struct {
	Todos []Todo `json:"todos" yaml:"todos" toml:"todos"`
}

func (d *DayTodos) renumber() {
	for i := range d.Todos {
		d.Todos[i].Position = i + 1
	}
}

func (d *DayTodos) indexOf(id uuid.UUID) int {
	for i, t := range d.Todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Store is the persisted todos document
type Store struct {
	Monday    DayTodos `json:"monday" yaml:"monday" toml:"monday"`
	Tuesday   DayTodos `json:"tuesday" yaml:"tuesday" toml:"tuesday"`
	Wednesday DayTodos `json:"wednesday" yaml:"wednesday" toml:"wednesday"`
	Thursday  DayTodos `json:"thursday" yaml:"thursday" toml:"thursday"`
	Friday    DayTodos `json:"friday" yaml:"friday" toml:"friday"`
	Saturday  DayTodos `json:"saturday" yaml:"saturday" toml:"saturday"`
	Sunday    DayTodos `json:"sunday" yaml:"sunday" toml:"sunday"`
}

// bucket expects a day already validated by ParseDay
func (s *Store) bucket(day string) *DayTodos {
	switch day {
	case "monday":
		return &s.Monday
	case "tuesday":
		return &s.Tuesday
	case "wednesday":
		return &s.Wednesday
	case "thursday":
		return &s.Thursday
	case "friday":
		return &s.Friday
	case "saturday":
		return &s.Saturday
	default:
		return &s.Sunday
	}
}

// find returns the bucket holding id and its index there
func (s *Store) find(id uuid.UUID) (*DayTodos, int) {
	for _, day := range Days {
		b := s.bucket(day)
		if i := b.indexOf(id); i >= 0 {
			return b, i
		}
	}
	return nil, -1
}

func emptyStore() *Store {
	s := &Store{}
	for _, day := range Days {
		s.bucket(day).Todos = []Todo{}
	}
	return s
}
