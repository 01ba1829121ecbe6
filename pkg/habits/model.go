package habits

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/google/uuid"
)

// WeekStart is the first day of the week a habit's calendar is drawn from
type WeekStart int

const (
	Sunday WeekStart = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekStartNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// ParseWeekStart accepts day names in any case
func ParseWeekStart(s string) (WeekStart, error) {
	for i, name := range weekStartNames {
		if strings.EqualFold(s, name) {
			return WeekStart(i), nil
		}
	}
	return Sunday, errors.Newf(errors.ErrInvalidInput, "invalid week start %q", s).
		WithDetail("known", weekStartNames[:])
}

func (w WeekStart) String() string {
	if w < Sunday || w > Saturday {
		return fmt.Sprintf("WeekStart(%d)", int(w))
	}
	return weekStartNames[w]
}

// Weekday converts to the standard library representation
func (w WeekStart) Weekday() time.Weekday {
	return time.Weekday(w)
}

// DaysFromStart returns how far date is into its week, 0 through 6
func (w WeekStart) DaysFromStart(date Date) int {
	days := int(date.Weekday()) - int(w)
	if days < 0 {
		days += 7
	}
	return days
}

func (w WeekStart) MarshalText() ([]byte, error) {
	if w < Sunday || w > Saturday {
		return nil, errors.Newf(errors.ErrEncode, "invalid week start %d", int(w))
	}
	return []byte(w.String()), nil
}

func (w *WeekStart) UnmarshalText(text []byte) error {
	parsed, err := ParseWeekStart(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Habit is one tracked habit
type Habit struct {
	Title         string    `json:"title" yaml:"title" toml:"title"`
	StartDate     Date      `json:"start_date" yaml:"start_date" toml:"start_date"`
	CompletedDays []Date    `json:"completed_days" yaml:"completed_days" toml:"completed_days"`
	WeekStart     WeekStart `json:"week_start" yaml:"week_start" toml:"week_start"`
	Color         string    `json:"color" yaml:"color" toml:"color"`
}

// Completed reports whether the habit was done on date
func (h *Habit) Completed(date Date) bool {
	return slices.Contains(h.CompletedDays, date)
}

// Entry pairs a habit with its ID
type Entry struct {
	ID uuid.UUID
	Habit
}

// Store is the persisted habits document
type Store struct {
	Habits map[uuid.UUID]Habit `json:"habits" yaml:"habits" toml:"habits"`
}

// Clone implements storage.Cloner
func (s *Store) Clone() Store {
	out := Store{Habits: make(map[uuid.UUID]Habit, len(s.Habits))}
	for id, h := range s.Habits {
		if h.CompletedDays != nil {
			days := make([]Date, len(h.CompletedDays))
			copy(days, h.CompletedDays)
			h.CompletedDays = days
		}
		out.Habits[id] = h
	}
	return out
}
