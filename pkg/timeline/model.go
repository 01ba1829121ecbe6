package timeline

import (
	_ "embed"
	"sort"
	"time"

	"github.com/arthur-debert/myquest/pkg/codec"
	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/utils"
	"github.com/google/uuid"
)

const (
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
)

//go:embed embedded/default.yaml
var defaultTimeline []byte

// Event is a dated moment inside a period
type Event struct {
	ID    *uuid.UUID `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Name  string     `json:"name" yaml:"name" toml:"name"`
	Color string     `json:"color" yaml:"color" toml:"color"`
	Start string     `json:"start" yaml:"start" toml:"start"`
}

// Period is a stretch of life starting at a month
type Period struct {
	ID     *uuid.UUID `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Name   string     `json:"name" yaml:"name" toml:"name"`
	Start  string     `json:"start" yaml:"start" toml:"start"`
	Color  string     `json:"color" yaml:"color" toml:"color"`
	Events []Event    `json:"events" yaml:"events" toml:"events"`
}

// Document is one persisted timeline
type Document struct {
	Name           string   `json:"name" yaml:"name" toml:"name"`
	DateOfBirth    string   `json:"date_of_birth" yaml:"date_of_birth" toml:"date_of_birth"`
	LifeExpectancy int      `json:"life_expectancy" yaml:"life_expectancy" toml:"life_expectancy"`
	LifePeriods    []Period `json:"life_periods" yaml:"life_periods" toml:"life_periods"`
}

// DefaultDocument returns the template used for new timelines
func DefaultDocument(name string) (*Document, error) {
	var doc Document
	if err := codec.YAML.Decode(defaultTimeline, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "embedded default timeline is invalid")
	}
	if name != "" {
		doc.Name = name
	}
	assignIDs(&doc)
	return &doc, nil
}

func newID() *uuid.UUID {
	id := uuid.New()
	return &id
}

func sameID(a *uuid.UUID, b uuid.UUID) bool {
	return a != nil && *a == b
}

// assignIDs gives every period and event without an ID a fresh one and
// reports whether anything changed.
func assignIDs(doc *Document) bool {
	changed := false
	for i := range doc.LifePeriods {
		p := &doc.LifePeriods[i]
		if p.ID == nil {
			p.ID = newID()
			changed = true
		}
		for j := range p.Events {
			if p.Events[j].ID == nil {
				p.Events[j].ID = newID()
				changed = true
			}
		}
	}
	return changed
}

func missingIDs(doc *Document) bool {
	for _, p := range doc.LifePeriods {
		if p.ID == nil {
			return true
		}
		for _, e := range p.Events {
			if e.ID == nil {
				return true
			}
		}
	}
	return false
}

func sortPeriods(periods []Period) {
	sort.SliceStable(periods, func(i, j int) bool { return periods[i].Start < periods[j].Start })
}

func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Start < events[j].Start })
}

func validatePeriod(p *Period) error {
	if p.Name == "" {
		return errors.New(errors.ErrInvalidInput, "period name must not be empty")
	}
	if _, err := time.Parse(monthLayout, p.Start); err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "invalid period start %q, want YYYY-MM", p.Start)
	}
	color, err := utils.NormalizeColor(p.Color)
	if err != nil {
		return err
	}
	p.Color = color
	if p.Events == nil {
		p.Events = []Event{}
	}
	for i := range p.Events {
		if err := validateEvent(&p.Events[i]); err != nil {
			return err
		}
	}
	sortEvents(p.Events)
	return nil
}

func validateEvent(e *Event) error {
	if e.Name == "" {
		return errors.New(errors.ErrInvalidInput, "event name must not be empty")
	}
	if _, err := time.Parse(dayLayout, e.Start); err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "invalid event start %q, want YYYY-MM-DD", e.Start)
	}
	color, err := utils.NormalizeColor(e.Color)
	if err != nil {
		return err
	}
	e.Color = color
	return nil
}

// Validate checks and normalizes a whole document in place
func Validate(doc *Document) error {
	if _, err := time.Parse(monthLayout, doc.DateOfBirth); err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "invalid date of birth %q, want YYYY-MM", doc.DateOfBirth)
	}
	if doc.LifeExpectancy <= 0 {
		return errors.New(errors.ErrInvalidInput, "life expectancy must be positive")
	}
	for i := range doc.LifePeriods {
		if err := validatePeriod(&doc.LifePeriods[i]); err != nil {
			return err
		}
	}
	sortPeriods(doc.LifePeriods)
	return nil
}
