package timeline

import (
	"time"

	"github.com/arthur-debert/myquest/pkg/errors"
)

// WeeksPerYear is the row width of the lifetime calendar
const WeeksPerYear = 52

// Summary describes a life in weeks, as drawn on the lifetime calendar
type Summary struct {
	Total     int
	Lived     int
	Remaining int
	// Current is the period that contains today, if any
	Current *Period
}

// Weeks places today on the lifetime calendar of doc
func Weeks(doc *Document, today time.Time) (Summary, error) {
	birth, err := time.Parse(monthLayout, doc.DateOfBirth)
	if err != nil {
		return Summary{}, errors.Wrapf(err, errors.ErrInvalidInput, "invalid date of birth %q", doc.DateOfBirth)
	}

	total := doc.LifeExpectancy * WeeksPerYear
	lived := 0
	if today.After(birth) {
		lived = int(today.Sub(birth).Hours() / 24 / 7)
	}
	if lived > total {
		lived = total
	}

	return Summary{
		Total:     total,
		Lived:     lived,
		Remaining: total - lived,
		Current:   PeriodAt(doc, today),
	}, nil
}

// PeriodAt returns the latest period starting on or before t
func PeriodAt(doc *Document, t time.Time) *Period {
	month := t.Format(monthLayout)
	var found *Period
	for i := range doc.LifePeriods {
		p := &doc.LifePeriods[i]
		if p.Start <= month && (found == nil || p.Start >= found.Start) {
			found = p
		}
	}
	return found
}
