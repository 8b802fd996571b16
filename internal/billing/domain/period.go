package domain

import (
	"errors"
	"fmt"
	"time"
)

// Period is a billing month, rendered as "YYYY-MM". All period arithmetic
// is done in UTC.
type Period struct {
	Year  int
	Month time.Month
}

var ErrInvalidPeriod = errors.New("invalid_period")

// ParsePeriod parses the canonical "YYYY-MM" form.
func ParsePeriod(value string) (Period, error) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	t = t.UTC()
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start is the first instant of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last instant of the period's final day.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// Days is the number of calendar days in the period.
func (p Period) Days() int {
	start := p.Start()
	return int(start.AddDate(0, 1, 0).Sub(start).Hours() / 24)
}

// Prev returns the immediately preceding period.
func (p Period) Prev() Period {
	t := p.Start().AddDate(0, -1, 0)
	return Period{Year: t.Year(), Month: t.Month()}
}
