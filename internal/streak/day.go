package streak

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// ErrInvalidTimezone is returned when a timezone name does not resolve to an IANA zone.
var ErrInvalidTimezone = errors.New("invalid timezone")

// DefaultTimezone is used when a user has no timezone configured.
const DefaultTimezone = "UTC"

const dayLayout = "2006-01-02"

// Day is a calendar date in some timezone, without a time of day.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// LoadLocation resolves an IANA zone name. An empty name resolves to UTC.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, nil
	}
	// "Local" is accepted by time.LoadLocation but depends on the host.
	if name == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	return loc, nil
}

// DayIn returns the calendar day an instant falls on in loc.
func DayIn(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, strings.TrimSpace(s))
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return DayIn(t, time.UTC), nil
}

// civil pins the day to UTC midnight, where every day is exactly 24 hours long.
func (d Day) civil() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the day n days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	return DayIn(d.civil().AddDate(0, 0, n), time.UTC)
}

// Sub returns the signed number of calendar days from other to d.
func (d Day) Sub(other Day) int {
	return int(d.civil().Sub(other.civil()) / (24 * time.Hour))
}

// Before reports whether d is earlier than other.
func (d Day) Before(other Day) bool {
	return d.Sub(other) < 0
}

// After reports whether d is later than other.
func (d Day) After(other Day) bool {
	return d.Sub(other) > 0
}

func (d Day) String() string {
	return d.civil().Format(dayLayout)
}

// Midnight returns the first instant of d in loc. On days where local
// midnight is skipped by a DST transition this is the first instant that
// exists on that day.
func (d Day) Midnight(loc *time.Location) time.Time {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
	for DayIn(t, loc).Before(d) {
		t = t.Add(time.Hour)
	}
	return t
}

// StorageDate returns the instant stored for the calendar day t falls on in
// loc: that day's local midnight, expressed in UTC. Converting the stored
// value back with DayIn(_, loc) always yields the same day.
func StorageDate(t time.Time, loc *time.Location) time.Time {
	return DayIn(t, loc).Midnight(loc).UTC()
}

// Today returns the current calendar day in loc.
func Today(now time.Time, loc *time.Location) Day {
	return DayIn(now, loc)
}

// FormatInZone renders the calendar day of t in loc as YYYY-MM-DD.
func FormatInZone(t time.Time, loc *time.Location) string {
	return DayIn(t, loc).String()
}
