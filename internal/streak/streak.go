// Package streak derives streak counts and a consistency status from the
// daily check-in history of a single goal.
package streak

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrMalformedRecord is returned when a completed record carries no date.
var ErrMalformedRecord = errors.New("malformed record")

// Status classifies how consistently a goal is being worked on.
type Status string

const (
	StatusGood      Status = "good"
	StatusIrregular Status = "irregular"
	StatusAttention Status = "attention"
)

const (
	// goodStreakMin is the current streak from which a goal can be "good".
	goodStreakMin = 7
	// buildingStreakMin is the current streak from which a goal is at least "irregular".
	buildingStreakMin = 3
	// recentWindow is how many of the latest completed days are checked for gaps.
	recentWindow = 14
	// recentMinimum is the number of recent days needed before gaps are judged.
	recentMinimum = 7
	// maxRegularGap is the widest day gap a "good" goal may contain.
	maxRegularGap = 2
	// staleAfterDays marks a short-streak goal as needing attention.
	staleAfterDays = 3
)

// Record is one daily check-in for a goal.
type Record struct {
	Date      time.Time
	Completed bool
}

// Summary is the derived streak state for a goal.
type Summary struct {
	CurrentStreak  int        `json:"currentStreak"`
	LongestStreak  int        `json:"longestStreak"`
	Status         Status     `json:"status"`
	LastUpdateDate *time.Time `json:"lastUpdateDate"`
}

type completedDay struct {
	day  Day
	date time.Time
}

// Calculate computes the streak summary for records as of the current time.
func Calculate(records []Record, timezone string) (Summary, error) {
	return CalculateAt(records, timezone, time.Now())
}

// CalculateAt computes the streak summary for records with now as the
// reference instant. Calendar days are taken in timezone.
func CalculateAt(records []Record, timezone string, now time.Time) (Summary, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return Summary{}, err
	}

	days, err := completedDays(records, loc)
	if err != nil {
		return Summary{}, err
	}
	if len(days) == 0 {
		return Summary{Status: StatusAttention}, nil
	}

	today := DayIn(now, loc)
	current := currentStreak(days, today)
	last := days[0].date

	return Summary{
		CurrentStreak:  current,
		LongestStreak:  longestStreak(days),
		Status:         classify(days, current, today),
		LastUpdateDate: &last,
	}, nil
}

// completedDays keeps the completed records, buckets them into calendar days
// of loc and orders them newest first. Two records on the same day count once.
func completedDays(records []Record, loc *time.Location) ([]completedDay, error) {
	days := make([]completedDay, 0, len(records))
	for i, r := range records {
		if !r.Completed {
			continue
		}
		if r.Date.IsZero() {
			return nil, fmt.Errorf("%w: record %d has no date", ErrMalformedRecord, i)
		}
		days = append(days, completedDay{day: DayIn(r.Date, loc), date: r.Date})
	}

	sort.SliceStable(days, func(i, j int) bool {
		if days[i].day != days[j].day {
			return days[i].day.After(days[j].day)
		}
		return days[i].date.After(days[j].date)
	})

	unique := days[:0]
	for _, d := range days {
		if len(unique) > 0 && unique[len(unique)-1].day == d.day {
			continue
		}
		unique = append(unique, d)
	}
	return unique, nil
}

// currentStreak counts consecutive days ending today. The newest record may
// also be yesterday, since today's check-in can still happen.
func currentStreak(days []completedDay, today Day) int {
	expected := today
	count := 0
	for i, d := range days {
		gap := expected.Sub(d.day)
		if gap != 0 && !(i == 0 && gap == 1) {
			break
		}
		count++
		expected = d.day.AddDays(-1)
	}
	return count
}

func longestStreak(days []completedDay) int {
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].day.Sub(days[i].day) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func classify(days []completedDay, current int, today Day) Status {
	switch {
	case current >= goodStreakMin:
		recent := days
		if len(recent) > recentWindow {
			recent = recent[:recentWindow]
		}
		if len(recent) < recentMinimum {
			return StatusGood
		}
		for i := 1; i < len(recent); i++ {
			if recent[i-1].day.Sub(recent[i].day) > maxRegularGap {
				return StatusIrregular
			}
		}
		return StatusGood
	case current >= buildingStreakMin:
		return StatusIrregular
	default:
		if today.Sub(days[0].day) > staleAfterDays {
			return StatusAttention
		}
		return StatusIrregular
	}
}
