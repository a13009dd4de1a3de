package txn

import (
	"fmt"
	"time"
)

// MonthName returns the month label of t.
func MonthName(t time.Time) string {
	return Months[int(t.Month())-1]
}

// PreviousMonth returns the label of the month before t's month. It counts
// from the first of the month so March 31 yields February.
func PreviousMonth(t time.Time) string {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return MonthName(first.AddDate(0, -1, 0))
}

// Week is a Sunday to Saturday span of whole days.
type Week struct {
	Start time.Time
	End   time.Time
}

// WeekOf returns the week offset weeks before the one containing now.
func WeekOf(now time.Time, offset int) Week {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := day.AddDate(0, 0, -int(day.Weekday())-7*offset)
	return Week{Start: start, End: start.AddDate(0, 0, 6)}
}

// Range formats the week like "Jan 7 - Jan 13, 2025".
func (w Week) Range() string {
	return fmt.Sprintf("%s - %s, %d", w.Start.Format("Jan 2"), w.End.Format("Jan 2"), w.End.Year())
}

// Months returns the distinct month labels the week touches.
func (w Week) Months() []string {
	first, last := MonthName(w.Start), MonthName(w.End)
	if first == last {
		return []string{first}
	}
	return []string{first, last}
}

// WeekLabel names a week offset for menus.
func WeekLabel(offset int) string {
	switch offset {
	case 0:
		return "This Week"
	case 1:
		return "Previous Week"
	case 2:
		return "Previous 2 Weeks"
	}
	return fmt.Sprintf("%d Weeks Ago", offset)
}
