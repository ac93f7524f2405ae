package models

import (
	"fmt"
	"math"
	"time"
)

// DueSoonDays is the default look-ahead window for DueSoon
const DueSoonDays = 3

// DueStatus buckets a card by its due date
type DueStatus string

const (
	DueNone      DueStatus = "no-date"
	DueCompleted DueStatus = "completed"
	DueOverdue   DueStatus = "overdue"
	DueToday     DueStatus = "due-today"
	DueSoon      DueStatus = "due-soon"
	DueUpcoming  DueStatus = "upcoming"
)

// DueStatuses lists every bucket in filter-panel order
var DueStatuses = []DueStatus{DueOverdue, DueToday, DueSoon, DueUpcoming, DueCompleted, DueNone}

// Label returns a human readable name
func (s DueStatus) Label() string {
	switch s {
	case DueNone:
		return "No due date"
	case DueCompleted:
		return "Completed"
	case DueOverdue:
		return "Overdue"
	case DueToday:
		return "Due today"
	case DueSoon:
		return "Due soon"
	case DueUpcoming:
		return "Upcoming"
	}
	return string(s)
}

// Day truncates t to midnight in its own location
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysUntil returns the number of calendar days from today to due.
// Negative values are in the past.
func DaysUntil(due, today time.Time) int {
	hours := Day(due).Sub(Day(today)).Hours()
	return int(math.Round(hours / 24))
}

// Classify buckets a due date. Precedence is completed, overdue, due
// today, due soon (within soonDays), then upcoming.
func Classify(days int, completed bool, soonDays int) DueStatus {
	switch {
	case completed:
		return DueCompleted
	case days < 0:
		return DueOverdue
	case days == 0:
		return DueToday
	case days <= soonDays:
		return DueSoon
	default:
		return DueUpcoming
	}
}

// DueStatusAt classifies the card relative to today. Cards without a
// parseable due date are DueNone regardless of completion.
func (c Card) DueStatusAt(today time.Time, soonDays int) DueStatus {
	due, ok := c.Due(today.Location())
	if !ok {
		return DueNone
	}
	return Classify(DaysUntil(due, today), c.Completed, soonDays)
}

// DueText renders the due-date line shown on a card
func (c Card) DueText(today time.Time, soonDays int) string {
	due, ok := c.Due(today.Location())
	if !ok {
		return ""
	}
	days := DaysUntil(due, today)
	switch Classify(days, c.Completed, soonDays) {
	case DueCompleted:
		if c.CompletedDate != nil {
			return "Completed: " + c.CompletedDate.In(today.Location()).Format("Jan 2, 2006")
		}
		return "Completed: Done"
	case DueOverdue:
		return fmt.Sprintf("Overdue by %d day(s)", -days)
	case DueToday:
		return "Due today"
	case DueSoon:
		return fmt.Sprintf("Due in %d day(s)", days)
	default:
		return "Due " + due.Format("Jan 2, 2006")
	}
}
