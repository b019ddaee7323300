package analyzer

import "time"

// lastTwoCompleteMonths returns the first days of the two most recent complete
// calendar months relative to now. For Jan 29 2026 that is Nov 1 and Dec 1 2025.
func lastTwoCompleteMonths(now time.Time) (prev, cur time.Time) {
	firstOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	cur = firstOfThisMonth.AddDate(0, -1, 0)
	prev = cur.AddDate(0, -1, 0)
	return prev, cur
}

// monthName formats a date as "January 2006" for signal reasons and logs.
func monthName(d time.Time) string {
	return d.Format("January 2006")
}

// sameMonth reports whether d falls in the calendar month starting at monthStart.
func sameMonth(d, monthStart time.Time) bool {
	return d.Year() == monthStart.Year() && d.Month() == monthStart.Month()
}
