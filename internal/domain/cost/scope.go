package cost

import "time"

// Scope is a spend-cap window.
type Scope string

// Scope values.
const (
	Daily   Scope = "daily"
	Monthly Scope = "monthly"
)

// Window returns the UTC [start, end) interval of the scope containing now.
func (s Scope) Window(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	if s == Monthly {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
