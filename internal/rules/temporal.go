package rules

import (
	"math"
	"time"
)

// DefaultDueSoonHorizon is the window within which an upcoming deadline is
// surfaced as "due soon".
const DefaultDueSoonHorizon = 72 * time.Hour

// IsOverdue reports whether the due date has already passed at the reference
// instant. A submission exactly at the due date is on time.
func IsOverdue(dueDate, now time.Time) bool {
	return now.After(dueDate)
}

// IsDueSoon reports whether the due date lies strictly ahead of now but
// within the horizon. A non-positive horizon falls back to the default.
func IsDueSoon(dueDate, now time.Time, horizon time.Duration) bool {
	if horizon <= 0 {
		horizon = DefaultDueSoonHorizon
	}
	remaining := dueDate.Sub(now)
	return remaining > 0 && remaining <= horizon
}

// DaysUntil returns the number of days until the due date, rounded up.
// The result is negative once the due date has passed.
func DaysUntil(dueDate, now time.Time) int {
	return int(math.Ceil(dueDate.Sub(now).Hours() / 24))
}
