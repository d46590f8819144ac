package model

import "time"

// IsOverdue reports whether work scheduled at scheduled is late at now.
// Closed requests are never overdue.
func IsOverdue(scheduled time.Time, status Status, now time.Time) bool {
	return scheduled.Before(now) && !status.IsClosed()
}
