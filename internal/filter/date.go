package filter

import (
	"time"
)

// clockSkew tolerates timestamps slightly in the future.
const clockSkew = 2 * 24 * time.Hour

// IsRecent reports whether posted lies within window before now.
// A zero time is treated as recent.
func IsRecent(posted, now time.Time, window time.Duration) bool {
	if posted.IsZero() {
		return true
	}
	diff := now.Sub(posted)
	if diff > window {
		return false
	}
	if diff < -clockSkew {
		return false
	}
	return true
}

// Since returns the unix cutoff for a window of days ending at now.
func Since(now time.Time, days int) int64 {
	return now.Add(-time.Duration(days) * 24 * time.Hour).Unix()
}
