package deploys

import "time"

// Decision is what the resolver does with a qualifying job
type Decision int

const (
	Keep Decision = iota // resolve and yield it
	Skip                 // drop it and keep walking
	Stop                 // end the whole traversal
)

// CutoffPolicy decides how to treat a qualifying job completed on stoppedOn.
// Both dates are truncated to midnight UTC.
type CutoffPolicy func(stoppedOn, windowStart time.Time) Decision

// StopAtFirstStale ends the traversal at the first job older than the window.
// It relies on the insights API listing the most recent runs first, which is
// observed behaviour and not documented.
func StopAtFirstStale(stoppedOn, windowStart time.Time) Decision {
	if stoppedOn.Before(windowStart) {
		return Stop
	}
	return Keep
}

// SkipStale filters stale jobs one by one. It issues more API calls than
// StopAtFirstStale but does not depend on upstream ordering.
func SkipStale(stoppedOn, windowStart time.Time) Decision {
	if stoppedOn.Before(windowStart) {
		return Skip
	}
	return Keep
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
