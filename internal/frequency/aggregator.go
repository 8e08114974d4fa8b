package frequency

import (
	"context"
	"fmt"
	"iter"
	"time"

	"deployfreq/internal/deploys"
)

// MaxDays is the longest window whose day labels stay unique without a year
const MaxDays = 365

// Source produces the deploys of a target in the trailing window ending on the
// day of now, most recent first
type Source interface {
	ResolveAt(ctx context.Context, target deploys.Target, now time.Time, days int) iter.Seq2[deploys.Deploy, error]
}

// InvariantViolationError reports a deploy outside the seeded window. It means
// the source yielded something its cutoff should have excluded.
type InvariantViolationError struct {
	Label  string
	Deploy deploys.Deploy
	Window []string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("deploy %s at %s falls on day %s outside window %v",
		e.Deploy.Revision, e.Deploy.OccurredAt.Format(time.RFC3339), e.Label, e.Window)
}

// Aggregator counts the deploys of one fixed target per day
type Aggregator struct {
	Source Source
	Target deploys.Target
	Now    func() time.Time
}

// NewAggregator creates an aggregator sharing the resolver's clock
func NewAggregator(resolver *deploys.Resolver, target deploys.Target) *Aggregator {
	return &Aggregator{
		Source: resolver,
		Target: target,
		Now:    resolver.Now,
	}
}

// Aggregate resolves the target's deploys over the last days days, today
// included, and buckets them by day
func (a *Aggregator) Aggregate(ctx context.Context, days int) (*DayBuckets, error) {
	if days < 1 || days > MaxDays {
		return nil, fmt.Errorf("%w: got %d, must be between 1 and %d", deploys.ErrInvalidWindow, days, MaxDays)
	}

	// One clock read serves both the buckets and the resolver's window
	now := a.now().UTC()
	buckets := newDayBuckets(now, days)

	for d, err := range a.Source.ResolveAt(ctx, a.Target, now, days) {
		if err != nil {
			return nil, err
		}

		// Most recent first upstream, so front insertion keeps each day ascending
		label := Label(d.OccurredAt)
		if !buckets.prepend(label, d) {
			return nil, &InvariantViolationError{Label: label, Deploy: d, Window: buckets.Labels()}
		}
	}

	return buckets, nil
}

func (a *Aggregator) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}
