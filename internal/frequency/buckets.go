package frequency

import (
	"time"

	"deployfreq/internal/deploys"
)

// LabelLayout formats a day label: month and day, no year
const LabelLayout = "01-02"

// Label returns the day label a deploy at t falls into
func Label(t time.Time) string {
	return t.UTC().Format(LabelLayout)
}

// DayBuckets groups deploys by day over a trailing window. Every day of the
// window has a bucket, including days without deploys.
type DayBuckets struct {
	labels  []string
	deploys map[string][]deploys.Deploy
}

// newDayBuckets seeds one empty bucket per day, today first
func newDayBuckets(today time.Time, days int) *DayBuckets {
	b := &DayBuckets{
		labels:  make([]string, 0, days),
		deploys: make(map[string][]deploys.Deploy, days),
	}
	for i := 0; i < days; i++ {
		label := Label(today.AddDate(0, 0, -i))
		b.labels = append(b.labels, label)
		b.deploys[label] = []deploys.Deploy{}
	}
	return b
}

// prepend inserts d at the front of its bucket. It reports false when the
// bucket was never seeded.
func (b *DayBuckets) prepend(label string, d deploys.Deploy) bool {
	existing, ok := b.deploys[label]
	if !ok {
		return false
	}
	b.deploys[label] = append([]deploys.Deploy{d}, existing...)
	return true
}

// Labels returns the day labels in seeding order, today first
func (b *DayBuckets) Labels() []string {
	return append([]string(nil), b.labels...)
}

// Deploys returns the deploys of one day, oldest first
func (b *DayBuckets) Deploys(label string) []deploys.Deploy {
	return b.deploys[label]
}

// Counts maps each day label to its number of deploys
func (b *DayBuckets) Counts() map[string]int {
	counts := make(map[string]int, len(b.labels))
	for _, label := range b.labels {
		counts[label] = len(b.deploys[label])
	}
	return counts
}

// Len returns the number of days in the window
func (b *DayBuckets) Len() int {
	return len(b.labels)
}

// Total returns the number of deploys across the window
func (b *DayBuckets) Total() int {
	total := 0
	for _, list := range b.deploys {
		total += len(list)
	}
	return total
}
