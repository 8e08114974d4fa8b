package deploys

import (
	"iter"
	"time"

	"deployfreq/internal/circleci"
)

// Deploy is one successful run of the target job
type Deploy struct {
	OccurredAt time.Time `json:"occurred_at"` // when the job finished, UTC
	Revision   string    `json:"revision"`    // commit the pipeline built
	URL        string    `json:"url"`         // link back to the run in the CircleCI UI
}

// Target identifies the job whose successful runs count as deploys
type Target struct {
	OrgSlug      string // e.g. gh/sleuth-io
	ProjectSlug  string
	PipelineName string // CircleCI workflow name
	JobName      string
	Branch       string
}

// ProjectPath returns the project slug the insights API expects
func (t Target) ProjectPath() string {
	return t.OrgSlug + "/" + t.ProjectSlug
}

// Matches reports whether job is a successful run of the target job
func (t Target) Matches(job circleci.Job) bool {
	return job.Name == t.JobName && job.Status == circleci.StatusSuccess
}

// Collect drains seq, stopping at the first error
func Collect(seq iter.Seq2[Deploy, error]) ([]Deploy, error) {
	var out []Deploy
	for d, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, d)
	}
	return out, nil
}
