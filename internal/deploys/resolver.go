package deploys

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"deployfreq/internal/circleci"
)

const (
	// DefaultAppURL is the CircleCI web UI root used for deploy links
	DefaultAppURL = "https://app.circleci.com"

	// MissingJobSegment fills the job segment of deploy links. The job number
	// is not available from the job listing used here.
	MissingJobSegment = "MISSING"
)

// ErrInvalidWindow is returned for a trailing window of less than one day
var ErrInvalidWindow = errors.New("window must cover at least one day")

// API is the subset of the CircleCI client the resolver drives
type API interface {
	ListWorkflowRuns(ctx context.Context, projectSlug, workflowName, branch string, start time.Time) ([]circleci.WorkflowRun, error)
	ListWorkflowJobs(ctx context.Context, workflowID string) ([]circleci.Job, error)
	GetWorkflow(ctx context.Context, workflowID string) (*circleci.Workflow, error)
	GetPipeline(ctx context.Context, pipelineID string) (*circleci.Pipeline, error)
}

// Resolver walks workflow runs, their jobs, and pipeline metadata to find
// deploys of a target job
type Resolver struct {
	API    API
	Logger *slog.Logger
	AppURL string
	Cutoff CutoffPolicy
	Now    func() time.Time
}

// NewResolver creates a resolver with the default cutoff policy and clock
func NewResolver(api API, logger *slog.Logger) *Resolver {
	return &Resolver{
		API:    api,
		Logger: logger,
		AppURL: DefaultAppURL,
		Cutoff: StopAtFirstStale,
		Now:    time.Now,
	}
}

// WindowStart returns midnight UTC of the first day of a trailing window of
// days days ending today
func (r *Resolver) WindowStart(days int) time.Time {
	return windowStart(r.now(), days)
}

func windowStart(now time.Time, days int) time.Time {
	return truncateDay(now).AddDate(0, 0, -(days - 1))
}

// Resolve returns the deploys of target in the trailing window, most recent
// first. API calls are issued only as the sequence is consumed. Any error is
// yielded once, unchanged, and ends the sequence.
func (r *Resolver) Resolve(ctx context.Context, target Target, days int) iter.Seq2[Deploy, error] {
	return r.ResolveAt(ctx, target, r.now(), days)
}

// ResolveAt is Resolve for a window ending on the day of now. Jobs that
// finished on a later day are skipped, so every deploy yielded falls inside
// the window.
func (r *Resolver) ResolveAt(ctx context.Context, target Target, now time.Time, days int) iter.Seq2[Deploy, error] {
	return func(yield func(Deploy, error) bool) {
		if days < 1 {
			yield(Deploy{}, fmt.Errorf("%w: got %d", ErrInvalidWindow, days))
			return
		}

		today := truncateDay(now)
		start := windowStart(now, days)
		runs, err := r.API.ListWorkflowRuns(ctx, target.ProjectPath(), target.PipelineName, target.Branch, start)
		if err != nil {
			yield(Deploy{}, err)
			return
		}

		for _, run := range runs {
			jobs, err := r.API.ListWorkflowJobs(ctx, run.ID)
			if err != nil {
				yield(Deploy{}, err)
				return
			}

			for _, job := range jobs {
				if !target.Matches(job) {
					continue
				}

				r.logger().Info("looking up job", "job_id", job.ID, "workflow_id", run.ID)

				if job.StoppedAt == nil {
					yield(Deploy{}, &circleci.MalformedResponseError{
						URL:   "/workflow/" + run.ID + "/job",
						Field: "stopped_at",
						Err:   fmt.Errorf("successful job %s has no completion time", job.ID),
					})
					return
				}

				stoppedOn := truncateDay(*job.StoppedAt)
				if stoppedOn.After(today) {
					r.logger().Info("skipping as too late",
						"stopped_on", stoppedOn.Format(time.DateOnly),
						"window_end", today.Format(time.DateOnly))
					continue
				}

				// Decided before the workflow and pipeline lookups, so a stale
				// job costs no further calls
				if decision := r.cutoff()(stoppedOn, start); decision != Keep {
					r.logger().Info("skipping as too early",
						"stopped_on", stoppedOn.Format(time.DateOnly),
						"window_start", start.Format(time.DateOnly))
					if decision == Stop {
						return
					}
					continue
				}

				deploy, err := r.resolveDeploy(ctx, target, run.ID, job.StoppedAt.UTC())
				if err != nil {
					yield(Deploy{}, err)
					return
				}

				if !yield(deploy, nil) {
					return
				}
			}
		}
	}
}

// resolveDeploy joins a workflow run to its pipeline to find the revision
func (r *Resolver) resolveDeploy(ctx context.Context, target Target, workflowID string, occurredAt time.Time) (Deploy, error) {
	workflow, err := r.API.GetWorkflow(ctx, workflowID)
	if err != nil {
		return Deploy{}, err
	}

	pipeline, err := r.API.GetPipeline(ctx, workflow.PipelineID)
	if err != nil {
		return Deploy{}, err
	}

	return Deploy{
		OccurredAt: occurredAt,
		Revision:   pipeline.VCS.Revision,
		URL: fmt.Sprintf("%s/pipelines/%s/%s/%s/workflows/%s/jobs/%s",
			r.appURL(), target.OrgSlug, target.ProjectSlug, workflow.PipelineID, workflowID, MissingJobSegment),
	}, nil
}

func (r *Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Resolver) cutoff() CutoffPolicy {
	if r.Cutoff == nil {
		return StopAtFirstStale
	}
	return r.Cutoff
}

func (r *Resolver) appURL() string {
	if r.AppURL == "" {
		return DefaultAppURL
	}
	return r.AppURL
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
