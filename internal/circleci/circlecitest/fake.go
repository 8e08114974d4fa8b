// Package circlecitest provides an in-memory CircleCI API for tests.
package circlecitest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"deployfreq/internal/circleci"
)

// Fake serves canned responses and records every call it receives. Calls are
// recorded as "runs", "jobs:<workflow>", "workflow:<workflow>" and
// "pipeline:<pipeline>".
type Fake struct {
	mu sync.Mutex

	Runs      []circleci.WorkflowRun
	Jobs      map[string][]circleci.Job // by workflow id
	Pipelines map[string]string         // workflow id to pipeline id
	Revisions map[string]string         // pipeline id to revision

	// FailOn makes the call with this exact name return Err
	FailOn string
	Err    error

	Calls     []string
	LastStart time.Time
}

// NewFake returns an empty fake
func NewFake() *Fake {
	return &Fake{
		Jobs:      make(map[string][]circleci.Job),
		Pipelines: make(map[string]string),
		Revisions: make(map[string]string),
	}
}

// AddRun appends a workflow run with its jobs, pipeline and revision
func (f *Fake) AddRun(workflowID, pipelineID, revision string, jobs ...circleci.Job) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Runs = append(f.Runs, circleci.WorkflowRun{ID: workflowID, Status: circleci.StatusSuccess})
	f.Jobs[workflowID] = jobs
	f.Pipelines[workflowID] = pipelineID
	f.Revisions[pipelineID] = revision
}

// CallCount returns how many recorded calls start with prefix
func (f *Fake) CallCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Job builds a finished job
func Job(id, name, status string, stoppedAt time.Time) circleci.Job {
	t := stoppedAt.UTC()
	return circleci.Job{ID: id, Name: name, Status: status, StoppedAt: &t}
}

func (f *Fake) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, call)
	if f.FailOn != "" && call == f.FailOn {
		return f.Err
	}
	return nil
}

func notFound(what string) error {
	return &circleci.TransportError{
		Method:     http.MethodGet,
		URL:        what,
		StatusCode: http.StatusNotFound,
		Err:        fmt.Errorf("not found"),
	}
}

func (f *Fake) ListWorkflowRuns(ctx context.Context, projectSlug, workflowName, branch string, start time.Time) ([]circleci.WorkflowRun, error) {
	if err := f.record("runs"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastStart = start
	return append([]circleci.WorkflowRun(nil), f.Runs...), nil
}

func (f *Fake) ListWorkflowJobs(ctx context.Context, workflowID string) ([]circleci.Job, error) {
	if err := f.record("jobs:" + workflowID); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	jobs, ok := f.Jobs[workflowID]
	if !ok {
		return nil, notFound("workflow " + workflowID)
	}
	return jobs, nil
}

func (f *Fake) GetWorkflow(ctx context.Context, workflowID string) (*circleci.Workflow, error) {
	if err := f.record("workflow:" + workflowID); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	pipelineID, ok := f.Pipelines[workflowID]
	if !ok {
		return nil, notFound("workflow " + workflowID)
	}
	return &circleci.Workflow{ID: workflowID, PipelineID: pipelineID}, nil
}

func (f *Fake) GetPipeline(ctx context.Context, pipelineID string) (*circleci.Pipeline, error) {
	if err := f.record("pipeline:" + pipelineID); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	revision, ok := f.Revisions[pipelineID]
	if !ok {
		return nil, notFound("pipeline " + pipelineID)
	}
	return &circleci.Pipeline{ID: pipelineID, VCS: circleci.VCS{Revision: revision}}, nil
}
