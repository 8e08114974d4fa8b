package circleci

import (
	"fmt"
	"strings"
	"time"
)

// StatusSuccess is the job status CircleCI reports for a job that passed
const StatusSuccess = "success"

// stopped_at values look like 2026-10-14T09:12:44Z or 2026-10-14T09:12:44.123Z
const timestampLayout = "2006-01-02T15:04:05.999999999"

// WorkflowRun is one item of the insights workflow-runs listing
type WorkflowRun struct {
	ID     string
	Status string
	Branch string
}

// Job is one item of a workflow's job listing
type Job struct {
	ID        string
	Name      string
	Status    string
	StoppedAt *time.Time // nil while the job is still running or was never started
}

// Workflow holds the workflow fields needed to reach its pipeline
type Workflow struct {
	ID         string
	Name       string
	PipelineID string
}

// Pipeline holds the pipeline fields needed to identify the deployed commit
type Pipeline struct {
	ID     string
	Number int
	VCS    VCS
}

// VCS describes the source-control state a pipeline ran against
type VCS struct {
	Revision string
	Branch   string
}

// ParseTimestamp parses an API timestamp as a naive UTC time. The trailing UTC
// designator is stripped before parsing.
func ParseTimestamp(value string) (time.Time, error) {
	t, err := time.ParseInLocation(timestampLayout, strings.TrimSuffix(value, "Z"), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return t, nil
}

// Wire shapes. Pointers distinguish absent fields from empty ones.

type workflowRunsResponse struct {
	Items *[]struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Branch string `json:"branch"`
	} `json:"items"`
}

type jobsResponse struct {
	Items *[]struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		Status    string  `json:"status"`
		StoppedAt *string `json:"stopped_at"`
	} `json:"items"`
}

type workflowResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PipelineID string `json:"pipeline_id"`
}

type pipelineResponse struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	VCS    *struct {
		Revision string `json:"revision"`
		Branch   string `json:"branch"`
	} `json:"vcs"`
}
