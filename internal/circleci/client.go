package circleci

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the CircleCI v2 REST API root
	DefaultBaseURL = "https://circleci.com/api/v2"

	// DefaultTimeout bounds a single API request
	DefaultTimeout = 30 * time.Second

	// MaxResponseBytes caps how much of a response body is read
	MaxResponseBytes = 10_000_000 // 10 MB

	// TokenHeader is the header CircleCI reads personal API tokens from
	TokenHeader = "Circle-Token"

	startDateLayout = "2006-01-02"
	errorBodyLimit  = 200
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // zero or negative disables pacing
	Transport         http.RoundTripper
}

// Client issues read-only CircleCI API queries
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client that authenticates every request with token.
// The token is not validated locally; an invalid one fails upstream.
func NewClient(token string, opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	// Timeouts are applied per request through the context. oauth2 copies the
	// transport from the context client.
	base := &http.Client{Transport: opts.Transport}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		timeout: timeout,
		http:    oauth2.NewClient(ctx, ts),
		limiter: limiter,
	}
}

// ListWorkflowRuns lists recent runs of the named workflow on branch, starting
// at the given date. Only the single page the API returns is read.
func (c *Client) ListWorkflowRuns(ctx context.Context, projectSlug, workflowName, branch string, start time.Time) ([]WorkflowRun, error) {
	path := fmt.Sprintf("/insights/%s/workflows/%s", projectSlug, url.PathEscape(workflowName))
	query := url.Values{}
	query.Set("branch", branch)
	query.Set("start-date", start.UTC().Format(startDateLayout)+"Z")

	var resp workflowRunsResponse
	reqURL, err := c.getJSON(ctx, path, query, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Items == nil {
		return nil, missingField(reqURL, "items")
	}

	runs := make([]WorkflowRun, 0, len(*resp.Items))
	for i, item := range *resp.Items {
		if item.ID == "" {
			return nil, missingField(reqURL, fmt.Sprintf("items[%d].id", i))
		}
		runs = append(runs, WorkflowRun{ID: item.ID, Status: item.Status, Branch: item.Branch})
	}

	return runs, nil
}

// ListWorkflowJobs lists the jobs of a workflow run
func (c *Client) ListWorkflowJobs(ctx context.Context, workflowID string) ([]Job, error) {
	var resp jobsResponse
	reqURL, err := c.getJSON(ctx, "/workflow/"+url.PathEscape(workflowID)+"/job", nil, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Items == nil {
		return nil, missingField(reqURL, "items")
	}

	jobs := make([]Job, 0, len(*resp.Items))
	for i, item := range *resp.Items {
		if item.ID == "" {
			return nil, missingField(reqURL, fmt.Sprintf("items[%d].id", i))
		}
		if item.Name == "" {
			return nil, missingField(reqURL, fmt.Sprintf("items[%d].name", i))
		}
		if item.Status == "" {
			return nil, missingField(reqURL, fmt.Sprintf("items[%d].status", i))
		}

		job := Job{ID: item.ID, Name: item.Name, Status: item.Status}
		if item.StoppedAt != nil && *item.StoppedAt != "" {
			stoppedAt, err := ParseTimestamp(*item.StoppedAt)
			if err != nil {
				return nil, &MalformedResponseError{URL: reqURL, Field: fmt.Sprintf("items[%d].stopped_at", i), Err: err}
			}
			job.StoppedAt = &stoppedAt
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// GetWorkflow fetches a workflow run's metadata
func (c *Client) GetWorkflow(ctx context.Context, workflowID string) (*Workflow, error) {
	var resp workflowResponse
	reqURL, err := c.getJSON(ctx, "/workflow/"+url.PathEscape(workflowID), nil, &resp)
	if err != nil {
		return nil, err
	}

	if resp.PipelineID == "" {
		return nil, missingField(reqURL, "pipeline_id")
	}

	return &Workflow{ID: resp.ID, Name: resp.Name, PipelineID: resp.PipelineID}, nil
}

// GetPipeline fetches a pipeline's metadata, including the commit it built
func (c *Client) GetPipeline(ctx context.Context, pipelineID string) (*Pipeline, error) {
	var resp pipelineResponse
	reqURL, err := c.getJSON(ctx, "/pipeline/"+url.PathEscape(pipelineID), nil, &resp)
	if err != nil {
		return nil, err
	}

	if resp.VCS == nil {
		return nil, missingField(reqURL, "vcs")
	}
	if resp.VCS.Revision == "" {
		return nil, missingField(reqURL, "vcs.revision")
	}

	return &Pipeline{
		ID:     resp.ID,
		Number: resp.Number,
		VCS:    VCS{Revision: resp.VCS.Revision, Branch: resp.VCS.Branch},
	}, nil
}

// getJSON performs a GET and decodes the body into out. It returns the request
// URL so callers can attribute field-level errors.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) (string, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return reqURL, &TransportError{Method: http.MethodGet, URL: reqURL, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return reqURL, &TransportError{Method: http.MethodGet, URL: reqURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(TokenHeader, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return reqURL, &TransportError{Method: http.MethodGet, URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return reqURL, &TransportError{Method: http.MethodGet, URL: reqURL, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return reqURL, &TransportError{
			Method:     http.MethodGet,
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", truncate(string(body), errorBodyLimit)),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return reqURL, &MalformedResponseError{URL: reqURL, Err: err}
	}

	return reqURL, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
