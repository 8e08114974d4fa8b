// Package vcs looks up commit details for deployed revisions.
package vcs

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// NewGitHubClient creates an authenticated GitHub client. It returns nil when
// no token is given.
func NewGitHubClient(token string) *github.Client {
	if token == "" {
		return nil
	}

	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return github.NewClient(tc)
}

// RepoFromSlugs maps CircleCI org and project slugs to a GitHub owner and
// repository. ok is false for projects not hosted on GitHub.
func RepoFromSlugs(orgSlug, projectSlug string) (owner, repo string, ok bool) {
	vcsType, org, found := strings.Cut(orgSlug, "/")
	if !found || org == "" || projectSlug == "" {
		return "", "", false
	}

	switch vcsType {
	case "gh", "github":
		return org, projectSlug, true
	default:
		return "", "", false
	}
}

// Annotator resolves revisions of one repository to commit headlines
type Annotator struct {
	client *github.Client
	owner  string
	repo   string

	mu    sync.Mutex
	cache map[string]string
}

// NewAnnotator creates an annotator for owner/repo
func NewAnnotator(client *github.Client, owner, repo string) *Annotator {
	return &Annotator{
		client: client,
		owner:  owner,
		repo:   repo,
		cache:  make(map[string]string),
	}
}

// Headline returns the first line of the commit message at revision
func (a *Annotator) Headline(ctx context.Context, revision string) (string, error) {
	a.mu.Lock()
	cached, ok := a.cache[revision]
	a.mu.Unlock()
	if ok {
		return cached, nil
	}

	commit, _, err := a.client.Repositories.GetCommit(ctx, a.owner, a.repo, revision, nil)
	if err != nil {
		return "", fmt.Errorf("fetching commit %s of %s/%s: %w", revision, a.owner, a.repo, err)
	}

	headline, _, _ := strings.Cut(commit.GetCommit().GetMessage(), "\n")
	headline = strings.TrimSpace(headline)

	a.mu.Lock()
	a.cache[revision] = headline
	a.mu.Unlock()

	return headline, nil
}
