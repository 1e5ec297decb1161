// Package publisher holds the issue-tracker client behind the interface the
// processor publishes through.
package publisher

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
	"github.com/joshu-sajeev/issueflow/internal/executor"
)

// IssueRef identifies a published issue at the external tracker.
type IssueRef struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
}

// IssuePublisher performs the external publish action. repo is "owner/name".
type IssuePublisher interface {
	Publish(ctx context.Context, repo, title, body string) (*IssueRef, error)
}

// GitHub publishes issues through the GitHub REST API. Credential failures
// are wrapped in the executor's terminal sentinels so the retry loop does not
// burn attempts on them.
type GitHub struct {
	client *github.Client
}

var _ IssuePublisher = (*GitHub)(nil)

func NewGitHub(token string) *GitHub {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHub{client: client}
}

func (g *GitHub) Publish(ctx context.Context, repo, title, body string) (*IssueRef, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repository %q: want owner/name", repo)
	}

	issue, resp, err := g.client.Issues.Create(ctx, owner, name, &github.IssueRequest{
		Title: github.String(title),
		Body:  github.String(body),
	})
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				return nil, fmt.Errorf("%w: %v", executor.ErrAuthentication, err)
			case http.StatusForbidden:
				return nil, fmt.Errorf("%w: %v", executor.ErrAccessDenied, err)
			}
		}
		return nil, fmt.Errorf("create issue in %s: %w", repo, err)
	}

	return &IssueRef{Number: issue.GetNumber(), URL: issue.GetHTMLURL()}, nil
}
