// Package ghclient owns everything GitHub-side: client construction, the
// Action event context, the rate-limit retry policy, and the adapter exposing
// the narrow API surface the commenter consumes.
package ghclient

import (
	"context"
	"fmt"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// Client wraps an authenticated go-github client for one repository.
type Client struct {
	client *github.Client
	owner  string
	repo   string
	policy RetryPolicy
}

// New creates an authenticated client for owner/repo.
func New(ctx context.Context, token, owner, repo string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &Client{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
	}
}

// Raw exposes the underlying go-github client for calls outside the
// commenter surface (compare, list files).
func (c *Client) Raw() *github.Client {
	return c.client
}

// VerifyTokenPermissions checks that the token is valid and can read the
// repository and its pull requests before a run starts.
func (c *Client) VerifyTokenPermissions(ctx context.Context) error {
	if _, resp, err := c.client.Users.Get(ctx, ""); err != nil {
		if resp != nil && resp.StatusCode == 401 {
			return fmt.Errorf("invalid token or token has expired")
		}
		return fmt.Errorf("error checking token: %w", err)
	}
	if _, resp, err := c.client.Repositories.Get(ctx, c.owner, c.repo); err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return fmt.Errorf("repository %s/%s not found or no access", c.owner, c.repo)
		}
		return fmt.Errorf("repository read check failed: %w", err)
	}
	if _, resp, err := c.client.PullRequests.List(ctx, c.owner, c.repo, &github.PullRequestListOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	}); err != nil {
		if resp != nil && resp.StatusCode == 403 {
			return fmt.Errorf("no access to pull requests in %s/%s", c.owner, c.repo)
		}
		return fmt.Errorf("pull request read check failed: %w", err)
	}
	return nil
}

// CompareCommits returns the comparison between two commits, used to compute
// the incremental diff range.
func (c *Client) CompareCommits(ctx context.Context, base, head string) (*github.CommitsComparison, error) {
	comparison, _, err := c.client.Repositories.CompareCommits(ctx, c.owner, c.repo, base, head, &github.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to compare %s...%s: %w", base, head, err)
	}
	return comparison, nil
}

// ListFiles returns every changed file of the PR, paginating until a short
// page.
func (c *Client) ListFiles(ctx context.Context, number int) ([]*github.CommitFile, error) {
	all := make([]*github.CommitFile, 0)
	opts := &github.ListOptions{PerPage: 100}
	for {
		files, resp, err := c.client.PullRequests.ListFiles(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list files of PR #%d: %w", number, err)
		}
		all = append(all, files...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}
