package ghclient

import (
	"context"
	"fmt"

	"github.com/google/go-github/v68/github"
)

// The adapter methods below implement commenter.GitHubAPI. Writes go through
// the retry policy; the review-submission endpoints are identified by their
// request path so the policy can exempt them from secondary-rate-limit
// retries.

func (c *Client) CreateIssueComment(ctx context.Context, number int, body string) (*github.IssueComment, error) {
	var created *github.IssueComment
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", c.owner, c.repo, number)
	err := c.withRetry(ctx, "POST", path, func(ctx context.Context) error {
		comment, _, err := c.client.Issues.CreateComment(ctx, c.owner, c.repo, number, &github.IssueComment{
			Body: github.Ptr(body),
		})
		created = comment
		return err
	})
	return created, err
}

func (c *Client) UpdateIssueComment(ctx context.Context, commentID int64, body string) (*github.IssueComment, error) {
	var updated *github.IssueComment
	path := fmt.Sprintf("/repos/%s/%s/issues/comments/%d", c.owner, c.repo, commentID)
	err := c.withRetry(ctx, "PATCH", path, func(ctx context.Context) error {
		comment, _, err := c.client.Issues.EditComment(ctx, c.owner, c.repo, commentID, &github.IssueComment{
			Body: github.Ptr(body),
		})
		updated = comment
		return err
	})
	return updated, err
}

func (c *Client) ListIssueComments(ctx context.Context, number, page, perPage int) ([]*github.IssueComment, error) {
	comments, _, err := c.client.Issues.ListComments(ctx, c.owner, c.repo, number, &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{Page: page, PerPage: perPage},
	})
	return comments, err
}

func (c *Client) GetPullRequest(ctx context.Context, number int) (*github.PullRequest, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, c.owner, c.repo, number)
	return pr, err
}

func (c *Client) UpdatePullRequestBody(ctx context.Context, number int, body string) error {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", c.owner, c.repo, number)
	return c.withRetry(ctx, "PATCH", path, func(ctx context.Context) error {
		_, _, err := c.client.PullRequests.Edit(ctx, c.owner, c.repo, number, &github.PullRequest{
			Body: github.Ptr(body),
		})
		return err
	})
}

func (c *Client) ListCommits(ctx context.Context, number, page, perPage int) ([]*github.RepositoryCommit, error) {
	commits, _, err := c.client.PullRequests.ListCommits(ctx, c.owner, c.repo, number, &github.ListOptions{
		Page: page, PerPage: perPage,
	})
	return commits, err
}

func (c *Client) ListReviewComments(ctx context.Context, number, page, perPage int) ([]*github.PullRequestComment, error) {
	comments, _, err := c.client.PullRequests.ListComments(ctx, c.owner, c.repo, number, &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{Page: page, PerPage: perPage},
	})
	return comments, err
}

func (c *Client) CreateReviewCommentReply(ctx context.Context, number int, commentID int64, body string) error {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/comments/%d/replies", c.owner, c.repo, number, commentID)
	return c.withRetry(ctx, "POST", path, func(ctx context.Context) error {
		_, _, err := c.client.PullRequests.CreateCommentInReplyTo(ctx, c.owner, c.repo, number, body, commentID)
		return err
	})
}

func (c *Client) UpdateReviewComment(ctx context.Context, commentID int64, body string) error {
	path := fmt.Sprintf("/repos/%s/%s/pulls/comments/%d", c.owner, c.repo, commentID)
	return c.withRetry(ctx, "PATCH", path, func(ctx context.Context) error {
		_, _, err := c.client.PullRequests.EditComment(ctx, c.owner, c.repo, commentID, &github.PullRequestComment{
			Body: github.Ptr(body),
		})
		return err
	})
}

func (c *Client) DeleteReviewComment(ctx context.Context, commentID int64) error {
	path := fmt.Sprintf("/repos/%s/%s/pulls/comments/%d", c.owner, c.repo, commentID)
	return c.withRetry(ctx, "DELETE", path, func(ctx context.Context) error {
		_, err := c.client.PullRequests.DeleteComment(ctx, c.owner, c.repo, commentID)
		return err
	})
}

func (c *Client) ListReviews(ctx context.Context, number int) ([]*github.PullRequestReview, error) {
	reviews, _, err := c.client.PullRequests.ListReviews(ctx, c.owner, c.repo, number, &github.ListOptions{})
	return reviews, err
}

func (c *Client) DeletePendingReview(ctx context.Context, number int, reviewID int64) error {
	_, _, err := c.client.PullRequests.DeletePendingReview(ctx, c.owner, c.repo, number, reviewID)
	return err
}

func (c *Client) CreateReview(ctx context.Context, number int, review *github.PullRequestReviewRequest) (*github.PullRequestReview, error) {
	var created *github.PullRequestReview
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews", c.owner, c.repo, number)
	err := c.withRetry(ctx, "POST", path, func(ctx context.Context) error {
		result, _, err := c.client.PullRequests.CreateReview(ctx, c.owner, c.repo, number, review)
		created = result
		return err
	})
	return created, err
}

func (c *Client) SubmitReview(ctx context.Context, number int, reviewID int64, event, body string) error {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews/%d/events", c.owner, c.repo, number, reviewID)
	return c.withRetry(ctx, "POST", path, func(ctx context.Context) error {
		_, _, err := c.client.PullRequests.SubmitReview(ctx, c.owner, c.repo, number, reviewID, &github.PullRequestReviewRequest{
			Event: github.Ptr(event),
			Body:  github.Ptr(body),
		})
		return err
	})
}
