// Package commenter maintains the bot's comments on a pull request: tagged
// idempotent comments, the reviewed-commit marker block, and the buffered
// review submission. All GitHub writes are best-effort; failures are logged
// as warnings and never abort the surrounding run.
package commenter

import (
	"context"
	"fmt"
	"strings"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/google/go-github/v68/github"
)

// commentsPerPage is the fixed page size used when listing comments and
// commits. A short page signals end of data.
const commentsPerPage = 100

// GitHubAPI is the slice of the GitHub API the commenter needs. It is
// implemented by ghclient.Adapter and by mocks in tests.
type GitHubAPI interface {
	CreateIssueComment(ctx context.Context, number int, body string) (*github.IssueComment, error)
	UpdateIssueComment(ctx context.Context, commentID int64, body string) (*github.IssueComment, error)
	ListIssueComments(ctx context.Context, number, page, perPage int) ([]*github.IssueComment, error)

	GetPullRequest(ctx context.Context, number int) (*github.PullRequest, error)
	UpdatePullRequestBody(ctx context.Context, number int, body string) error
	ListCommits(ctx context.Context, number, page, perPage int) ([]*github.RepositoryCommit, error)

	ListReviewComments(ctx context.Context, number, page, perPage int) ([]*github.PullRequestComment, error)
	CreateReviewCommentReply(ctx context.Context, number int, commentID int64, body string) error
	UpdateReviewComment(ctx context.Context, commentID int64, body string) error
	DeleteReviewComment(ctx context.Context, commentID int64) error

	ListReviews(ctx context.Context, number int) ([]*github.PullRequestReview, error)
	DeletePendingReview(ctx context.Context, number int, reviewID int64) error
	CreateReview(ctx context.Context, number int, review *github.PullRequestReviewRequest) (*github.PullRequestReview, error)
	SubmitReview(ctx context.Context, number int, reviewID int64, event, body string) error
}

// reviewBufferEntry is one per-line finding accumulated during a run.
type reviewBufferEntry struct {
	path      string
	startLine int
	endLine   int
	message   string
}

// Commenter owns the per-run comment state for one repository. The caches are
// valid for a single process invocation and are filled synchronously before
// any concurrent reads; they are never persisted.
type Commenter struct {
	api      GitHubAPI
	greeting string
	apiLimit int

	issueCommentsCache  map[int][]*github.IssueComment
	reviewCommentsCache map[int][]*github.PullRequestComment

	reviewBuffer []reviewBufferEntry
	submitted    bool
}

// New creates a Commenter. greeting is prefixed to every user-visible comment
// body, before the identifying tag.
func New(api GitHubAPI, greeting string) *Commenter {
	return &Commenter{
		api:                 api,
		greeting:            greeting,
		apiLimit:            1,
		issueCommentsCache:  make(map[int][]*github.IssueComment),
		reviewCommentsCache: make(map[int][]*github.PullRequestComment),
	}
}

// SetAPIConcurrency bounds the concurrent GitHub writes SubmitReview issues
// while deduplicating stale comments.
func (c *Commenter) SetAPIConcurrency(limit int) {
	if limit > 0 {
		c.apiLimit = limit
	}
}

// CommentMode selects between creating a fresh comment and replacing the
// tagged one.
type CommentMode string

const (
	ModeCreate  CommentMode = "create"
	ModeReplace CommentMode = "replace"
)

// Comment posts message under the greeting and tag. An empty tag defaults to
// CommentTag. Unknown modes fall back to replace.
func (c *Commenter) Comment(ctx context.Context, message, tag string, mode CommentMode, number int) {
	logger := logging.GetLogger()
	if tag == "" {
		tag = CommentTag
	}
	body := fmt.Sprintf("%s\n\n%s\n\n%s", c.greeting, message, tag)
	switch mode {
	case ModeCreate:
		c.Create(ctx, body, number)
	case ModeReplace:
		c.Replace(ctx, body, tag, number)
	default:
		logger.Warn(ctx, "Unknown comment mode: %s, using replace instead", mode)
		c.Replace(ctx, body, tag, number)
	}
}

// Create posts a new comment. Failures are logged and swallowed; the review
// continues without the comment.
func (c *Commenter) Create(ctx context.Context, body string, number int) {
	logger := logging.GetLogger()
	created, err := c.api.CreateIssueComment(ctx, number, body)
	if err != nil {
		logger.Warn(ctx, "Failed to create comment on #%d: %v", number, err)
		return
	}
	if cached, ok := c.issueCommentsCache[number]; ok {
		c.issueCommentsCache[number] = append(cached, created)
	}
}

// Replace overwrites the body of the most recent comment carrying tag, or
// creates a new comment when none exists. The caller is responsible for
// embedding tag in body.
func (c *Commenter) Replace(ctx context.Context, body, tag string, number int) {
	logger := logging.GetLogger()
	target, err := c.FindCommentWithTag(ctx, tag, number)
	if err != nil {
		logger.Warn(ctx, "Failed to find comment with tag on #%d: %v", number, err)
		return
	}
	if target == nil {
		c.Create(ctx, body, number)
		return
	}
	updated, err := c.api.UpdateIssueComment(ctx, target.GetID(), body)
	if err != nil {
		logger.Warn(ctx, "Failed to replace comment %d on #%d: %v", target.GetID(), number, err)
		return
	}
	if cached, ok := c.issueCommentsCache[number]; ok {
		for i, comment := range cached {
			if comment.GetID() == target.GetID() {
				cached[i] = updated
				break
			}
		}
	}
}

// FindCommentWithTag returns the first comment whose body contains tag, or
// nil when no comment matches.
func (c *Commenter) FindCommentWithTag(ctx context.Context, tag string, number int) (*github.IssueComment, error) {
	comments, err := c.ListComments(ctx, number)
	if err != nil {
		return nil, err
	}
	for _, comment := range comments {
		if strings.Contains(comment.GetBody(), tag) {
			return comment, nil
		}
	}
	return nil, nil
}

// ListComments returns every comment on the target, paginating until a short
// page. The result is cached for the rest of the run.
func (c *Commenter) ListComments(ctx context.Context, number int) ([]*github.IssueComment, error) {
	if cached, ok := c.issueCommentsCache[number]; ok {
		return cached, nil
	}
	all := make([]*github.IssueComment, 0)
	for page := 1; ; page++ {
		comments, err := c.api.ListIssueComments(ctx, number, page, commentsPerPage)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments on #%d: %w", number, err)
		}
		all = append(all, comments...)
		if len(comments) < commentsPerPage {
			break
		}
	}
	c.issueCommentsCache[number] = all
	return all, nil
}

// GetContentWithinTags returns the text between the first occurrence of
// startTag and the first occurrence of endTag after it. Absent tags yield an
// empty string, not an error.
func (c *Commenter) GetContentWithinTags(content, startTag, endTag string) string {
	start := strings.Index(content, startTag)
	end := strings.Index(content, endTag)
	if start == -1 || end == -1 || end < start+len(startTag) {
		return ""
	}
	return content[start+len(startTag) : end]
}

// RemoveContentWithinTags deletes the region from startTag through endTag
// inclusive. When the end tag precedes the start tag the raw index slicing is
// kept as-is for wire compatibility with bodies written by earlier versions.
func (c *Commenter) RemoveContentWithinTags(content, startTag, endTag string) string {
	start := strings.Index(content, startTag)
	end := strings.LastIndex(content, endTag)
	if start == -1 || end == -1 {
		return content
	}
	return content[:start] + content[end+len(endTag):]
}

// GetBlock extracts the content of a delimited marker block from body.
func (c *Commenter) GetBlock(body string, kind BlockKind) string {
	start, end := kind.Delimiters()
	return c.GetContentWithinTags(body, start, end)
}

// GetRawSummary extracts the persisted raw summary block from a summarize
// comment body.
func (c *Commenter) GetRawSummary(content string) string {
	return c.GetBlock(content, BlockRawSummary)
}

// GetShortSummary extracts the persisted short summary block.
func (c *Commenter) GetShortSummary(content string) string {
	return c.GetBlock(content, BlockShortSummary)
}

// GetDescription strips the bot-maintained release-notes block from a PR
// description, leaving the human-written part.
func (c *Commenter) GetDescription(description string) string {
	start, end := BlockReleaseNotes.Delimiters()
	return c.RemoveContentWithinTags(description, start, end)
}

// GetReleaseNotes returns the release-notes block content with quoted lines
// removed.
func (c *Commenter) GetReleaseNotes(description string) string {
	notes := c.GetBlock(description, BlockReleaseNotes)
	lines := strings.Split(notes, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, ">") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// UpdateDescription rewrites the PR description, preserving the human part
// and replacing the release-notes block with message. Best-effort.
func (c *Commenter) UpdateDescription(ctx context.Context, number int, message string) {
	logger := logging.GetLogger()
	pr, err := c.api.GetPullRequest(ctx, number)
	if err != nil {
		logger.Warn(ctx, "Failed to get PR #%d: %v", number, err)
		return
	}
	description := c.GetDescription(pr.GetBody())
	body := fmt.Sprintf("%s\n\n%s\n%s\n%s", description, DescriptionStartTag, message, DescriptionEndTag)
	if err := c.api.UpdatePullRequestBody(ctx, number, body); err != nil {
		logger.Warn(ctx, "Failed to update description of PR #%d: %v", number, err)
	}
}
