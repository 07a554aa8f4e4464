package commenter

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/XiaoConstantine/dspy-go/pkg/logging"
	"github.com/google/go-github/v68/github"
)

// BufferReviewComment appends one finding to the in-memory buffer. The stored
// message carries the greeting and CommentTag so the posted comment is
// recognizable on later runs. Never touches the network.
func (c *Commenter) BufferReviewComment(path string, startLine, endLine int, message string) {
	c.reviewBuffer = append(c.reviewBuffer, reviewBufferEntry{
		path:      path,
		startLine: startLine,
		endLine:   endLine,
		message:   fmt.Sprintf("%s\n\n%s\n\n%s", c.greeting, message, CommentTag),
	})
}

// BufferedReviewCount reports how many findings are waiting for submission.
func (c *Commenter) BufferedReviewCount() int {
	return len(c.reviewBuffer)
}

// SubmitReview consumes the buffer and posts it as one atomic review against
// commitID. An empty buffer produces a status-only COMMENT review carrying
// statusMessage. The buffer is discarded either way; a Commenter submits at
// most once per run. All failures are logged and swallowed so a failed review
// never blocks the commit-tracking update that follows.
func (c *Commenter) SubmitReview(ctx context.Context, number int, commitID, statusMessage string) {
	logger := logging.GetLogger()
	if c.submitted {
		logger.Warn(ctx, "Review for PR #%d already submitted in this run, skipping", number)
		return
	}
	c.submitted = true

	body := fmt.Sprintf("%s\n\n%s\n", c.greeting, statusMessage)

	if len(c.reviewBuffer) == 0 {
		logger.Info(ctx, "Submitting empty review for PR #%d", number)
		_, err := c.api.CreateReview(ctx, number, &github.PullRequestReviewRequest{
			CommitID: github.Ptr(commitID),
			Event:    github.Ptr("COMMENT"),
			Body:     github.Ptr(body),
		})
		if err != nil {
			logger.Warn(ctx, "Failed to submit empty review: %v", err)
		}
		return
	}

	// Fill the cache before the concurrent lookups below.
	c.ListReviewComments(ctx, number)

	// Drop earlier bot comments at the exact same ranges so incremental runs
	// replace findings instead of duplicating them. Deletions fan out under
	// the configured API concurrency limit.
	var wg sync.WaitGroup
	sem := make(chan struct{}, c.apiLimit)
	comments := make([]*github.DraftReviewComment, 0, len(c.reviewBuffer))
	for _, entry := range c.reviewBuffer {
		comments = append(comments, draftComment(entry))
		wg.Add(1)
		sem <- struct{}{}
		go func(entry reviewBufferEntry) {
			defer func() {
				<-sem
				wg.Done()
			}()
			existing := c.GetCommentsAtRange(ctx, number, entry.path, entry.startLine, entry.endLine)
			for _, comment := range existing {
				if !strings.Contains(comment.GetBody(), CommentTag) {
					continue
				}
				logger.Info(ctx, "Deleting stale review comment %d at %s:%d-%d",
					comment.GetID(), entry.path, entry.startLine, entry.endLine)
				if err := c.api.DeleteReviewComment(ctx, comment.GetID()); err != nil {
					logger.Warn(ctx, "Failed to delete review comment %d: %v", comment.GetID(), err)
				}
			}
		}(entry)
	}
	wg.Wait()
	c.reviewBuffer = nil

	review, err := c.api.CreateReview(ctx, number, &github.PullRequestReviewRequest{
		CommitID: github.Ptr(commitID),
		Comments: comments,
	})
	if err != nil {
		logger.Warn(ctx, "Failed to create review for PR #%d at commit %s: %v", number, commitID, err)
		return
	}
	if err := c.api.SubmitReview(ctx, number, review.GetID(), "COMMENT", body); err != nil {
		logger.Warn(ctx, "Failed to submit review %d for PR #%d at commit %s: %v",
			review.GetID(), number, commitID, err)
	}
}

// draftComment maps a buffered entry to the review comment wire format:
// line is always the end of the range, and multi-line findings additionally
// carry start_line/start_side on the new side of the diff.
func draftComment(entry reviewBufferEntry) *github.DraftReviewComment {
	comment := &github.DraftReviewComment{
		Path: github.Ptr(entry.path),
		Body: github.Ptr(entry.message),
		Line: github.Ptr(entry.endLine),
	}
	if entry.startLine != entry.endLine {
		comment.StartLine = github.Ptr(entry.startLine)
		comment.StartSide = github.Ptr("RIGHT")
	}
	return comment
}

// DeletePendingReview removes a PENDING review left behind by a crashed run;
// such a review can never be submitted and would block new submissions.
func (c *Commenter) DeletePendingReview(ctx context.Context, number int) {
	logger := logging.GetLogger()
	reviews, err := c.api.ListReviews(ctx, number)
	if err != nil {
		logger.Warn(ctx, "Failed to list reviews for PR #%d: %v", number, err)
		return
	}
	for _, review := range reviews {
		if review.GetState() != "PENDING" {
			continue
		}
		logger.Info(ctx, "Deleting pending review %d for PR #%d", review.GetID(), number)
		if err := c.api.DeletePendingReview(ctx, number, review.GetID()); err != nil {
			logger.Warn(ctx, "Failed to delete pending review %d: %v", review.GetID(), err)
		}
		return
	}
}

// ListReviewComments returns every review comment on the PR, paginating until
// a short page and caching the result for the rest of the run. A listing
// failure degrades to an empty list so range lookups stay best-effort.
func (c *Commenter) ListReviewComments(ctx context.Context, number int) []*github.PullRequestComment {
	if cached, ok := c.reviewCommentsCache[number]; ok {
		return cached
	}
	logger := logging.GetLogger()
	all := make([]*github.PullRequestComment, 0)
	for page := 1; ; page++ {
		comments, err := c.api.ListReviewComments(ctx, number, page, commentsPerPage)
		if err != nil {
			logger.Warn(ctx, "Failed to list review comments for PR #%d: %v", number, err)
			all = []*github.PullRequestComment{}
			break
		}
		all = append(all, comments...)
		if len(comments) < commentsPerPage {
			break
		}
	}
	c.reviewCommentsCache[number] = all
	return all
}

// GetCommentsWithinRange filters review comments to those whose own range
// falls inside [startLine, endLine] on path. Empty-bodied comments are
// excluded.
func (c *Commenter) GetCommentsWithinRange(ctx context.Context, number int, path string, startLine, endLine int) []*github.PullRequestComment {
	comments := c.ListReviewComments(ctx, number)
	matched := make([]*github.PullRequestComment, 0)
	for _, comment := range comments {
		if comment.GetPath() != path || comment.GetBody() == "" {
			continue
		}
		if (comment.StartLine != nil && comment.GetStartLine() >= startLine && comment.GetLine() <= endLine) ||
			(startLine == endLine && comment.GetLine() == endLine) {
			matched = append(matched, comment)
		}
	}
	return matched
}

// GetCommentsAtRange filters review comments to those at exactly
// [startLine, endLine] on path.
func (c *Commenter) GetCommentsAtRange(ctx context.Context, number int, path string, startLine, endLine int) []*github.PullRequestComment {
	comments := c.ListReviewComments(ctx, number)
	matched := make([]*github.PullRequestComment, 0)
	for _, comment := range comments {
		if comment.GetPath() != path || comment.GetBody() == "" {
			continue
		}
		if (comment.StartLine != nil && comment.GetStartLine() == startLine && comment.GetLine() == endLine) ||
			(startLine == endLine && comment.GetLine() == endLine) {
			matched = append(matched, comment)
		}
	}
	return matched
}

// GetCommentChainsWithinRange renders every comment chain rooted in the given
// range, separated by blank lines.
func (c *Commenter) GetCommentChainsWithinRange(ctx context.Context, number int, path string, startLine, endLine int, tag string) string {
	existing := c.GetCommentsWithinRange(ctx, number, path, startLine, endLine)
	topLevel := make([]*github.PullRequestComment, 0)
	for _, comment := range existing {
		if comment.InReplyTo == nil && strings.Contains(comment.GetBody(), tag) {
			topLevel = append(topLevel, comment)
		}
	}
	chains := make([]string, 0, len(topLevel))
	for _, top := range topLevel {
		replies := make([]*github.PullRequestComment, 0)
		for _, comment := range existing {
			if comment.GetInReplyTo() == top.GetID() {
				replies = append(replies, comment)
			}
		}
		chains = append(chains, c.ComposeCommentChain(replies, top))
	}
	return strings.Join(chains, "\n\n")
}

// ComposeCommentChain renders a linear transcript of a thread, top-level
// comment first, for use as conversational context in a prompt.
func (c *Commenter) ComposeCommentChain(replies []*github.PullRequestComment, topLevel *github.PullRequestComment) string {
	lines := make([]string, 0, len(replies)+1)
	lines = append(lines, fmt.Sprintf("%s: %s", topLevel.GetUser().GetLogin(), topLevel.GetBody()))
	for _, reply := range replies {
		lines = append(lines, fmt.Sprintf("%s: %s", reply.GetUser().GetLogin(), reply.GetBody()))
	}
	return strings.Join(lines, "\n---\n")
}

// ReviewCommentReply posts a threaded reply under topLevel and rewrites the
// top-level comment's tag from CommentTag to CommentReplyTag so later passes
// know the thread already got a bot reply. A failed reply is retried once
// with a body explaining the failure; errors never propagate.
func (c *Commenter) ReviewCommentReply(ctx context.Context, number int, topLevel *github.PullRequestComment, message string) {
	logger := logging.GetLogger()
	reply := fmt.Sprintf("%s\n\n%s\n\n%s", c.greeting, message, CommentReplyTag)
	if err := c.api.CreateReviewCommentReply(ctx, number, topLevel.GetID(), reply); err != nil {
		logger.Warn(ctx, "Failed to reply to the top-level comment %d: %v", topLevel.GetID(), err)
		fallback := fmt.Sprintf("Could not post the reply to the top-level comment due to the following error: %v", err)
		if err := c.api.CreateReviewCommentReply(ctx, number, topLevel.GetID(), fallback); err != nil {
			logger.Warn(ctx, "Failed to post the failure notice as well: %v", err)
		}
	}
	if strings.Contains(topLevel.GetBody(), CommentTag) {
		body := strings.ReplaceAll(topLevel.GetBody(), CommentTag, CommentReplyTag)
		if err := c.api.UpdateReviewComment(ctx, topLevel.GetID(), body); err != nil {
			logger.Warn(ctx, "Failed to re-tag the top-level comment %d: %v", topLevel.GetID(), err)
		}
	}
}
